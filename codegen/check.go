package codegen

import (
	"bytes"
	"context"
	"os"

	"github.com/teranos/mmgen/errors"
)

// Check regenerates opts.Source in memory and compares it with the file at
// opts.Output. It returns ErrStale when they differ or the file is missing.
func (g *Generator) Check(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Loader == nil {
		return nil, errors.New("no model loader configured")
	}
	if opts.Output == "" {
		return nil, errors.New("check needs an output file to compare against")
	}

	store, err := opts.Loader.Load(ctx, opts.Source)
	if err != nil {
		return nil, err
	}
	defer store.Shutdown()

	var want bytes.Buffer
	res, err := g.Generate(ctx, store, &want)
	if err != nil {
		return nil, err
	}

	got, err := os.ReadFile(opts.Output)
	if err != nil {
		if os.IsNotExist(err) {
			return res, errors.WithHintf(
				errors.Wrapf(errors.ErrStale, "%s does not exist", opts.Output),
				"run: mmgen generate %s %s", opts.Source, opts.Output)
		}
		return nil, errors.Wrapf(err, "failed to read %s", opts.Output)
	}
	if !bytes.Equal(got, want.Bytes()) {
		return res, errors.WithHintf(
			errors.Wrapf(errors.ErrStale, "%s", opts.Output),
			"run: mmgen generate %s %s", opts.Source, opts.Output)
	}
	return res, nil
}
