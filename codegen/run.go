package codegen

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/model"
)

// Loader opens a model source.
type Loader interface {
	Load(ctx context.Context, source string) (*model.ElementFactory, error)
}

// RunOptions describes one generation run.
type RunOptions struct {
	Source string
	// Output is the destination file. Empty writes to Stdout.
	Output string
	Stdout io.Writer
	Loader Loader
}

// Run loads the model, generates it and writes the output. The destination
// file is replaced only when generation succeeds; a failed run leaves any
// previous file untouched.
func (g *Generator) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Loader == nil {
		return nil, errors.New("no model loader configured")
	}
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := g.log(ctx)
	start := time.Now()

	store, err := opts.Loader.Load(ctx, opts.Source)
	if err != nil {
		return nil, err
	}
	defer store.Shutdown()

	sink, err := openSink(opts.Output, opts.Stdout)
	if err != nil {
		return nil, err
	}

	res, err := g.Generate(ctx, store, sink)
	if err != nil {
		sink.abort()
		return nil, err
	}
	if err := sink.commit(); err != nil {
		return nil, err
	}

	res.RunID = runID
	log.Infow("Generated module",
		logger.FieldSource, opts.Source,
		logger.FieldOutput, displayOutput(opts.Output),
		logger.FieldKnown, len(res.Known),
		logger.FieldGenerated, len(res.Generated),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return res, nil
}

func displayOutput(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}

// sink buffers output for either stdout or a temp file beside the
// destination that is renamed into place on commit.
type sink struct {
	buf  *bufio.Writer
	file *os.File
	dest string
}

func openSink(output string, stdout io.Writer) (*sink, error) {
	if output == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return &sink{buf: bufio.NewWriter(stdout)}, nil
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create temporary output in %s", dir)
	}
	return &sink{buf: bufio.NewWriter(f), file: f, dest: output}, nil
}

func (s *sink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *sink) commit() error {
	if err := s.buf.Flush(); err != nil {
		s.abort()
		return errors.Wrap(err, "failed to write output")
	}
	if s.file == nil {
		return nil
	}
	tmp := s.file.Name()
	if err := s.file.Chmod(0644); err != nil {
		s.abort()
		return errors.Wrap(err, "failed to set output permissions")
	}
	if err := s.file.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "failed to close output")
	}
	if err := os.Rename(tmp, s.dest); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "failed to move output into place at %s", s.dest)
	}
	return nil
}

// abort discards everything written. It is safe to call more than once.
func (s *sink) abort() {
	if s.file == nil {
		return
	}
	_ = s.file.Close()
	_ = os.Remove(s.file.Name())
}
