package commands

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mmgen/am"
	"github.com/teranos/mmgen/codegen"
	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/storage"
	"github.com/teranos/mmgen/watch"
)

var (
	generateFormat string
	generateWatch  bool
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate SOURCE [OUTPUT]",
	Short: "Generate Python class definitions from a model",
	Long: `Generate a Python module declaring every class of a model.

Classes known to the catalog (the UML metamodel by default) are imported
from the base module; every other class is written as a class definition
after all of its supertypes. Attributes become attribute[...], association
ends relation_one[...] or relation_many[...], operations are listed as
placeholders.

Without OUTPUT the module is written to stdout. With OUTPUT the file is only
replaced when generation succeeds.

SOURCE may be a local file or any URL go-getter understands, e.g.
https://host/uml.yaml or git::https://host/repo.git//models/uml.gaphor.

Examples:
  mmgen generate uml.yaml                   # Print to stdout
  mmgen generate uml.gaphor gaphor/UML.py   # Write a file
  mmgen generate model.txt out.py -f yaml   # Override format detection
  mmgen generate uml.yaml uml.py --watch    # Regenerate on every change`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().StringVarP(&generateFormat, "format", "f", "", "Model format: yaml, json, toml, gaphor, sqlite (default: from extension)")
	GenerateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate whenever the model or config file changes")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts := codegen.RunOptions{Source: args[0], Stdout: cmd.OutOrStdout()}
	if len(args) == 2 {
		opts.Output = args[1]
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if generateWatch {
		return watchGenerate(cmd, cfg, opts)
	}

	_, err = generateOnce(cmd.Context(), cfg, opts, cmd.ErrOrStderr())
	return err
}

func generateOnce(ctx context.Context, cfg *am.Config, opts codegen.RunOptions, status io.Writer) (*codegen.Result, error) {
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	loader, err := newLoader(cfg, generateFormat)
	if err != nil {
		return nil, err
	}
	opts.Loader = loader

	res, err := gen.Run(ctx, opts)
	if err != nil {
		return nil, err
	}
	// Stdout carries the module itself, so only report file writes
	if opts.Output != "" {
		pterm.Success.WithWriter(status).Printfln("Generated %s (%d classes, %d imported)",
			opts.Output, len(res.Generated), len(res.Known))
	}
	return res, nil
}

// watchGenerate generates once, then again after every change of the model
// or the config file until interrupted. Failed runs are reported and the
// previous output stays in place.
func watchGenerate(cmd *cobra.Command, cfg *am.Config, opts codegen.RunOptions) error {
	if storage.IsRemote(opts.Source) {
		return errors.WithHint(
			errors.Newf("cannot watch remote source %s", opts.Source),
			"download the model or drop --watch")
	}
	status := cmd.ErrOrStderr()
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if _, err := generateOnce(ctx, cfg, opts, status); err != nil {
		pterm.Error.WithWriter(status).Println(err.Error())
	}

	paths := []string{opts.Source}
	cfgPath := configFile(cmd)
	if cfgPath != "" {
		abs, err := filepath.Abs(cfgPath)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", cfgPath)
		}
		cfgPath = abs
		paths = append(paths, cfgPath)
	}
	w, err := watch.New(paths, cfg.GetDebounce(), logger.ComponentLogger("watch"))
	if err != nil {
		return err
	}

	pterm.Info.WithWriter(status).Printfln("Watching %s (Ctrl-C to stop)", strings.Join(paths, ", "))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		if cfgPath != "" && containsPath(changed, cfgPath) {
			reloaded, err := reloadConfig(cmd)
			if err != nil {
				pterm.Error.WithWriter(status).Println(err.Error())
				return
			}
			cfg = reloaded
			logger.Infow("Configuration reloaded", "path", cfgPath)
		}
		if _, err := generateOnce(ctx, cfg, opts, status); err != nil {
			pterm.Error.WithWriter(status).Println(err.Error())
		}
	})
}

func reloadConfig(cmd *cobra.Command) (*am.Config, error) {
	am.Reset()
	return loadConfig(cmd)
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
