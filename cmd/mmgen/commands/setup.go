package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/mmgen/am"
	"github.com/teranos/mmgen/codegen"
	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/storage"
)

// Exit codes
const (
	ExitError = 1
	// ExitStale is returned by `mmgen check` when the output is out of date
	ExitStale = 2
)

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	if errors.Is(err, errors.ErrStale) {
		return ExitStale
	}
	return ExitError
}

// loadConfig loads the configuration named by --config, or the regular
// cascade when the flag is empty, and validates it.
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *am.Config
	var err error
	if path != "" {
		cfg, err = am.LoadFromFile(path)
	} else {
		cfg, err = am.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(err, "fix the configuration or run `mmgen am show --sources` to see where values come from")
	}
	return cfg, nil
}

// configFile returns the file the active configuration was read from, if any.
func configFile(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	return am.GetViper().ConfigFileUsed()
}

func newGenerator(cfg *am.Config) (*codegen.Generator, error) {
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return nil, err
	}
	return &codegen.Generator{
		Catalog: catalog,
		Options: cfg.GeneratorOptions(),
		Logger:  logger.ComponentLogger("codegen"),
	}, nil
}

// newLoader returns a model loader. format overrides extension detection
// when not empty.
func newLoader(cfg *am.Config, format string) (*storage.Loader, error) {
	l := storage.NewLoader(logger.ComponentLogger("storage"))
	l.Fetch = cfg.FetchOptions()
	if cfg.Generator.BaseClassAttribute != "" {
		l.BaseClassAttribute = cfg.Generator.BaseClassAttribute
	}
	if format != "" {
		f, err := storage.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		l.Format = f
	}
	return l, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
