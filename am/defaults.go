package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/mmgen/codegen"
	"github.com/teranos/mmgen/modeling"
	"github.com/teranos/mmgen/storage"
)

// Defaults
const (
	DefaultDatabasePath = "model.db"
	DefaultDebounceMS   = 500
	DefaultFetchTimeout = 60 // seconds
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	opts := codegen.DefaultOptions()

	// Generator defaults follow gaphor's own module layout
	v.SetDefault("generator.private_marker", opts.PrivateMarker)
	v.SetDefault("generator.base_class_attribute", opts.BaseClassAttribute)
	v.SetDefault("generator.base_module", opts.BaseModule)
	v.SetDefault("generator.properties_module", opts.PropertiesModule)
	v.SetDefault("generator.ambiguous", string(opts.Ambiguous))

	v.SetDefault("catalog.base", modeling.BaseUML)
	v.SetDefault("catalog.known", []string{})

	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("source.timeout_seconds", DefaultFetchTimeout)
	v.SetDefault("source.allow_private_hosts", false)

	v.SetDefault("watch.debounce_ms", DefaultDebounceMS)
}

// BindEnvVars explicitly binds settings whose env names are not derived
// automatically (viper only resolves AutomaticEnv for keys it already knows).
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", EnvPrefix+"_DATABASE_PATH", "MMGEN_DB")
	v.BindEnv("generator.ambiguous", EnvPrefix+"_GENERATOR_AMBIGUOUS")
	v.BindEnv("catalog.base", EnvPrefix+"_CATALOG_BASE")
}

// DefaultConfig returns the configuration used when no file or env var
// overrides anything.
func DefaultConfig() *Config {
	opts := codegen.DefaultOptions()
	return &Config{
		Generator: GeneratorConfig{
			PrivateMarker:      opts.PrivateMarker,
			BaseClassAttribute: opts.BaseClassAttribute,
			BaseModule:         opts.BaseModule,
			PropertiesModule:   opts.PropertiesModule,
			Ambiguous:          string(opts.Ambiguous),
		},
		Catalog:  CatalogConfig{Base: modeling.BaseUML, Known: []string{}},
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Source:   SourceConfig{TimeoutSeconds: DefaultFetchTimeout},
		Watch:    WatchConfig{DebounceMS: DefaultDebounceMS},
	}
}

// GeneratorOptions converts the generator section to codegen options.
// Empty values fall back to the codegen defaults.
func (c *Config) GeneratorOptions() codegen.Options {
	opts := codegen.DefaultOptions()
	g := c.Generator
	// private_marker = "" is meaningful: nothing is private
	opts.PrivateMarker = g.PrivateMarker
	if g.BaseClassAttribute != "" {
		opts.BaseClassAttribute = g.BaseClassAttribute
	}
	if g.BaseModule != "" {
		opts.BaseModule = g.BaseModule
	}
	if g.PropertiesModule != "" {
		opts.PropertiesModule = g.PropertiesModule
	}
	if g.Ambiguous != "" {
		opts.Ambiguous = codegen.AmbiguousPolicy(g.Ambiguous)
	}
	return opts
}

// BuildCatalog returns the known-class catalog described by the catalog
// section.
func (c *Config) BuildCatalog() (*modeling.StaticCatalog, error) {
	return modeling.NewCatalog(c.Catalog.Base, c.Catalog.Known)
}

// GetDatabasePath returns the configured model database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath // Fallback default
	}
	return c.Database.Path
}

// FetchOptions returns the options used for remote model sources
func (c *Config) FetchOptions() storage.FetchOptions {
	timeout := time.Duration(c.Source.TimeoutSeconds) * time.Second
	if c.Source.TimeoutSeconds <= 0 {
		timeout = DefaultFetchTimeout * time.Second
	}
	return storage.FetchOptions{
		Timeout:           timeout,
		AllowPrivateHosts: c.Source.AllowPrivateHosts,
	}
}

// GetDebounce returns the watch debounce period (default: 500ms)
func (c *Config) GetDebounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Generator: {BaseModule: %s, Ambiguous: %s}, Catalog: {Base: %s, Known: %d}, Database: %s}",
		c.Generator.BaseModule, c.Generator.Ambiguous, c.Catalog.Base, len(c.Catalog.Known), c.Database.Path)
}
