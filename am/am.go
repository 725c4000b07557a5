package am

// Config represents the mmgen configuration
type Config struct {
	Generator GeneratorConfig `mapstructure:"generator" toml:"generator"`
	Catalog   CatalogConfig   `mapstructure:"catalog" toml:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database" toml:"database"`
	Source    SourceConfig    `mapstructure:"source" toml:"source"`
	Watch     WatchConfig     `mapstructure:"watch" toml:"watch"`
}

// GeneratorConfig configures class-definition generation
type GeneratorConfig struct {
	PrivateMarker      string `mapstructure:"private_marker" toml:"private_marker"`             // Classes starting with this are skipped (default: "~")
	BaseClassAttribute string `mapstructure:"base_class_attribute" toml:"base_class_attribute"` // Stereotype extension attribute (default: "baseClass")
	BaseModule         string `mapstructure:"base_module" toml:"base_module"`                   // Module known classes are imported from
	PropertiesModule   string `mapstructure:"properties_module" toml:"properties_module"`       // Module providing attribute/association/relation_*
	Ambiguous          string `mapstructure:"ambiguous" toml:"ambiguous"`                       // generate, import or error
}

// CatalogConfig configures which classes are known and imported instead of generated
type CatalogConfig struct {
	Base  string   `mapstructure:"base" toml:"base"`   // Base catalog: uml or none
	Known []string `mapstructure:"known" toml:"known"` // Extra known class names
}

// DatabaseConfig configures the SQLite model database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// SourceConfig configures how remote model sources are fetched
type SourceConfig struct {
	TimeoutSeconds    int  `mapstructure:"timeout_seconds" toml:"timeout_seconds"`         // HTTP download timeout (default: 60)
	AllowPrivateHosts bool `mapstructure:"allow_private_hosts" toml:"allow_private_hosts"` // Permit loopback and private network URLs
}

// WatchConfig configures `mmgen generate --watch`
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"` // Quiet period before regenerating (default: 500)
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// Config file names
const (
	ProjectConfigFile = "mmgen.toml"
	UserConfigFile    = "am.toml"
	UserConfigDir     = ".mmgen"
	SystemConfigPath  = "/etc/mmgen/am.toml"
	EnvPrefix         = "MMGEN"
)
