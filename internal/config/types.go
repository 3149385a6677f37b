package config

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" mapstructure:"log_file"`
	// ModsPath is the directory holding the installed .pak files.
	ModsPath string `yaml:"mods_path" mapstructure:"mods_path"`
	// ProfilePath is the player profile directory that holds modsettings.lsx.
	ProfilePath string        `yaml:"profile_path" mapstructure:"profile_path"`
	Scan        ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Resolve     ResolveConfig `yaml:"resolve" mapstructure:"resolve"`
	Cache       CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Metrics     MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// ScanConfig controls package discovery and extraction.
type ScanConfig struct {
	Workers   int      `yaml:"workers" mapstructure:"workers"`
	SkipFiles []string `yaml:"skip_files,flow" mapstructure:"skip_files"`
	Hidden    bool     `yaml:"hidden" mapstructure:"hidden"`
}

// ResolveConfig controls load order computation.
type ResolveConfig struct {
	// BuiltinModules are module UUIDs shipped with the game. Dependencies on them are
	// never reported as missing.
	BuiltinModules []string `yaml:"builtin_modules" mapstructure:"builtin_modules"`
}

// CacheConfig holds the descriptor cache settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// Textfile is where metrics are written after each command, in the Prometheus
	// text format. Empty disables the export.
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}
