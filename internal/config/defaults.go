package config

import (
	"slices"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/modorder/modorder.log"

	DefaultScanWorkers = 4
	DefaultScanHidden  = false

	DefaultCacheEnabled = true
	DefaultCachePath    = "~/.config/modorder/cache.db"
)

// DefaultSkipFiles lists packages that are never treated as mods.
var DefaultSkipFiles = []string{"ModFixer.pak"}

// DefaultBuiltinModules lists the modules the base game provides.
var DefaultBuiltinModules = []string{
	"28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8", // GustavDev
	"991c9c7a-fb80-40cb-8f0d-b92d4e80e9b1", // Gustav
	"ed539163-bb70-431b-96a7-f5b2eda5376b", // Shared
	"3d0c5ff8-c95d-c907-ff3e-34b204f1c630", // SharedDev
}

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Scan: ScanConfig{
			Workers:   DefaultScanWorkers,
			SkipFiles: slices.Clone(DefaultSkipFiles),
			Hidden:    DefaultScanHidden,
		},
		Resolve: ResolveConfig{
			BuiltinModules: slices.Clone(DefaultBuiltinModules),
		},
		Cache: CacheConfig{
			Enabled: DefaultCacheEnabled,
			Path:    DefaultCachePath,
		},
	}
}

// setDefaults registers all default configuration values with a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("mods_path", "")
	v.SetDefault("profile_path", "")

	v.SetDefault("scan.workers", DefaultScanWorkers)
	v.SetDefault("scan.skip_files", DefaultSkipFiles)
	v.SetDefault("scan.hidden", DefaultScanHidden)

	v.SetDefault("resolve.builtin_modules", DefaultBuiltinModules)

	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.path", DefaultCachePath)

	v.SetDefault("metrics.textfile", "")
}
