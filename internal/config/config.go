package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable override, e.g. MODORDER_SCAN_WORKERS.
	EnvPrefix = "MODORDER"
	// EnvConfigDir names the variable that overrides the config directory.
	EnvConfigDir = EnvPrefix + "_CONFIG_DIR"
)

var (
	// configFilePath stores the path to the loaded config file
	configFilePath string

	mu      sync.RWMutex
	current *Config
)

// Init initializes the configuration subsystem.
// It searches for configuration files in priority order:
//  1. Directory specified by MODORDER_CONFIG_DIR environment variable
//  2. ~/.config/modorder/
//  3. Current working directory (.)
//
// If no config file is found, defaults are used.
// If a config file exists but is invalid or unreadable, Init returns an error.
func Init() error {
	v := viper.GetViper()
	configure(v)
	for _, p := range searchPaths() {
		v.AddConfigPath(p)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config; %w", err)
		}
		configFilePath = ""
	} else {
		configFilePath = v.ConfigFileUsed()
	}

	cfg, err := unmarshalConfig(v)
	if err != nil {
		return err
	}

	mu.Lock()
	current = cfg
	mu.Unlock()

	slog.Debug("config initialized", "file", configFilePath)
	return nil
}

// Get returns the configuration loaded by Init, or the defaults when Init has not run.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		cfg := NewDefaultConfig()
		return &cfg
	}
	return current
}

// ConfigFilePath returns the path to the loaded config file,
// or an empty string if no config file was found.
func ConfigFilePath() string {
	return configFilePath
}

// Reset clears all configuration state. Used by tests.
func Reset() {
	viper.Reset()
	configFilePath = ""

	mu.Lock()
	current = nil
	mu.Unlock()
}

// GetString returns the string value for the given key.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns the integer value for the given key.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns the boolean value for the given key.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set overrides the value for the given key.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetPath returns the string value for the given key with ~ expanded to $HOME.
func GetPath(key string) string {
	return ExpandPath(viper.GetString(key))
}

// ExpandPath expands a leading ~ in path to the user's home directory.
// Only "~" alone and "~/..." are expanded; "~user" is returned unchanged, as is any
// path when the home directory cannot be determined.
func ExpandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	if len(path) > 1 && path[1] != '/' {
		return path
	}

	home := resolveHomeDir()
	if home == "" {
		return path
	}

	if len(path) == 1 {
		return home
	}

	return filepath.Join(home, path[2:])
}

// GetConfigPath returns the path where the config file should be located.
// If a config file is loaded, returns its path. Otherwise returns the default path.
func GetConfigPath() string {
	if configFilePath != "" {
		return configFilePath
	}
	return DefaultConfigPath()
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir := ConfigDir()
	if dir == "" {
		return fmt.Errorf("failed to determine config directory; home directory unknown")
	}
	return os.MkdirAll(dir, 0700)
}

// GetAllSettings returns all configuration settings as a map.
func GetAllSettings() map[string]any {
	return viper.AllSettings()
}

// configure applies the config name, environment binding and defaults shared by every
// viper instance this package creates.
func configure(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
}

// searchPaths lists the config directories in priority order.
func searchPaths() []string {
	var paths []string
	if envPath := os.Getenv(EnvConfigDir); envPath != "" {
		paths = append(paths, envPath)
	}
	if home := resolveHomeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "modorder"))
	}
	return append(paths, ".")
}
