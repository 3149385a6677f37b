package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ConfigDir returns the config directory: MODORDER_CONFIG_DIR when set, otherwise
// ~/.config/modorder.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home := resolveHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "modorder")
}

// ConfigExists returns true if the config file exists at the default path.
func ConfigExists() bool {
	return ConfigExistsAt(DefaultConfigPath())
}

// ConfigExistsAt returns true if a config file exists at the specified path.
func ConfigExistsAt(path string) bool {
	_, err := os.Stat(ExpandPath(path))
	return err == nil
}

func resolveHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
