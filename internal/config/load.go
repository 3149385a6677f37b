package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrNoConfigFile is returned by Load when no config file exists in any search path.
var ErrNoConfigFile = errors.New("no config file found; run 'modorder config init' to create one")

// Load reads and returns the typed configuration from the first config file found in
// the search paths used by Init. Unlike Init it requires a config file to exist.
func Load() (*Config, error) {
	v := viper.New()
	configure(v)
	for _, p := range searchPaths() {
		v.AddConfigPath(p)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrNoConfigFile
		}
		return nil, fmt.Errorf("failed to read config; %w", err)
	}

	return unmarshalConfig(v)
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	configure(v)
	v.SetConfigFile(ExpandPath(path))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s; %w", path, err)
	}

	return unmarshalConfig(v)
}

// unmarshalConfig converts viper config to typed Config struct.
func unmarshalConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config; %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
