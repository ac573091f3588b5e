package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// DOCEXPORT_SERVER_HTTP_PORT overrides server.http_port.
const envPrefix = "DOCEXPORT"

// newViper returns a viper instance with defaults and env binding applied.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigType("yaml")

	// Setup environment variable support
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setViperDefaults(v)

	return v
}

// Load reads and returns the typed configuration.
// It searches for configuration files in priority order:
//  1. Directory specified by DOCEXPORT_CONFIG_DIR environment variable
//  2. ~/.config/docexport/
//  3. Current working directory (.)
//
// If no config file is found, defaults (plus environment overrides) are used
// and the returned path is empty.
func Load() (*Config, string, error) {
	v := newViper()
	v.SetConfigName("config")

	if envPath := os.Getenv(envPrefix + "_CONFIG_DIR"); envPath != "" {
		v.AddConfigPath(envPath)
	}

	if dir := ConfigDir(); dir != "" {
		v.AddConfigPath(dir)
	}

	v.AddConfigPath(".")

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config; %w", err)
		}
	}

	cfg, err := unmarshalConfig(v)
	if err != nil {
		return nil, "", err
	}

	return cfg, v.ConfigFileUsed(), nil
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
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
