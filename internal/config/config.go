package config

import (
	"log/slog"
	"sync"
)

var (
	mu             sync.RWMutex
	current        *Config
	configFilePath string
)

// Init loads the configuration and makes it available through Get.
// A missing config file is not an error; an invalid one is.
func Init() error {
	cfg, path, err := Load()
	if err != nil {
		return err
	}

	mu.Lock()
	current = cfg
	configFilePath = path
	mu.Unlock()

	if path != "" {
		slog.Info("config initialized", "file", path)
	}

	return nil
}

// Get returns the loaded configuration. If Init has not been called, or
// has failed, Get returns the defaults.
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
// or empty string if using defaults only.
func ConfigFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	return configFilePath
}

// Reset clears the configuration state for testing purposes.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
	configFilePath = ""
}
