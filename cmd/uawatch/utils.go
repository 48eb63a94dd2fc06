package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pevans/uawatch/config"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration from environment variable or returns default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// fatalf prints an error and exits with status 1.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadSettings resolves the built-in settings overlaid with the settings
// file named by UAWATCH_CONFIG, or ~/.uawatch/config.yaml.
func loadSettings() (config.Settings, error) {
	var (
		cfg *config.FileConfig
		err error
	)
	if path := os.Getenv("UAWATCH_CONFIG"); path != "" {
		cfg, err = config.LoadConfigFileFrom(path)
	} else {
		cfg, err = config.LoadConfigFile()
	}
	if err != nil {
		return config.Settings{}, err
	}

	return config.DefaultSettings().Apply(cfg)
}
