// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the process needs to wire its components. All
// values come from the environment; the entry point owns the lifecycle of
// the handles built from them.
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string

	// FieldSecret keys the decryption of protected justification fields.
	FieldSecret string
}

// Load reads configuration from environment variables.
// PORT defaults to 8080; everything else is required.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        8080,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		FieldSecret: os.Getenv("FIELD_ENCRYPTION_SECRET"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	if c.FieldSecret == "" {
		return fmt.Errorf("config error: FIELD_ENCRYPTION_SECRET is required")
	}
	return nil
}
