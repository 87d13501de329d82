package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:        8080,
		DatabaseURL: "postgres://localhost/insights",
		APIKey:      "test-key",
		FieldSecret: "test-secret",
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insights")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FIELD_ENCRYPTION_SECRET", "test-secret")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/insights", cfg.DatabaseURL)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "test-secret", cfg.FieldSecret)
}

func TestLoad_DefaultPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insights")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FIELD_ENCRYPTION_SECRET", "test-secret")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/insights")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FIELD_ENCRYPTION_SECRET", "test-secret")
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestValidate_RequiredFields(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"DATABASE_URL":            func(c *Config) { c.DatabaseURL = "" },
		"GEMINI_API_KEY":          func(c *Config) { c.APIKey = "" },
		"FIELD_ENCRYPTION_SECRET": func(c *Config) { c.FieldSecret = "" },
	} {
		cfg := validConfig()
		mutate(cfg)
		err := cfg.Validate()
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), name)
	}
}

func TestValidate_PortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg.Port = 443
	assert.NoError(t, cfg.Validate())
}
