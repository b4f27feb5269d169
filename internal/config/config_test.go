package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every mapped variable so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envMappings {
		name = strings.ToUpper(name)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv(PathEnvVar, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "lite", cfg.LLM.ModelTier)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.TranslationEnabled())
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  port: 9090
  cors_origins:
    - https://atelier.example.com
cache:
  enabled: true
  dir: /tmp/recipes
  ttl: 2h
llm:
  language: fr
  api_key: from-file
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://atelier.example.com"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/recipes", cfg.Cache.Dir)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.TranslationEnabled())
	// untouched sections keep defaults
	assert.Equal(t, 120, cfg.RateLimit.RecipeLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "server:\n  port: 9090\n")

	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://localhost/fragrance")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RATE_LIMIT_RECIPE_WINDOW", "30s")
	t.Setenv("LLM_MODEL", "gemini-2.5-flash-001")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/fragrance", cfg.Database.URL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.RecipeWindow)
	assert.Equal(t, "gemini-2.5-flash-001", cfg.LLM.Model)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "logging:\n  format: console\n")
	t.Setenv(PathEnvVar, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "server: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }, "timeouts"},
		{"cache without dir", func(c *Config) { c.Cache.Enabled = true; c.Cache.Dir = " " }, "cache.dir"},
		{"disabled cache without dir", func(c *Config) { c.Cache.Dir = "" }, ""},
		{"unknown tier", func(c *Config) { c.LLM.ModelTier = "huge" }, "llm.model_tier"},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"uppercase level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"zero recipe limit", func(c *Config) { c.RateLimit.RecipeLimit = 0 }, "rate limits"},
		{"zero limit when disabled", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.RecipeLimit = 0
		}, ""},
		{"zero window", func(c *Config) { c.RateLimit.DefaultWindow = 0 }, "windows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTranslationEnabled(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.TranslationEnabled())

	cfg.LLM.Language = "ja"
	assert.False(t, cfg.TranslationEnabled())

	cfg.LLM.APIKey = "key"
	assert.True(t, cfg.TranslationEnabled())
}
