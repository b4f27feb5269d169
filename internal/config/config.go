// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full application configuration.
// Values are layered: struct defaults, then an optional YAML file, then environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	LLM       LLMConfig       `koanf:"llm"`
	Logging   LoggingConfig   `koanf:"logging"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig configures recipe run persistence. An empty URL disables the store.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// CacheConfig configures the on-disk recipe cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Dir     string        `koanf:"dir"`
	TTL     time.Duration `koanf:"ttl"`
}

// LLMConfig configures recipe translation. Translation is skipped when
// Language is empty or APIKey is unset.
type LLMConfig struct {
	APIKey      string        `koanf:"api_key"`
	ModelTier   string        `koanf:"model_tier"`
	Language    string        `koanf:"language"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxFailures uint32        `koanf:"max_failures"`
	// Model overrides the model name used for ModelTier.
	Model string `koanf:"model"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RateLimitConfig configures the token bucket limiter in front of the API.
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	DefaultLimit    int           `koanf:"default_limit"`
	DefaultWindow   time.Duration `koanf:"default_window"`
	RecipeLimit     int           `koanf:"recipe_limit"`
	RecipeWindow    time.Duration `koanf:"recipe_window"`
	RecipeBurst     int           `koanf:"recipe_burst"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	Whitelist       []string      `koanf:"whitelist"`
	Blacklist       []string      `koanf:"blacklist"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".cache/recipes",
			TTL:     24 * time.Hour,
		},
		LLM: LLMConfig{
			ModelTier:   "lite",
			Timeout:     30 * time.Second,
			MaxFailures: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			RecipeLimit:     120,
			RecipeWindow:    time.Minute,
			RecipeBurst:     20,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

var (
	validLogLevels  = []string{"trace", "debug", "info", "warn", "warning", "error", "disabled"}
	validLogFormats = []string{"json", "console"}
	validModelTiers = []string{"lite", "standard", "advanced"}
)

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("config error: server timeouts must be non-negative")
	}

	if c.Cache.Enabled {
		if strings.TrimSpace(c.Cache.Dir) == "" {
			return fmt.Errorf("config error: cache.dir is required when the cache is enabled")
		}
		if c.Cache.TTL < 0 {
			return fmt.Errorf("config error: cache.ttl must be non-negative")
		}
	}

	if !contains(validModelTiers, c.LLM.ModelTier) {
		return fmt.Errorf("config error: llm.model_tier must be one of %v, got %q", validModelTiers, c.LLM.ModelTier)
	}

	if !contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("config error: logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	if !contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("config error: logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit <= 0 || c.RateLimit.RecipeLimit <= 0 {
			return fmt.Errorf("config error: rate limits must be positive when rate limiting is enabled")
		}
		if c.RateLimit.DefaultWindow <= 0 || c.RateLimit.RecipeWindow <= 0 {
			return fmt.Errorf("config error: rate limit windows must be positive when rate limiting is enabled")
		}
	}

	return nil
}

// TranslationEnabled reports whether recipes should be translated.
func (c *Config) TranslationEnabled() bool {
	return c.LLM.Language != "" && c.LLM.APIKey != ""
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
