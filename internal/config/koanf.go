package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar names the environment variable that points at a YAML config file.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are searched, in order, when no explicit path is given.
var DefaultPaths = []string{"config.yaml", "config.yml"}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"port":                    "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":            "server.cors_origins",

	"database_url": "database.url",

	"cache_enabled": "cache.enabled",
	"cache_dir":     "cache.dir",
	"cache_ttl":     "cache.ttl",

	"gemini_api_key":     "llm.api_key",
	"llm_model_tier":     "llm.model_tier",
	"llm_model":          "llm.model",
	"translate_language": "llm.language",
	"llm_timeout":        "llm.timeout",
	"llm_max_failures":   "llm.max_failures",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"rate_limit_enabled":          "rate_limit.enabled",
	"rate_limit_default_limit":    "rate_limit.default_limit",
	"rate_limit_default_window":   "rate_limit.default_window",
	"rate_limit_recipe_limit":     "rate_limit.recipe_limit",
	"rate_limit_recipe_window":    "rate_limit.recipe_window",
	"rate_limit_recipe_burst":     "rate_limit.recipe_burst",
	"rate_limit_cleanup_interval": "rate_limit.cleanup_interval",
	"rate_limit_whitelist":        "rate_limit.whitelist",
	"rate_limit_blacklist":        "rate_limit.blacklist",
}

// sliceKeys are split on commas when they arrive as a single string.
var sliceKeys = []string{
	"server.cors_origins",
	"rate_limit.whitelist",
	"rate_limit.blacklist",
}

// Load builds the configuration from defaults, the YAML file at path (or the
// first file found via CONFIG_PATH and DefaultPaths when path is empty) and
// the environment, then validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitSliceKeys(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}
