package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/fragrance-customizer/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket survives cleanup. Defaults to an hour.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromConfig builds the limiter configuration from the application config.
func FromConfig(cfg config.RateLimitConfig) *Config {
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    cfg.DefaultLimit,
		DefaultWindow:   cfg.DefaultWindow,
		CleanupInterval: cfg.CleanupInterval,
		Whitelist:       parseIPList(cfg.Whitelist),
		Blacklist:       parseIPList(cfg.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(cfg),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Recipe
// generation is the only expensive call; everything else uses the default.
func DefaultEndpointConfigs(cfg config.RateLimitConfig) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/recipes", Method: http.MethodPost, Limit: cfg.RecipeLimit, Window: cfg.RecipeWindow, Burst: cfg.RecipeBurst},

		// Probes and scrapes are never limited
		{Path: "/health", Method: http.MethodGet},
		{Path: "/metrics", Method: http.MethodGet},
	}
}

// parseIPList turns a list of addresses into a lookup set, ignoring blanks.
func parseIPList(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
