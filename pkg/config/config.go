// Package config provides configuration loading and validation for the gas oracle.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file. Environment variables referenced
// as ${VAR} in the file are expanded before parsing, which is how provider
// endpoints and API keys are supplied.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}
	if cfg.Server.CacheTTL.ToDuration() == 0 {
		cfg.Server.CacheTTL = Duration(12 * 1e9) // 12 seconds, roughly one block
	}
	if cfg.Server.CollectTimeout.ToDuration() == 0 {
		cfg.Server.CollectTimeout = Duration(10 * 1e9) // 10 seconds
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// GetString retrieves a string value from the provider configuration.
func (pc *ProviderConfig) GetString(key, defaultValue string) string {
	if val, ok := pc.Config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// HasEndpoint reports whether the provider has a non-empty endpoint after
// environment expansion. Providers without one are skipped, not rejected.
func (pc *ProviderConfig) HasEndpoint() bool {
	return strings.TrimSpace(pc.GetString("endpoint", "")) != ""
}

// EnabledProviders returns the configured providers that are enabled and
// have a usable endpoint.
func (c *Config) EnabledProviders() []ProviderConfig {
	result := make([]ProviderConfig, 0, len(c.Providers))
	for _, pc := range c.Providers {
		if pc.Enabled && pc.HasEndpoint() {
			result = append(result, pc)
		}
	}
	return result
}
