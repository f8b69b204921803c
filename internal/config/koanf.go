// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/audit-analytics/config.yaml",
	"/etc/audit-analytics/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:            "",
			PageSize:           500,
			MaxPages:           50,
			IncludeUxSummary:   true,
			Normalize:          true,
			Timeout:            30 * time.Second,
			RequestsPerSecond:  5,
			Burst:              1,
			MaxRetries:         3,
			BreakerEnabled:     true,
			BreakerMaxFailures: 5,
			BreakerTimeout:     60 * time.Second,
		},
		Cache: CacheConfig{
			Backend:          "memory",
			Path:             "/data/audit-cache",
			TTL:              30 * time.Minute,
			RefreshDelay:     250 * time.Millisecond,
			MaxEntries:       256,
			LastResponseWins: false,
		},
		Analytics: AnalyticsConfig{
			Timezone:         "UTC",
			DefaultRangeDays: 7,
			MaxRangeDays:     365,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Warmer: WarmerConfig{
			Enabled:     false,
			Interval:    15 * time.Minute,
			Orgs:        []string{},
			RangeDays:   7,
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns the built-in defaults without reading a file or the
// environment.
func Default() *Config {
	return defaultConfig()
}

// Load reads defaults, the config file (if any) and the environment, then
// validates the result.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths accept comma separated strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"warmer.orgs",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0, 4)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config paths.
var envMappings = map[string]string{
	// Event source
	"source_base_url":            "source.base_url",
	"source_page_size":           "source.page_size",
	"source_max_pages":           "source.max_pages",
	"source_include_ux_summary":  "source.include_ux_summary",
	"source_normalize":           "source.normalize",
	"source_timeout":             "source.timeout",
	"source_requests_per_second": "source.requests_per_second",
	"source_burst":               "source.burst",
	"source_max_retries":         "source.max_retries",
	"source_breaker_enabled":     "source.breaker_enabled",
	"source_breaker_failures":    "source.breaker_max_failures",
	"source_breaker_timeout":     "source.breaker_timeout",

	// Cache
	"cache_backend":            "cache.backend",
	"cache_path":               "cache.path",
	"cache_ttl":                "cache.ttl",
	"cache_refresh_delay":      "cache.refresh_delay",
	"cache_max_entries":        "cache.max_entries",
	"cache_last_response_wins": "cache.last_response_wins",

	// Analytics
	"analytics_timezone":           "analytics.timezone",
	"analytics_default_range_days": "analytics.default_range_days",
	"analytics_max_range_days":     "analytics.max_range_days",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Warmer
	"warmer_enabled":     "warmer.enabled",
	"warmer_interval":    "warmer.interval",
	"warmer_orgs":        "warmer.orgs",
	"warmer_range_days":  "warmer.range_days",
	"warmer_concurrency": "warmer.concurrency",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns "" for unmapped variables so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
