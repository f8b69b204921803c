// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Source    SourceConfig    `koanf:"source"`
	Cache     CacheConfig     `koanf:"cache"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Server    ServerConfig    `koanf:"server"`
	Warmer    WarmerConfig    `koanf:"warmer"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// SourceConfig describes the paginated audit event endpoint.
type SourceConfig struct {
	// BaseURL is the API root; requests go to {BaseURL}/orgs/{orgId}/audit.
	BaseURL string `koanf:"base_url"`

	PageSize         int           `koanf:"page_size"`
	MaxPages         int           `koanf:"max_pages"`
	IncludeUxSummary bool          `koanf:"include_ux_summary"`
	Normalize        bool          `koanf:"normalize"`
	Timeout          time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces outgoing page requests. 0 disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// MaxRetries bounds retries of a single page after HTTP 429.
	MaxRetries int `koanf:"max_retries"`

	BreakerEnabled     bool          `koanf:"breaker_enabled"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// CacheConfig controls the stale-while-revalidate cache.
type CacheConfig struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend"`

	// Path is the badger directory. Ignored for the memory backend.
	Path string `koanf:"path"`

	// TTL separates fresh from stale entries. Stale entries are still served.
	TTL time.Duration `koanf:"ttl"`

	// RefreshDelay is the pause between serving a cached batch and starting
	// its background refresh.
	RefreshDelay time.Duration `koanf:"refresh_delay"`

	// MaxEntries bounds the memory backend (least recently used evicted).
	MaxEntries int `koanf:"max_entries"`

	// LastResponseWins persists every completed fetch, even one that was
	// superseded by a newer load of the same key.
	LastResponseWins bool `koanf:"last_response_wins"`
}

// AnalyticsConfig controls day bucketing and default ranges.
type AnalyticsConfig struct {
	// Timezone is an IANA name; day buckets are computed in this zone.
	Timezone         string `koanf:"timezone"`
	DefaultRangeDays int    `koanf:"default_range_days"`
	MaxRangeDays     int    `koanf:"max_range_days"`
}

// Location resolves Timezone.
func (a *AnalyticsConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// WarmerConfig controls periodic cache warming for frequently viewed orgs.
type WarmerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Interval    time.Duration `koanf:"interval"`
	Orgs        []string      `koanf:"orgs"`
	RangeDays   int           `koanf:"range_days"`
	Concurrency int           `koanf:"concurrency"`
}

// LoggingConfig maps onto logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
