// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	validCacheBackends = map[string]bool{"memory": true, "badger": true}
	validLogLevels     = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats    = map[string]bool{"json": true, "console": true}
)

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.validateSource()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, c.validateAnalytics()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateWarmer()...)
	errs = append(errs, c.validateLogging()...)
	return errors.Join(errs...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func (c *Config) validateSource() []error {
	var errs []error
	s := &c.Source
	if s.BaseURL != "" {
		if err := validateBaseURL(s.BaseURL); err != nil {
			errs = append(errs, invalid("SOURCE_BASE_URL: %v", err))
		}
	}
	if s.PageSize < 1 || s.PageSize > 5000 {
		errs = append(errs, invalid("SOURCE_PAGE_SIZE must be between 1 and 5000, got %d", s.PageSize))
	}
	if s.MaxPages < 1 {
		errs = append(errs, invalid("SOURCE_MAX_PAGES must be at least 1, got %d", s.MaxPages))
	}
	if s.Timeout <= 0 {
		errs = append(errs, invalid("SOURCE_TIMEOUT must be positive"))
	}
	if s.RequestsPerSecond < 0 {
		errs = append(errs, invalid("SOURCE_REQUESTS_PER_SECOND must not be negative"))
	}
	if s.MaxRetries < 0 {
		errs = append(errs, invalid("SOURCE_MAX_RETRIES must not be negative"))
	}
	if s.BreakerEnabled && s.BreakerMaxFailures == 0 {
		errs = append(errs, invalid("SOURCE_BREAKER_FAILURES must be at least 1 when the breaker is enabled"))
	}
	return errs
}

func (c *Config) validateCache() []error {
	var errs []error
	cc := &c.Cache
	if !validCacheBackends[cc.Backend] {
		errs = append(errs, invalid("CACHE_BACKEND must be one of: memory, badger (got %q)", cc.Backend))
	}
	if cc.Backend == "badger" && strings.TrimSpace(cc.Path) == "" {
		errs = append(errs, invalid("CACHE_PATH is required for the badger backend"))
	}
	if cc.TTL <= 0 {
		errs = append(errs, invalid("CACHE_TTL must be positive"))
	}
	if cc.RefreshDelay < 0 {
		errs = append(errs, invalid("CACHE_REFRESH_DELAY must not be negative"))
	}
	if cc.Backend == "memory" && cc.MaxEntries < 1 {
		errs = append(errs, invalid("CACHE_MAX_ENTRIES must be at least 1"))
	}
	return errs
}

func (c *Config) validateAnalytics() []error {
	var errs []error
	a := &c.Analytics
	if _, err := a.Location(); err != nil {
		errs = append(errs, invalid("ANALYTICS_TIMEZONE: %v", err))
	}
	if a.MaxRangeDays < 1 {
		errs = append(errs, invalid("ANALYTICS_MAX_RANGE_DAYS must be at least 1"))
	}
	if a.DefaultRangeDays < 1 || a.DefaultRangeDays > a.MaxRangeDays {
		errs = append(errs, invalid("ANALYTICS_DEFAULT_RANGE_DAYS must be between 1 and %d", a.MaxRangeDays))
	}
	return errs
}

func (c *Config) validateServer() []error {
	var errs []error
	s := &c.Server
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, invalid("HTTP_PORT must be between 1 and 65535, got %d", s.Port))
	}
	if s.Timeout <= 0 {
		errs = append(errs, invalid("HTTP_TIMEOUT must be positive"))
	}
	if !s.RateLimitDisabled {
		if s.RateLimitReqs < 1 {
			errs = append(errs, invalid("RATE_LIMIT_REQUESTS must be at least 1"))
		}
		if s.RateLimitWindow < time.Second {
			errs = append(errs, invalid("RATE_LIMIT_WINDOW must be at least 1s"))
		}
	}
	return errs
}

func (c *Config) validateWarmer() []error {
	w := &c.Warmer
	if !w.Enabled {
		return nil
	}
	var errs []error
	if c.Source.BaseURL == "" {
		errs = append(errs, invalid("SOURCE_BASE_URL is required when WARMER_ENABLED=true"))
	}
	if len(w.Orgs) == 0 {
		errs = append(errs, invalid("WARMER_ORGS is required when WARMER_ENABLED=true"))
	}
	if w.Interval < time.Minute {
		errs = append(errs, invalid("WARMER_INTERVAL must be at least 1m"))
	}
	if w.RangeDays < 1 || w.RangeDays > c.Analytics.MaxRangeDays {
		errs = append(errs, invalid("WARMER_RANGE_DAYS must be between 1 and %d", c.Analytics.MaxRangeDays))
	}
	if w.Concurrency < 1 {
		errs = append(errs, invalid("WARMER_CONCURRENCY must be at least 1"))
	}
	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	if !validLogLevels[c.Logging.Level] {
		errs = append(errs, invalid("LOG_LEVEL must be one of: trace, debug, info, warn, error"))
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		errs = append(errs, invalid("LOG_FORMAT must be one of: json, console"))
	}
	return errs
}

// validateBaseURL accepts http(s) URLs with a host and an optional path
// prefix, but no query or fragment.
func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("must not contain a query or fragment")
	}
	return nil
}
