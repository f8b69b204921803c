// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/metrics"
	"github.com/MagenSec/audit-analytics/internal/models"
)

var (
	// ErrNoBaseURL is returned by NewClient when no source URL is configured.
	ErrNoBaseURL = errors.New("source base URL is not configured")

	// ErrSourceStatus is wrapped by StatusError.
	ErrSourceStatus = errors.New("audit source returned an error status")

	// ErrRateLimited is returned when HTTP 429 persists after all retries.
	ErrRateLimited = errors.New("audit source rate limit exceeded")
)

// maxErrorBodySize limits how much of an error response is read.
const maxErrorBodySize = 64 * 1024

// StatusError describes a non-200 response from the source.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("audit source returned HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrSourceStatus }

// readBodyForError reads at most maxErrorBodySize bytes of r.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// PageFetcher fetches one page of audit events. An empty token requests the
// first page.
type PageFetcher interface {
	FetchPage(ctx context.Context, orgID string, days int, token string) (*models.EventPage, error)
}

// Client talks to the audit endpoint. Safe for concurrent use.
type Client struct {
	baseURL          string
	http             *http.Client
	limiter          *rate.Limiter
	pageSize         int
	includeUxSummary bool
	normalize        bool
	maxRetries       int
	retryBaseDelay   time.Duration
}

// NewClient builds a Client from the source configuration.
func NewClient(cfg *config.SourceConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}

	c := &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		http:             &http.Client{Timeout: cfg.Timeout},
		pageSize:         cfg.PageSize,
		includeUxSummary: cfg.IncludeUxSummary,
		normalize:        cfg.Normalize,
		maxRetries:       cfg.MaxRetries,
		retryBaseDelay:   time.Second,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

// pageURL builds the request URL for one page.
func (c *Client) pageURL(orgID string, days int, token string) string {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	q.Set("days", strconv.Itoa(days))
	q.Set("includeUxSummary", strconv.FormatBool(c.includeUxSummary))
	q.Set("normalize", strconv.FormatBool(c.normalize))
	if token != "" {
		q.Set("pageToken", token)
	}
	return fmt.Sprintf("%s/orgs/%s/audit?%s", c.baseURL, url.PathEscape(orgID), q.Encode())
}

// FetchPage requests a single page.
func (c *Client) FetchPage(ctx context.Context, orgID string, days int, token string) (*models.EventPage, error) {
	start := time.Now()

	resp, err := c.doRequestWithRateLimit(ctx, c.pageURL(orgID, days, token))
	if err != nil {
		result := "error"
		if errors.Is(err, ErrRateLimited) {
			result = "rate_limited"
		}
		metrics.RecordPageRequest(result, time.Since(start))
		return nil, fmt.Errorf("failed to fetch audit page for org %s: %w", orgID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordPageRequest("error", time.Since(start))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}

	var page models.EventPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		metrics.RecordPageRequest("error", time.Since(start))
		return nil, fmt.Errorf("failed to decode audit page: %w", err)
	}

	metrics.RecordPageRequest("success", time.Since(start))
	return &page, nil
}

// doRequestWithRateLimit performs a GET, retrying HTTP 429 with exponential
// backoff (1s, 2s, 4s, ...) or the server's Retry-After. Waits honor ctx.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w after %d retries (HTTP 429)", ErrRateLimited, c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			delay = d
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP-date (RFC 9110).
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
