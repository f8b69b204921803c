// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/metrics"
	"github.com/MagenSec/audit-analytics/internal/models"
)

// DefaultMaxPages is the page cap used when none is configured.
const DefaultMaxPages = 50

// Paginator turns a PageFetcher into a whole-range fetcher.
type Paginator struct {
	Pages    PageFetcher
	MaxPages int
}

// NewPaginator returns a Paginator with the given cap (DefaultMaxPages if < 1).
func NewPaginator(pages PageFetcher, maxPages int) *Paginator {
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}
	return &Paginator{Pages: pages, MaxPages: maxPages}
}

// Fetch returns every event of the org's day range.
func (p *Paginator) Fetch(ctx context.Context, orgID string, days int) (*models.EventBatch, error) {
	return FetchAll(ctx, p.Pages, orgID, days, p.MaxPages)
}

// FetchAll walks continuation tokens until the source stops returning one
// or maxPages pages have been read. Pages are requested one at a time.
// Events are de-duplicated across pages, keeping the first occurrence, and
// the last non-empty uxSummary wins.
func FetchAll(ctx context.Context, pf PageFetcher, orgID string, days, maxPages int) (*models.EventBatch, error) {
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}

	start := time.Now()
	batch := &models.EventBatch{Events: []models.AuditEvent{}}
	seen := make(map[string]struct{})
	received, duplicates := 0, 0
	token := ""

	for {
		if batch.Pages >= maxPages {
			batch.Truncated = true
			logging.Warn().
				Str("org_id", orgID).
				Int("days", days).
				Int("max_pages", maxPages).
				Msg("audit pagination stopped at page cap")
			break
		}

		page, err := pf.FetchPage(ctx, orgID, days, token)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", batch.Pages+1, err)
		}
		batch.Pages++
		received += len(page.Events)

		for i := range page.Events {
			id := eventIdentity(&page.Events[i])
			if _, dup := seen[id]; dup {
				duplicates++
				continue
			}
			seen[id] = struct{}{}
			batch.Events = append(batch.Events, page.Events[i])
		}
		if len(page.UxSummary) > 0 && string(page.UxSummary) != "null" {
			batch.UxSummary = page.UxSummary
		}

		if page.ContinuationToken == "" {
			break
		}
		if page.ContinuationToken == token {
			logging.Warn().Str("org_id", orgID).Str("token", token).Msg("audit source repeated continuation token, stopping")
			break
		}
		token = page.ContinuationToken
	}

	metrics.RecordFetch(batch.Pages, received, duplicates, batch.Truncated)
	logging.Debug().
		Str("org_id", orgID).
		Int("days", days).
		Int("pages", batch.Pages).
		Int("events", len(batch.Events)).
		Int("duplicates", duplicates).
		Dur("duration", time.Since(start)).
		Msg("audit events fetched")

	return batch, nil
}

// eventIdentity is the de-duplication key: the event id, or a content hash
// for events without one.
func eventIdentity(e *models.AuditEvent) string {
	if e.ID != "" {
		return "id:" + e.ID
	}
	raw, err := json.Marshal(e)
	if err != nil {
		raw = []byte(e.EventType + "|" + e.SubType + "|" + e.Timestamp + "|" + e.PerformedBy + "|" + e.TargetID)
	}
	sum := sha256.Sum256(raw)
	return "sha:" + hex.EncodeToString(sum[:])
}
