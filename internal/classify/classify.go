// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package classify

import (
	"strings"

	"github.com/MagenSec/audit-analytics/internal/models"
)

const (
	// UnknownType is returned for events without an eventType.
	UnknownType = "Unknown"

	keySeparator   = ":"
	labelSeparator = " • "
)

// BaseType returns the part of eventType before the first ':'.
func BaseType(e *models.AuditEvent) string {
	t := strings.TrimSpace(e.EventType)
	if i := strings.Index(t, keySeparator); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "" {
		return UnknownType
	}
	return t
}

// TypeKey returns eventType, or eventType + ":" + subType when a subtype is set.
func TypeKey(e *models.AuditEvent) string {
	return join(e, keySeparator)
}

// TypeLabel is the display form of TypeKey, using " • " as separator.
func TypeLabel(e *models.AuditEvent) string {
	return join(e, labelSeparator)
}

func join(e *models.AuditEvent, sep string) string {
	t := strings.TrimSpace(e.EventType)
	if t == "" {
		t = UnknownType
	}
	sub := strings.TrimSpace(e.SubType)
	if sub == "" {
		return t
	}
	return t + sep + sub
}

// Classify annotates an event with all derived classification fields.
// The input event is copied, not modified.
func Classify(e *models.AuditEvent) models.ClassifiedEvent {
	ce := models.ClassifiedEvent{
		AuditEvent:     *e,
		TypeKey:        TypeKey(e),
		TypeLabel:      TypeLabel(e),
		BaseType:       BaseType(e),
		Icon:           IconFor(e),
		Color:          ColorFor(e),
		IsNotification: IsNotificationEvent(e),
	}
	if cat, ok := LifecycleCategory(e); ok {
		ce.LifecycleCategory = string(cat)
	}
	return ce
}

// ClassifyAll classifies a slice of events, preserving order.
func ClassifyAll(events []models.AuditEvent) []models.ClassifiedEvent {
	out := make([]models.ClassifiedEvent, len(events))
	for i := range events {
		out[i] = Classify(&events[i])
	}
	return out
}

// normalize lowercases s and drops everything that is not a letter or digit,
// so "Credits_Low", "credits-low" and "CreditsLow" all compare equal.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
