// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package classify

import "github.com/MagenSec/audit-analytics/internal/models"

// LoginOutcome is the result bucket used by the login chart.
type LoginOutcome string

const (
	LoginSuccess LoginOutcome = "Success"
	LoginFailure LoginOutcome = "Failure"
)

var (
	loginKeywords        = []string{"login", "logon", "signin", "authenticat"}
	loginFailureKeywords = []string{"fail", "denied", "invalid", "reject", "error", "locked", "blocked"}
)

// IsLoginEvent reports whether the event records a sign-in attempt.
func IsLoginEvent(e *models.AuditEvent) bool {
	return containsAny(normalize(e.EventType)+"|"+normalize(e.SubType), loginKeywords...)
}

// OutcomeOf classifies a login event by substring match on its name and subtype.
// Anything without a failure marker counts as a success.
func OutcomeOf(e *models.AuditEvent) LoginOutcome {
	if containsAny(normalize(e.EventType)+"|"+normalize(e.SubType), loginFailureKeywords...) {
		return LoginFailure
	}
	return LoginSuccess
}
