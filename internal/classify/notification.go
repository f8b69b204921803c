// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package classify

import "github.com/MagenSec/audit-analytics/internal/models"

// notificationKeywords are matched as substrings of the normalized
// "name + metadata hint" text.
var notificationKeywords = []string{
	"email",
	"notification",
	"notify",
	"welcome",
	"creditslow",
	"licenseexpired",
	"licenseexpiringsoon",
	"expiring",
	"reminder",
	"digest",
}

// notificationHintKeys are the metadata fields consulted for a notification hint.
var notificationHintKeys = []string{"subType", "notificationType", "template"}

// IsNotificationEvent reports whether the event is an outbound notification
// (welcome mail, low-credit warning, license expiry reminder, ...).
func IsNotificationEvent(e *models.AuditEvent) bool {
	text := normalize(e.EventType) + "|" + normalize(notificationHint(e))
	return containsAny(text, notificationKeywords...)
}

func notificationHint(e *models.AuditEvent) string {
	hint := e.SubType
	for _, k := range notificationHintKeys {
		if v := e.MetadataString(k); v != "" {
			hint += " " + v
		}
	}
	return hint
}
