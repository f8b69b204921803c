// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package classify

import "github.com/MagenSec/audit-analytics/internal/models"

const (
	DefaultIcon  = "activity"
	DefaultColor = "#6c757d"
)

var iconsByName = map[string]string{
	"DeviceRegistered":    "device-desktop-plus",
	"DeviceBlocked":       "device-desktop-off",
	"DeviceUnblocked":     "device-desktop-check",
	"DeviceDeleted":       "device-desktop-x",
	"DeviceHeartbeat":     "heartbeat",
	"OrgCreated":          "building-plus",
	"OrgMemberAdded":      "user-plus",
	"OrgMemberRemoved":    "user-minus",
	"OrgMemberRoleChange": "user-cog",
	"LoginSuccess":        "login",
	"LoginFailed":         "lock-exclamation",
	"Logout":              "logout",
	"LicenseExpired":      "license-off",
	"CreditsLow":          "coin-off",
	"WelcomeEmail":        "mail-heart",
}

var iconsByBaseType = map[string]string{
	"Device":          "device-desktop",
	"Org":             "building",
	"Login":           "login",
	"Auth":            "shield-lock",
	"License":         "license",
	"Credit":          "coin",
	"Config":          "settings",
	"ResponseCommand": "terminal-2",
	"Notification":    "bell",
	"Email":           "mail",
	"Cron":            "clock",
	"Report":          "report",
}

var colorsByName = map[string]string{
	"DeviceRegistered": "#2fb344",
	"DeviceBlocked":    "#d63939",
	"DeviceUnblocked":  "#74b816",
	"DeviceDeleted":    "#ae3ec9",
	"LoginSuccess":     "#2fb344",
	"LoginFailed":      "#d63939",
	"LicenseExpired":   "#f76707",
	"CreditsLow":       "#f59f00",
}

var colorsByBaseType = map[string]string{
	"Device":          "#206bc4",
	"Org":             "#4263eb",
	"Login":           "#0ca678",
	"Auth":            "#17a2b8",
	"License":         "#f76707",
	"Credit":          "#f59f00",
	"Config":          "#6574cd",
	"ResponseCommand": "#d6336c",
	"Notification":    "#ae3ec9",
	"Email":           "#ae3ec9",
	"Cron":            "#868e96",
}

// IconFor returns the icon name for the event: exact event name first, then
// base type, then DefaultIcon.
func IconFor(e *models.AuditEvent) string {
	return lookup(e, iconsByName, iconsByBaseType, DefaultIcon)
}

// ColorFor returns the display color for the event, resolved like IconFor.
func ColorFor(e *models.AuditEvent) string {
	return lookup(e, colorsByName, colorsByBaseType, DefaultColor)
}

func lookup(e *models.AuditEvent, byName, byBase map[string]string, def string) string {
	if v, ok := byName[e.EventType]; ok {
		return v
	}
	if v, ok := byBase[BaseType(e)]; ok {
		return v
	}
	return def
}
