// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package classify

import (
	"strings"

	"github.com/MagenSec/audit-analytics/internal/models"
)

// Category is a lifecycle grouping bucket.
type Category string

const (
	CategoryDevice Category = "Device"
	CategoryOrg    Category = "Org"
)

// facts is the normalized view of an event that lifecycle rules match against.
type facts struct {
	name         string // normalized eventType
	targetType   string // normalized targetType
	notification bool
}

// Rule is one row of the lifecycle rule table. A matching rule either assigns
// Category or, when Exclude is set, removes the event from lifecycle grouping.
type Rule struct {
	Name     string
	Category Category
	Exclude  bool
	match    func(f facts) bool
}

// Matches reports whether the rule applies to the event.
func (r Rule) Matches(e *models.AuditEvent) bool {
	return r.match(factsOf(e))
}

// lifecycleRules is evaluated top to bottom; the first match wins and events
// matching no rule are excluded.
var lifecycleRules = []Rule{
	{Name: "notification", Exclude: true, match: func(f facts) bool {
		return f.notification
	}},
	{Name: "license", Exclude: true, match: func(f facts) bool {
		return strings.Contains(f.name, "license")
	}},
	{Name: "credit", Exclude: true, match: func(f facts) bool {
		return strings.Contains(f.name, "credit")
	}},
	{Name: "config", Exclude: true, match: func(f facts) bool {
		return strings.Contains(f.name, "config")
	}},
	{Name: "response-command", Exclude: true, match: func(f facts) bool {
		return strings.Contains(f.name, "responsecommand") ||
			(strings.Contains(f.name, "response") && strings.Contains(f.name, "command"))
	}},
	{Name: "device-name", Category: CategoryDevice, match: func(f facts) bool {
		return strings.Contains(f.name, "device")
	}},
	{Name: "device-target", Category: CategoryDevice, match: func(f facts) bool {
		return f.targetType == "device"
	}},
	{Name: "org-prefix", Category: CategoryOrg, match: func(f facts) bool {
		return strings.HasPrefix(f.name, "org") ||
			strings.HasPrefix(f.name, "personalorg") ||
			strings.HasPrefix(f.name, "orgmember")
	}},
	{Name: "org-membership", Category: CategoryOrg, match: func(f facts) bool {
		return strings.Contains(f.name, "member") && containsAny(f.name, "add", "remov", "role")
	}},
	{Name: "org-target", Category: CategoryOrg, match: func(f facts) bool {
		return (f.targetType == "org" || f.targetType == "organization") && strings.Contains(f.name, "org")
	}},
}

// Rules returns a copy of the ordered lifecycle rule table.
func Rules() []Rule {
	out := make([]Rule, len(lifecycleRules))
	copy(out, lifecycleRules)
	return out
}

func factsOf(e *models.AuditEvent) facts {
	return facts{
		name:         normalize(e.EventType),
		targetType:   normalize(e.TargetType),
		notification: IsNotificationEvent(e),
	}
}

// MatchingRule returns the first rule that applies to the event.
func MatchingRule(e *models.AuditEvent) (Rule, bool) {
	f := factsOf(e)
	for _, r := range lifecycleRules {
		if r.match(f) {
			return r, true
		}
	}
	return Rule{}, false
}

// LifecycleCategory returns the lifecycle category of the event, or false when
// the event is excluded from lifecycle grouping.
func LifecycleCategory(e *models.AuditEvent) (Category, bool) {
	r, ok := MatchingRule(e)
	if !ok || r.Exclude {
		return "", false
	}
	return r.Category, true
}

// categoryPrefixes are stripped from event names when deriving a subtype.
// Longer prefixes come first.
var categoryPrefixes = map[Category][]string{
	CategoryDevice: {"device"},
	CategoryOrg:    {"personalorg", "organization", "org"},
}

var subTypeMetadataKeys = []string{"subType", "subtype", "sub_type"}

// LifecycleSubType derives a human readable subtype for a lifecycle event:
//  1. the explicit subType (field or metadata), humanized
//  2. the event name with the category prefix stripped
//  3. metadata "eventType", humanized
//  4. ""
func LifecycleSubType(e *models.AuditEvent, category Category) string {
	if s := Humanize(e.SubType); s != "" {
		return s
	}
	for _, k := range subTypeMetadataKeys {
		if s := Humanize(e.MetadataString(k)); s != "" {
			return s
		}
	}

	name := strings.TrimSpace(e.EventType)
	lower := strings.ToLower(name)
	for _, p := range categoryPrefixes[category] {
		if !strings.HasPrefix(lower, p) {
			continue
		}
		rest := strings.TrimLeft(name[len(p):], ":._- ")
		if s := Humanize(rest); s != "" {
			return s
		}
		break
	}

	return Humanize(e.MetadataString("eventType"))
}
