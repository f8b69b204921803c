// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package classify

import (
	"strings"
	"unicode"
)

// Humanize turns identifiers into display text: underscores become spaces,
// camelCase is split ("MemberAdded" -> "Member Added", "USBDevice" -> "USB Device")
// and runs of whitespace are collapsed.
func Humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
