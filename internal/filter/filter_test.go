// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/MagenSec/audit-analytics/internal/models"
)

func sampleEvents() []models.AuditEvent {
	return []models.AuditEvent{
		{ID: "1", EventType: "DeviceRegistered", PerformedBy: "alice", TargetID: "dev-001", Timestamp: "2025-01-01T10:00:00Z", Description: "Registered laptop"},
		{ID: "2", EventType: "DeviceBlocked", SubType: "Admin", PerformedBy: "bob", Timestamp: "2025-01-02T23:59:59.500Z"},
		{ID: "3", EventType: "UserLogin", SubType: "Failed", Timestamp: "2025-01-03T00:00:00Z"},
		{ID: "4", EventType: "OrgCreated", PerformedBy: "alice", Timestamp: "not-a-date", Description: "Created ACME"},
		{ID: "5", EventType: "DeviceBlocked", PerformedBy: "carol", Timestamp: "2025-01-02T08:15:00Z", TargetID: "DEV-777"},
	}
}

func ids(events []models.AuditEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestApply_Identity(t *testing.T) {
	events := sampleEvents()
	tests := []struct {
		name    string
		filters models.Filters
	}{
		{"zero value", models.Filters{}},
		{"all keyword", models.Filters{EventType: "all"}},
		{"all mixed case", models.Filters{EventType: "All", Search: "   "}},
		{"unparseable dates ignored", models.Filters{EventType: "all", DateFrom: "yesterday", DateTo: "2025-13-45"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(events, tt.filters, time.UTC)
			if !reflect.DeepEqual(got, events) {
				t.Errorf("Apply() = %v, want input unchanged", ids(got))
			}
		})
	}
}

func TestApply(t *testing.T) {
	events := sampleEvents()
	tests := []struct {
		name    string
		filters models.Filters
		want    []string
	}{
		{"type key exact", models.Filters{EventType: "DeviceBlocked:Admin"}, []string{"2"}},
		{"base type matches subtyped events", models.Filters{EventType: "DeviceBlocked"}, []string{"2", "5"}},
		{"type is case sensitive", models.Filters{EventType: "deviceblocked"}, []string{}},
		{"search description", models.Filters{Search: "LAPTOP"}, []string{"1"}},
		{"search actor", models.Filters{Search: "alice"}, []string{"1", "4"}},
		{"search target id", models.Filters{Search: "dev-777"}, []string{"5"}},
		{"search subtype", models.Filters{Search: "failed"}, []string{"3"}},
		{"search event type", models.Filters{Search: "org"}, []string{"4"}},
		{"same day range", models.Filters{DateFrom: "2025-01-02", DateTo: "2025-01-02"}, []string{"2", "5"}},
		{"from only excludes bad timestamps", models.Filters{DateFrom: "2025-01-02"}, []string{"2", "3", "5"}},
		{"to only", models.Filters{DateTo: "2025-01-01"}, []string{"1"}},
		{"rfc3339 bounds", models.Filters{DateFrom: "2025-01-02T08:15:00Z", DateTo: "2025-01-02T09:00:00Z"}, []string{"2", "5"}},
		{"and composition", models.Filters{EventType: "DeviceBlocked", Search: "carol", DateFrom: "2025-01-01"}, []string{"5"}},
		{"no match", models.Filters{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(events, tt.filters, time.UTC))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_OrderIndependent(t *testing.T) {
	events := sampleEvents()
	parts := []models.Filters{
		{EventType: "DeviceBlocked"},
		{Search: "o"},
		{DateFrom: "2025-01-02", DateTo: "2025-01-02"},
	}
	combined := models.Filters{EventType: "DeviceBlocked", Search: "o", DateFrom: "2025-01-02", DateTo: "2025-01-02"}
	want := ids(Apply(events, combined, time.UTC))

	orders := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, order := range orders {
		got := events
		for _, i := range order {
			got = Apply(got, parts[i], time.UTC)
		}
		if !reflect.DeepEqual(ids(got), want) {
			t.Errorf("order %v = %v, want %v", order, ids(got), want)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	events := sampleEvents()
	before := sampleEvents()
	_ = Apply(events, models.Filters{EventType: "DeviceBlocked", Search: "carol"}, time.UTC)
	if !reflect.DeepEqual(events, before) {
		t.Error("Apply() mutated its input")
	}
}

func TestApply_Location(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	// 2025-01-01T20:00Z is 2025-01-02 01:00 at UTC+5.
	events := []models.AuditEvent{{ID: "late", EventType: "X", Timestamp: "2025-01-01T20:00:00Z"}}

	if got := Apply(events, models.Filters{DateFrom: "2025-01-02"}, loc); len(got) != 1 {
		t.Errorf("in UTC+5 expected event on 2025-01-02, got %d events", len(got))
	}
	if got := Apply(events, models.Filters{DateFrom: "2025-01-02"}, time.UTC); len(got) != 0 {
		t.Errorf("in UTC expected event before 2025-01-02, got %d events", len(got))
	}
	if got := Apply(events, models.Filters{DateTo: "2025-01-01"}, nil); len(got) != 1 {
		t.Errorf("nil location should behave as UTC, got %d events", len(got))
	}
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2025, 3, 9, 4, 5, 6, 0, time.UTC)
	want := time.Date(2025, 3, 9, 23, 59, 59, 999000000, time.UTC)
	if got := EndOfDay(in); !got.Equal(want) {
		t.Errorf("EndOfDay() = %v, want %v", got, want)
	}
}

func TestTypeOptions(t *testing.T) {
	got := TypeOptions(sampleEvents())
	want := []models.TypeOption{
		{Key: "DeviceBlocked", Label: "DeviceBlocked", Count: 1},
		{Key: "DeviceBlocked:Admin", Label: "DeviceBlocked • Admin", Count: 1},
		{Key: "DeviceRegistered", Label: "DeviceRegistered", Count: 1},
		{Key: "OrgCreated", Label: "OrgCreated", Count: 1},
		{Key: "UserLogin:Failed", Label: "UserLogin • Failed", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TypeOptions() = %+v, want %+v", got, want)
	}

	if got := TypeOptions(nil); len(got) != 0 {
		t.Errorf("TypeOptions(nil) = %v, want empty", got)
	}
}
