// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

// Package classify derives a canonical type, lifecycle category, icon and color
// for a raw audit event.
//
// Every function in this package is pure: the result depends only on the
// event passed in, never on evaluation order, package state or I/O. Missing or
// malformed fields degrade to documented defaults ("Unknown", empty string,
// the default icon/color) instead of returning errors.
//
// # Type identity
//
//	BaseType  "DeviceRegistered:Windows" -> "DeviceRegistered"
//	TypeKey   {eventType: "Login", subType: "Failed"} -> "Login:Failed"
//	TypeLabel {eventType: "Login", subType: "Failed"} -> "Login • Failed"
//
// # Lifecycle categories
//
// LifecycleCategory evaluates an explicit, ordered rule table (see Rules).
// Exclusions for notification, license, credit, config and response-command
// events come before the generic device/org checks, so for example
// "DeviceLicenseAssigned" is excluded even though its name mentions a device.
// Reordering the table changes outcomes; the order is part of the contract.
package classify
