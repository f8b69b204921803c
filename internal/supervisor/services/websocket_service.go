// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package services

import (
	"context"

	"github.com/MagenSec/audit-analytics/internal/cache"
)

// ContextHub is the part of *websocket.Hub the service drives.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
	NotifyCacheUpdate(u cache.Update)
}

// UpdateSource publishes cache updates. *cache.Manager satisfies it.
type UpdateSource interface {
	Subscribe(fn func(cache.Update)) (unsubscribe func())
}

// WebSocketHubService runs the hub and bridges cache updates into it.
//
// The subscription lives exactly as long as one Serve call, so a restarted
// hub never receives updates twice and a stopped hub never receives any.
type WebSocketHubService struct {
	hub     ContextHub
	updates UpdateSource
	name    string
}

// NewWebSocketHubService creates the service. updates may be nil, in which
// case the hub only runs.
func NewWebSocketHubService(hub ContextHub, updates UpdateSource) *WebSocketHubService {
	return &WebSocketHubService{
		hub:     hub,
		updates: updates,
		name:    "websocket-hub",
	}
}

// Serve implements suture.Service. Returns ctx.Err() on normal shutdown.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	if w.updates != nil {
		unsubscribe := w.updates.Subscribe(w.hub.NotifyCacheUpdate)
		defer unsubscribe()
	}
	return w.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
func (w *WebSocketHubService) String() string {
	return w.name
}
