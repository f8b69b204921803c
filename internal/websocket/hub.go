// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types.
const (
	MessageTypePing                = "ping"
	MessageTypePong                = "pong"
	MessageTypeSubscribe           = "subscribe"
	MessageTypeAuditRefreshed      = "audit_refreshed"
	MessageTypeAuditRefreshSettled = "audit_refresh_settled"
)

// Message is a server-to-client message. orgID scopes delivery and is not
// serialized.
type Message struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	orgID string
}

// ClientMessage is a client-to-server message.
type ClientMessage struct {
	Type string `json:"type"`
	Data struct {
		OrgIDs []string `json:"orgIds"`
	} `json:"data"`
}

// RefreshData is the payload of audit_refreshed and audit_refresh_settled.
type RefreshData struct {
	Key       string `json:"key"`
	OrgID     string `json:"orgId"`
	RangeDays int    `json:"rangeDays"`
	Events    int    `json:"events,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Hub tracks connected clients and fans out broadcasts.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	now        func() time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewHub creates a Hub. Call RunWithContext to start it.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// RegisterClient hands client to the hub. Returns false if the hub has
// stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// unregister is used by clients; it does not block once the hub stopped.
func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// RunWithContext serves registrations and broadcasts until ctx is done,
// then closes every client and returns ctx.Err().
//
// Cancellation is checked first, then client lifecycle events, then
// broadcasts, so client state is current before a message is fanned out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	logging.Debug().Str("client_id", client.uid).Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	logging.Debug().Str("client_id", client.uid).Int("total_clients", n).Msg("websocket client disconnected")
}

// shutdown closes all clients and logs why. Cancellation is the normal
// path, so it is logged at info without an error field.
func (h *Hub) shutdown(ctx context.Context) {
	h.doneOnce.Do(func() { close(h.done) })
	n := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", n).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients must be called with h.mu held.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// broadcastToClients delivers message to every interested client. Clients
// with a full send buffer are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped []*Client
	sent := 0
	for _, client := range h.sortedClients() {
		if !client.wants(message.orgID) {
			continue
		}
		select {
		case client.send <- message:
			sent++
		default:
			dropped = append(dropped, client)
		}
	}

	for _, client := range dropped {
		close(client.send)
		delete(h.clients, client)
		logging.Warn().Str("client_id", client.uid).Msg("websocket client too slow, dropped")
	}

	metrics.WSMessagesSent.WithLabelValues(message.Type).Add(float64(sent))
	if len(dropped) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// enqueue queues message without blocking the caller.
func (h *Hub) enqueue(message Message) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		logging.Warn().Str("message_type", message.Type).Msg("broadcast channel full, dropping message")
		return false
	}
}

// BroadcastJSON sends an unscoped message to every client.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	h.enqueue(Message{Type: messageType, Data: data})
}

// NotifyCacheUpdate converts a cache update into a refresh message for the
// clients following that org. It matches the cache.Manager subscriber
// signature and never blocks.
func (h *Hub) NotifyCacheUpdate(u cache.Update) {
	data := RefreshData{
		Key:       u.Key,
		OrgID:     u.OrgID,
		RangeDays: u.RangeDays,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	msgType := MessageTypeAuditRefreshed
	if u.Updated && u.Batch != nil {
		data.Events = len(u.Batch.Events)
		data.Truncated = u.Batch.Truncated
	} else {
		msgType = MessageTypeAuditRefreshSettled
		if u.Err != nil {
			data.Error = u.Err.Error()
		}
	}

	h.enqueue(Message{Type: msgType, Data: data, orgID: u.OrgID})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
