// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MagenSec/audit-analytics/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024 // client messages are small control frames
	sendBufferSize = 64
)

// clientIDCounter orders clients so broadcasts and shutdown visit them in a
// stable order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id   uint64
	uid  string
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	mu   sync.RWMutex
	orgs map[string]bool // empty means all orgs
}

// NewClient creates a Client for conn.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		uid:  uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}
}

// ID returns the ordering ID.
func (c *Client) ID() uint64 {
	return c.id
}

// Subscribe restricts the client to orgIDs. An empty list means all orgs.
func (c *Client) Subscribe(orgIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(orgIDs) == 0 {
		c.orgs = nil
		return
	}
	c.orgs = make(map[string]bool, len(orgIDs))
	for _, id := range orgIDs {
		c.orgs[id] = true
	}
}

// wants reports whether the client should receive a message for orgID.
func (c *Client) wants(orgID string) bool {
	if orgID == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orgs) == 0 || c.orgs[orgID]
}

// readPump handles client control messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Str("client_id", c.uid).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("client_id", c.uid).Msg("unexpected websocket close")
			}
			return
		}
		c.handle(&msg)
	}
}

func (c *Client) handle(msg *ClientMessage) {
	switch msg.Type {
	case MessageTypePing:
		select {
		case c.send <- Message{Type: MessageTypePong}:
		default:
		}
	case MessageTypeSubscribe:
		c.Subscribe(msg.Data.OrgIDs)
		logging.Debug().Str("client_id", c.uid).Strs("org_ids", msg.Data.OrgIDs).Msg("websocket client subscribed")
	default:
		logging.Debug().Str("client_id", c.uid).Str("type", msg.Type).Msg("ignoring unknown websocket message")
	}
}

// writePump sends queued messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				logging.Debug().Err(err).Str("client_id", c.uid).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
