// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// fakeClient is a client without a connection; tests read its send channel.
func fakeClient(hub *Hub) *Client {
	return &Client{id: clientIDCounter.Add(1), uid: "test", hub: hub, send: make(chan Message, sendBufferSize)}
}

func register(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	if !hub.RegisterClient(c) {
		t.Fatal("hub stopped")
	}
	waitFor(t, func() bool { return hub.GetClientCount() > 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestHub_NotifyCacheUpdate(t *testing.T) {
	tests := []struct {
		name     string
		update   cache.Update
		wantType string
		check    func(t *testing.T, d RefreshData)
	}{
		{
			name: "refreshed",
			update: cache.Update{
				Key: "audit_org_7", OrgID: "org", RangeDays: 7, Updated: true,
				Batch: &models.EventBatch{Events: make([]models.AuditEvent, 3), Truncated: true},
			},
			wantType: MessageTypeAuditRefreshed,
			check: func(t *testing.T, d RefreshData) {
				if d.Events != 3 || !d.Truncated || d.Error != "" {
					t.Errorf("data = %+v", d)
				}
			},
		},
		{
			name:     "failed refresh",
			update:   cache.Update{Key: "audit_org_7", OrgID: "org", RangeDays: 7, Err: errors.New("timeout")},
			wantType: MessageTypeAuditRefreshSettled,
			check: func(t *testing.T, d RefreshData) {
				if d.Error != "timeout" || d.Events != 0 {
					t.Errorf("data = %+v", d)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := startHub(t)
			c := fakeClient(hub)
			register(t, hub, c)

			hub.NotifyCacheUpdate(tt.update)
			msg := receive(t, c)

			if msg.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", msg.Type, tt.wantType)
			}
			data, ok := msg.Data.(RefreshData)
			if !ok {
				t.Fatalf("Data = %T", msg.Data)
			}
			if data.Key != "audit_org_7" || data.OrgID != "org" || data.RangeDays != 7 {
				t.Errorf("data = %+v", data)
			}
			tt.check(t, data)
		})
	}
}

func TestHub_OrgSubscription(t *testing.T) {
	hub := startHub(t)

	all := fakeClient(hub)
	onlyA := fakeClient(hub)
	onlyA.Subscribe([]string{"org-a"})

	register(t, hub, all)
	if !hub.RegisterClient(onlyA) {
		t.Fatal("hub stopped")
	}
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.NotifyCacheUpdate(cache.Update{OrgID: "org-b", Updated: true, Batch: &models.EventBatch{}})
	hub.NotifyCacheUpdate(cache.Update{OrgID: "org-a", Updated: true, Batch: &models.EventBatch{}})

	first := receive(t, all)
	second := receive(t, all)
	if first.orgID != "org-b" || second.orgID != "org-a" {
		t.Errorf("unsubscribed client got %q, %q", first.orgID, second.orgID)
	}

	got := receive(t, onlyA)
	if got.orgID != "org-a" {
		t.Errorf("subscribed client got org %q", got.orgID)
	}
	select {
	case extra := <-onlyA.send:
		t.Errorf("unexpected message for org %q", extra.orgID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastJSONReachesEveryone(t *testing.T) {
	hub := startHub(t)
	a, b := fakeClient(hub), fakeClient(hub)
	a.Subscribe([]string{"org-a"})
	register(t, hub, a)
	if !hub.RegisterClient(b) {
		t.Fatal("hub stopped")
	}
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.BroadcastJSON("notice", map[string]string{"x": "y"})

	if receive(t, a).Type != "notice" || receive(t, b).Type != "notice" {
		t.Error("unscoped broadcast not delivered to all clients")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := &Client{id: clientIDCounter.Add(1), uid: "slow", hub: hub, send: make(chan Message)} // unbuffered, never read
	register(t, hub, slow)

	hub.BroadcastJSON("notice", nil)
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })

	if _, ok := <-slow.send; ok {
		t.Error("slow client's channel should be closed")
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := fakeClient(hub)
	register(t, hub, c)

	hub.Unregister <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })

	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestHub_RunWithContext(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() (context.Context, context.CancelFunc)
		cancel  bool
		wantErr error
	}{
		{"canceled", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}, true, context.Canceled},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 200*time.Millisecond)
		}, false, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			c := fakeClient(hub)
			ctx, cancel := tt.ctx()
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- hub.RunWithContext(ctx) }()

			if !hub.RegisterClient(c) {
				t.Fatal("hub stopped before registration")
			}
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("RunWithContext did not return")
			}

			if hub.GetClientCount() != 0 {
				t.Error("clients not closed on shutdown")
			}
			if hub.RegisterClient(fakeClient(hub)) {
				t.Error("RegisterClient succeeded after shutdown")
			}
			hub.unregister(c) // must not block
		})
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()

	if r := getShutdownReason(canceled); r != ShutdownReasonContextCanceled {
		t.Errorf("canceled reason = %s", r)
	}
	if r := getShutdownReason(expired); r != ShutdownReasonContextDeadline {
		t.Errorf("deadline reason = %s", r)
	}
}

func TestMarshalMessage_OmitsScope(t *testing.T) {
	raw, err := MarshalMessage(Message{Type: MessageTypeAuditRefreshed, Data: RefreshData{OrgID: "org"}, orgID: "org"})
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded["type"] != MessageTypeAuditRefreshed {
		t.Errorf("json = %s, want only type and data", raw)
	}
	data, _ := decoded["data"].(map[string]interface{})
	if data["orgId"] != "org" {
		t.Errorf("data = %v", data)
	}
}
