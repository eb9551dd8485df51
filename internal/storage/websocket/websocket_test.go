package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/pkg/core"
	"github.com/subcom/fleet/pkg/streaming"
)

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and sends acks for start_patrol/end_patrol.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			// Ack start_patrol and end_patrol.
			if env.Type == streaming.TypeStartPatrol || env.Type == streaming.TypeEndPatrol {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestStartAndEndPatrol(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "test"}, discardLogger())
	require.NoError(t, b.Init())
	defer b.Close()

	patrol := &core.Patrol{Name: "North Run", Tag: "Exercise"}
	area := &core.Area{Name: "North Atlantic Sector 4"}
	require.NoError(t, b.StartPatrol(patrol, area))

	require.NoError(t, b.EndPatrol())

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartPatrol, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndPatrol, msgs[len(msgs)-1].Type)
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"}, discardLogger())
	require.NoError(t, b.Init())
	defer b.Close()

	patrol := &core.Patrol{Name: "P"}
	area := &core.Area{Name: "A"}
	require.NoError(t, b.StartPatrol(patrol, area))

	require.NoError(t, b.AddSubmarine(&core.Submarine{ID: 1, Serial: "12345678-90"}))
	require.NoError(t, b.RecordMovement(&core.MovementRecord{
		Serial:    "12345678-90",
		Direction: core.DirectionForward,
		Distance:  3,
		To:        core.Position{Horizontal: 3},
	}))
	require.NoError(t, b.RecordCollision(&core.CollisionEvent{
		Serial:   "12345678-90",
		Position: core.Position{Vertical: 1, Horizontal: 3},
	}))
	require.NoError(t, b.RecordTorpedoOrder(&core.TorpedoOrder{
		Serial:    "12345678-90",
		Direction: core.DirectionUp,
	}))
	require.NoError(t, b.RecordNukeAttempt(&core.NukeAttempt{
		Serial: "12345678-90",
	}))
	require.NoError(t, b.EndPatrol())

	// end_patrol is acked, so everything queued before it has been
	// written by the time EndPatrol returns.
	var types []string
	for _, env := range ml.all() {
		types = append(types, env.Type)
	}
	assert.Contains(t, types, streaming.TypeAddSubmarine)
	assert.Contains(t, types, streaming.TypeMovementRecord)
	assert.Contains(t, types, streaming.TypeCollisionEvent)
	assert.Contains(t, types, streaming.TypeTorpedoOrder)
	assert.Contains(t, types, streaming.TypeNukeAttempt)
}

func TestStartPatrol_AckTimeoutOnSilentServer(t *testing.T) {
	// Server that upgrades but never acks.
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"}, discardLogger())
	require.NoError(t, b.Init())
	defer b.Close()

	done := make(chan error, 1)
	go func() {
		done <- b.StartPatrol(&core.Patrol{Name: "P"}, &core.Area{Name: "A"})
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(ackTimeout + 5*time.Second):
		t.Fatal("StartPatrol did not return after ack timeout")
	}
}

func TestInit_DialFailure(t *testing.T) {
	b := New(Config{URL: "ws://127.0.0.1:1/stream", Secret: "s"}, discardLogger())
	assert.Error(t, b.Init())
}
