// Package websocket streams patrol records live to the fleet command
// server instead of persisting them locally.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/subcom/fleet/pkg/core"
	"github.com/subcom/fleet/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend implements storage.Backend over a websocket. It does not
// implement storage.Uploadable; the server side owns the data.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// envelope wraps a payload in a typed streaming.Envelope and encodes
// the whole thing as JSON.
func envelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// stream encodes the payload and hands it to the write loop without
// waiting for delivery.
func (b *Backend) stream(msgType string, payload any) error {
	data, err := envelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// streamAcked encodes the payload and blocks until the server acks it.
func (b *Backend) streamAcked(msgType string, payload any) error {
	data, err := envelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.sendAndWait(data, msgType, ackTimeout)
}

// StartPatrol announces the patrol and its area, keeping the encoded
// message around so it can be replayed after a reconnect. Waits for
// the server ack.
func (b *Backend) StartPatrol(patrol *core.Patrol, area *core.Area) error {
	data, err := envelope(streaming.TypeStartPatrol, streaming.StartPatrolPayload{Patrol: patrol, Area: area})
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.startReplay = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartPatrol, ackTimeout)
}

// EndPatrol tells the server the patrol is over and drops the replay
// message whether or not the server acked.
func (b *Backend) EndPatrol() error {
	err := b.streamAcked(streaming.TypeEndPatrol, nil)

	b.conn.mu.Lock()
	b.conn.startReplay = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) AddSubmarine(s *core.Submarine) error {
	return b.stream(streaming.TypeAddSubmarine, s)
}

func (b *Backend) RecordMovement(m *core.MovementRecord) error {
	return b.stream(streaming.TypeMovementRecord, m)
}

func (b *Backend) RecordCollision(c *core.CollisionEvent) error {
	return b.stream(streaming.TypeCollisionEvent, c)
}

func (b *Backend) RecordTorpedoOrder(o *core.TorpedoOrder) error {
	return b.stream(streaming.TypeTorpedoOrder, o)
}

func (b *Backend) RecordSensorFaults(r *core.SensorFaultReport) error {
	return b.stream(streaming.TypeSensorFaultReport, r)
}

func (b *Backend) RecordNukeAttempt(n *core.NukeAttempt) error {
	return b.stream(streaming.TypeNukeAttempt, n)
}
