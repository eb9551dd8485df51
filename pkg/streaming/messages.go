package streaming

import (
	"encoding/json"

	"github.com/subcom/fleet/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartPatrol       = "start_patrol"
	TypeEndPatrol         = "end_patrol"
	TypeAddSubmarine      = "add_submarine"
	TypeMovementRecord    = "movement_record"
	TypeCollisionEvent    = "collision_event"
	TypeTorpedoOrder      = "torpedo_order"
	TypeSensorFaultReport = "sensor_fault_report"
	TypeNukeAttempt       = "nuke_attempt"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartPatrolPayload carries patrol and area data.
type StartPatrolPayload struct {
	Patrol *core.Patrol `json:"patrol"`
	Area   *core.Area   `json:"area"`
}
