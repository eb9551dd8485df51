// pkg/core/submarine.go
package core

import "time"

// Submarine is the registration record for one tracked vehicle.
type Submarine struct {
	ID       uint
	Serial   SerialNumber
	JoinTime time.Time
}

// MovementRecord is one audited move: positions before and after,
// plus the order that caused it. Only state-altering moves are recorded.
type MovementRecord struct {
	ID        uint
	Serial    SerialNumber
	From      Position
	Direction Direction
	Distance  int
	To        Position
	Time      time.Time
}

// SensorFault is one distinct faulty sensor reading.
// FailedSensors is fixed when the pattern is first seen;
// Occurrences counts exact recurrences of the same pattern.
type SensorFault struct {
	Pattern       string `json:"pattern"`
	FailedSensors int    `json:"failedSensors"`
	Occurrences   int    `json:"occurrences"`
}
