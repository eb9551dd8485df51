// pkg/core/events.go
package core

import "time"

// CollisionEvent records a submarine finalizing onto a cell another
// submarine already holds. Only the second arrival is recorded.
type CollisionEvent struct {
	ID       uint
	Serial   SerialNumber
	Position Position
	Time     time.Time
}

// TorpedoOrder records a firing order and its outcome. A blocked order
// is a normal reportable outcome, not an error; BlockedBy names the
// submarine that would have been struck.
type TorpedoOrder struct {
	ID        uint
	Serial    SerialNumber
	Direction Direction
	Blocked   bool
	BlockedBy SerialNumber
	Time      time.Time
}

// SensorFaultReport is the aggregated fault list for one submarine's
// sensor stream, in first-seen pattern order.
type SensorFaultReport struct {
	ID     uint
	Serial SerialNumber
	Faults []SensorFault
	Time   time.Time
}

// NukeAttempt records a nuke authorization attempt and its outcome.
// The credential itself is never stored.
type NukeAttempt struct {
	ID         uint
	Serial     SerialNumber
	Authorized bool
	Time       time.Time
}
