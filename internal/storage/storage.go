// internal/storage/storage.go
package storage

import "github.com/subcom/fleet/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Patrol management
	StartPatrol(patrol *core.Patrol, area *core.Area) error
	EndPatrol() error

	// Entity registration (assigns ID to the passed pointer)
	AddSubmarine(s *core.Submarine) error

	// Event recording
	RecordMovement(m *core.MovementRecord) error
	RecordCollision(c *core.CollisionEvent) error
	RecordTorpedoOrder(o *core.TorpedoOrder) error
	RecordSensorFaults(r *core.SensorFaultReport) error
	RecordNukeAttempt(n *core.NukeAttempt) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the fleet command web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
