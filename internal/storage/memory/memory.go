// Package memory keeps a whole patrol in process memory and writes a
// single JSON export when the patrol ends. It is the default backend
// for recorders that run without a database.
package memory

import (
	"sync"
	"time"

	"github.com/subcom/fleet/internal/config"
	"github.com/subcom/fleet/pkg/core"
)

// SubmarineRecord groups a submarine with all its recorded events
type SubmarineRecord struct {
	Submarine     core.Submarine
	Movements     []core.MovementRecord
	TorpedoOrders []core.TorpedoOrder
	SensorFaults  []core.SensorFaultReport
	NukeAttempts  []core.NukeAttempt
}

// Backend stores patrol data in memory and exports to JSON
type Backend struct {
	cfg    config.MemoryConfig
	patrol *core.Patrol
	area   *core.Area

	// submarines by serial, plus registration order for the export
	submarines map[core.SerialNumber]*SubmarineRecord
	order      []core.SerialNumber

	collisions []core.CollisionEvent

	endTime          time.Time
	exportedFilePath string

	idCounter uint
	mu        sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:        cfg,
		submarines: make(map[core.SerialNumber]*SubmarineRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error { return nil }

// Close cleans up resources
func (b *Backend) Close() error { return nil }

// StartPatrol begins recording a new patrol, discarding anything left
// over from a previous one.
func (b *Backend) StartPatrol(patrol *core.Patrol, area *core.Area) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.patrol = patrol
	b.area = area

	b.submarines = make(map[core.SerialNumber]*SubmarineRecord)
	b.order = nil
	b.collisions = nil
	b.exportedFilePath = ""
	b.idCounter = 0

	return nil
}

// EndPatrol finalizes and exports the patrol data
func (b *Backend) EndPatrol() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endTime = time.Now()
	return b.exportJSON()
}

// AddSubmarine registers a new submarine and assigns its ID.
// Re-registering a serial replaces the old record but keeps its slot
// in registration order.
func (b *Backend) AddSubmarine(s *core.Submarine) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter

	if _, seen := b.submarines[s.Serial]; !seen {
		b.order = append(b.order, s.Serial)
	}
	b.submarines[s.Serial] = &SubmarineRecord{Submarine: *s}
	return nil
}

// GetSubmarineBySerial looks up a submarine by its serial number
func (b *Backend) GetSubmarineBySerial(sn core.SerialNumber) (*core.Submarine, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	record, ok := b.submarines[sn]
	if !ok {
		return nil, false
	}
	return &record.Submarine, true
}

// appendFor applies fn to the record of the given serial. Events for
// unregistered serials are dropped without error.
func (b *Backend) appendFor(sn core.SerialNumber, fn func(*SubmarineRecord)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.submarines[sn]; ok {
		fn(record)
	}
	return nil
}

// RecordMovement records an audited move
func (b *Backend) RecordMovement(m *core.MovementRecord) error {
	return b.appendFor(m.Serial, func(r *SubmarineRecord) {
		r.Movements = append(r.Movements, *m)
	})
}

// RecordCollision records a detected shared cell
func (b *Backend) RecordCollision(c *core.CollisionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collisions = append(b.collisions, *c)
	return nil
}

// RecordTorpedoOrder records a torpedo clearance check
func (b *Backend) RecordTorpedoOrder(o *core.TorpedoOrder) error {
	return b.appendFor(o.Serial, func(r *SubmarineRecord) {
		r.TorpedoOrders = append(r.TorpedoOrders, *o)
	})
}

// RecordSensorFaults records an aggregated sensor sweep
func (b *Backend) RecordSensorFaults(r *core.SensorFaultReport) error {
	return b.appendFor(r.Serial, func(rec *SubmarineRecord) {
		rec.SensorFaults = append(rec.SensorFaults, *r)
	})
}

// RecordNukeAttempt records a launch authorization check
func (b *Backend) RecordNukeAttempt(n *core.NukeAttempt) error {
	return b.appendFor(n.Serial, func(r *SubmarineRecord) {
		r.NukeAttempts = append(r.NukeAttempts, *n)
	})
}
