// Package worker batches recorded events through generic queues and
// flushes them to the storage backend on a fixed interval.
package worker

import (
	"sync"
	"time"

	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/queue"
	"github.com/subcom/fleet/internal/storage"
	"github.com/subcom/fleet/pkg/core"
)

// Queues holds the write queues for every recorded event kind.
type Queues struct {
	Movements    *queue.Queue[core.MovementRecord]
	Collisions   *queue.Queue[core.CollisionEvent]
	Torpedoes    *queue.Queue[core.TorpedoOrder]
	SensorFaults *queue.Queue[core.SensorFaultReport]
	NukeAttempts *queue.Queue[core.NukeAttempt]
}

// NewQueues creates empty write queues.
func NewQueues() *Queues {
	return &Queues{
		Movements:    queue.New[core.MovementRecord](),
		Collisions:   queue.New[core.CollisionEvent](),
		Torpedoes:    queue.New[core.TorpedoOrder](),
		SensorFaults: queue.New[core.SensorFaultReport](),
		NukeAttempts: queue.New[core.NukeAttempt](),
	}
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager    *logging.SlogManager
	Queues        *Queues
	FlushInterval time.Duration
}

// Manager drains the write queues into the storage backend.
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}

// Start begins the periodic flush goroutine.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.mu.Unlock()

	interval := m.deps.FlushInterval
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.Flush()
			}
		}
	}()
}

// Stop halts the flush goroutine and performs a final flush.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.isRunning {
		close(m.stopChan)
		m.isRunning = false
	}
	m.mu.Unlock()

	m.Flush()
}

// Flush drains every queue into the backend. Failed writes are logged
// and dropped; the recorder never blocks the command loop on storage.
func (m *Manager) Flush() {
	logger := m.deps.LogManager.Logger()

	for _, rec := range m.deps.Queues.Movements.GetAndEmpty() {
		if err := m.backend.RecordMovement(&rec); err != nil {
			logger.Error("Failed to write movement record", "serial", rec.Serial, "error", err)
		}
	}
	for _, ev := range m.deps.Queues.Collisions.GetAndEmpty() {
		if err := m.backend.RecordCollision(&ev); err != nil {
			logger.Error("Failed to write collision event", "serial", ev.Serial, "error", err)
		}
	}
	for _, o := range m.deps.Queues.Torpedoes.GetAndEmpty() {
		if err := m.backend.RecordTorpedoOrder(&o); err != nil {
			logger.Error("Failed to write torpedo order", "serial", o.Serial, "error", err)
		}
	}
	for _, r := range m.deps.Queues.SensorFaults.GetAndEmpty() {
		if err := m.backend.RecordSensorFaults(&r); err != nil {
			logger.Error("Failed to write sensor fault report", "serial", r.Serial, "error", err)
		}
	}
	for _, n := range m.deps.Queues.NukeAttempts.GetAndEmpty() {
		if err := m.backend.RecordNukeAttempt(&n); err != nil {
			logger.Error("Failed to write nuke attempt", "serial", n.Serial, "error", err)
		}
	}
}
