// Package collision flags submarines that finalize onto an occupied cell.
package collision

import (
	"log/slog"
	"time"

	"github.com/subcom/fleet/pkg/core"
)

// Tracker holds the occupied-position index and the collided list.
// It is an explicit context object rather than process-global state so
// tests can construct isolated instances.
//
// The index grows monotonically: cells are never released, and clearing
// the fleet registry does not touch tracker state. The collided list is
// append-only and never deduplicated.
type Tracker struct {
	logger   *slog.Logger
	occupied map[core.Position]bool
	collided []core.CollisionEvent
	now      func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		logger:   logger,
		occupied: make(map[core.Position]bool),
		now:      time.Now,
	}
}

// Observe checks the submarine's finalized position after a full report
// batch. Intermediate positions within the batch are not checked.
//
// If the cell is already occupied the submarine is recorded as collided
// and the event returned with ok=true; otherwise the cell is claimed.
// Detection is one-directional: the second arrival is the one recorded.
func (t *Tracker) Observe(sn core.SerialNumber, pos core.Position) (core.CollisionEvent, bool) {
	if t.occupied[pos] {
		ev := core.CollisionEvent{
			Serial:   sn,
			Position: pos,
			Time:     t.now(),
		}
		t.collided = append(t.collided, ev)
		t.logger.Warn("Submarine has collided with another submarine",
			"serial", sn,
			"vertical", pos.Vertical,
			"horizontal", pos.Horizontal)
		return ev, true
	}

	t.occupied[pos] = true
	return core.CollisionEvent{}, false
}

// Collided returns the collision events recorded so far, oldest first.
func (t *Tracker) Collided() []core.CollisionEvent {
	out := make([]core.CollisionEvent, len(t.collided))
	copy(out, t.collided)
	return out
}
