// Package weapons orders torpedoes with a friendly-fire guard.
package weapons

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/subcom/fleet/internal/fleet"
	"github.com/subcom/fleet/pkg/core"
)

// Dispatcher scans the fleet for submarines in the flight path before
// releasing a torpedo.
type Dispatcher struct {
	logger   *slog.Logger
	registry *fleet.Registry
	now      func() time.Time
}

// NewDispatcher creates a weapon dispatcher over the given registry.
func NewDispatcher(logger *slog.Logger, registry *fleet.Registry) *Dispatcher {
	return &Dispatcher{
		logger:   logger,
		registry: registry,
		now:      time.Now,
	}
}

// Fire orders the submarine to fire a torpedo in the given direction.
//
// The order is blocked when another registered submarine lies on or
// beyond the firer along the flight path; the returned order then
// carries Blocked=true and the blocking submarine. Blocking is a normal
// outcome, not an error. Directions without a blocking rule are treated
// as always clear. An unregistered firer fails with core.ErrNotFound.
func (d *Dispatcher) Fire(sn core.SerialNumber, dir core.Direction) (core.TorpedoOrder, error) {
	firer, err := d.registry.Get(sn)
	if err != nil {
		return core.TorpedoOrder{}, fmt.Errorf("fire: %w", err)
	}

	order := core.TorpedoOrder{
		Serial:    sn,
		Direction: dir,
		Time:      d.now(),
	}

	if blocker := d.findBlocker(firer, dir); blocker != nil {
		order.Blocked = true
		order.BlockedBy = blocker.Serial()
		d.logger.Warn("Torpedo order blocked, friendly fire",
			"serial", sn,
			"direction", dir.String(),
			"blockedBy", blocker.Serial())
		return order, nil
	}

	d.launch(firer, dir)
	return order, nil
}

// findBlocker applies the axis comparisons exactly as fielded: the
// operator direction is intentionally asymmetric between up and down.
func (d *Dispatcher) findBlocker(firer *fleet.Submarine, dir core.Direction) *fleet.Submarine {
	fp := firer.Position()

	for sn := range d.registry.Serials() {
		other, ok := d.registry.Lookup(sn)
		if !ok || other == firer {
			continue
		}
		op := other.Position()

		switch dir {
		case core.DirectionUp:
			if op.Horizontal == fp.Horizontal && op.Vertical >= fp.Vertical {
				return other
			}
		case core.DirectionDown:
			if op.Horizontal == fp.Horizontal && op.Vertical <= fp.Vertical {
				return other
			}
		case core.DirectionForward:
			if op.Vertical == fp.Vertical && op.Horizontal >= fp.Horizontal {
				return other
			}
		}
	}
	return nil
}

// launch is where the torpedo release itself would happen.
func (d *Dispatcher) launch(_ *fleet.Submarine, _ core.Direction) {}
