// internal/fleet/movement.go
package fleet

import (
	"log/slog"
	"time"

	"github.com/subcom/fleet/pkg/core"
)

// Engine applies movement orders to submarines and audits them.
// Pipeline per order: validate -> act -> audit; the audit entry always
// reads post-mutation state.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a movement engine.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{
		logger: logger,
		now:    time.Now,
	}
}

// Move applies one order to the submarine. Distance is a non-negative
// grid step count.
//
// An invalid direction or a negative distance neither moves the
// submarine nor appends a log entry; it is warned and reported with
// ok=false. Only state-altering operations are audited.
func (e *Engine) Move(sub *Submarine, dir core.Direction, distance int) (core.MovementRecord, bool) {
	if distance < 0 {
		e.logger.Warn("Negative movement distance", "serial", sub.serial, "distance", distance)
		return core.MovementRecord{}, false
	}

	from := sub.position

	switch dir {
	case core.DirectionUp:
		sub.position.Vertical -= distance
	case core.DirectionDown:
		sub.position.Vertical += distance
	case core.DirectionForward:
		sub.position.Horizontal += distance
	default:
		e.logger.Warn("Invalid movement direction", "serial", sub.serial, "direction", dir.String())
		return core.MovementRecord{}, false
	}

	rec := core.MovementRecord{
		Serial:    sub.serial,
		From:      from,
		Direction: dir,
		Distance:  distance,
		To:        sub.position,
		Time:      e.now(),
	}
	sub.appendLog(rec)
	return rec, true
}
