// internal/fleet/submarine.go
package fleet

import (
	"fmt"

	"github.com/subcom/fleet/pkg/core"
)

// MaxMovementLogEntries bounds each submarine's movement log.
// When full, the oldest entry is evicted first.
const MaxMovementLogEntries = 50

// Submarine is the stateful record for one tracked vehicle: an immutable
// serial number, a grid position, and a bounded movement log.
// Mutation goes through the movement Engine only.
type Submarine struct {
	serial   core.SerialNumber
	position core.Position
	log      []core.MovementRecord
}

func newSubmarine(sn core.SerialNumber) *Submarine {
	return &Submarine{serial: sn}
}

// Serial returns the submarine's serial number.
func (s *Submarine) Serial() core.SerialNumber {
	return s.serial
}

// Position returns the submarine's current grid cell.
func (s *Submarine) Position() core.Position {
	return s.position
}

// MovementLog returns the audit log, oldest entry first.
// The returned slice is a copy; mutating it does not affect the submarine.
func (s *Submarine) MovementLog() []core.MovementRecord {
	out := make([]core.MovementRecord, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Submarine) appendLog(r core.MovementRecord) {
	if len(s.log) == MaxMovementLogEntries {
		copy(s.log, s.log[1:])
		s.log = s.log[:MaxMovementLogEntries-1]
	}
	s.log = append(s.log, r)
}

// String renders the submarine for diagnostics.
func (s *Submarine) String() string {
	return fmt.Sprintf("submarine %s at (%d,%d)", s.serial, s.position.Vertical, s.position.Horizontal)
}
