package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/pkg/core"
)

func TestCoreToPatrol(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	p := CoreToPatrol(core.Patrol{
		Name:             "North Run",
		Tag:              "Exercise",
		StartTime:        start,
		RecorderVersion:  "1.0.0",
		ReportsDirectory: "/srv/reports",
	})

	assert.Equal(t, "North Run", p.Name)
	assert.Equal(t, "Exercise", p.Tag)
	assert.Equal(t, start, p.StartTime)
	assert.Equal(t, "/srv/reports", p.ReportsDirectory)
}

func TestCoreToSubmarine(t *testing.T) {
	join := time.Now()
	s := CoreToSubmarine(core.Submarine{Serial: "12345678-90", JoinTime: join})

	assert.Equal(t, "12345678-90", s.Serial)
	assert.Equal(t, join, s.JoinTime)
}

func TestCoreToMovementRecord(t *testing.T) {
	m := CoreToMovementRecord(core.MovementRecord{
		Serial:    "12345678-90",
		From:      core.Position{Vertical: 2, Horizontal: 3},
		Direction: core.DirectionForward,
		Distance:  4,
		To:        core.Position{Vertical: 2, Horizontal: 7},
	})

	assert.Equal(t, "forward", m.Direction)
	assert.Equal(t, 4, m.Distance)
	assert.Equal(t, 3, m.FromHorizontal)
	assert.Equal(t, 7, m.ToHorizontal)
	assert.Equal(t, 2, m.ToVertical)
}

func TestCoreToTorpedoOrder_Blocked(t *testing.T) {
	o := CoreToTorpedoOrder(core.TorpedoOrder{
		Serial:    "11111111-11",
		Direction: core.DirectionUp,
		Blocked:   true,
		BlockedBy: "22222222-22",
	})

	assert.True(t, o.Blocked)
	assert.Equal(t, "22222222-22", o.BlockedBy)
	assert.Equal(t, "up", o.Direction)
}

func TestCoreToSensorFaultReport_FaultsJSON(t *testing.T) {
	r := CoreToSensorFaultReport(core.SensorFaultReport{
		Serial: "12345678-90",
		Faults: []core.SensorFault{
			{Pattern: "00001111", FailedSensors: 4, Occurrences: 2},
		},
	})

	var faults []core.SensorFault
	require.NoError(t, json.Unmarshal(r.Faults, &faults))
	require.Len(t, faults, 1)
	assert.Equal(t, "00001111", faults[0].Pattern)
	assert.Equal(t, 4, faults[0].FailedSensors)
	assert.Equal(t, 2, faults[0].Occurrences)
}

func TestCoreToSensorFaultReport_Empty(t *testing.T) {
	r := CoreToSensorFaultReport(core.SensorFaultReport{Serial: "12345678-90"})
	assert.Equal(t, "[]", string(r.Faults))
}

func TestCoreToCollisionEvent(t *testing.T) {
	c := CoreToCollisionEvent(core.CollisionEvent{
		Serial:   "12345678-90",
		Position: core.Position{Vertical: 5, Horizontal: 9},
	})

	assert.Equal(t, 5, c.Vertical)
	assert.Equal(t, 9, c.Horizontal)
}

func TestCoreToNukeAttempt(t *testing.T) {
	n := CoreToNukeAttempt(core.NukeAttempt{Serial: "12345678-90", Authorized: true})
	assert.True(t, n.Authorized)
	assert.Equal(t, "12345678-90", n.Serial)
}
