package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/internal/database"
	"github.com/subcom/fleet/internal/logging"
	"github.com/subcom/fleet/internal/model"
	"github.com/subcom/fleet/internal/patrol"
	"github.com/subcom/fleet/pkg/core"
)

// newTestBackend creates a Backend on a throwaway file-based SQLite DB.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	db, err := database.GetSqliteDBStandalone(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	b := New(Dependencies{
		DB:            db,
		LogManager:    logging.NewSlogManager(),
		PatrolContext: patrol.NewContext(),
	})
	require.NoError(t, b.Init())
	return b
}

func startTestPatrol(t *testing.T, b *Backend) *core.Patrol {
	t.Helper()
	p := &core.Patrol{
		Name:      "North Run",
		Tag:       "Exercise",
		StartTime: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	a := &core.Area{Name: "North Atlantic Sector 4", Latitude: 62.0, Longitude: -6.5}
	require.NoError(t, b.StartPatrol(p, a))
	return p
}

func TestStartPatrol_PersistsAndSetsContext(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	p := startTestPatrol(t, b)

	assert.NotZero(t, p.ID)
	assert.NotZero(t, p.AreaID)
	assert.Equal(t, "North Run", b.patrolCtx.GetPatrol().Name)
	assert.Equal(t, "North Atlantic Sector 4", b.patrolCtx.GetArea().Name)
}

func TestStartPatrol_ReusesExistingArea(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	p1 := startTestPatrol(t, b)
	p2 := startTestPatrol(t, b)

	assert.Equal(t, p1.AreaID, p2.AreaID)

	var count int64
	require.NoError(t, b.db.Model(&model.Area{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddSubmarine_AssignsID(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()
	startTestPatrol(t, b)

	s := &core.Submarine{Serial: "12345678-90", JoinTime: time.Now()}
	require.NoError(t, b.AddSubmarine(s))
	assert.NotZero(t, s.ID)

	var stored model.Submarine
	require.NoError(t, b.db.First(&stored, s.ID).Error)
	assert.Equal(t, "12345678-90", stored.Serial)
	assert.Equal(t, b.patrolCtx.GetPatrol().ID, stored.PatrolID)
}

func TestRecordMovement(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()
	startTestPatrol(t, b)

	m := &core.MovementRecord{
		Serial:    "12345678-90",
		From:      core.Position{},
		Direction: core.DirectionDown,
		Distance:  5,
		To:        core.Position{Vertical: 5},
		Time:      time.Now(),
	}
	require.NoError(t, b.RecordMovement(m))

	var stored model.MovementRecord
	require.NoError(t, b.db.First(&stored, m.ID).Error)
	assert.Equal(t, "down", stored.Direction)
	assert.Equal(t, 5, stored.ToVertical)
	assert.NotZero(t, b.GetLastDBWriteDuration())
}

func TestRecordEvents(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()
	startTestPatrol(t, b)

	require.NoError(t, b.RecordCollision(&core.CollisionEvent{
		Serial:   "12345678-90",
		Position: core.Position{Vertical: 2, Horizontal: 3},
	}))
	require.NoError(t, b.RecordTorpedoOrder(&core.TorpedoOrder{
		Serial:    "12345678-90",
		Direction: core.DirectionForward,
		Blocked:   true,
		BlockedBy: "22222222-22",
	}))
	require.NoError(t, b.RecordSensorFaults(&core.SensorFaultReport{
		Serial: "12345678-90",
		Faults: []core.SensorFault{{Pattern: "00001111", FailedSensors: 4, Occurrences: 1}},
	}))
	require.NoError(t, b.RecordNukeAttempt(&core.NukeAttempt{
		Serial:     "12345678-90",
		Authorized: false,
	}))

	var torpedo model.TorpedoOrder
	require.NoError(t, b.db.First(&torpedo).Error)
	assert.True(t, torpedo.Blocked)
	assert.Equal(t, "22222222-22", torpedo.BlockedBy)

	var faults int64
	require.NoError(t, b.db.Model(&model.SensorFaultReport{}).Count(&faults).Error)
	assert.Equal(t, int64(1), faults)
}

func TestEndPatrol(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()
	startTestPatrol(t, b)

	assert.NoError(t, b.EndPatrol())
}
