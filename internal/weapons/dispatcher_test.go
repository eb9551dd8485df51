package weapons

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/internal/fleet"
	"github.com/subcom/fleet/pkg/core"
)

type fixture struct {
	registry   *fleet.Registry
	engine     *fleet.Engine
	dispatcher *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	registry := fleet.NewRegistry(logger)
	return &fixture{
		registry:   registry,
		engine:     fleet.NewEngine(logger),
		dispatcher: NewDispatcher(logger, registry),
	}
}

// place registers a submarine and moves it to (vertical, horizontal).
func (f *fixture) place(t *testing.T, sn string, vertical, horizontal int) *fleet.Submarine {
	t.Helper()
	sub, err := f.registry.Register(sn)
	require.NoError(t, err)
	if vertical > 0 {
		f.engine.Move(sub, core.DirectionDown, vertical)
	} else if vertical < 0 {
		f.engine.Move(sub, core.DirectionUp, -vertical)
	}
	if horizontal != 0 {
		f.engine.Move(sub, core.DirectionForward, horizontal)
	}
	return sub
}

func TestFire_UnknownFirer(t *testing.T) {
	f := newFixture(t)
	_, err := f.dispatcher.Fire("00000000-00", core.DirectionUp)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFire_ForwardBlocked(t *testing.T) {
	f := newFixture(t)
	f.place(t, "11111111-11", 2, 1)
	f.place(t, "22222222-22", 2, 5) // same vertical, horizontal >= firer's

	order, err := f.dispatcher.Fire("11111111-11", core.DirectionForward)
	require.NoError(t, err)
	assert.True(t, order.Blocked)
	assert.Equal(t, core.SerialNumber("22222222-22"), order.BlockedBy)
}

func TestFire_ForwardClearBehindFirer(t *testing.T) {
	f := newFixture(t)
	f.place(t, "11111111-11", 2, 5)
	f.place(t, "22222222-22", 2, 1) // same vertical but behind

	order, err := f.dispatcher.Fire("11111111-11", core.DirectionForward)
	require.NoError(t, err)
	assert.False(t, order.Blocked)
}

func TestFire_UpBlocked(t *testing.T) {
	f := newFixture(t)
	f.place(t, "11111111-11", 1, 3)
	f.place(t, "22222222-22", 4, 3) // same horizontal, vertical >= firer's

	order, err := f.dispatcher.Fire("11111111-11", core.DirectionUp)
	require.NoError(t, err)
	assert.True(t, order.Blocked)
	assert.Equal(t, core.SerialNumber("22222222-22"), order.BlockedBy)
}

func TestFire_DownBlocked(t *testing.T) {
	f := newFixture(t)
	f.place(t, "11111111-11", 4, 3)
	f.place(t, "22222222-22", 1, 3) // same horizontal, vertical <= firer's

	order, err := f.dispatcher.Fire("11111111-11", core.DirectionDown)
	require.NoError(t, err)
	assert.True(t, order.Blocked)
}

func TestFire_DifferentAxisClear(t *testing.T) {
	f := newFixture(t)
	f.place(t, "11111111-11", 1, 1)
	f.place(t, "22222222-22", 2, 5)

	order, err := f.dispatcher.Fire("11111111-11", core.DirectionForward)
	require.NoError(t, err)
	assert.False(t, order.Blocked)
}

func TestFire_UnlistedDirectionAlwaysClear(t *testing.T) {
	f := newFixture(t)
	f.place(t, "11111111-11", 0, 0)
	f.place(t, "22222222-22", 0, 0)

	order, err := f.dispatcher.Fire("11111111-11", core.DirectionInvalid)
	require.NoError(t, err)
	assert.False(t, order.Blocked)
}

func TestFire_AloneIsClear(t *testing.T) {
	f := newFixture(t)
	f.place(t, "11111111-11", 0, 0)

	order, err := f.dispatcher.Fire("11111111-11", core.DirectionUp)
	require.NoError(t, err)
	assert.False(t, order.Blocked)
	assert.Empty(t, order.BlockedBy)
}
