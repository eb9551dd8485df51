package fleet

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/pkg/core"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(slog.New(slog.DiscardHandler))
}

func TestRegister_ThenLookup(t *testing.T) {
	r := newTestRegistry(t)

	sub, err := r.Register("12345678-90")
	require.NoError(t, err)

	got, ok := r.Lookup("12345678-90")
	require.True(t, ok)
	assert.Same(t, sub, got)
	assert.Equal(t, core.SerialNumber("12345678-90"), got.Serial())
	assert.Equal(t, core.Position{}, got.Position())
	assert.Empty(t, got.MovementLog())
}

func TestRegister_InvalidFormat(t *testing.T) {
	r := newTestRegistry(t)

	for _, s := range []string{"1234-56", "12345678-9", "123456789-01", "nonsense"} {
		_, err := r.Register(s)
		require.Error(t, err, s)
		assert.ErrorIs(t, err, core.ErrInvalidFormat)
	}
	assert.Zero(t, r.Count())
}

func TestRegister_OverwriteReplacesEntity(t *testing.T) {
	r := newTestRegistry(t)
	e := NewEngine(slog.New(slog.DiscardHandler))

	first, err := r.Register("12345678-90")
	require.NoError(t, err)
	_, ok := e.Move(first, core.DirectionDown, 3)
	require.True(t, ok)

	second, err := r.Register("12345678-90")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, core.Position{}, second.Position())
	assert.Equal(t, 1, r.Count())
}

func TestLookup_Absent(t *testing.T) {
	r := newTestRegistry(t)
	_, ok := r.Lookup("00000000-00")
	assert.False(t, ok)

	_, err := r.Get("00000000-00")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestClear(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Register("11111111-11")
	require.NoError(t, err)
	_, err = r.Register("22222222-22")
	require.NoError(t, err)

	r.Clear()
	assert.Zero(t, r.Count())
	_, ok := r.Lookup("11111111-11")
	assert.False(t, ok)
}

func TestSerials_InsertionOrderAndRestartable(t *testing.T) {
	r := newTestRegistry(t)
	want := []core.SerialNumber{"33333333-33", "11111111-11", "22222222-22"}
	for _, sn := range want {
		_, err := r.Register(string(sn))
		require.NoError(t, err)
	}

	// Overwriting keeps the original insertion slot.
	_, err := r.Register("11111111-11")
	require.NoError(t, err)

	var got []core.SerialNumber
	for sn := range r.Serials() {
		got = append(got, sn)
	}
	assert.Equal(t, want, got)

	// A fresh pass recomputes from current state.
	got = got[:0]
	for sn := range r.Serials() {
		got = append(got, sn)
	}
	assert.Equal(t, want, got)
}

func TestSerials_EarlyBreak(t *testing.T) {
	r := newTestRegistry(t)
	for _, sn := range []string{"11111111-11", "22222222-22", "33333333-33"} {
		_, err := r.Register(sn)
		require.NoError(t, err)
	}

	var got []core.SerialNumber
	for sn := range r.Serials() {
		got = append(got, sn)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
}
