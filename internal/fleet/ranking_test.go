package fleet

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subcom/fleet/pkg/core"
)

func rankingFixture(t *testing.T) *Registry {
	t.Helper()
	r := newTestRegistry(t)
	e := NewEngine(slog.New(slog.DiscardHandler))

	// near: (1,1) distSq 2
	near, err := r.Register("11111111-11")
	require.NoError(t, err)
	e.Move(near, core.DirectionDown, 1)
	e.Move(near, core.DirectionForward, 1)

	// far: (-6,8) distSq 100, also the highest point (least vertical)
	far, err := r.Register("22222222-22")
	require.NoError(t, err)
	e.Move(far, core.DirectionUp, 6)
	e.Move(far, core.DirectionForward, 8)

	// deep: (9,0) distSq 81, greatest vertical
	deep, err := r.Register("33333333-33")
	require.NoError(t, err)
	e.Move(deep, core.DirectionDown, 9)

	return r
}

func TestRanking_EmptyFleet(t *testing.T) {
	r := newTestRegistry(t)

	for name, query := range map[string]func() (*Submarine, error){
		"closest":  r.Closest,
		"furthest": r.Furthest,
		"highest":  r.Highest,
		"lowest":   r.Lowest,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := query()
			assert.ErrorIs(t, err, core.ErrEmptyFleet)
		})
	}
}

func TestRanking_Distance(t *testing.T) {
	r := rankingFixture(t)

	closest, err := r.Closest()
	require.NoError(t, err)
	assert.Equal(t, core.SerialNumber("11111111-11"), closest.Serial())

	furthest, err := r.Furthest()
	require.NoError(t, err)
	assert.Equal(t, core.SerialNumber("22222222-22"), furthest.Serial())
}

func TestRanking_Vertical(t *testing.T) {
	r := rankingFixture(t)

	lowest, err := r.Lowest()
	require.NoError(t, err)
	assert.Equal(t, core.SerialNumber("22222222-22"), lowest.Serial())

	highest, err := r.Highest()
	require.NoError(t, err)
	assert.Equal(t, core.SerialNumber("33333333-33"), highest.Serial())
}

func TestRanking_TiesKeepInsertionOrder(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Register("44444444-44")
	require.NoError(t, err)
	_, err = r.Register("55555555-55")
	require.NoError(t, err)

	// Both at (0,0): every query resolves ties by insertion order.
	closest, err := r.Closest()
	require.NoError(t, err)
	assert.Equal(t, core.SerialNumber("44444444-44"), closest.Serial())

	lowest, err := r.Lowest()
	require.NoError(t, err)
	assert.Equal(t, core.SerialNumber("44444444-44"), lowest.Serial())
}
