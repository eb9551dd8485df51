package patrol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/subcom/fleet/internal/model"
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext()

	p := ctx.GetPatrol()
	assert.Equal(t, "No patrol loaded", p.Name)

	area := ctx.GetArea()
	assert.Equal(t, "No area loaded", area.Name)
}

func TestContext_SetPatrol(t *testing.T) {
	ctx := NewContext()

	ctx.SetPatrol(
		&model.Patrol{Name: "North Run", Tag: "Exercise"},
		&model.Area{Name: "North Atlantic Sector 4"},
	)

	assert.Equal(t, "North Run", ctx.GetPatrol().Name)
	assert.Equal(t, "North Atlantic Sector 4", ctx.GetArea().Name)
}
