package patrol

import (
	"sync"

	"github.com/subcom/fleet/internal/model"
)

// Context holds the current patrol and area state
type Context struct {
	mu     sync.RWMutex
	Patrol *model.Patrol
	Area   *model.Area
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		Patrol: &model.Patrol{Name: "No patrol loaded"},
		Area:   &model.Area{Name: "No area loaded"},
	}
}

// GetPatrol returns the current patrol
func (pc *Context) GetPatrol() *model.Patrol {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.Patrol
}

// GetArea returns the current area
func (pc *Context) GetArea() *model.Area {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.Area
}

// SetPatrol sets the current patrol and area
func (pc *Context) SetPatrol(patrol *model.Patrol, area *model.Area) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.Patrol = patrol
	pc.Area = area
}
