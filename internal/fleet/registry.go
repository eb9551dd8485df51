// internal/fleet/registry.go
package fleet

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/subcom/fleet/internal/serial"
	"github.com/subcom/fleet/pkg/core"
)

// Registry owns the serial number -> submarine mapping.
//
// All registry state is mutated by the single goroutine driving the
// recorder. Concurrent mutation, including during Serials iteration,
// is unsupported and undefined.
type Registry struct {
	logger *slog.Logger
	subs   map[core.SerialNumber]*Submarine
	order  []core.SerialNumber
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		subs:   make(map[core.SerialNumber]*Submarine),
	}
}

// Register validates the serial number and creates a submarine at (0,0).
// Re-registering an existing serial replaces the prior submarine and keeps
// its place in insertion order; that is a warned state transition, not an
// error. Malformed serial numbers fail with core.ErrInvalidFormat.
func (r *Registry) Register(s string) (*Submarine, error) {
	sn, err := serial.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if _, exists := r.subs[sn]; exists {
		r.logger.Warn("Submarine already registered, overwriting", "serial", sn)
	} else {
		r.order = append(r.order, sn)
	}

	sub := newSubmarine(sn)
	r.subs[sn] = sub
	return sub, nil
}

// Lookup returns the submarine for sn, or false if it is not registered.
func (r *Registry) Lookup(sn core.SerialNumber) (*Submarine, bool) {
	sub, ok := r.subs[sn]
	return sub, ok
}

// Get returns the submarine for sn, failing with core.ErrNotFound.
func (r *Registry) Get(sn core.SerialNumber) (*Submarine, error) {
	sub, ok := r.subs[sn]
	if !ok {
		return nil, fmt.Errorf("%s: %w", sn, core.ErrNotFound)
	}
	return sub, nil
}

// Clear removes all submarines. Collision state lives in the collision
// tracker and is deliberately unaffected.
func (r *Registry) Clear() {
	r.subs = make(map[core.SerialNumber]*Submarine)
	r.order = nil
}

// Count returns the number of registered submarines.
func (r *Registry) Count() int {
	return len(r.subs)
}

// Serials iterates serial numbers in insertion order. The sequence is
// restartable: each range recomputes from current registry state rather
// than a frozen snapshot, so mutation mid-iteration is a caller hazard.
func (r *Registry) Serials() iter.Seq[core.SerialNumber] {
	return func(yield func(core.SerialNumber) bool) {
		for _, sn := range r.order {
			if _, ok := r.subs[sn]; !ok {
				continue
			}
			if !yield(sn) {
				return
			}
		}
	}
}

// all returns submarines in insertion order.
func (r *Registry) all() []*Submarine {
	out := make([]*Submarine, 0, len(r.subs))
	for _, sn := range r.order {
		if sub, ok := r.subs[sn]; ok {
			out = append(out, sub)
		}
	}
	return out
}
