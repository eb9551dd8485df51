// internal/fleet/ranking.go
package fleet

import (
	"sort"

	"github.com/subcom/fleet/pkg/core"
)

// Ranking queries are read-only reductions over the fleet. Closest and
// Furthest order by squared distance from the base; Highest and Lowest
// order by the vertical coordinate value. Ties keep insertion order
// (stable sort). All fail with core.ErrEmptyFleet on an empty registry.

func (r *Registry) sortedByDistance() ([]*Submarine, error) {
	subs := r.all()
	if len(subs) == 0 {
		return nil, core.ErrEmptyFleet
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].position.DistanceSq() < subs[j].position.DistanceSq()
	})
	return subs, nil
}

func (r *Registry) sortedByVertical() ([]*Submarine, error) {
	subs := r.all()
	if len(subs) == 0 {
		return nil, core.ErrEmptyFleet
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].position.Vertical < subs[j].position.Vertical
	})
	return subs, nil
}

// Closest returns the submarine nearest the base.
func (r *Registry) Closest() (*Submarine, error) {
	subs, err := r.sortedByDistance()
	if err != nil {
		return nil, err
	}
	return subs[0], nil
}

// Furthest returns the submarine furthest from the base.
func (r *Registry) Furthest() (*Submarine, error) {
	subs, err := r.sortedByDistance()
	if err != nil {
		return nil, err
	}
	return subs[len(subs)-1], nil
}

// Lowest returns the submarine with the least vertical coordinate.
func (r *Registry) Lowest() (*Submarine, error) {
	subs, err := r.sortedByVertical()
	if err != nil {
		return nil, err
	}
	return subs[0], nil
}

// Highest returns the submarine with the greatest vertical coordinate.
func (r *Registry) Highest() (*Submarine, error) {
	subs, err := r.sortedByVertical()
	if err != nil {
		return nil, err
	}
	return subs[len(subs)-1], nil
}
