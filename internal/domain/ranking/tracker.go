// Package ranking keeps the best N entities of one superlative category as
// tiers of tied entities.
//
// A Tracker holds at most maxRanks tiers, best first. Entities that tie on
// the key function share a tier, and a tier is always moved, kept or dropped
// as a whole. The member budget is maxRanks: walking down from the best
// tier, the first tier whose cumulative membership reaches the budget is
// the last one kept.
package ranking

import (
	"github.com/okian/rd2weekly/internal/domain/entity"
)

// Direction selects which end of the key ordering is best.
type Direction int

const (
	// Descending ranks the highest key first.
	Descending Direction = iota
	// Ascending ranks the lowest key first.
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "ascending"
	}
	return "descending"
}

// Identified is the only thing a tracker needs to know about its entities
// besides their key.
type Identified interface {
	Identity() string
}

// Tier is a snapshot of one rung.
type Tier[T Identified] struct {
	Points  float64
	Members []T
}

// Placement is the outcome of an Offer. Rank is 1-based and 0 when the
// entity is not tracked after the offer.
type Placement[T Identified] struct {
	Rank      int
	Tied      bool
	Displaced []T
	Duplicate bool
}

type tier[T Identified] struct {
	fixed   int64
	points  float64
	members []T
}

// Tracker is a bounded, tie-aware ranking. It is not safe for concurrent use.
type Tracker[T Identified] struct {
	dir      Direction
	maxRanks int
	key      func(T) float64
	tiers    []tier[T]
	index    map[string]struct{}
}

// New creates a tracker. maxRanks below 1 is treated as 1.
func New[T Identified](dir Direction, maxRanks int, key func(T) float64) *Tracker[T] {
	if maxRanks < 1 {
		maxRanks = 1
	}
	return &Tracker[T]{
		dir:      dir,
		maxRanks: maxRanks,
		key:      key,
		index:    make(map[string]struct{}),
	}
}

// MaxRanks returns the tier and member budget.
func (t *Tracker[T]) MaxRanks() int { return t.maxRanks }

// Direction returns the ordering of the tracker.
func (t *Tracker[T]) Direction() Direction { return t.dir }

func (t *Tracker[T]) better(a, b int64) bool {
	if t.dir == Ascending {
		return a < b
	}
	return a > b
}

// Offer submits an entity. Offering an identity already tracked is a no-op.
func (t *Tracker[T]) Offer(e T) Placement[T] {
	id := e.Identity()
	if _, ok := t.index[id]; ok {
		return Placement[T]{Duplicate: true}
	}

	points := t.key(e)
	fp := entity.Fixed(points)

	pos := len(t.tiers)
	joined := false
	for i := range t.tiers {
		if fp == t.tiers[i].fixed {
			t.tiers[i].members = append(t.tiers[i].members, e)
			pos, joined = i, true
			break
		}
		if t.better(fp, t.tiers[i].fixed) {
			pos = i
			break
		}
	}

	var displaced []T
	if !joined {
		if pos >= t.maxRanks {
			return Placement[T]{}
		}
		t.tiers = append(t.tiers, tier[T]{})
		copy(t.tiers[pos+1:], t.tiers[pos:])
		t.tiers[pos] = tier[T]{fixed: fp, points: points, members: []T{e}}
		if len(t.tiers) > t.maxRanks {
			displaced = t.cut(t.maxRanks, displaced)
		}
	}
	t.index[id] = struct{}{}
	displaced = t.prune(displaced)

	p := Placement[T]{}
	if _, kept := t.index[id]; kept {
		p.Rank = pos + 1
		p.Tied = len(t.tiers[pos].members) > 1
	}
	// The offered entity is never reported as displaced by its own offer.
	for i := 0; i < len(displaced); i++ {
		if displaced[i].Identity() == id {
			displaced = append(displaced[:i], displaced[i+1:]...)
			break
		}
	}
	p.Displaced = displaced
	return p
}

// prune clears every tier below the first one whose cumulative membership
// meets the budget.
func (t *Tracker[T]) prune(displaced []T) []T {
	count := 0
	for i := range t.tiers {
		count += len(t.tiers[i].members)
		if count >= t.maxRanks {
			return t.cut(i+1, displaced)
		}
	}
	return displaced
}

// cut drops tiers[from:] and appends their members to displaced.
func (t *Tracker[T]) cut(from int, displaced []T) []T {
	if from >= len(t.tiers) {
		return displaced
	}
	for _, tr := range t.tiers[from:] {
		for _, m := range tr.members {
			delete(t.index, m.Identity())
			displaced = append(displaced, m)
		}
	}
	t.tiers = t.tiers[:from]
	return displaced
}

// Tier returns the members at a 1-based rank, empty when unoccupied.
func (t *Tracker[T]) Tier(rank int) []T {
	if rank < 1 || rank > len(t.tiers) {
		return []T{}
	}
	return append([]T(nil), t.tiers[rank-1].members...)
}

// Tiers returns a copy of every occupied tier, best first.
func (t *Tracker[T]) Tiers() []Tier[T] {
	out := make([]Tier[T], len(t.tiers))
	for i, tr := range t.tiers {
		out[i] = Tier[T]{Points: tr.points, Members: append([]T(nil), tr.members...)}
	}
	return out
}

// Len returns the number of tracked entities.
func (t *Tracker[T]) Len() int { return len(t.index) }

// Contains reports whether an identity is tracked.
func (t *Tracker[T]) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Members returns every tracked entity, best tier first, in offer order within a tier.
func (t *Tracker[T]) Members() []T {
	out := make([]T, 0, len(t.index))
	for _, tr := range t.tiers {
		out = append(out, tr.members...)
	}
	return out
}
