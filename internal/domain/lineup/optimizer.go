// Package lineup finds every maximum-point all-star lineup for a set of
// position pools and slot counts.
package lineup

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/rd2weekly/internal/domain/entity"
)

const ctxCheckInterval = 1024

// Option configures a search.
type Option func(*search)

// WithMaxEvaluations caps the number of complete lineups evaluated. Zero means no cap.
func WithMaxEvaluations(n int) Option {
	return func(s *search) {
		if n >= 0 {
			s.maxEvaluations = n
		}
	}
}

// WithRunID sets the identifier reported in the result.
func WithRunID(id string) Option {
	return func(s *search) {
		if id != "" {
			s.runID = id
		}
	}
}

// Result is every co-optimal lineup plus search figures.
type Result struct {
	RunID     string   `json:"run_id"`
	Lineups   []Lineup `json:"lineups"`
	Points    float64  `json:"points"`
	Evaluated int      `json:"evaluated"`
	Pruned    int      `json:"pruned"`
	Skipped   int      `json:"skipped"`
}

type seat struct {
	position string
	pool     []entity.Player
	// offset is this seat's index among the seats of its position.
	offset int
}

type search struct {
	ctx            context.Context
	runID          string
	maxEvaluations int

	seats []seat
	bound []int64 // bound[i] caps what seats i.. can still add

	used    map[int64]struct{}
	picks   []entity.Player
	index   []int
	best    int64
	found   bool
	keys    map[string]struct{}
	lineups []Lineup

	evaluated int
	skipped   int
	err       error
}

// Optimize returns all duplicate-free lineups of maximum total points.
//
// Pools smaller than their slot count fail with a *PoolError. Pools are first
// reduced (see Reduce), then searched depth first in slot order. Seats of the
// same position take players in pool order so each player set is visited
// once per position, and a branch is abandoned only when even the best
// remaining candidates cannot reach the current maximum, so ties at the
// maximum are all kept.
func Optimize(ctx context.Context, pools Pools, slots Slots, opts ...Option) (Result, error) {
	if err := slots.Validate(); err != nil {
		return Result{}, err
	}
	for _, s := range slots {
		if have := len(distinct(pools[s.Position])); have < s.Count {
			return Result{}, &PoolError{Position: s.Position, Have: have, Need: s.Count}
		}
	}

	s := &search{
		ctx:   ctx,
		runID: uuid.NewString(),
		used:  make(map[int64]struct{}),
		keys:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	before := 0
	for _, slot := range slots {
		before += len(distinct(pools[slot.Position]))
	}
	reduced := Reduce(pools, slots)
	after := 0
	for _, slot := range slots {
		pool := reduced[slot.Position]
		byPoints(pool)
		after += len(pool)
		for o := 0; o < slot.Count; o++ {
			s.seats = append(s.seats, seat{position: slot.Position, pool: pool, offset: o})
		}
	}

	s.bound = make([]int64, len(s.seats)+1)
	for i := len(s.seats) - 1; i >= 0; i-- {
		st := s.seats[i]
		s.bound[i] = s.bound[i+1] + entity.Fixed(st.pool[st.offset].Points)
	}
	s.picks = make([]entity.Player, len(s.seats))
	s.index = make([]int, len(s.seats))

	s.walk(0, 0)

	res := Result{
		RunID:     s.runID,
		Lineups:   s.lineups,
		Evaluated: s.evaluated,
		Pruned:    before - after,
		Skipped:   s.skipped,
	}
	if s.err != nil {
		return res, s.err
	}
	if !s.found {
		return res, fmt.Errorf("%w: %d slots", ErrNoLineup, len(s.seats))
	}
	res.Points = float64(s.best) / 1e6
	return res, nil
}

func (s *search) walk(i int, total int64) {
	if s.err != nil {
		return
	}
	if i == len(s.seats) {
		s.evaluate(total)
		return
	}
	if s.found && total+s.bound[i] < s.best {
		s.skipped++
		return
	}

	st := s.seats[i]
	start := 0
	if st.offset > 0 {
		start = s.index[i-1] + 1
	}
	for j := start; j < len(st.pool); j++ {
		p := st.pool[j]
		if _, taken := s.used[p.ID]; taken {
			continue
		}
		s.used[p.ID] = struct{}{}
		s.picks[i], s.index[i] = p, j
		s.walk(i+1, total+entity.Fixed(p.Points))
		delete(s.used, p.ID)
		if s.err != nil {
			return
		}
	}
}

func (s *search) evaluate(total int64) {
	s.evaluated++
	if s.evaluated%ctxCheckInterval == 0 && s.ctx != nil {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
	}
	if s.maxEvaluations > 0 && s.evaluated > s.maxEvaluations {
		s.err = fmt.Errorf("%w: %d lineups", ErrSearchLimit, s.maxEvaluations)
		return
	}
	if s.found && total < s.best {
		return
	}
	if !s.found || total > s.best {
		s.best, s.found = total, true
		s.lineups = nil
		s.keys = make(map[string]struct{})
	}

	l := Lineup{Assignments: make([]Assignment, len(s.seats))}
	for k, st := range s.seats {
		l.Assignments[k] = Assignment{Position: st.position, Player: s.picks[k]}
	}
	key := l.Key()
	if _, dup := s.keys[key]; dup {
		return
	}
	s.keys[key] = struct{}{}
	s.lineups = append(s.lineups, l)
}
