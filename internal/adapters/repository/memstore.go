package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/summary"
	"github.com/okian/rd2weekly/pkg/metrics"
)

type stored struct {
	summary summary.Summary
	teams   []entity.Team
}

// snapshot is the ranked standings published after every save; readers use
// it without taking the store lock.
type snapshot struct {
	entries []Entry
	byTeam  map[string]int
}

// MemoryStore keeps everything in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	byPeriod map[int]stored
	snapshot atomic.Pointer[snapshot]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{byPeriod: make(map[int]stored)}
	s.snapshot.Store(&snapshot{byTeam: map[string]int{}})
	return s
}

// Save implements Store.Save.
func (s *MemoryStore) Save(ctx context.Context, sum summary.Summary, teams []entity.Team) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sum.Period < 1 {
		return fmt.Errorf("%w: period %d", ErrInvalidInput, sum.Period)
	}

	s.mu.Lock()
	s.byPeriod[sum.Period] = stored{summary: sum, teams: append([]entity.Team(nil), teams...)}
	snap := s.rebuild()
	count := len(s.byPeriod)
	s.mu.Unlock()

	s.snapshot.Store(snap)
	metrics.UpdateSummariesStored(count)
	return nil
}

// Summary implements Store.Summary.
func (s *MemoryStore) Summary(_ context.Context, period int) (summary.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byPeriod[period]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return summary.Summary{}, fmt.Errorf("period %d: %w", period, ErrNotFound)
	}
	return st.summary, nil
}

// Periods implements Store.Periods.
func (s *MemoryStore) Periods(_ context.Context) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.byPeriod))
	for p := range s.byPeriod {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Standings implements Store.Standings.
func (s *MemoryStore) Standings(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	entries := s.snapshot.Load().entries
	if n > len(entries) {
		n = len(entries)
	}
	return append([]Entry(nil), entries[:n]...), nil
}

// Rank implements Store.Rank.
func (s *MemoryStore) Rank(_ context.Context, team string) (Entry, error) {
	snap := s.snapshot.Load()
	i, ok := snap.byTeam[team]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("team %q: %w", team, ErrNotFound)
	}
	return snap.entries[i], nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().entries)
}

// rebuild totals every stored period. Must be called with s.mu held.
func (s *MemoryStore) rebuild() *snapshot {
	totals := make(map[string]*Entry)
	points := make(map[string]int64)
	for _, st := range s.byPeriod {
		for _, t := range st.teams {
			e, ok := totals[t.Name]
			if !ok {
				e = &Entry{Team: t.Name}
				totals[t.Name] = e
			}
			points[t.Name] += entity.Fixed(t.Points())
			e.Wins += len(t.Record.Wins)
			e.Losses += len(t.Record.Losses)
			e.Ties += len(t.Record.Ties)
			e.Periods++
		}
	}

	entries := make([]Entry, 0, len(totals))
	for name, e := range totals {
		e.Points = float64(points[name]) / 1e6
		entries = append(entries, *e)
	}
	sortEntries(entries)
	assignRanksWithTies(entries)

	snap := &snapshot{entries: entries, byTeam: make(map[string]int, len(entries))}
	for i, e := range entries {
		snap.byTeam[e.Team] = i
	}
	return snap
}

// sortEntries orders by points (descending) with the team name as tie-breaker.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		pi, pj := entity.Fixed(entries[i].Points), entity.Fixed(entries[j].Points)
		if pi != pj {
			return pi > pj
		}
		return entries[i].Team < entries[j].Team
	})
}

// assignRanksWithTies gives equal points the same rank; the next rank skips
// the positions the tie used (1, 2, 2, 4).
func assignRanksWithTies(entries []Entry) {
	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && entity.Equal(entries[j].Points, entries[i].Points) {
			j++
		}
		for k := i; k < j; k++ {
			entries[k].Rank = i + 1
			entries[k].Tied = j-i > 1
		}
		i = j
	}
}
