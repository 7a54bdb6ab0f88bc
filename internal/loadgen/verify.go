package loadgen

import (
	"fmt"
	"sort"

	"github.com/okian/rd2weekly/internal/adapters/repository"
	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/period"
)

// Expected totals a season the way the service should: points in fixed
// point, results from the scoreboard, one period count per appearance.
func Expected(periods []period.Period) (map[string]repository.Entry, error) {
	points := make(map[string]int64)
	out := make(map[string]repository.Entry)
	for _, p := range periods {
		w, err := p.Build()
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", p.Number, err)
		}
		for _, t := range w.Teams {
			e := out[t.Name]
			e.Team = t.Name
			e.Wins += len(t.Record.Wins)
			e.Losses += len(t.Record.Losses)
			e.Ties += len(t.Record.Ties)
			e.Periods++
			out[t.Name] = e
			points[t.Name] += entity.Fixed(t.Points())
		}
	}
	for name, e := range out {
		e.Points = float64(points[name]) / 1e6
		out[name] = e
	}
	return out, nil
}

// Verify compares reported standings with the expected totals and returns
// one line per problem.
func Verify(expected map[string]repository.Entry, got []repository.Entry) []string {
	var problems []string
	if len(got) != len(expected) {
		problems = append(problems, fmt.Sprintf("standings list %d teams, expected %d", len(got), len(expected)))
	}
	seen := make(map[string]struct{}, len(got))
	for i, e := range got {
		seen[e.Team] = struct{}{}
		want, ok := expected[e.Team]
		if !ok {
			problems = append(problems, fmt.Sprintf("unexpected team %q", e.Team))
			continue
		}
		if !entity.Equal(e.Points, want.Points) {
			problems = append(problems, fmt.Sprintf("%s: points %.2f, expected %.2f", e.Team, e.Points, want.Points))
		}
		if e.Wins != want.Wins || e.Losses != want.Losses || e.Ties != want.Ties {
			problems = append(problems, fmt.Sprintf("%s: record %d-%d-%d, expected %d-%d-%d",
				e.Team, e.Wins, e.Losses, e.Ties, want.Wins, want.Losses, want.Ties))
		}
		if e.Periods != want.Periods {
			problems = append(problems, fmt.Sprintf("%s: %d periods, expected %d", e.Team, e.Periods, want.Periods))
		}
		if i > 0 && entity.Fixed(e.Points) > entity.Fixed(got[i-1].Points) {
			problems = append(problems, fmt.Sprintf("standings not sorted at %d", i))
		}
		if i > 0 && entity.Equal(e.Points, got[i-1].Points) && e.Rank != got[i-1].Rank {
			problems = append(problems, fmt.Sprintf("%s and %s tie on points but rank %d and %d",
				got[i-1].Team, e.Team, got[i-1].Rank, e.Rank))
		}
	}
	missing := make([]string, 0)
	for name := range expected {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		problems = append(problems, fmt.Sprintf("missing team %q", name))
	}
	return problems
}
