// Package matchup orders head-to-head team pairs canonically and answers the
// weekly extremal questions about them.
package matchup

import (
	"github.com/okian/rd2weekly/internal/domain/entity"
)

// Matchup is a canonical team pair: Team1 has the higher total, and on an
// exact tie the lexicographically first name.
type Matchup struct {
	Team1 entity.Team `json:"team1"`
	Team2 entity.Team `json:"team2"`
}

// New builds the canonical matchup of two teams; New(a, b) == New(b, a).
func New(a, b entity.Team) Matchup {
	fa, fb := entity.Fixed(a.Points()), entity.Fixed(b.Points())
	if fb > fa || (fb == fa && b.Name < a.Name) {
		a, b = b, a
	}
	return Matchup{Team1: a, Team2: b}
}

// Identity is the ordered pair of team names.
func (m Matchup) Identity() string { return m.Team1.Name + "|" + m.Team2.Name }

// Differential is the non-negative point gap.
func (m Matchup) Differential() float64 {
	return float64(entity.Fixed(m.Team1.Points())-entity.Fixed(m.Team2.Points())) / 1e6
}

// Tied reports a zero differential.
func (m Matchup) Tied() bool {
	return entity.Fixed(m.Team1.Points()) == entity.Fixed(m.Team2.Points())
}

// Winner returns the winning team; ok is false on a tie.
func (m Matchup) Winner() (entity.Team, bool) {
	if m.Tied() {
		return entity.Team{}, false
	}
	return m.Team1, true
}

// Loser returns the losing team; ok is false on a tie.
func (m Matchup) Loser() (entity.Team, bool) {
	if m.Tied() {
		return entity.Team{}, false
	}
	return m.Team2, true
}

// Outcome is the classification of one matchup.
type Outcome struct {
	Winner string    `json:"winner,omitempty"`
	Loser  string    `json:"loser,omitempty"`
	Tied   bool      `json:"tied"`
	Pair   [2]string `json:"pair"`
}

// Classify returns the winner and loser, or the tied pair.
func Classify(m Matchup) Outcome {
	o := Outcome{Pair: [2]string{m.Team1.Name, m.Team2.Name}}
	if m.Tied() {
		o.Tied = true
		return o
	}
	o.Winner, o.Loser = m.Team1.Name, m.Team2.Name
	return o
}

// Records tallies win, loss and tie opponent lists for every team that
// appears in the matchups.
func Records(matchups []Matchup) map[string]entity.Record {
	out := make(map[string]entity.Record)
	add := func(team string, f func(*entity.Record)) {
		r := out[team]
		f(&r)
		out[team] = r
	}
	for _, m := range matchups {
		a, b := m.Team1.Name, m.Team2.Name
		if m.Tied() {
			add(a, func(r *entity.Record) { r.Ties = append(r.Ties, b) })
			add(b, func(r *entity.Record) { r.Ties = append(r.Ties, a) })
			continue
		}
		add(a, func(r *entity.Record) { r.Wins = append(r.Wins, b) })
		add(b, func(r *entity.Record) { r.Losses = append(r.Losses, a) })
	}
	return out
}
