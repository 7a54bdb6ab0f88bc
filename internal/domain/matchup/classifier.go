package matchup

import (
	"sort"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/ranking"
)

// Sweep reports a team against every opponent it faced at once.
type Sweep struct {
	Team      entity.Team   `json:"team"`
	Opponents []entity.Team `json:"opponents"`
}

// Classifier answers the extremal queries over one period's matchups.
// Every query returns all co-equal results and an empty slice on empty input.
type Classifier struct {
	teams    map[string]entity.Team
	order    []string
	matchups []Matchup
}

// NewClassifier indexes teams by name and drops repeated matchups.
func NewClassifier(teams []entity.Team, matchups []Matchup) *Classifier {
	c := &Classifier{teams: make(map[string]entity.Team, len(teams))}
	for _, t := range teams {
		if _, ok := c.teams[t.Name]; !ok {
			c.order = append(c.order, t.Name)
		}
		c.teams[t.Name] = t
	}
	seen := make(map[string]struct{}, len(matchups))
	for _, m := range matchups {
		if _, dup := seen[m.Identity()]; dup {
			continue
		}
		seen[m.Identity()] = struct{}{}
		c.matchups = append(c.matchups, m)
	}
	return c
}

// Matchups returns the distinct matchups in input order.
func (c *Classifier) Matchups() []Matchup {
	return append([]Matchup(nil), c.matchups...)
}

func (c *Classifier) decided() []Matchup {
	out := make([]Matchup, 0, len(c.matchups))
	for _, m := range c.matchups {
		if !m.Tied() {
			out = append(out, m)
		}
	}
	return out
}

func extreme(dir ranking.Direction, ms []Matchup, key func(Matchup) float64) []Matchup {
	tr := ranking.New(dir, 1, key)
	ranking.OfferAll(tr, ms)
	return tr.Tier(1)
}

func differential(m Matchup) float64 { return m.Differential() }
func loserPoints(m Matchup) float64  { return m.Team2.Points() }
func winnerPoints(m Matchup) float64 { return m.Team1.Points() }

// Closest returns the decided matchups with the smallest differential.
func (c *Classifier) Closest() []Matchup {
	return extreme(ranking.Ascending, c.decided(), differential)
}

// Blowout returns the decided matchups with the largest differential.
func (c *Classifier) Blowout() []Matchup {
	return extreme(ranking.Descending, c.decided(), differential)
}

// StrongestLoss returns the decided matchups whose loser scored the most.
func (c *Classifier) StrongestLoss() []Matchup {
	return extreme(ranking.Descending, c.decided(), loserPoints)
}

// WeakestWin returns the decided matchups whose winner scored the least.
func (c *Classifier) WeakestWin() []Matchup {
	return extreme(ranking.Ascending, c.decided(), winnerPoints)
}

// Luckiest returns the lowest scoring teams that lost to nobody.
func (c *Classifier) Luckiest() []Sweep {
	return c.sweeps(ranking.Ascending, func(r entity.Record) bool { return len(r.Losses) == 0 })
}

// Unluckiest returns the highest scoring teams that beat nobody.
func (c *Classifier) Unluckiest() []Sweep {
	return c.sweeps(ranking.Descending, func(r entity.Record) bool { return len(r.Wins) == 0 })
}

func (c *Classifier) sweeps(dir ranking.Direction, eligible func(entity.Record) bool) []Sweep {
	tr := ranking.New(dir, 1, entity.TeamTotal)
	for _, name := range c.order {
		t := c.teams[name]
		if len(t.Record.Opponents()) == 0 || !eligible(t.Record) {
			continue
		}
		tr.Offer(t)
	}
	winners := tr.Tier(1)
	out := make([]Sweep, 0, len(winners))
	for _, t := range winners {
		out = append(out, Sweep{Team: t, Opponents: c.opponents(t)})
	}
	return out
}

// opponents resolves a team's opponents, best total first.
func (c *Classifier) opponents(t entity.Team) []entity.Team {
	names := t.Record.Opponents()
	out := make([]entity.Team, 0, len(names))
	for _, n := range names {
		if o, ok := c.teams[n]; ok {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := entity.Fixed(out[i].Points()), entity.Fixed(out[j].Points())
		if fi != fj {
			return fi > fj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
