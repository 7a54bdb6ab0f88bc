// Package period turns one scoring period's already-scraped records into
// the entities the ranking engine works on.
package period

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/matchup"
)

// PitcherBoard is the leaderboard position carrying every pitcher's line.
const PitcherBoard = "SP:RP"

// Placeholder names the scoreboard shows instead of a real opponent.
var blankTeams = map[string]struct{}{"TBA": {}, "BYE": {}, entity.FreeAgent: {}}

// Period is the input document for one scoring period.
type Period struct {
	Number   int           `json:"number"`
	Teams    []TeamRecord  `json:"teams"`
	Matchups []Pairing     `json:"matchups"`
	Leaders  []Leaderboard `json:"leaders"`
}

// TeamRecord is one fantasy team. Totals are computed from the roster when
// one is given; otherwise the explicit totals are used.
type TeamRecord struct {
	Name           string      `json:"name"`
	Division       string      `json:"division,omitempty"`
	HittingPoints  float64     `json:"hitting_points,omitempty"`
	PitchingPoints float64     `json:"pitching_points,omitempty"`
	Players        []RosterRow `json:"players,omitempty"`
}

// RosterRow is a rostered player and the lineup slot they occupied.
type RosterRow struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Slot   string  `json:"slot"`
	Active bool    `json:"active"`
}

// Pairing is one scoreboard matchup.
type Pairing struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Leaderboard is a positional points leaderboard, best first.
type Leaderboard struct {
	Position string      `json:"position"`
	Players  []LeaderRow `json:"players"`
}

// LeaderRow is one leaderboard line. Games are only read for pitchers.
type LeaderRow struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Points       float64 `json:"points"`
	Games        int     `json:"games,omitempty"`
	GamesStarted int     `json:"games_started,omitempty"`
}

// Week is the validated, entity form of a period.
type Week struct {
	Number   int
	Teams    []entity.Team
	Matchups []matchup.Matchup
	// Leaders maps a position to its board, best first.
	Leaders map[string][]entity.Player
	// Pitchers is the pitcher board, best first; role boards are cut from it.
	Pitchers []entity.Player
}

// Decode reads a period document.
func Decode(r io.Reader) (Period, error) {
	var p Period
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Period{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return p, nil
}

// Build validates the period and produces its Week.
func (p Period) Build() (Week, error) {
	if p.Number < 1 {
		return Week{}, fmt.Errorf("%w: %d", ErrInvalidPeriod, p.Number)
	}
	if len(p.Teams) == 0 {
		return Week{}, ErrEmptyPeriod
	}

	teams := make(map[string]entity.Team, len(p.Teams))
	order := make([]string, 0, len(p.Teams))
	rostered := make(map[int64]string)
	for _, tr := range p.Teams {
		name := strings.TrimSpace(tr.Name)
		if name == "" {
			return Week{}, fmt.Errorf("%w: blank team name", ErrUnknownTeam)
		}
		if _, dup := teams[name]; dup {
			return Week{}, fmt.Errorf("%w: %s", ErrDuplicateTeam, name)
		}
		teams[name] = teamTotals(name, tr)
		order = append(order, name)
		for _, row := range tr.Players {
			rostered[row.ID] = name
		}
	}

	// A pair listed twice, in either order, is one matchup.
	var matchups []matchup.Matchup
	paired := make(map[string]struct{}, len(p.Matchups))
	for _, pair := range p.Matchups {
		if isBlank(pair.Home) || isBlank(pair.Away) {
			continue
		}
		home, ok := teams[pair.Home]
		if !ok {
			return Week{}, fmt.Errorf("%w: %s", ErrUnknownTeam, pair.Home)
		}
		away, ok := teams[pair.Away]
		if !ok {
			return Week{}, fmt.Errorf("%w: %s", ErrUnknownTeam, pair.Away)
		}
		m := matchup.New(home, away)
		if _, dup := paired[m.Identity()]; dup {
			continue
		}
		paired[m.Identity()] = struct{}{}
		matchups = append(matchups, m)
	}

	records := matchup.Records(matchups)
	w := Week{Number: p.Number, Leaders: make(map[string][]entity.Player)}
	for _, name := range order {
		t := teams[name]
		t.Record = records[name]
		w.Teams = append(w.Teams, t)
	}
	// Matchups carry the teams with their records filled in.
	byName := make(map[string]entity.Team, len(w.Teams))
	for _, t := range w.Teams {
		byName[t.Name] = t
	}
	for _, m := range matchups {
		w.Matchups = append(w.Matchups, matchup.New(byName[m.Team1.Name], byName[m.Team2.Name]))
	}

	for _, board := range p.Leaders {
		players, err := boardPlayers(board, rostered)
		if err != nil {
			return Week{}, err
		}
		if board.Position == PitcherBoard {
			w.Pitchers = players
			continue
		}
		w.Leaders[board.Position] = players
	}
	return w, nil
}

func isBlank(name string) bool {
	_, ok := blankTeams[strings.TrimSpace(name)]
	return ok || strings.TrimSpace(name) == ""
}

// teamTotals sums active roster rows; slots naming a pitcher count as pitching.
func teamTotals(name string, tr TeamRecord) entity.Team {
	t := entity.Team{Name: name, Division: tr.Division}
	if len(tr.Players) == 0 {
		t.HittingPoints, t.PitchingPoints = tr.HittingPoints, tr.PitchingPoints
		return t
	}
	var hitting, pitching int64
	for _, row := range tr.Players {
		if !row.Active {
			continue
		}
		if strings.Contains(row.Slot, "P") {
			pitching += entity.Fixed(row.Points)
		} else {
			hitting += entity.Fixed(row.Points)
		}
	}
	t.HittingPoints = float64(hitting) / 1e6
	t.PitchingPoints = float64(pitching) / 1e6
	return t
}

// boardPlayers converts a leaderboard, merging repeated rows of one player
// and keeping best-first order.
func boardPlayers(board Leaderboard, rostered map[int64]string) ([]entity.Player, error) {
	byID := make(map[int64]int, len(board.Players))
	out := make([]entity.Player, 0, len(board.Players))
	for _, row := range board.Players {
		p := entity.Player{
			ID:           row.ID,
			Name:         row.Name,
			Team:         rostered[row.ID],
			Points:       row.Points,
			Positions:    []string{board.Position},
			Games:        row.Games,
			GamesStarted: row.GamesStarted,
		}
		if p.Team == "" {
			p.Team = entity.FreeAgent
		}
		if i, seen := byID[row.ID]; seen {
			merged, err := entity.Merge(out[i], p)
			if err != nil {
				return nil, err
			}
			out[i] = merged
			continue
		}
		byID[row.ID] = len(out)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return entity.Fixed(out[i].Points) > entity.Fixed(out[j].Points)
	})
	return out, nil
}

// RoleBoard filters the pitcher board to lines matching a role.
func (w Week) RoleBoard(role string) []entity.Player {
	out := make([]entity.Player, 0, len(w.Pitchers))
	for _, p := range w.Pitchers {
		if entity.MatchesRole(role, p.Games, p.GamesStarted) {
			p.Positions = []string{role}
			out = append(out, p)
		}
	}
	return out
}

// Divisions groups team names by division in first-seen order. Teams
// without a division are left out.
func (w Week) Divisions() ([]string, map[string][]entity.Team) {
	var names []string
	groups := make(map[string][]entity.Team)
	for _, t := range w.Teams {
		if t.Division == "" {
			continue
		}
		if _, ok := groups[t.Division]; !ok {
			names = append(names, t.Division)
		}
		groups[t.Division] = append(groups[t.Division], t)
	}
	return names, groups
}
