// Package summary computes every weekly superlative for one scoring period.
package summary

import (
	"time"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/lineup"
	"github.com/okian/rd2weekly/internal/domain/matchup"
)

// Kind says which payload of a Section is populated.
type Kind string

const (
	KindTeams     Kind = "teams"
	KindPlayers   Kind = "players"
	KindMatchups  Kind = "matchups"
	KindSweeps    Kind = "sweeps"
	KindLineups   Kind = "lineups"
	KindDivisions Kind = "divisions"
)

// Category names one superlative.
type Category string

const (
	TopTeams       Category = "top_teams"
	WorstTeams     Category = "worst_teams"
	TopHitting     Category = "top_hitting"
	WorstHitting   Category = "worst_hitting"
	TopPitching    Category = "top_pitching"
	WorstPitching  Category = "worst_pitching"
	TopTwoStart    Category = "top_two_start"
	TopOneStart    Category = "top_one_start"
	TopRelievers   Category = "top_relievers"
	WorstStarters  Category = "worst_starters"
	WorstRelievers Category = "worst_relievers"
	AllStars       Category = "all_stars"
	Blowout        Category = "blowout"
	Closest        Category = "closest"
	StrongestLoss  Category = "strongest_loss"
	Unluckiest     Category = "unluckiest"
	WeakestWin     Category = "weakest_win"
	Luckiest       Category = "luckiest"
	DivisionStats  Category = "division_stats"
)

// Titles are the section headers of the weekly post.
var Titles = map[Category]string{
	TopTeams:       "Top Three Teams of the Week",
	WorstTeams:     "Worst Three Teams of the Week",
	TopHitting:     "Offensive Powerhouses",
	WorstHitting:   "Forgot Their Bats",
	TopPitching:    "Pitching Factories",
	WorstPitching:  "Burnt Down Factories",
	TopTwoStart:    "Multi-Start Saviors",
	TopOneStart:    "1 Start Gods",
	TopRelievers:   "No Start Workhorses",
	WorstStarters:  "Had a Bad Day",
	WorstRelievers: "The Bullpen Disasters",
	AllStars:       "All Stars",
	Blowout:        "Blowout of the Week",
	Closest:        "Closest Matchup of the Week",
	StrongestLoss:  "Strongest Loss",
	Unluckiest:     "No Wins for the Effort",
	WeakestWin:     "Weakest Win",
	Luckiest:       "Dirty Cheater",
	DivisionStats:  "Division Stats",
}

// TeamRow is one ranked team.
type TeamRow struct {
	Place  int     `json:"place"`
	Tied   bool    `json:"tied"`
	Points float64 `json:"points"`
	Team   string  `json:"team"`
}

// PlayerRow is one ranked player.
type PlayerRow struct {
	Place  int           `json:"place"`
	Tied   bool          `json:"tied"`
	Points float64       `json:"points"`
	Player entity.Player `json:"player"`
}

// Section is one superlative of the post. Only the payload named by Kind is set.
type Section struct {
	Category  Category          `json:"category"`
	Title     string            `json:"title"`
	Kind      Kind              `json:"kind"`
	Teams     []TeamRow         `json:"teams,omitempty"`
	Players   []PlayerRow       `json:"players,omitempty"`
	Matchups  []matchup.Matchup `json:"matchups,omitempty"`
	Sweeps    []matchup.Sweep   `json:"sweeps,omitempty"`
	Lineups   []lineup.Lineup   `json:"lineups,omitempty"`
	Divisions *DivisionTable    `json:"divisions,omitempty"`
	// Error carries a configuration problem that left the section empty.
	Error string `json:"error,omitempty"`
}

// Empty reports whether the section has nothing to show.
func (s Section) Empty() bool {
	return len(s.Teams) == 0 && len(s.Players) == 0 && len(s.Matchups) == 0 &&
		len(s.Sweeps) == 0 && len(s.Lineups) == 0 && s.Divisions == nil
}

// Stats are counters gathered while building, for metrics and logs.
type Stats struct {
	Offers          int     `json:"offers"`
	Rejected        int     `json:"rejected"`
	Displaced       int     `json:"displaced"`
	LineupsFound    int     `json:"lineups_found"`
	LineupEvaluated int     `json:"lineup_evaluated"`
	LineupPruned    int     `json:"lineup_pruned"`
	LineupMillis    float64 `json:"lineup_ms"`
	Failed          int     `json:"failed_sections"`
}

// Summary is the full weekly post in section order.
type Summary struct {
	ID          string    `json:"id"`
	Period      int       `json:"period"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
	Stats       Stats     `json:"stats"`
}

// Section returns the section of a category.
func (s Summary) Section(c Category) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.Category == c {
			return sec, true
		}
	}
	return Section{}, false
}
