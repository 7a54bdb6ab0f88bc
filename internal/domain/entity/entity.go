// Package entity holds the scoring records ranked by the rest of the engine:
// fantasy teams and players for one scoring period.
package entity

import (
	"sort"
	"strconv"
)

// FreeAgent is the team name shown for players on no fantasy roster.
const FreeAgent = "FA"

// Entity is anything with an identity and a point total for the period.
type Entity interface {
	Identity() string
	Score() float64
	Eligible() []string
	IsActive() bool
}

// SameEntity compares identities only; point totals never participate.
func SameEntity(a, b Entity) bool {
	return a.Identity() == b.Identity()
}

// Player is one MLB player's line for the period.
type Player struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Team         string   `json:"team"`
	Points       float64  `json:"points"`
	Positions    []string `json:"positions,omitempty"`
	Active       bool     `json:"active,omitempty"`
	Games        int      `json:"games,omitempty"`
	GamesStarted int      `json:"games_started,omitempty"`
}

func (p Player) Identity() string   { return strconv.FormatInt(p.ID, 10) }
func (p Player) Score() float64     { return p.Points }
func (p Player) Eligible() []string { return p.Positions }
func (p Player) IsActive() bool     { return p.Active }

// TeamName returns the fantasy team, FreeAgent when unknown.
func (p Player) TeamName() string {
	if p.Team == "" {
		return FreeAgent
	}
	return p.Team
}

// EligibleAt reports whether the player carries the position tag.
func (p Player) EligibleAt(position string) bool {
	for _, pos := range p.Positions {
		if pos == position {
			return true
		}
	}
	return false
}

// Record lists opponent names by result.
type Record struct {
	Wins   []string `json:"wins,omitempty"`
	Losses []string `json:"losses,omitempty"`
	Ties   []string `json:"ties,omitempty"`
}

// Opponents returns every opponent in name order.
func (r Record) Opponents() []string {
	out := make([]string, 0, len(r.Wins)+len(r.Losses)+len(r.Ties))
	out = append(out, r.Wins...)
	out = append(out, r.Losses...)
	out = append(out, r.Ties...)
	sort.Strings(out)
	return out
}

// Team is a fantasy team's line for the period.
type Team struct {
	Name           string  `json:"name"`
	Division       string  `json:"division,omitempty"`
	HittingPoints  float64 `json:"hitting_points"`
	PitchingPoints float64 `json:"pitching_points"`
	Record         Record  `json:"record"`
}

func (t Team) Identity() string   { return t.Name }
func (t Team) Score() float64     { return t.Points() }
func (t Team) Eligible() []string { return nil }
func (t Team) IsActive() bool     { return true }

// Points is the team total.
func (t Team) Points() float64 { return t.HittingPoints + t.PitchingPoints }

// Key functions for ranking the same team by different totals.
func TeamTotal(t Team) float64    { return t.Points() }
func TeamHitting(t Team) float64  { return t.HittingPoints }
func TeamPitching(t Team) float64 { return t.PitchingPoints }

// PlayerPoints is the key function for players.
func PlayerPoints(p Player) float64 { return p.Points }
