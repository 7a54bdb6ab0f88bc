// Package repository keeps built summaries and the season standings derived
// from them.
package repository

import (
	"context"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/summary"
)

// Entry is one team's line in the season standings.
type Entry struct {
	Rank    int     `json:"rank"`
	Tied    bool    `json:"tied"`
	Team    string  `json:"team"`
	Points  float64 `json:"points"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Ties    int     `json:"ties"`
	Periods int     `json:"periods"`
}

// Store provides read/write access to summaries and standings.
type Store interface {
	// Save stores the summary of a period together with the team lines it
	// was built from. A later save of the same period replaces the earlier
	// one, standings included.
	Save(ctx context.Context, s summary.Summary, teams []entity.Team) error

	// Summary returns the latest summary of a period, or ErrNotFound.
	Summary(ctx context.Context, period int) (summary.Summary, error)

	// Periods lists the stored period numbers in ascending order.
	Periods(ctx context.Context) []int

	// Standings returns the top-n season entries, best first.
	Standings(ctx context.Context, n int) ([]Entry, error)

	// Rank returns one team's season entry, or ErrNotFound.
	Rank(ctx context.Context, team string) (Entry, error)

	// Count returns the number of teams in the standings.
	Count(ctx context.Context) int
}
