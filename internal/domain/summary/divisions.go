package summary

import (
	"gonum.org/v1/gonum/stat"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/period"
)

// LeagueColumn is the name of the all-teams column.
const LeagueColumn = "League"

// DivisionColumn holds one division's (or the league's) figures.
type DivisionColumn struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	// Record counts results against teams from other divisions. It is not
	// kept for the league column.
	Wins   int  `json:"wins"`
	Losses int  `json:"losses"`
	Ties   int  `json:"ties"`
	League bool `json:"league,omitempty"`
}

// DivisionTable is the divisions in first-seen order followed by the league.
type DivisionTable struct {
	Columns []DivisionColumn `json:"columns"`
}

// Divisions builds the table, or returns nil when there are no divisions or
// any division has fewer than two teams (a deviation needs two samples).
func Divisions(w period.Week) *DivisionTable {
	names, groups := w.Divisions()
	if len(names) == 0 {
		return nil
	}
	for _, n := range names {
		if len(groups[n]) < 2 {
			return nil
		}
	}
	divisionOf := make(map[string]string, len(w.Teams))
	for _, t := range w.Teams {
		divisionOf[t.Name] = t.Division
	}

	table := &DivisionTable{}
	for _, n := range names {
		col := column(n, groups[n])
		for _, t := range groups[n] {
			col.Wins += outside(t.Record.Wins, n, divisionOf)
			col.Losses += outside(t.Record.Losses, n, divisionOf)
			col.Ties += outside(t.Record.Ties, n, divisionOf)
		}
		table.Columns = append(table.Columns, col)
	}
	league := column(LeagueColumn, w.Teams)
	league.League = true
	table.Columns = append(table.Columns, league)
	return table
}

func column(name string, teams []entity.Team) DivisionColumn {
	xs := make([]float64, len(teams))
	var total int64
	for i, t := range teams {
		xs[i] = t.Points()
		total += entity.Fixed(xs[i])
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return DivisionColumn{Name: name, Points: float64(total) / 1e6, Mean: mean, StdDev: std}
}

func outside(opponents []string, division string, divisionOf map[string]string) int {
	n := 0
	for _, o := range opponents {
		if divisionOf[o] != division {
			n++
		}
	}
	return n
}
