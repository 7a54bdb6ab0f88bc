// Package markdown renders a weekly summary as the league's markdown post.
package markdown

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/lineup"
	"github.com/okian/rd2weekly/internal/domain/matchup"
	"github.com/okian/rd2weekly/internal/domain/summary"
)

//go:embed post.md.tmpl
var postTemplate string

const bullet = "* "

// Renderer turns summaries into markdown. It is safe for concurrent use.
type Renderer struct {
	nicknames map[string]string
	tmpl      *template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithNicknames replaces player names by id.
func WithNicknames(nicknames map[string]string) Option {
	return func(r *Renderer) {
		for id, name := range nicknames {
			r.nicknames[id] = name
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("post").Parse(postTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse post template: %w", err)
	}
	r := &Renderer{nicknames: make(map[string]string), tmpl: tmpl}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type block struct {
	Title  string
	Prefix string
	Lines  []string
}

// Render writes every non-empty section in order, separated by blank lines.
func (r *Renderer) Render(s summary.Summary) (string, error) {
	blocks := make([]block, 0, len(s.Sections))
	for _, sec := range s.Sections {
		lines := r.Lines(sec)
		if len(lines) == 0 {
			continue
		}
		prefix := bullet
		if sec.Kind == summary.KindDivisions {
			prefix = ""
		}
		blocks = append(blocks, block{Title: sec.Title, Prefix: prefix, Lines: lines})
	}
	var out bytes.Buffer
	if err := r.tmpl.Execute(&out, blocks); err != nil {
		return "", fmt.Errorf("render period %d: %w", s.Period, err)
	}
	return out.String(), nil
}

// Lines returns the section body without bullets or header.
func (r *Renderer) Lines(sec summary.Section) []string {
	switch sec.Kind {
	case summary.KindTeams:
		lines := make([]string, 0, len(sec.Teams))
		for _, row := range sec.Teams {
			lines = append(lines, tied(teamLine(row.Team, row.Points), row.Tied, row.Place))
		}
		return lines
	case summary.KindPlayers:
		lines := make([]string, 0, len(sec.Players))
		for _, row := range sec.Players {
			lines = append(lines, tied(r.playerLine(row.Player, row.Points), row.Tied, row.Place))
		}
		return lines
	case summary.KindMatchups:
		lines := make([]string, 0, len(sec.Matchups))
		for _, m := range sec.Matchups {
			lines = append(lines, tied(matchupLine(sec.Category, m), len(sec.Matchups) > 1, 1))
		}
		return lines
	case summary.KindSweeps:
		lines := make([]string, 0, len(sec.Sweeps))
		for _, sw := range sec.Sweeps {
			lines = append(lines, tied(sweepLine(sec.Category, sw), len(sec.Sweeps) > 1, 1))
		}
		return lines
	case summary.KindLineups:
		return r.lineupLines(sec.Lineups)
	case summary.KindDivisions:
		return divisionLines(sec.Divisions)
	}
	return nil
}

func tied(line string, isTied bool, place int) string {
	if !isTied {
		return line
	}
	return fmt.Sprintf("%s (tied for %s)", line, Ordinal(place))
}

func teamLine(name string, points float64) string {
	return name + ", " + Points(points)
}

func (r *Renderer) name(p entity.Player) string {
	if nick, ok := r.nicknames[strconv.FormatInt(p.ID, 10)]; ok {
		return nick
	}
	return p.Name
}

func (r *Renderer) playerLine(p entity.Player, points float64) string {
	return fmt.Sprintf("%s, %s, %s", r.name(p), p.TeamName(), Points(points))
}

func team(t entity.Team) string { return teamLine(t.Name, t.Points()) }

func matchupLine(c summary.Category, m matchup.Matchup) string {
	if m.Tied() {
		return fmt.Sprintf("Tied at %s: %s and %s", Points(m.Team1.Points()), m.Team1.Name, m.Team2.Name)
	}
	switch c {
	case summary.WeakestWin:
		return fmt.Sprintf("%s: over %s", team(m.Team1), team(m.Team2))
	case summary.StrongestLoss:
		return fmt.Sprintf("%s: lost to %s", team(m.Team2), team(m.Team1))
	}
	return fmt.Sprintf("By %s: %s over %s", Points(m.Differential()), team(m.Team1), team(m.Team2))
}

func sweepLine(c summary.Category, sw matchup.Sweep) string {
	verb := "over"
	if c == summary.Unluckiest {
		verb = "lost to"
	}
	opponents := make([]string, len(sw.Opponents))
	for i, o := range sw.Opponents {
		opponents[i] = team(o)
	}
	return fmt.Sprintf("%s: %s %s", team(sw.Team), verb, strings.Join(opponents, "; and "))
}

func (r *Renderer) lineupLines(lineups []lineup.Lineup) []string {
	var lines []string
	for _, l := range lineups {
		for _, a := range l.Assignments {
			lines = append(lines, a.Position+": "+r.playerLine(a.Player, a.Player.Points))
		}
	}
	return lines
}

func divisionLines(t *summary.DivisionTable) []string {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}
	header := []string{"**Division**"}
	sep := []string{":---:"}
	points := []string{"**Points**"}
	mean := []string{"**Points/Team**"}
	std := []string{"**Std. Deviation**"}
	record := []string{"**Record**"}
	for _, col := range t.Columns {
		header = append(header, "**"+col.Name+"**")
		sep = append(sep, ":---:")
		points = append(points, Number(col.Points))
		mean = append(mean, Number(round1(col.Mean)))
		std = append(std, Number(round1(col.StdDev)))
		if col.League {
			record = append(record, "")
			continue
		}
		record = append(record, strings.TrimSuffix(fmt.Sprintf("%d-%d-%d", col.Wins, col.Losses, col.Ties), "-0"))
	}
	rows := [][]string{header, sep, points, mean, std, record}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = "| " + strings.Join(row, " | ") + " |"
	}
	return lines
}
