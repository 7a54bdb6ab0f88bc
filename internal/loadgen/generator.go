package loadgen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/okian/rd2weekly/internal/domain/period"
)

// Leaderboard sizes and point ranges.
const (
	hitterBoardSize  = 12
	pitcherBoardSize = 24
	hittingMin       = 20.0
	hittingRange     = 80.0
	pitchingMin      = -5.0
	pitchingRange    = 60.0
	hitterMax        = 30.0
	pitcherMax       = 40.0
	idStride         = 1000
)

const utilityPosition = "U"

var hitterPositions = []string{"C", "1B", "2B", "3B", "SS", "CF", "OF"}

// Generate builds a season of cfg.Periods periods, numbered from 1.
func Generate(cfg *Config) ([]period.Period, error) {
	if cfg.Teams < 2 {
		return nil, fmt.Errorf("loadgen: need at least 2 teams, got %d", cfg.Teams)
	}
	if cfg.Periods < 1 {
		return nil, fmt.Errorf("loadgen: need at least 1 period, got %d", cfg.Periods)
	}
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	out := make([]period.Period, 0, cfg.Periods)
	for n := 1; n <= cfg.Periods; n++ {
		out = append(out, generatePeriod(r, cfg, n))
	}
	return out, nil
}

func teamName(i int) string { return fmt.Sprintf("Team %02d", i+1) }

// half rounds to the nearest half point, the granularity of fantasy scoring.
func half(x float64) float64 { return math.Round(x*2) / 2 }

func generatePeriod(r *rand.Rand, cfg *Config, n int) period.Period {
	p := period.Period{Number: n}
	for i := 0; i < cfg.Teams; i++ {
		tr := period.TeamRecord{
			Name:           teamName(i),
			HittingPoints:  half(hittingMin + r.Float64()*hittingRange),
			PitchingPoints: half(pitchingMin + r.Float64()*pitchingRange),
		}
		if len(cfg.Divisions) > 0 {
			tr.Division = cfg.Divisions[i%len(cfg.Divisions)]
		}
		p.Teams = append(p.Teams, tr)
	}

	order := r.Perm(cfg.Teams)
	for i := 0; i+1 < len(order); i += 2 {
		p.Matchups = append(p.Matchups, period.Pairing{Home: teamName(order[i]), Away: teamName(order[i+1])})
	}
	if len(order)%2 == 1 {
		p.Matchups = append(p.Matchups, period.Pairing{Home: teamName(order[len(order)-1]), Away: "BYE"})
	}

	var hitters []period.LeaderRow
	for k, pos := range hitterPositions {
		board := hitterBoard(r, pos, int64(k+1)*idStride)
		hitters = append(hitters, board.Players...)
		p.Leaders = append(p.Leaders, board)
	}
	p.Leaders = append(p.Leaders, utilityBoard(hitters))
	p.Leaders = append(p.Leaders, pitcherBoard(r, int64(len(hitterPositions)+1)*idStride))
	return p
}

func hitterBoard(r *rand.Rand, pos string, base int64) period.Leaderboard {
	rows := make([]period.LeaderRow, hitterBoardSize)
	for j := range rows {
		rows[j] = period.LeaderRow{
			ID:     base + int64(j),
			Name:   fmt.Sprintf("%s Hitter %d", pos, j+1),
			Points: half(r.Float64() * hitterMax),
		}
	}
	sortRows(rows)
	return period.Leaderboard{Position: pos, Players: rows}
}

// utilityBoard is the best hitters of every position, the way the league
// site lists its U leaders.
func utilityBoard(hitters []period.LeaderRow) period.Leaderboard {
	rows := append([]period.LeaderRow(nil), hitters...)
	sortRows(rows)
	if len(rows) > hitterBoardSize {
		rows = rows[:hitterBoardSize]
	}
	return period.Leaderboard{Position: utilityPosition, Players: rows}
}

func pitcherBoard(r *rand.Rand, base int64) period.Leaderboard {
	rows := make([]period.LeaderRow, pitcherBoardSize)
	for j := range rows {
		games := 1 + r.IntN(3)
		started := 0
		if r.IntN(2) == 0 {
			started = 1 + r.IntN(min(games, 2))
		}
		rows[j] = period.LeaderRow{
			ID:           base + int64(j),
			Name:         fmt.Sprintf("Pitcher %d", j+1),
			Points:       half(r.Float64()*pitcherMax - 5),
			Games:        games,
			GamesStarted: started,
		}
	}
	sortRows(rows)
	return period.Leaderboard{Position: period.PitcherBoard, Players: rows}
}

// sortRows orders a board best first, as the league site prints it.
func sortRows(rows []period.LeaderRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Points > rows[j].Points })
}
