package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/lineup"
	"github.com/okian/rd2weekly/internal/domain/matchup"
	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/internal/domain/ranking"
	"github.com/okian/rd2weekly/pkg/logger"
)

const (
	defaultBoardSize = 3
	defaultSeed      = 10
)

// Builder computes summaries. It holds configuration only and is safe for
// concurrent use.
type Builder struct {
	log              logger.Logger
	boardSize        int
	pitcherBoardSize int
	allStarSeed      int
	maxEvaluations   int
	slots            lineup.Slots
	parallel         bool
	now              func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithBoardSize sets the team board budget.
func WithBoardSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.boardSize = n
		}
	}
}

// WithPitcherBoardSize sets the pitcher role board budget.
func WithPitcherBoardSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.pitcherBoardSize = n
		}
	}
}

// WithAllStarSeed sets how many overall leaders seed the all-star pools and
// how deep each positional board is read.
func WithAllStarSeed(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.allStarSeed = n
		}
	}
}

// WithMaxEvaluations caps the all-star search.
func WithMaxEvaluations(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.maxEvaluations = n
		}
	}
}

// WithSlots sets the all-star lineup slots.
func WithSlots(slots lineup.Slots) Option {
	return func(b *Builder) {
		if len(slots) > 0 {
			b.slots = slots
		}
	}
}

// WithParallel computes categories on separate goroutines.
func WithParallel(enabled bool) Option {
	return func(b *Builder) {
		b.parallel = enabled
	}
}

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		log:              logger.Nop(),
		boardSize:        defaultBoardSize,
		pitcherBoardSize: defaultBoardSize,
		allStarSeed:      defaultSeed,
		slots:            lineup.DefaultSlots(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Slots returns the configured lineup slots.
func (b *Builder) Slots() lineup.Slots { return b.slots }

type job func(ctx context.Context, w period.Week, st *Stats) Section

// Build computes every category for the week. Categories are independent;
// a configuration problem in one is reported on its section and does not
// stop the others. Only context cancellation fails the build.
func (b *Builder) Build(ctx context.Context, w period.Week) (Summary, error) {
	jobs := b.jobs()
	sections := make([]Section, len(jobs))
	stats := make([]Stats, len(jobs))

	if b.parallel {
		var wg sync.WaitGroup
		for i, j := range jobs {
			wg.Add(1)
			go func(i int, j job) {
				defer wg.Done()
				if ctx.Err() != nil {
					return
				}
				sections[i] = j(ctx, w, &stats[i])
			}(i, j)
		}
		wg.Wait()
	} else {
		for i, j := range jobs {
			if ctx.Err() != nil {
				break
			}
			sections[i] = j(ctx, w, &stats[i])
		}
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	s := Summary{
		ID:          uuid.NewString(),
		Period:      w.Number,
		GeneratedAt: b.now().UTC(),
		Sections:    sections,
	}
	for _, st := range stats {
		s.Stats.add(st)
	}
	b.log.Debug(ctx, "summary built",
		logger.String("summary_id", s.ID),
		logger.Int("period", s.Period),
		logger.Int("sections", len(s.Sections)),
		logger.Int("offers", s.Stats.Offers),
		logger.Int("failed_sections", s.Stats.Failed),
	)
	return s, nil
}

func (s *Stats) add(o Stats) {
	s.Offers += o.Offers
	s.Rejected += o.Rejected
	s.Displaced += o.Displaced
	s.LineupsFound += o.LineupsFound
	s.LineupEvaluated += o.LineupEvaluated
	s.LineupPruned += o.LineupPruned
	s.LineupMillis += o.LineupMillis
	s.Failed += o.Failed
}

func (s *Stats) offers(r ranking.Stats) {
	s.Offers += r.Placed + r.Tied + r.Rejected + r.Duplicate
	s.Rejected += r.Rejected
	s.Displaced += r.Displaced
}

func (b *Builder) jobs() []job {
	return []job{
		b.teamBoard(TopTeams, ranking.Descending, entity.TeamTotal),
		b.teamBoard(WorstTeams, ranking.Ascending, entity.TeamTotal),
		b.teamBoard(TopHitting, ranking.Descending, entity.TeamHitting),
		b.teamBoard(WorstHitting, ranking.Ascending, entity.TeamHitting),
		b.teamBoard(TopPitching, ranking.Descending, entity.TeamPitching),
		b.teamBoard(WorstPitching, ranking.Ascending, entity.TeamPitching),
		b.pitcherBoard(TopTwoStart, ranking.Descending, entity.RoleTwoStart),
		b.pitcherBoard(TopOneStart, ranking.Descending, entity.RoleOneStart),
		b.pitcherBoard(TopRelievers, ranking.Descending, entity.RoleReliever),
		b.pitcherBoard(WorstStarters, ranking.Ascending, entity.RoleStarter),
		b.pitcherBoard(WorstRelievers, ranking.Ascending, entity.RoleReliever),
		b.allStars,
		matchupSection(Blowout, (*matchup.Classifier).Blowout),
		matchupSection(Closest, (*matchup.Classifier).Closest),
		matchupSection(StrongestLoss, (*matchup.Classifier).StrongestLoss),
		sweepSection(Unluckiest, (*matchup.Classifier).Unluckiest),
		matchupSection(WeakestWin, (*matchup.Classifier).WeakestWin),
		sweepSection(Luckiest, (*matchup.Classifier).Luckiest),
		divisionSection,
	}
}

func newSection(c Category, k Kind) Section {
	return Section{Category: c, Title: Titles[c], Kind: k}
}

func (b *Builder) teamBoard(c Category, dir ranking.Direction, key func(entity.Team) float64) job {
	return func(_ context.Context, w period.Week, st *Stats) Section {
		tr := ranking.New(dir, b.boardSize, key)
		st.offers(ranking.OfferAll(tr, w.Teams))
		sec := newSection(c, KindTeams)
		for _, row := range tr.Standings() {
			sec.Teams = append(sec.Teams, TeamRow{Place: row.Place, Tied: row.Tied, Points: row.Points, Team: row.Entity.Name})
		}
		return sec
	}
}

func (b *Builder) pitcherBoard(c Category, dir ranking.Direction, role string) job {
	return func(_ context.Context, w period.Week, st *Stats) Section {
		tr := ranking.New(dir, b.pitcherBoardSize, entity.PlayerPoints)
		st.offers(ranking.OfferAll(tr, w.RoleBoard(role)))
		return playerSection(c, tr)
	}
}

func playerSection(c Category, tr *ranking.Tracker[entity.Player]) Section {
	sec := newSection(c, KindPlayers)
	for _, row := range tr.Standings() {
		sec.Players = append(sec.Players, PlayerRow{Place: row.Place, Tied: row.Tied, Points: row.Points, Player: row.Entity})
	}
	return sec
}

func (b *Builder) allStars(ctx context.Context, w period.Week, st *Stats) Section {
	sec := newSection(AllStars, KindLineups)

	boards := make(map[string][]entity.Player, len(b.slots))
	for _, slot := range b.slots {
		tr := ranking.New(ranking.Descending, b.allStarSeed, entity.PlayerPoints)
		st.offers(ranking.OfferAll(tr, w.Leaders[slot.Position]))
		boards[slot.Position] = tr.Members()
	}

	start := time.Now()
	res, err := lineup.AllStars(ctx, boards, b.slots, b.allStarSeed, lineup.WithMaxEvaluations(b.maxEvaluations))
	st.LineupMillis = float64(time.Since(start).Microseconds()) / 1000
	st.LineupEvaluated = res.Evaluated
	st.LineupPruned = res.Pruned
	if err != nil {
		st.Failed++
		sec.Error = err.Error()
		level := b.log.Warn
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			level = b.log.Debug
		}
		level(ctx, "all-star lineup unavailable", logger.Int("period", w.Number), logger.Error(err))
		return sec
	}
	st.LineupsFound = len(res.Lineups)
	sec.Lineups = res.Lineups
	b.log.Debug(ctx, "all-star search finished",
		logger.String("run_id", res.RunID),
		logger.Int("lineups", len(res.Lineups)),
		logger.Int("evaluated", res.Evaluated),
		logger.Int("pruned", res.Pruned),
		logger.Float64("points", res.Points),
	)
	return sec
}

func matchupSection(c Category, query func(*matchup.Classifier) []matchup.Matchup) job {
	return func(_ context.Context, w period.Week, _ *Stats) Section {
		sec := newSection(c, KindMatchups)
		sec.Matchups = query(matchup.NewClassifier(w.Teams, w.Matchups))
		return sec
	}
}

func sweepSection(c Category, query func(*matchup.Classifier) []matchup.Sweep) job {
	return func(_ context.Context, w period.Week, _ *Stats) Section {
		sec := newSection(c, KindSweeps)
		sec.Sweeps = query(matchup.NewClassifier(w.Teams, w.Matchups))
		return sec
	}
}

func divisionSection(_ context.Context, w period.Week, _ *Stats) Section {
	sec := newSection(DivisionStats, KindDivisions)
	sec.Divisions = Divisions(w)
	return sec
}
