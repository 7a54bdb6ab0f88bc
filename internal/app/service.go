// Package service wires the summary engine, its queue and its store into
// the operations the HTTP and MCP adapters expose.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/rd2weekly/internal/adapters/markdown"
	"github.com/okian/rd2weekly/internal/adapters/mq/queue"
	"github.com/okian/rd2weekly/internal/adapters/mq/worker"
	"github.com/okian/rd2weekly/internal/adapters/repository"
	"github.com/okian/rd2weekly/internal/domain/dedupe"
	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/internal/domain/summary"
	"github.com/okian/rd2weekly/pkg/logger"
	"github.com/okian/rd2weekly/pkg/metrics"
)

// Service owns the submission pipeline and the read side.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	builder  *summary.Builder
	renderer *markdown.Renderer

	workerCount    int
	queueSize      int
	dedupeSize     int
	builderOptions []summary.Option
	nicknames      map[string]string

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of summary workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets how many submitted periods may wait.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBuilderOptions configures the summary builder.
func WithBuilderOptions(opts ...summary.Option) Option {
	return func(s *Service) {
		s.builderOptions = append(s.builderOptions, opts...)
	}
}

// WithNicknames sets the player nicknames used in markdown.
func WithNicknames(nicknames map[string]string) Option {
	return func(s *Service) {
		s.nicknames = nicknames
	}
}

// WithStore replaces the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a Service. The builder and renderer are ready at once;
// the queue and workers start with Start.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   64,
		dedupeSize:  1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.builder = summary.New(append([]summary.Option{summary.WithLogger(s.logger.Named("summary"))}, s.builderOptions...)...)

	r, err := markdown.New(markdown.WithNicknames(s.nicknames))
	if err != nil {
		return nil, err
	}
	s.renderer = r
	return s, nil
}

// Start creates the queue and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting summary service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	deduper := s.deduper
	s.pool = worker.NewPool(s.workerCount, s.queue, s.builder, s.store,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithOnFailure(func(j queue.Job, _ error) {
			deduper.Unrecord(context.Background(), j.Key)
		}),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "summary service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping summary service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "summary service stopped")
}

// Submit validates a period and queues it. A period whose document was
// already accepted is reported as a duplicate and not queued again.
func (s *Service) Submit(ctx context.Context, p period.Period) (key string, duplicate bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", false, ErrNotStarted
	}

	w, err := p.Build()
	if err != nil {
		metrics.RecordErrorByComponent("service", "invalid_period")
		return "", false, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", false, fmt.Errorf("encode period %d: %w", p.Number, err)
	}
	key = dedupe.Key(p.Number, raw)

	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordPeriodDuplicate()
		s.logger.Debug(ctx, "duplicate period", logger.Int("period", p.Number), logger.String("key", key))
		return key, true, nil
	}
	if err := s.queue.Enqueue(ctx, queue.Job{Key: key, Week: w, Submitted: time.Now()}); err != nil {
		s.deduper.Unrecord(ctx, key)
		return key, false, fmt.Errorf("queue period %d: %w", p.Number, err)
	}
	metrics.RecordPeriodSubmitted()
	s.logger.Debug(ctx, "period queued", logger.Int("period", p.Number), logger.String("key", key))
	return key, false, nil
}

// Summarize builds a period's summary synchronously without storing it.
func (s *Service) Summarize(ctx context.Context, p period.Period) (summary.Summary, error) {
	w, err := p.Build()
	if err != nil {
		return summary.Summary{}, err
	}
	return s.builder.Build(ctx, w)
}

// Render formats a summary as markdown.
func (s *Service) Render(sum summary.Summary) (string, error) {
	return s.renderer.Render(sum)
}

// Section returns one category of a summary.
func (s *Service) Section(sum summary.Summary, c summary.Category) (summary.Section, error) {
	sec, ok := sum.Section(c)
	if !ok {
		return summary.Section{}, fmt.Errorf("%w: %s", ErrNoSection, c)
	}
	return sec, nil
}

// Summary returns the stored summary of a period.
func (s *Service) Summary(ctx context.Context, n int) (summary.Summary, error) {
	return s.store.Summary(ctx, n)
}

// Markdown returns the stored summary of a period as markdown.
func (s *Service) Markdown(ctx context.Context, n int) (string, error) {
	sum, err := s.store.Summary(ctx, n)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(sum)
}

// Periods lists stored periods.
func (s *Service) Periods(ctx context.Context) []int {
	return s.store.Periods(ctx)
}

// Standings returns the top-n season standings.
func (s *Service) Standings(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.store.Standings(ctx, n)
}

// Rank returns one team's season standing.
func (s *Service) Rank(ctx context.Context, team string) (repository.Entry, error) {
	return s.store.Rank(ctx, team)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"periods":     len(s.store.Periods(ctx)),
		"teams":       s.store.Count(ctx),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["seenSubmissions"] = s.deduper.Size()
	}
	return stats
}
