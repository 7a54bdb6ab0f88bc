// Package worker builds and stores summaries for queued periods.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/rd2weekly/internal/adapters/mq/queue"
	"github.com/okian/rd2weekly/internal/domain/entity"
	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/internal/domain/summary"
	"github.com/okian/rd2weekly/pkg/logger"
	"github.com/okian/rd2weekly/pkg/metrics"
)

const (
	poolShutdownTimeout = 30 * time.Second
	workerStopTimeout   = 5 * time.Second
)

// Builder computes the summary of a week.
type Builder interface {
	Build(ctx context.Context, w period.Week) (summary.Summary, error)
}

// Saver stores a built summary.
type Saver interface {
	Save(ctx context.Context, s summary.Summary, teams []entity.Team) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until its queue closes or it is told to stop.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// active counts workers currently processing a job, across all pools.
var active atomic.Int64

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	builder   Builder
	saver     Saver
	name      string
	onFailure func(queue.Job, error)

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, b Builder, s Saver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		builder:  b,
		saver:    s,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing period", logger.Int("period", j.Week.Number), logger.Error(err))
				if w.onFailure != nil {
					w.onFailure(j, err)
				}
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error { //nolint:gocritic // Job arrives by value from the channel
	metrics.UpdateWorkerActiveCount(int(active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	s, err := w.builder.Build(ctx, j.Week)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordSummaryError("build")
		metrics.RecordErrorByComponent("worker", "build_error")
		return fmt.Errorf("build period %d: %w", j.Week.Number, err)
	}
	observe(s)

	if err := w.saver.Save(ctx, s, j.Week.Teams); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordSummaryError("store")
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("store period %d: %w", j.Week.Number, err)
	}

	metrics.RecordSummaryBuilt()
	metrics.RecordSummaryLatency(float64(time.Since(j.Submitted).Milliseconds()))
	w.logger.Info(ctx, "summary stored",
		logger.String("summary_id", s.ID),
		logger.String("key", j.Key),
		logger.Int("period", s.Period),
		logger.Int("failed_sections", s.Stats.Failed),
	)
	return nil
}

// observe exports the counters a build gathered.
func observe(s summary.Summary) {
	st := s.Stats
	metrics.RecordRankingOffers(metrics.OfferPlaced, st.Offers-st.Rejected)
	metrics.RecordRankingOffers(metrics.OfferRejected, st.Rejected)
	metrics.RecordRankingEvictions(st.Displaced)
	metrics.RecordLineupEvaluated(st.LineupEvaluated)
	metrics.RecordLineupPruned(st.LineupPruned)
	metrics.RecordLineupSearchLatency(st.LineupMillis)
	metrics.UpdateLineupCoOptimal(st.LineupsFound)
	for _, sec := range s.Sections {
		if !sec.Empty() {
			metrics.RecordCategoryComputed(string(sec.Kind))
		}
	}
}

// Pool manages multiple workers on one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	cancel  context.CancelFunc
}

// NewPool creates a pool. workerCount < 1 means one worker per CPU.
func NewPool(workerCount int, q Queue, b Builder, s Saver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, b, s, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool. The workers keep ctx's values but
// not its cancellation: they run until Shutdown has drained the queue.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
}

func (p *Pool) stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

// Shutdown closes the queue, lets workers drain what is left and waits
// for them. Once ctx (or the pool timeout) ends, in-flight builds are
// cancelled and the remaining workers are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	defer p.stop()
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.stop()
			stopCtx, stop := context.WithTimeout(context.Background(), workerStopTimeout)
			err := w.Shutdown(stopCtx)
			stop()
			if err != nil {
				p.logger.Warn(ctx, "worker shutdown failed", logger.Int("worker_id", i), logger.Error(err))
			}
			timedOut++
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
