package worker

import (
	"github.com/okian/rd2weekly/internal/adapters/mq/queue"
	"github.com/okian/rd2weekly/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnFailure registers a callback for jobs that could not be summarised
// or stored, e.g. to let the submission be retried.
func WithOnFailure(fn func(j queue.Job, err error)) Option {
	return func(w *InMemoryWorker) {
		w.onFailure = fn
	}
}
