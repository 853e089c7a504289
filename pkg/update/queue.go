package update

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lattice/update"

// Update is a deferred write against a live surface.
type Update func() error

// Observer receives flush statistics.
type Observer interface {
	// Flushed is called after each non-empty flush.
	Flushed(applied, failed int, elapsed time.Duration)
}

type entry struct {
	key any
	fn  Update
}

// Queue holds pending updates until Flush is called.
//
// Queue is safe for concurrent use, but the trees that feed it are not:
// all nodes of a tree are expected to be driven from one goroutine.
type Queue struct {
	mu      sync.Mutex
	pending []entry
	keyed   map[any]int

	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger used to report failed updates.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithObserver sets the flush observer.
func WithObserver(o Observer) Option {
	return func(q *Queue) {
		q.observer = o
	}
}

// WithTracer sets the tracer used for flush spans.
func WithTracer(t trace.Tracer) Option {
	return func(q *Queue) {
		q.tracer = t
	}
}

// New creates an empty Queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		keyed: make(map[any]int),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = slog.Default().With("component", "update")
	}
	if q.tracer == nil {
		q.tracer = otel.Tracer(tracerName)
	}
	return q
}

// SetObserver replaces the flush observer. Passing nil removes it.
func (q *Queue) SetObserver(o Observer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.observer = o
}

// Enqueue adds an update to the end of the queue.
func (q *Queue) Enqueue(fn Update) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, entry{fn: fn})
}

// EnqueueKeyed adds an update for key. If an update for the same key is
// still pending it is replaced in place; otherwise the update goes to the end
// of the queue. key must be comparable.
func (q *Queue) EnqueueKeyed(key any, fn Update) {
	if fn == nil {
		return
	}
	if key == nil {
		q.Enqueue(fn)
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if i, ok := q.keyed[key]; ok {
		q.pending[i].fn = fn
		return
	}
	q.keyed[key] = len(q.pending)
	q.pending = append(q.pending, entry{key: key, fn: fn})
}

// Len returns the number of pending updates.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pending reports whether an update for key is waiting to be flushed.
func (q *Queue) Pending(key any) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.keyed[key]
	return ok
}

// drain takes the pending updates, leaving the queue empty.
func (q *Queue) drain() ([]entry, Observer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	if len(q.keyed) > 0 {
		q.keyed = make(map[any]int)
	}
	return batch, q.observer
}

// Flush runs every pending update in enqueue order. A failing update does
// not stop the others; the failures are logged and returned joined.
func (q *Queue) Flush(ctx context.Context) error {
	batch, observer := q.drain()
	if len(batch) == 0 {
		return nil
	}

	_, span := q.tracer.Start(ctx, "update.Flush",
		trace.WithAttributes(attribute.Int("lattice.updates", len(batch))))
	defer span.End()

	start := time.Now()
	var errs []error
	for _, e := range batch {
		if err := e.fn(); err != nil {
			q.logger.Warn("deferred update failed", "error", err)
			errs = append(errs, err)
		}
	}
	elapsed := time.Since(start)

	if observer != nil {
		observer.Flushed(len(batch)-len(errs), len(errs), elapsed)
	}

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "deferred update failed")
	}
	return err
}

var (
	defaultQueue     *Queue
	defaultQueueOnce sync.Once
)

// Default returns the process-wide queue.
func Default() *Queue {
	defaultQueueOnce.Do(func() {
		defaultQueue = New()
	})
	return defaultQueue
}

// Enqueue adds an update to the process-wide queue.
func Enqueue(fn Update) {
	Default().Enqueue(fn)
}

// Flush flushes the process-wide queue.
func Flush(ctx context.Context) error {
	return Default().Flush(ctx)
}
