package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	defaultQueueSize   = 64
	defaultSaveTimeout = 5 * time.Second
)

// Logger is the logging interface used by the writer.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// WriterOptions tunes a Writer. Zero values select defaults.
type WriterOptions struct {
	// QueueSize bounds the number of distinct collections awaiting a save.
	QueueSize int

	// SaveTimeout bounds one Gateway.Save call.
	SaveTimeout time.Duration

	Logger Logger
}

// job is a pending save of one collection. Later submissions for the same
// collection replace docs and share the save.
type job struct {
	collection string
	docs       map[string]json.RawMessage
	results    []*Result
}

// Writer saves collections asynchronously on a single goroutine.
//
// Submissions for a collection that is already queued are coalesced: only
// the newest snapshot is written and every waiting Result receives its
// outcome. Saves of different collections run in submission order.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Writer struct {
	gw          Gateway
	logger      Logger
	queueSize   int
	saveTimeout time.Duration

	mu       sync.Mutex
	pending  map[string]*job
	order    []string
	inflight *job
	closed   bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewWriter starts a Writer over gw. Call Close to drain and stop it.
func NewWriter(gw Gateway, opts WriterOptions) *Writer {
	w := &Writer{
		gw:          gw,
		logger:      opts.Logger,
		queueSize:   opts.QueueSize,
		saveTimeout: opts.SaveTimeout,
		pending:     make(map[string]*job),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	if w.logger == nil {
		w.logger = noopLogger{}
	}
	if w.queueSize <= 0 {
		w.queueSize = defaultQueueSize
	}
	if w.saveTimeout <= 0 {
		w.saveTimeout = defaultSaveTimeout
	}

	w.wg.Add(1)
	go w.run()
	return w
}

// Submit queues docs as the new content of collection and returns
// immediately. The caller owns nothing after the call; docs must not be
// mutated afterwards.
func (w *Writer) Submit(collection string, docs map[string]json.RawMessage) *Result {
	res := newResult()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		res.resolve(ErrWriterClosed)
		return res
	}

	if j, ok := w.pending[collection]; ok {
		j.docs = docs
		j.results = append(j.results, res)
		w.mu.Unlock()
		return res
	}

	if len(w.pending) >= w.queueSize {
		w.mu.Unlock()
		w.logger.Warn("persistence queue full, dropping save", "collection", collection)
		res.resolve(ErrQueueFull)
		return res
	}

	w.pending[collection] = &job{collection: collection, docs: docs, results: []*Result{res}}
	w.order = append(w.order, collection)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return res
}

// Flush waits until every save queued or running at call time has completed.
// It returns the first save error encountered, or ctx.Err().
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	var waiting []*Result
	if w.inflight != nil {
		waiting = append(waiting, w.inflight.results...)
	}
	for _, j := range w.pending {
		waiting = append(waiting, j.results...)
	}
	w.mu.Unlock()

	var firstErr error
	for _, r := range waiting {
		if err := r.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close stops accepting writes, drains the queue and stops the worker.
// It returns ctx.Err() if the drain outlives ctx.
func (w *Writer) Close(ctx context.Context) error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.done)
	})

	stopped := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.done:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		j := w.next()
		if j == nil {
			return
		}
		w.save(j)
	}
}

func (w *Writer) next() *job {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.inflight = nil
	if len(w.order) == 0 {
		return nil
	}
	name := w.order[0]
	w.order = w.order[1:]
	j := w.pending[name]
	delete(w.pending, name)
	w.inflight = j
	return j
}

func (w *Writer) save(j *job) {
	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()

	err := w.gw.Save(ctx, j.collection, j.docs)
	if err != nil {
		// In-memory state stays authoritative; the next save reconciles.
		w.logger.Warn("persisting collection failed",
			"collection", j.collection,
			"entities", len(j.docs),
			"error", err,
		)
	} else {
		w.logger.Debug("collection persisted", "collection", j.collection, "entities", len(j.docs))
	}

	w.mu.Lock()
	results := j.results
	w.mu.Unlock()

	for _, r := range results {
		r.resolve(err)
	}
}
