package syncer

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/sechaba/ragwatch/internal/chunker"
	"github.com/sechaba/ragwatch/internal/embedder"
	"github.com/sechaba/ragwatch/internal/extractor"
	"github.com/sechaba/ragwatch/internal/tracker"
	"github.com/sechaba/ragwatch/internal/vectorstore"
	"github.com/sechaba/ragwatch/pkg/types"
)

// Config contains engine tuning knobs
type Config struct {
	// MaxParallel bounds files processed concurrently (default: NumCPU)
	MaxParallel int
}

// Stats tracks engine progress with atomic counters
type Stats struct {
	Indexed atomic.Int64
	Skipped atomic.Int64
	Failed  atomic.Int64
	Deleted atomic.Int64
	Purged  atomic.Int64
}

// Engine drives the extract -> chunk -> embed -> store pipeline for file
// events. Events for one path are processed strictly in order with at most
// one in flight; distinct paths proceed in parallel up to MaxParallel.
type Engine struct {
	tracker   tracker.Tracker
	extractor *extractor.Extractor
	chunker   *chunker.Chunker
	embedder  embedder.Embedder
	store     vectorstore.Store
	logger    *log.Logger

	sem chan struct{}

	// Per-path serialization: a path is either idle, active, or active with
	// exactly one pending event. Newer pending events replace older ones, so
	// a stale intermediate state is never processed.
	mu      sync.Mutex
	active  map[string]bool
	pending map[string]types.FileEvent
	wg      sync.WaitGroup

	stats Stats
}

// New creates an Engine over the given pipeline stages
func New(tr tracker.Tracker, ex *extractor.Extractor, ch *chunker.Chunker,
	emb embedder.Embedder, store vectorstore.Store, cfg Config, logger *log.Logger) *Engine {

	maxParallel := cfg.MaxParallel
	if maxParallel <= 0 {
		maxParallel = runtime.NumCPU()
	}

	return &Engine{
		tracker:   tr,
		extractor: ex,
		chunker:   ch,
		embedder:  emb,
		store:     store,
		logger:    logger,
		sem:       make(chan struct{}, maxParallel),
		active:    make(map[string]bool),
		pending:   make(map[string]types.FileEvent),
	}
}

// Stats returns the engine's progress counters
func (e *Engine) Stats() *Stats {
	return &e.stats
}

// Run consumes events until the channel closes or ctx is canceled, then
// waits for in-flight work to finish
func (e *Engine) Run(ctx context.Context, events <-chan types.FileEvent) error {
	for {
		select {
		case <-ctx.Done():
			e.wg.Wait()
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				e.wg.Wait()
				return nil
			}
			e.dispatch(ctx, ev)
		}
	}
}

// Wait blocks until all dispatched work has drained
func (e *Engine) Wait() {
	e.wg.Wait()
}

// dispatch hands an event to the path's worker, starting one if the path is
// idle. If the path is busy the event replaces any queued one: only the
// newest observation matters once the in-flight cycle completes.
func (e *Engine) dispatch(ctx context.Context, ev types.FileEvent) {
	path, err := types.NormalizePath(ev.Path)
	if err != nil {
		e.logger.Warn("dropping event with bad path", "path", ev.Path, "error", err)
		return
	}
	ev.Path = path

	e.mu.Lock()
	if e.active[path] {
		e.pending[path] = ev
		e.mu.Unlock()
		return
	}
	e.active[path] = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.worker(ctx, ev)
}

func (e *Engine) worker(ctx context.Context, ev types.FileEvent) {
	defer e.wg.Done()

	for {
		select {
		case e.sem <- struct{}{}:
		case <-ctx.Done():
			e.finish(ev.Path)
			return
		}

		if err := e.Process(ctx, ev); err != nil {
			e.logger.Error("event processing failed", "path", ev.Path, "kind", ev.Kind, "error", err)
		}
		<-e.sem

		e.mu.Lock()
		next, ok := e.pending[ev.Path]
		if !ok {
			delete(e.active, ev.Path)
			e.mu.Unlock()
			return
		}
		delete(e.pending, ev.Path)
		e.mu.Unlock()
		ev = next
	}
}

// finish drops a path's active mark and any pending event without processing
func (e *Engine) finish(path string) {
	e.mu.Lock()
	delete(e.active, path)
	delete(e.pending, path)
	e.mu.Unlock()
}

// Process handles a single event synchronously. Run uses it under the
// per-path ordering guarantee; Reconcile calls it directly.
//
// Per-file failures (extraction, embedding, store writes) are recorded on
// the tracker and do not return an error; only infrastructure failures
// (tracker unavailable) do.
func (e *Engine) Process(ctx context.Context, ev types.FileEvent) error {
	switch ev.Kind {
	case types.EventDeleted:
		return e.processDelete(ctx, ev.Path)
	case types.EventRenamed:
		if ev.OldPath != "" {
			if err := e.processDelete(ctx, ev.OldPath); err != nil {
				return err
			}
		}
		return e.processUpsert(ctx, ev.Path)
	default:
		return e.processUpsert(ctx, ev.Path)
	}
}
