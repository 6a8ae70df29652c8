// Package worker runs layout inference off the UI thread.
//
// A [Worker] owns one background goroutine and the detector session it
// analyzes with. The UI context communicates with it solely through two
// unbounded FIFO queues: requests in, results out. Every accepted request
// produces exactly one result - a real analysis or a fallback - before
// its key leaves the in-flight set.
//
// Submit, Poll, InFlight and IsIdle must all be called from the UI
// context; only the queues cross threads.
package worker

import (
	"log/slog"

	"github.com/tsawler/railread/layout"
	"github.com/tsawler/railread/model"
	"github.com/tsawler/railread/raster"
)

// Key identifies an analysis request: one page of one document.
type Key struct {
	Path string
	Page int
}

// Request asks for layout analysis of one page. The pixmap is prepared
// by the caller (rasterization is not thread-safe per document) and
// handed over whole; the worker becomes its sole reader.
type Request struct {
	Key    Key
	Pixmap *raster.Pixmap
}

// Result is the worker's answer to one request.
type Result struct {
	Key      Key
	Analysis *model.PageAnalysis

	// Degraded is set when the analysis is a fallback rather than a
	// detector result.
	Degraded bool
}

// Worker is the background analysis service.
type Worker struct {
	requests *fifo[Request]
	results  *fifo[Result]
	inFlight map[Key]bool
	done     chan struct{}
	log      *slog.Logger
}

// New starts the worker goroutine. A nil analyzer puts the worker in
// fallback mode (detector unavailable): it still drains its queue and
// answers every request with a synthetic one-block analysis, so the
// exactly-once contract holds either way.
func New(analyzer *layout.Analyzer, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	w := &Worker{
		requests: newFIFO[Request](),
		results:  newFIFO[Result](),
		inFlight: make(map[Key]bool),
		done:     make(chan struct{}),
		log:      log,
	}
	go w.run(analyzer)
	return w
}

func (w *Worker) run(analyzer *layout.Analyzer) {
	defer close(w.done)
	for {
		req, ok := w.requests.pop()
		if !ok {
			w.log.Info("analysis worker exiting")
			return
		}
		w.results.push(w.analyze(analyzer, req))
	}
}

func (w *Worker) analyze(analyzer *layout.Analyzer, req Request) Result {
	if analyzer == nil {
		return Result{
			Key:      req.Key,
			Analysis: layout.Fallback(req.Pixmap.PageWidth, req.Pixmap.PageHeight),
			Degraded: true,
		}
	}

	pa, err := analyzer.Analyze(req.Pixmap)
	if err != nil {
		w.log.Warn("worker analysis failed",
			"page", req.Key.Page+1, "path", req.Key.Path, "error", err)
		return Result{
			Key:      req.Key,
			Analysis: layout.Fallback(req.Pixmap.PageWidth, req.Pixmap.PageHeight),
			Degraded: true,
		}
	}
	return Result{Key: req.Key, Analysis: pa}
}

// Submit enqueues a request unless the same key is already in flight or
// the worker has been closed. Returns whether the request was accepted.
func (w *Worker) Submit(req Request) bool {
	if w.inFlight[req.Key] {
		return false
	}
	if !w.requests.push(req) {
		return false
	}
	w.inFlight[req.Key] = true
	return true
}

// Poll returns one completed result without blocking, clearing the
// key's in-flight mark, or nil when none is ready.
func (w *Worker) Poll() *Result {
	res, ok := w.results.tryPop()
	if !ok {
		return nil
	}
	delete(w.inFlight, res.Key)
	return &res
}

// InFlight reports whether a request for the key is pending.
func (w *Worker) InFlight(key Key) bool {
	return w.inFlight[key]
}

// IsIdle reports whether no requests are pending.
func (w *Worker) IsIdle() bool {
	return len(w.inFlight) == 0
}

// Close shuts the worker down cooperatively: the request queue is
// closed, the goroutine finishes whatever is already queued and exits.
// Close blocks until the goroutine is gone; results left in the output
// queue stay poppable.
func (w *Worker) Close() {
	w.requests.close()
	<-w.done
}
