// Package frame drives the per-frame coordination of the viewer: rail
// animation ticks, worker result delivery, lookahead submission, DPI
// re-render scheduling, and granular layer invalidation.
//
// The scheduler has two drivers. A vsync-aligned animation callback is
// re-armed from inside itself for as long as anything animates; it is
// the sole consumer of animation time. A low-frequency poll timer
// (about 100 ms) runs only while the analysis worker is busy, performs
// idle work only, and never runs while an animation frame is armed. A
// single fixed-rate timer cannot replace the pair: it either burns
// energy while idle or adds jitter to snap animations.
package frame

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tsawler/railread/camera"
	"github.com/tsawler/railread/effect"
	"github.com/tsawler/railread/raster"
	"github.com/tsawler/railread/tab"
	"github.com/tsawler/railread/worker"
)

// Layer identifies one compositor layer for granular invalidation, so a
// pan does not force the page bitmap to repaint.
type Layer uint8

const (
	// LayerCamera is the pan/zoom transform.
	LayerCamera Layer = 1 << iota
	// LayerPage is the rasterized page bitmap.
	LayerPage
	// LayerOverlay is the rail highlights and analysis overlays.
	LayerOverlay
)

// maxFrameDelta caps the per-frame time step so a stalled frame does not
// teleport animations.
const maxFrameDelta = 50 * time.Millisecond

// PollInterval is the cadence of the idle poll timer.
const PollInterval = 100 * time.Millisecond

// Host is the GUI-side surface the scheduler drives. RequestFrame
// schedules a one-shot animation callback on the next vsync and must be
// callable from any goroutine; repeated calls before the callback fires
// coalesce. SetPollActive starts or stops the low-frequency poll timer.
type Host interface {
	RequestFrame()
	SetPollActive(active bool)
	Invalidate(layers Layer)
}

// renderResult is one completed background rasterization.
type renderResult struct {
	tab    *tab.Tab
	page   int
	bitmap *raster.Bitmap
	err    error
}

// Scheduler coordinates animation frames and background work for the UI
// context. All exported methods except the internal render completion
// run on the UI context.
type Scheduler struct {
	Host   Host
	Worker *worker.Worker

	// ActiveTab returns the tab receiving animation time, or nil.
	ActiveTab func() *tab.Tab

	// Tabs returns all open tabs; worker results are cached into every
	// tab whose document matches.
	Tabs func() []*tab.Tab

	// NavigableClasses returns the current navigable class set.
	NavigableClasses func() map[int]bool

	// Effect returns the active colour effect and its intensity; the
	// effect is baked into page bitmaps as they are rendered. May be
	// nil for no filtering.
	Effect func() (effect.Effect, float64)

	// Viewport returns the current content viewport.
	Viewport func() camera.Viewport

	// LookaheadPages is how many pages ahead to pre-analyze.
	LookaheadPages int

	frameArmed bool
	lastTick   time.Time
	pollActive bool

	renderMu   sync.Mutex
	renderDone []renderResult

	log *slog.Logger
	now func() time.Time
}

// New creates a scheduler.
func New(host Host, w *worker.Worker, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		Host:           host,
		Worker:         w,
		LookaheadPages: 2,
		log:            log,
		now:            time.Now,
	}
}

// RequestFrame arms the one-shot animation callback if it is not armed
// already.
func (s *Scheduler) RequestFrame() {
	if s.frameArmed {
		return
	}
	s.frameArmed = true
	s.Host.RequestFrame()
}

// FrameArmed reports whether an animation callback is pending.
func (s *Scheduler) FrameArmed() bool {
	return s.frameArmed
}

// OnAnimationFrame is the vsync callback body. Work order is fixed:
// rail tick, zoom-speed decay, worker result polling, lookahead
// submission, DPI swap check, layer invalidation, re-arm.
func (s *Scheduler) OnAnimationFrame() {
	s.frameArmed = false
	now := s.now()

	dt := now.Sub(s.lastTick)
	if s.lastTick.IsZero() || dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	if dt < 0 {
		dt = 0
	}
	s.lastTick = now

	vp := s.Viewport()
	var invalid Layer
	animating := false

	if t := s.ActiveTab(); t != nil {
		if t.Rail.Tick(&t.Camera, t.Camera.Zoom, vp) {
			animating = true
			invalid |= LayerCamera | LayerOverlay
		}
		t.Camera.DecayZoomSpeed(dt.Seconds())
	}

	if s.pollResults(vp) {
		invalid |= LayerOverlay
		animating = true // a landed result may have started a snap
	}

	if t := s.ActiveTab(); t != nil && s.Worker != nil && s.Worker.IsIdle() && !animating {
		t.QueueLookahead(s.LookaheadPages)
		t.SubmitPendingLookahead(s.Worker)
	}

	if s.checkRenders() {
		invalid |= LayerPage
	}
	s.scheduleRender()

	if invalid != 0 {
		s.Host.Invalidate(invalid)
	}

	if animating {
		s.RequestFrame()
	}
	s.updatePollTimer()
}

// OnPollTimer is the low-frequency driver body: idle work only, and a
// no-op while an animation frame is armed.
func (s *Scheduler) OnPollTimer() {
	if s.frameArmed {
		return
	}

	vp := s.Viewport()
	var invalid Layer
	needsFrame := false

	if s.pollResults(vp) {
		invalid |= LayerOverlay
		needsFrame = true
	}
	if t := s.ActiveTab(); t != nil && s.Worker != nil && s.Worker.IsIdle() {
		t.QueueLookahead(s.LookaheadPages)
		t.SubmitPendingLookahead(s.Worker)
	}
	if s.checkRenders() {
		invalid |= LayerPage
	}
	s.scheduleRender()

	if invalid != 0 {
		s.Host.Invalidate(invalid)
	}
	if needsFrame {
		s.RequestFrame()
	}
	s.updatePollTimer()
}

// pollResults drains the worker's result queue into the tab caches.
// A result landing on the current page of a tab that awaits it installs
// into the navigator, re-evaluates rail activation immediately, and
// starts a snap when rail comes up active. Returns whether any result
// arrived.
func (s *Scheduler) pollResults(vp camera.Viewport) bool {
	if s.Worker == nil {
		return false
	}
	navigable := s.NavigableClasses()
	got := false
	for res := s.Worker.Poll(); res != nil; res = s.Worker.Poll() {
		got = true
		s.log.Info("received analysis result",
			"page", res.Key.Page+1, "blocks", len(res.Analysis.Blocks))
		for _, t := range s.Tabs() {
			if !t.InstallResult(res, navigable) {
				continue
			}
			t.UpdateRailZoom(vp)
			if t.Rail.Active {
				t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, vp)
			}
		}
	}
	return got
}

// scheduleRender starts a background rasterization when the active
// tab's cached bitmap is too far from the needed DPI tier. Renders are
// serialized per tab by the tab's in-flight flag.
func (s *Scheduler) scheduleRender() {
	t := s.ActiveTab()
	if t == nil {
		return
	}
	dpi, ok := t.NeedsRender()
	if !ok {
		return
	}

	page := t.BeginRender()
	src := t.Source
	fx, intensity := effect.None, 0.0
	if s.Effect != nil {
		fx, intensity = s.Effect()
	}
	go func() {
		bm, err := src.RenderPage(page, dpi)
		if err == nil && bm != nil {
			fx.Apply(bm.Pix, intensity)
		}
		s.renderMu.Lock()
		s.renderDone = append(s.renderDone, renderResult{tab: t, page: page, bitmap: bm, err: err})
		s.renderMu.Unlock()
		s.Host.RequestFrame()
	}()
}

// checkRenders installs completed background renders. Returns whether a
// bitmap was swapped in.
func (s *Scheduler) checkRenders() bool {
	s.renderMu.Lock()
	done := s.renderDone
	s.renderDone = nil
	s.renderMu.Unlock()

	swapped := false
	for _, r := range done {
		if r.err != nil {
			r.tab.RenderFailed(r.page, r.err)
			continue
		}
		if r.tab.CompleteRender(r.page, r.bitmap) {
			swapped = true
		}
	}
	return swapped
}

// updatePollTimer keeps the idle poll timer running exactly while the
// worker has requests in flight.
func (s *Scheduler) updatePollTimer() {
	want := s.Worker != nil && !s.Worker.IsIdle()
	if want != s.pollActive {
		s.pollActive = want
		s.Host.SetPollActive(want)
	}
}
