package railread

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/railread/camera"
	"github.com/tsawler/railread/config"
	"github.com/tsawler/railread/effect"
	"github.com/tsawler/railread/frame"
	"github.com/tsawler/railread/layout"
	"github.com/tsawler/railread/ocr"
	"github.com/tsawler/railread/rail"
	"github.com/tsawler/railread/tab"
	"github.com/tsawler/railread/worker"
)

// Viewer is the single-threaded UI context that owns all viewer state:
// open tabs, the analysis worker, the frame scheduler, and the user
// configuration. Every method must be called from the UI context.
type Viewer struct {
	cfg        config.Config
	configPath string

	opener Opener
	worker *worker.Worker
	sched  *frame.Scheduler

	tabs   []*tab.Tab
	active int

	viewport camera.Viewport

	log *slog.Logger
}

// New creates a viewer wired to the GUI host and document opener.
func New(host frame.Host, opener Opener, opts ...Option) *Viewer {
	o := defaultViewerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = slog.Default()
	}

	var analyzer *layout.Analyzer
	if o.detector != nil {
		analyzer = layout.NewAnalyzer(o.detector)
	} else {
		log.Warn("no layout detector available, rail mode degrades to whole-page blocks")
	}

	v := &Viewer{
		cfg:        config.Load(o.configPath, log),
		configPath: o.configPath,
		opener:     opener,
		worker:     worker.New(analyzer, log),
		active:     -1,
		log:        log,
	}

	v.sched = frame.New(host, v.worker, log)
	v.sched.ActiveTab = v.ActiveTab
	v.sched.Tabs = func() []*tab.Tab { return v.tabs }
	v.sched.NavigableClasses = func() map[int]bool { return v.cfg.NavigableClassIDs() }
	v.sched.Effect = v.Effect
	v.sched.Viewport = func() camera.Viewport { return v.viewport }
	v.sched.LookaheadPages = v.cfg.AnalysisLookaheadPages
	return v
}

// Shutdown closes the worker cooperatively: its request queue closes,
// queued work drains, and the goroutine exits.
func (v *Viewer) Shutdown() {
	v.worker.Close()
}

// Config returns the current configuration.
func (v *Viewer) Config() config.Config {
	return v.cfg
}

// Scheduler returns the frame scheduler for the GUI to drive.
func (v *Viewer) Scheduler() *frame.Scheduler {
	return v.sched
}

// Effect returns the active colour effect and its intensity.
func (v *Viewer) Effect() (effect.Effect, float64) {
	return v.cfg.Effect(), v.cfg.ColourEffectIntensity
}

// UpdateConfig installs and persists a new configuration, re-filters
// every tab's navigable blocks, and re-applies rail parameters.
func (v *Viewer) UpdateConfig(cfg config.Config) {
	v.cfg = cfg
	if err := cfg.Save(v.configPath); err != nil {
		v.log.Warn("failed to save config", "error", err)
	}
	v.sched.LookaheadPages = cfg.AnalysisLookaheadPages

	navigable := cfg.NavigableClassIDs()
	for _, t := range v.tabs {
		t.Rail.SetConfig(cfg.RailConfig())
		t.ReapplyNavigableClasses(navigable)
		t.UpdateRailZoom(v.viewport)
		// Cached bitmaps have the previous colour effect baked in.
		t.Image = nil
	}
	v.sched.RequestFrame()
}

// SetViewport records the drawable content size. Called by the GUI on
// resize.
func (v *Viewer) SetViewport(vp camera.Viewport) {
	v.viewport = vp
	if t := v.ActiveTab(); t != nil {
		t.Camera.Clamp(vp, t.PageWidth, t.PageHeight)
	}
}

// Viewport returns the current content viewport.
func (v *Viewer) Viewport() camera.Viewport {
	return v.viewport
}

// OpenDocument opens a document in a new tab and makes it active.
func (v *Viewer) OpenDocument(path string) (*tab.Tab, error) {
	src, err := v.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	t, err := tab.Open(path, src, v.cfg.RailConfig(), v.log)
	if err != nil {
		return nil, err
	}

	v.tabs = append(v.tabs, t)
	v.active = len(v.tabs) - 1

	t.LoadPage(v.worker, v.cfg.NavigableClassIDs())
	t.FitPage(v.viewport)
	t.QueueLookahead(v.cfg.AnalysisLookaheadPages)
	v.sched.RequestFrame()
	return t, nil
}

// CloseTab closes the tab at index, activating a neighbor.
func (v *Viewer) CloseTab(index int) {
	if index < 0 || index >= len(v.tabs) {
		return
	}
	v.tabs = append(v.tabs[:index], v.tabs[index+1:]...)
	if v.active >= len(v.tabs) {
		v.active = len(v.tabs) - 1
	}
}

// Tabs returns the open tabs.
func (v *Viewer) Tabs() []*tab.Tab {
	return v.tabs
}

// ActiveTab returns the active tab, or nil when none is open.
func (v *Viewer) ActiveTab() *tab.Tab {
	if v.active < 0 || v.active >= len(v.tabs) {
		return nil
	}
	return v.tabs[v.active]
}

// SelectTab makes the tab at index active.
func (v *Viewer) SelectTab(index int) {
	if index >= 0 && index < len(v.tabs) {
		v.active = index
		v.sched.RequestFrame()
	}
}

// NextLine advances the rail cursor, crossing to the next page at the
// boundary, and snaps to the new line.
func (v *Viewer) NextLine() {
	t := v.ActiveTab()
	if t == nil || !t.Rail.Active {
		return
	}

	switch t.Rail.NextLine() {
	case rail.Ok:
		t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, v.viewport)
	case rail.PageBoundaryNext:
		t.GoToPage(t.CurrentPage+1, v.worker, v.cfg.NavigableClassIDs(), v.viewport)
		t.QueueLookahead(v.cfg.AnalysisLookaheadPages)
		if t.Rail.Active {
			t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, v.viewport)
		}
	}
	v.sched.RequestFrame()
}

// PrevLine moves the rail cursor back, crossing to the previous page's
// last line at the boundary, and snaps to the new line.
func (v *Viewer) PrevLine() {
	t := v.ActiveTab()
	if t == nil || !t.Rail.Active {
		return
	}

	switch t.Rail.PrevLine() {
	case rail.Ok:
		t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, v.viewport)
	case rail.PageBoundaryPrev:
		if t.CurrentPage == 0 {
			return
		}
		t.GoToPage(t.CurrentPage-1, v.worker, v.cfg.NavigableClassIDs(), v.viewport)
		t.QueueLookahead(v.cfg.AnalysisLookaheadPages)
		if t.Rail.Active {
			t.Rail.JumpToEnd()
			t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, v.viewport)
		}
	}
	v.sched.RequestFrame()
}

// StartScroll begins hold-to-scroll along the current line.
func (v *Viewer) StartScroll(dir rail.ScrollDir) {
	t := v.ActiveTab()
	if t == nil || !t.Rail.Active {
		return
	}
	t.Rail.StartScroll(dir, t.Camera.OffsetX)
	v.sched.RequestFrame()
}

// StopScroll ends hold-to-scroll.
func (v *Viewer) StopScroll() {
	if t := v.ActiveTab(); t != nil {
		t.Rail.StopScroll()
	}
}

// ZoomAt applies a cursor-anchored zoom (mouse wheel).
func (v *Viewer) ZoomAt(zoom, cursorX, cursorY float64) {
	if t := v.ActiveTab(); t != nil {
		t.ZoomAtCursor(zoom, cursorX, cursorY, v.viewport)
		v.sched.RequestFrame()
	}
}

// ApplyZoom sets an absolute zoom level (keyboard zoom).
func (v *Viewer) ApplyZoom(zoom float64) {
	if t := v.ActiveTab(); t != nil {
		t.ApplyZoom(zoom, v.viewport)
		v.sched.RequestFrame()
	}
}

// FitPage resets the active tab's camera to show the whole page.
func (v *Viewer) FitPage() {
	if t := v.ActiveTab(); t != nil {
		t.FitPage(v.viewport)
		v.sched.RequestFrame()
	}
}

// GoToPage jumps the active tab to a page (e.g. from the outline).
func (v *Viewer) GoToPage(page int) {
	t := v.ActiveTab()
	if t == nil {
		return
	}
	t.GoToPage(page, v.worker, v.cfg.NavigableClassIDs(), v.viewport)
	t.QueueLookahead(v.cfg.AnalysisLookaheadPages)
	v.sched.RequestFrame()
}

// SelectBlockAt moves the rail cursor to the navigable block under a
// screen position, if any, and snaps to it.
func (v *Viewer) SelectBlockAt(screenX, screenY float64) bool {
	t := v.ActiveTab()
	if t == nil || !t.Rail.Active {
		return false
	}
	px, py := t.Camera.ScreenToPage(screenX, screenY)
	idx, ok := t.Rail.FindBlockAtPoint(px, py)
	if !ok {
		return false
	}
	t.Rail.SetCursor(idx)
	t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, v.viewport)
	v.sched.RequestFrame()
	return true
}

// CurrentBlockText extracts the active rail block's text with the OCR
// client, for the clipboard. Requires an OCR-enabled build.
func (v *Viewer) CurrentBlockText(c *ocr.Client) (string, error) {
	t := v.ActiveTab()
	if t == nil || !t.Rail.Active || !t.Rail.HasAnalysis() {
		return "", fmt.Errorf("no active rail block")
	}
	pix, err := t.Source.RenderPixmap(t.CurrentPage, layout.InputSize)
	if err != nil {
		return "", fmt.Errorf("render pixmap: %w", err)
	}
	return c.BlockText(pix, t.Rail.CurrentBlockInfo())
}
