// Package tab holds the per-document state of one open tab: page cursor,
// camera, rail navigator, the cached page bitmap at its DPI tier, the
// analysis cache, and the lookahead queue.
//
// A Tab is owned exclusively by the UI context. The only values that
// cross threads are the immutable analyses received from the worker and
// bitmaps completed by background render tasks, both handed over whole.
package tab

import (
	"log/slog"
	"path/filepath"

	"github.com/tsawler/railread/camera"
	"github.com/tsawler/railread/layout"
	"github.com/tsawler/railread/model"
	"github.com/tsawler/railread/rail"
	"github.com/tsawler/railread/raster"
	"github.com/tsawler/railread/worker"
)

// Tab is the state of one open document.
type Tab struct {
	Path  string
	Title string

	Source    raster.Source
	PageCount int

	CurrentPage int
	PageWidth   float64
	PageHeight  float64

	Camera camera.Camera
	Rail   *rail.Nav

	Outline []raster.Outline

	// Image is the cached page raster at its DPI tier. It is replaced
	// atomically by CompleteRender; the compositor may keep reading the
	// old bitmap until its last reference drops.
	Image          *raster.Bitmap
	renderInFlight bool

	analysisCache map[int]*model.PageAnalysis
	lookahead     []int

	// PendingRailSetup is set while analysis for the current page is in
	// flight; rail activation is deferred until the result lands.
	PendingRailSetup bool

	// loadFailed suppresses rail activation for the current page after a
	// rasterization failure, until a later load succeeds.
	loadFailed bool

	log *slog.Logger
}

// Open creates a tab for a document already opened by the rasterizer.
func Open(path string, src raster.Source, railCfg rail.Config, log *slog.Logger) (*Tab, error) {
	if log == nil {
		log = slog.Default()
	}

	t := &Tab{
		Path:          path,
		Title:         filepath.Base(path),
		Source:        src,
		PageCount:     src.PageCount(),
		Camera:        camera.New(),
		Rail:          rail.NewNav(railCfg),
		analysisCache: make(map[int]*model.PageAnalysis),
		log:           log,
	}

	outline, err := src.Outline()
	if err != nil {
		log.Warn("failed to load outline", "path", path, "error", err)
	} else {
		t.Outline = outline
	}

	return t, nil
}

// Key returns the worker key for a page of this document.
func (t *Tab) Key(page int) worker.Key {
	return worker.Key{Path: t.Path, Page: page}
}

// LoadPage refreshes page dimensions for the current page and submits
// its analysis. On rasterizer failure the previous bitmap is kept and
// rail activation is suppressed for this page.
func (t *Tab) LoadPage(w *worker.Worker, navigable map[int]bool) {
	pw, ph, err := t.Source.PageSize(t.CurrentPage)
	if err != nil {
		t.log.Error("failed to load page", "page", t.CurrentPage, "error", err)
		t.loadFailed = true
		t.Rail.ClearAnalysis()
		t.PendingRailSetup = false
		return
	}
	t.loadFailed = false
	t.PageWidth = pw
	t.PageHeight = ph

	t.SubmitAnalysis(w, navigable)
}

// SubmitAnalysis arranges for the current page's analysis to reach the
// rail navigator: from the cache if possible, otherwise through the
// worker with rail setup deferred until the result lands.
func (t *Tab) SubmitAnalysis(w *worker.Worker, navigable map[int]bool) {
	if cached, ok := t.analysisCache[t.CurrentPage]; ok {
		t.log.Info("using cached analysis",
			"page", t.CurrentPage+1, "blocks", len(cached.Blocks))
		t.Rail.SetAnalysis(cached, navigable)
		t.PendingRailSetup = false
		return
	}

	if w == nil {
		fallback := layout.Fallback(t.PageWidth, t.PageHeight)
		t.analysisCache[t.CurrentPage] = fallback
		t.Rail.SetAnalysis(fallback, navigable)
		t.PendingRailSetup = false
		return
	}

	if w.InFlight(t.Key(t.CurrentPage)) {
		t.PendingRailSetup = true
		return
	}

	pix, err := t.Source.RenderPixmap(t.CurrentPage, layout.InputSize)
	if err != nil {
		t.log.Warn("failed to prepare analysis input, using fallback",
			"page", t.CurrentPage+1, "error", err)
		fallback := layout.Fallback(t.PageWidth, t.PageHeight)
		t.analysisCache[t.CurrentPage] = fallback
		t.Rail.SetAnalysis(fallback, navigable)
		t.PendingRailSetup = false
		return
	}

	w.Submit(worker.Request{Key: t.Key(t.CurrentPage), Pixmap: pix})
	t.PendingRailSetup = true
	t.log.Info("submitted analysis", "page", t.CurrentPage+1)
}

// InstallResult caches a worker result for this document. When the
// result is for the current page and rail setup is pending, it is also
// installed into the navigator; the caller should then re-evaluate rail
// activation and start a snap. Returns whether the navigator consumed
// the result. Stale results (user already elsewhere) are cached only.
func (t *Tab) InstallResult(res *worker.Result, navigable map[int]bool) bool {
	if res.Key.Path != t.Path {
		return false
	}
	t.analysisCache[res.Key.Page] = res.Analysis

	if res.Key.Page == t.CurrentPage && t.PendingRailSetup {
		t.Rail.SetAnalysis(res.Analysis, navigable)
		t.PendingRailSetup = false
		return true
	}
	return false
}

// CachedAnalysis returns the cached analysis for a page, if any.
func (t *Tab) CachedAnalysis(page int) (*model.PageAnalysis, bool) {
	pa, ok := t.analysisCache[page]
	return pa, ok
}

// ReapplyNavigableClasses re-filters the current page's cached analysis
// against an updated class set, without re-running inference.
func (t *Tab) ReapplyNavigableClasses(navigable map[int]bool) {
	if cached, ok := t.analysisCache[t.CurrentPage]; ok {
		t.Rail.SetAnalysis(cached, navigable)
	}
}

// QueueLookahead rebuilds the lookahead queue with the next count pages
// that are not yet cached.
func (t *Tab) QueueLookahead(count int) {
	t.lookahead = t.lookahead[:0]
	for i := 1; i <= count; i++ {
		page := t.CurrentPage + i
		if page >= t.PageCount {
			break
		}
		if _, ok := t.analysisCache[page]; !ok {
			t.lookahead = append(t.lookahead, page)
		}
	}
}

// SubmitPendingLookahead submits at most one queued lookahead page, and
// only while the worker is idle. Returns whether a request was
// submitted.
func (t *Tab) SubmitPendingLookahead(w *worker.Worker) bool {
	if w == nil || !w.IsIdle() {
		return false
	}

	for len(t.lookahead) > 0 {
		page := t.lookahead[0]
		t.lookahead = t.lookahead[1:]

		if _, ok := t.analysisCache[page]; ok {
			continue
		}
		if w.InFlight(t.Key(page)) {
			continue
		}

		pix, err := t.Source.RenderPixmap(page, layout.InputSize)
		if err != nil {
			t.log.Warn("lookahead prepare failed", "page", page+1, "error", err)
			continue
		}
		w.Submit(worker.Request{Key: t.Key(page), Pixmap: pix})
		t.log.Info("submitted lookahead analysis", "page", page+1)
		return true
	}
	return false
}

// GoToPage navigates to a page (clamped to the document), keeping the
// zoom level and re-clamping the camera.
func (t *Tab) GoToPage(page int, w *worker.Worker, navigable map[int]bool, vp camera.Viewport) {
	if page < 0 {
		page = 0
	}
	if page > t.PageCount-1 {
		page = t.PageCount - 1
	}
	if page == t.CurrentPage {
		return
	}

	t.CurrentPage = page
	t.LoadPage(w, navigable)
	t.Camera.Clamp(vp, t.PageWidth, t.PageHeight)
}

// RailAllowed reports whether rail activation is currently permitted:
// not after a failed page load.
func (t *Tab) RailAllowed() bool {
	return !t.loadFailed
}

// UpdateRailZoom re-evaluates rail activation at the camera's current
// zoom.
func (t *Tab) UpdateRailZoom(vp camera.Viewport) {
	if !t.RailAllowed() {
		return
	}
	t.Rail.UpdateZoom(t.Camera.Zoom, &t.Camera, vp)
}

// ApplyZoom sets an absolute zoom level, re-evaluates rail mode, snaps
// to the current line when rail is active, and clamps the camera.
func (t *Tab) ApplyZoom(zoom float64, vp camera.Viewport) {
	t.Camera.SetZoom(zoom)
	t.UpdateRailZoom(vp)
	if t.Rail.Active {
		t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, vp)
	} else {
		t.Camera.Clamp(vp, t.PageWidth, t.PageHeight)
	}
}

// ZoomAtCursor applies a cursor-anchored zoom (wheel zoom), then
// re-evaluates rail mode and clamps.
func (t *Tab) ZoomAtCursor(zoom, cursorX, cursorY float64, vp camera.Viewport) {
	t.Camera.ZoomAnchored(zoom, cursorX, cursorY)
	t.UpdateRailZoom(vp)
	if t.Rail.Active {
		t.Rail.StartSnapToCurrent(&t.Camera, t.Camera.Zoom, vp)
	} else {
		t.Camera.Clamp(vp, t.PageWidth, t.PageHeight)
	}
}

// FitPage resets the camera to fit the whole page, leaving rail mode.
func (t *Tab) FitPage(vp camera.Viewport) {
	t.Camera.FitPage(vp, t.PageWidth, t.PageHeight)
	t.UpdateRailZoom(vp)
}
