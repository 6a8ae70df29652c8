package tab

import (
	"github.com/tsawler/railread/camera"
	"github.com/tsawler/railread/raster"
)

// NeedsRender reports whether a background re-render should be started
// for the current zoom level, and at which DPI. At most one render per
// tab is in flight; a pending render blocks further requests until it
// completes or is discarded.
func (t *Tab) NeedsRender() (dpi float64, ok bool) {
	if t.renderInFlight {
		return 0, false
	}
	needed := camera.TierFor(t.Camera.Zoom)
	cached := 0.0
	if t.Image != nil {
		cached = t.Image.DPI
	}
	if !camera.NeedsRerender(needed, cached) {
		return 0, false
	}
	return needed, true
}

// BeginRender marks a render in flight for the current page and returns
// the page to rasterize. The actual rasterization runs on a background
// task the caller owns.
func (t *Tab) BeginRender() int {
	t.renderInFlight = true
	return t.CurrentPage
}

// CompleteRender installs a finished bitmap. The bitmap was built fully
// on the background task; installation is a single reference swap, and
// the previous image is released to the runtime once the compositor
// drops its reference. A result for a page the user has navigated away
// from is discarded. Returns whether the image was installed.
func (t *Tab) CompleteRender(page int, bm *raster.Bitmap) bool {
	t.renderInFlight = false
	if page != t.CurrentPage || bm == nil {
		if bm != nil {
			t.log.Info("discarding stale render", "page", page+1)
		}
		return false
	}
	t.Image = bm
	return true
}

// RenderFailed clears the in-flight flag after a failed background
// render, keeping the previous bitmap.
func (t *Tab) RenderFailed(page int, err error) {
	t.renderInFlight = false
	t.log.Error("page render failed", "page", page+1, "error", err)
}

// RenderInFlight reports whether a background render is pending.
func (t *Tab) RenderInFlight() bool {
	return t.renderInFlight
}
