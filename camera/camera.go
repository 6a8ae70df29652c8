// Package camera provides the viewport/camera model for page display:
// pan/zoom state, cursor-anchored zooming, fit-page, viewport clamping,
// and the zoom-driven raster DPI tiers.
//
// The screen-space transform is screen = offset + zoom * page, with page
// coordinates in points, origin top-left, y-down.
package camera

import "math"

// Zoom bounds for all zoom operations.
const (
	ZoomMin = 0.1
	ZoomMax = 20.0
)

// zoomSpeedHalfLife is the decay half-life of the zoom-speed metric.
const zoomSpeedHalfLife = 0.080 // seconds

// Viewport is the size of the drawable content area in screen pixels.
type Viewport struct {
	W, H float64
}

// Camera holds the pan/zoom state for one document tab.
type Camera struct {
	OffsetX float64
	OffsetY float64
	Zoom    float64

	// ZoomSpeed is a decaying measure of recent zoom activity in [0, 1],
	// consumed by the motion-blur effect. It is reset on every zoom
	// change and halves roughly every 80 ms.
	ZoomSpeed float64
}

// New returns a camera at the origin with unit zoom.
func New() Camera {
	return Camera{Zoom: 1}
}

// SetZoom clamps and applies a new zoom level, resetting the zoom-speed
// metric to the relative size of the step.
func (c *Camera) SetZoom(zoom float64) {
	zoom = clampFloat(zoom, ZoomMin, ZoomMax)
	if zoom == c.Zoom {
		return
	}
	c.ZoomSpeed = clampFloat(math.Abs(zoom-c.Zoom)/c.Zoom, 0, 1)
	c.Zoom = zoom
}

// ZoomAnchored applies a new zoom level while keeping the page point
// under the cursor stationary on screen:
//
//	offset' = cursor - (cursor - offset) * (zoom'/zoom)
func (c *Camera) ZoomAnchored(newZoom, cursorX, cursorY float64) {
	newZoom = clampFloat(newZoom, ZoomMin, ZoomMax)
	ratio := newZoom / c.Zoom
	c.OffsetX = cursorX - (cursorX-c.OffsetX)*ratio
	c.OffsetY = cursorY - (cursorY-c.OffsetY)*ratio
	c.SetZoom(newZoom)
}

// FitPage sets the zoom so the whole page fits the viewport and centers
// it. No-op when either dimension is degenerate.
func (c *Camera) FitPage(vp Viewport, pageW, pageH float64) {
	if pageW <= 0 || pageH <= 0 || vp.W <= 0 || vp.H <= 0 {
		return
	}
	c.SetZoom(minFloat(vp.W/pageW, vp.H/pageH))
	c.OffsetX = (vp.W - pageW*c.Zoom) / 2
	c.OffsetY = (vp.H - pageH*c.Zoom) / 2
}

// Clamp constrains the offset so the page is either centered on an axis
// (when it fits) or its visible edge coincides with the viewport edge.
func (c *Camera) Clamp(vp Viewport, pageW, pageH float64) {
	scaledW := pageW * c.Zoom
	scaledH := pageH * c.Zoom

	if scaledW <= vp.W {
		c.OffsetX = (vp.W - scaledW) / 2
	} else {
		c.OffsetX = clampFloat(c.OffsetX, vp.W-scaledW, 0)
	}

	if scaledH <= vp.H {
		c.OffsetY = (vp.H - scaledH) / 2
	} else {
		c.OffsetY = clampFloat(c.OffsetY, vp.H-scaledH, 0)
	}
}

// ScreenToPage maps a screen position to page points.
func (c *Camera) ScreenToPage(x, y float64) (float64, float64) {
	return (x - c.OffsetX) / c.Zoom, (y - c.OffsetY) / c.Zoom
}

// DecayZoomSpeed advances the zoom-speed decay by dt seconds, snapping
// small residues to zero so animation scheduling can settle.
func (c *Camera) DecayZoomSpeed(dt float64) {
	if c.ZoomSpeed == 0 {
		return
	}
	c.ZoomSpeed *= math.Exp(-math.Ln2 * dt / zoomSpeedHalfLife)
	if c.ZoomSpeed < 1e-3 {
		c.ZoomSpeed = 0
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
