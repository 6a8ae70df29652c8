package rail

import (
	"github.com/tsawler/railread/camera"
)

// RailMarginRatio is the horizontal rail position: the current block's
// left edge is placed at this fraction of the viewport width.
const RailMarginRatio = 0.05

// StartSnapToCurrent begins a snap animation toward the camera position
// that puts the current line's center at mid-viewport height and the
// current block's left edge on the rail.
func (n *Nav) StartSnapToCurrent(cam *camera.Camera, zoom float64, vp camera.Viewport) {
	if !n.Active || len(n.navigable) == 0 {
		return
	}

	targetX, targetY := n.targetCamera(zoom, vp)
	n.snap = &snapAnimation{
		startX:     cam.OffsetX,
		startY:     cam.OffsetY,
		targetX:    targetX,
		targetY:    targetY,
		startTime:  n.now(),
		durationMS: n.config.SnapDurationMS,
	}
}

// targetCamera computes the camera offset that shows the start of the
// current line: line center at vp.H/2, block left edge at the rail.
func (n *Nav) targetCamera(zoom float64, vp camera.Viewport) (x, y float64) {
	block := n.CurrentBlockInfo()
	line := n.CurrentLineInfo()

	y = vp.H/2 - line.Y*zoom
	x = vp.W*RailMarginRatio - block.BBox.X*zoom
	return x, y
}

// StartScroll begins hold-to-scroll in the given direction, recording
// the hold start time and the camera's current x. Calling it again with
// the same direction is a no-op; a direction change restarts the hold.
func (n *Nav) StartScroll(dir ScrollDir, camX float64) {
	if !n.Active || len(n.navigable) == 0 {
		return
	}
	if n.scroll != nil && n.scroll.dir == dir {
		return
	}
	n.scroll = &scrollHold{
		dir:       dir,
		holdStart: n.now(),
		startX:    camX,
	}
}

// StopScroll ends the hold.
func (n *Nav) StopScroll() {
	n.scroll = nil
}

// Scrolling reports whether a hold-scroll is in progress.
func (n *Nav) Scrolling() bool {
	return n.scroll != nil
}

// Snapping reports whether a snap animation is in progress.
func (n *Nav) Snapping() bool {
	return n.snap != nil
}

// ScrollDisplacement is the closed-form distance covered by a hold of T
// seconds under the ramped speed curve
//
//	s(t) = start + (max-start) * (t/ramp)^2   for t <= ramp
//	s(t) = max                                for t >  ramp
//
// integrated analytically. Computing position from total hold time
// rather than accumulating per-frame deltas keeps the motion independent
// of the frame cadence.
func ScrollDisplacement(holdSeconds, start, max, ramp float64) float64 {
	if holdSeconds <= 0 {
		return 0
	}
	if ramp <= 0 {
		return max * holdSeconds
	}
	if holdSeconds <= ramp {
		return start*holdSeconds + (max-start)*holdSeconds*holdSeconds*holdSeconds/(3*ramp*ramp)
	}
	rampDist := start*ramp + (max-start)*ramp/3
	return rampDist + max*(holdSeconds-ramp)
}

// Tick advances the snap animation and hold-scroll, mutating the camera
// offset. It reports whether anything still needs animation frames:
// snap in flight, scroll held, or zoom-speed decay not yet settled.
func (n *Nav) Tick(cam *camera.Camera, zoom float64, vp camera.Viewport) bool {
	if n.snap != nil {
		elapsed := n.now().Sub(n.snap.startTime).Seconds() * 1000
		t := elapsed / n.snap.durationMS
		if t > 1 {
			t = 1
		}
		eased := 1 - (1-t)*(1-t)*(1-t) // cubic ease-out

		cam.OffsetX = n.snap.startX + (n.snap.targetX-n.snap.startX)*eased
		cam.OffsetY = n.snap.startY + (n.snap.targetY-n.snap.startY)*eased

		if t >= 1 {
			n.snap = nil
		}
	}

	if n.scroll != nil {
		hold := n.now().Sub(n.scroll.holdStart).Seconds()
		d := ScrollDisplacement(hold,
			n.config.ScrollSpeedStart, n.config.ScrollSpeedMax, n.config.ScrollRampTime)

		sign := -1.0 // Forward: text moves leftward under the viewport
		if n.scroll.dir == ScrollBackward {
			sign = 1.0
		}
		cam.OffsetX = n.clampX(n.scroll.startX+sign*d*zoom, zoom, vp.W)
	}

	return n.snap != nil || n.scroll != nil || cam.ZoomSpeed > 0
}

// clampX constrains the camera x to keep the current block in view. A
// block that fits the viewport (with a 5% width margin each side) is
// centered; otherwise the block's edges never leave the viewport.
func (n *Nav) clampX(camX, zoom, viewportW float64) float64 {
	if len(n.navigable) == 0 {
		return camX
	}

	block := n.CurrentBlockInfo()
	margin := block.BBox.Width * 0.05
	left := block.BBox.X - margin
	right := block.BBox.Right() + margin

	if (right-left)*zoom <= viewportW {
		center := (left + right) / 2
		return viewportW/2 - center*zoom
	}

	maxX := -left * zoom
	minX := viewportW - right*zoom
	if camX < minX {
		return minX
	}
	if camX > maxX {
		return maxX
	}
	return camX
}
