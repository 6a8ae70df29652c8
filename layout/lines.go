package layout

import (
	"github.com/tsawler/railread/model"
	"github.com/tsawler/railread/raster"
)

// LineConfig holds configuration for per-block line detection.
type LineConfig struct {
	// LuminanceCutoff is the 0-255 luminance below which a pixel counts
	// as ink.
	LuminanceCutoff float64

	// DensityRatio scales the mean non-zero row density into the run
	// threshold.
	DensityRatio float64

	// DensityFloor is the minimum run threshold, and the density below
	// which a row is treated as blank.
	DensityFloor float64

	// MinRunRows is the minimum height of a line run in pixmap rows.
	MinRunRows int
}

// DefaultLineConfig returns the line detection thresholds tuned for the
// 800-pixel coarse pixmap.
func DefaultLineConfig() LineConfig {
	return LineConfig{
		LuminanceCutoff: 160,
		DensityRatio:    0.15,
		DensityFloor:    0.005,
		MinRunRows:      3,
	}
}

// detectLines fills in the Lines of every block by horizontal projection
// profiling over the block's region of the coarse pixmap. Each block ends
// up with at least one line: a block with no detected runs gets a single
// synthetic line at its vertical midline.
func detectLines(blocks []model.LayoutBlock, pix *raster.Pixmap, scaleX, scaleY float64, config LineConfig) {
	for i := range blocks {
		blocks[i].Lines = scanBlockLines(&blocks[i], pix, scaleX, scaleY, config)
	}
}

// scanBlockLines runs the projection profile for one block.
func scanBlockLines(block *model.LayoutBlock, pix *raster.Pixmap, scaleX, scaleY float64, config LineConfig) []model.LineInfo {
	midline := []model.LineInfo{{
		Y:      block.BBox.Y + block.BBox.Height/2,
		Height: block.BBox.Height,
	}}

	// Back to pixmap coordinates.
	pxX := int(block.BBox.X/scaleX + 0.5)
	pxY := int(block.BBox.Y/scaleY + 0.5)
	pxW := int(block.BBox.Width/scaleX + 0.5)
	pxH := int(block.BBox.Height/scaleY + 0.5)

	if pxX >= pix.Width {
		pxX = pix.Width - 1
	}
	if pxY >= pix.Height {
		pxY = pix.Height - 1
	}
	if pxX < 0 {
		pxX = 0
	}
	if pxY < 0 {
		pxY = 0
	}
	if pxX+pxW > pix.Width {
		pxW = pix.Width - pxX
	}
	if pxY+pxH > pix.Height {
		pxH = pix.Height - pxY
	}
	if pxW <= 0 || pxH <= 0 {
		return midline
	}

	// Per-row ink density: fraction of pixels darker than the cutoff.
	profile := make([]float64, pxH)
	for row := 0; row < pxH; row++ {
		dark := 0
		for col := 0; col < pxW; col++ {
			r, g, b := pix.At(pxX+col, pxY+row)
			lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			if lum < config.LuminanceCutoff {
				dark++
			}
		}
		profile[row] = float64(dark) / float64(pxW)
	}

	// Radius-1 box smoother.
	smoothed := make([]float64, pxH)
	for r := 0; r < pxH; r++ {
		start := r - 1
		if start < 0 {
			start = 0
		}
		end := r + 2
		if end > pxH {
			end = pxH
		}
		sum := 0.0
		for _, v := range profile[start:end] {
			sum += v
		}
		smoothed[r] = sum / float64(end-start)
	}

	// Adaptive threshold from the mean density of non-blank rows.
	sum, count := 0.0, 0
	for _, v := range smoothed {
		if v > config.DensityFloor {
			sum += v
			count++
		}
	}
	threshold := config.DensityFloor
	if count > 0 {
		threshold = maxFloat(sum/float64(count)*config.DensityRatio, config.DensityFloor)
	}

	var lines []model.LineInfo
	emit := func(start, end int) {
		runH := end - start
		if runH < config.MinRunRows {
			return
		}
		centerPx := float64(start) + float64(runH)/2
		lines = append(lines, model.LineInfo{
			Y:      block.BBox.Y + centerPx*scaleY,
			Height: float64(runH) * scaleY,
		})
	}

	runStart := -1
	for r := 0; r < pxH; r++ {
		if smoothed[r] > threshold {
			if runStart < 0 {
				runStart = r
			}
		} else if runStart >= 0 {
			emit(runStart, r)
			runStart = -1
		}
	}
	if runStart >= 0 {
		emit(runStart, pxH)
	}

	if len(lines) == 0 {
		return midline
	}
	return lines
}
