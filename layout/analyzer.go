package layout

import (
	"fmt"
	"sort"

	"github.com/tsawler/railread/model"
	"github.com/tsawler/railread/raster"
)

// InputSize is the side length of the detector's square input, and the
// target size of the coarse pixmap's longer side.
const InputSize = 800

// AnalyzerConfig holds configuration options for the layout analyzer.
type AnalyzerConfig struct {
	// ConfidenceThreshold drops detections scoring below it.
	ConfidenceThreshold float64

	// NMSIoUThreshold is the IoU above which a lower-confidence block is
	// suppressed.
	NMSIoUThreshold float64

	// MinBlockSizePx drops detections narrower or shorter than this many
	// pixels after clamping.
	MinBlockSizePx float64

	// LineConfig configures per-block line detection.
	LineConfig LineConfig
}

// DefaultAnalyzerConfig returns a configuration with the thresholds the
// shipped model was tuned for.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		ConfidenceThreshold: 0.4,
		NMSIoUThreshold:     0.5,
		MinBlockSizePx:      5,
		LineConfig:          DefaultLineConfig(),
	}
}

// Analyzer runs the layout detection pipeline over coarse pixmaps.
type Analyzer struct {
	config   AnalyzerConfig
	detector Detector
}

// NewAnalyzer creates an analyzer with default configuration.
func NewAnalyzer(detector Detector) *Analyzer {
	return NewAnalyzerWithConfig(detector, DefaultAnalyzerConfig())
}

// NewAnalyzerWithConfig creates an analyzer with the specified
// configuration.
func NewAnalyzerWithConfig(detector Detector, config AnalyzerConfig) *Analyzer {
	return &Analyzer{
		config:   config,
		detector: detector,
	}
}

// Analyze runs the full pipeline on one coarse pixmap and returns the
// page analysis in page-point coordinates.
//
// A detector output without a rank-2 tensor of at least 6 columns yields
// an empty analysis, not an error; errors are reserved for an invalid
// pixmap size and a failing detector run.
func (a *Analyzer) Analyze(pix *raster.Pixmap) (*model.PageAnalysis, error) {
	if pix.Width <= 0 || pix.Height <= 0 {
		return nil, fmt.Errorf("invalid pixmap size %dx%d", pix.Width, pix.Height)
	}

	imShape, image, scaleFactor := Preprocess(pix)

	outputs, err := a.detector.Run(imShape, image, scaleFactor)
	if err != nil {
		return nil, fmt.Errorf("detector run failed: %w", err)
	}

	analysis := &model.PageAnalysis{
		PageWidth:  pix.PageWidth,
		PageHeight: pix.PageHeight,
	}

	det := detectionTensor(outputs)
	if det == nil {
		return analysis, nil
	}

	blocks, orders := a.parseDetections(det, pix)
	blocks, orders = nonMaxSuppress(blocks, orders, a.config.NMSIoUThreshold)
	normalizeReadingOrder(blocks, orders)

	scaleX := pix.PageWidth / float64(pix.Width)
	scaleY := pix.PageHeight / float64(pix.Height)
	detectLines(blocks, pix, scaleX, scaleY, a.config.LineConfig)

	analysis.Blocks = blocks
	return analysis, nil
}

// detectionTensor picks the first rank-2 output with at least 6 columns,
// or nil if the detector produced none.
func detectionTensor(outputs []Tensor) *Tensor {
	for i := range outputs {
		if outputs[i].Rank() == 2 && outputs[i].Cols() >= 6 {
			return &outputs[i]
		}
	}
	return nil
}

// parseDetections converts raw detector rows into page-point blocks,
// applying the confidence, class and size filters. The parallel orders
// slice carries each block's raw reading-order value (0 when the model
// does not emit one).
func (a *Analyzer) parseDetections(det *Tensor, pix *raster.Pixmap) ([]model.LayoutBlock, []float64) {
	rows := det.Rows()
	cols := det.Cols()

	pxW := float64(pix.Width)
	pxH := float64(pix.Height)
	scaleX := pix.PageWidth / pxW
	scaleY := pix.PageHeight / pxH

	var blocks []model.LayoutBlock
	var orders []float64

	for i := 0; i < rows; i++ {
		base := i * cols
		classID := int(det.Data[base])
		confidence := float64(det.Data[base+1])
		xmin := float64(det.Data[base+2])
		ymin := float64(det.Data[base+3])
		xmax := float64(det.Data[base+4])
		ymax := float64(det.Data[base+5])

		if confidence < a.config.ConfidenceThreshold {
			continue
		}
		if classID < 0 || classID >= model.ClassCount {
			continue
		}

		// Clamp to pixmap bounds; output is in coarse pixel coords.
		x := maxFloat(xmin, 0)
		y := maxFloat(ymin, 0)
		w := minFloat(xmax, pxW) - x
		h := minFloat(ymax, pxH) - y

		if w < a.config.MinBlockSizePx || h < a.config.MinBlockSizePx {
			continue
		}

		order := 0.0
		if cols >= 7 {
			order = float64(det.Data[base+6])
		}

		blocks = append(blocks, model.LayoutBlock{
			BBox: model.BBox{
				X:      x * scaleX,
				Y:      y * scaleY,
				Width:  w * scaleX,
				Height: h * scaleY,
			},
			ClassID:    classID,
			Confidence: confidence,
		})
		orders = append(orders, order)
	}

	return blocks, orders
}

// nonMaxSuppress sorts blocks by descending confidence (stable, so equal
// scores keep input order) and greedily keeps each block, discarding
// later ones whose IoU with a kept block exceeds the threshold. Class is
// ignored: overlapping detections of different classes still suppress.
func nonMaxSuppress(blocks []model.LayoutBlock, orders []float64, iouThreshold float64) ([]model.LayoutBlock, []float64) {
	idx := make([]int, len(blocks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return blocks[idx[a]].Confidence > blocks[idx[b]].Confidence
	})

	var kept []model.LayoutBlock
	var keptOrders []float64
	for _, i := range idx {
		suppressed := false
		for k := range kept {
			if kept[k].BBox.IoU(blocks[i].BBox) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, blocks[i])
			keptOrders = append(keptOrders, orders[i])
		}
	}
	return kept, keptOrders
}

// normalizeReadingOrder sorts blocks primarily by the detector's order
// value, breaking ties by ascending y, then reassigns dense order values
// 0..N-1.
func normalizeReadingOrder(blocks []model.LayoutBlock, orders []float64) {
	idx := make([]int, len(blocks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if orders[idx[a]] != orders[idx[b]] {
			return orders[idx[a]] < orders[idx[b]]
		}
		return blocks[idx[a]].BBox.Y < blocks[idx[b]].BBox.Y
	})

	sorted := make([]model.LayoutBlock, len(blocks))
	for pos, i := range idx {
		sorted[pos] = blocks[i]
		sorted[pos].Order = pos
	}
	copy(blocks, sorted)
}

// Fallback returns the analysis substituted when no detector is
// available: one text block covering the whole page with a single
// synthetic line. Rail navigation degrades to whole-page stepping but
// remains usable.
func Fallback(pageWidth, pageHeight float64) *model.PageAnalysis {
	return &model.PageAnalysis{
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
		Blocks: []model.LayoutBlock{
			{
				BBox:       model.NewBBox(0, 0, pageWidth, pageHeight),
				ClassID:    model.ClassText,
				Confidence: 1,
				Order:      0,
				Lines: []model.LineInfo{
					{Y: pageHeight / 2, Height: pageHeight},
				},
			},
		},
	}
}

// minFloat returns the smaller of two float64 values.
func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// maxFloat returns the larger of two float64 values.
func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
