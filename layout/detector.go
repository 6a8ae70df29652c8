package layout

// Tensor is a dense float32 tensor exchanged with the detector session.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewTensor creates a tensor with the given shape and data.
func NewTensor(shape []int64, data []float32) Tensor {
	return Tensor{Shape: shape, Data: data}
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.Shape)
}

// Rows returns a rank-2 tensor's row count, or 0 for any other rank.
func (t *Tensor) Rows() int {
	if t.Rank() != 2 {
		return 0
	}
	return int(t.Shape[0])
}

// Cols returns a rank-2 tensor's column count, or 0 for any other rank.
func (t *Tensor) Cols() int {
	if t.Rank() != 2 {
		return 0
	}
	return int(t.Shape[1])
}

// Detector is one inference session of the layout model. Implementations
// wrap an ONNX runtime session or equivalent; the session is owned by a
// single goroutine and must not be shared.
//
// Run receives the three model inputs (im_shape [1,2], image
// [1,3,S,S], scale_factor [1,2]) and returns the model's output tensors.
// The analyzer consumes the first rank-2 output with at least 6 columns,
// interpreted as rows of
//
//	[class_id, confidence, xmin, ymin, xmax, ymax, order?]
//
// with coordinates in coarse-pixmap pixel space. Column 7, when present,
// is the model's native reading-order prediction.
type Detector interface {
	Run(imShape, image, scaleFactor Tensor) ([]Tensor, error)
}
