package layout

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/tsawler/railread/raster"
)

// Preprocess builds the three detector input tensors from a coarse
// pixmap: im_shape [1,2], image [1,3,S,S] and scale_factor [1,2], where
// S is InputSize.
//
// The pixmap is stretch-resized to SxS with nearest-neighbor sampling and
// scaled to [0, 1] in CHW layout. The model handles its own input
// normalization, so no mean/std adjustment is applied here.
func Preprocess(pix *raster.Pixmap) (imShape, img, scaleFactor Tensor) {
	const target = InputSize

	src := image.NewRGBA(image.Rect(0, 0, pix.Width, pix.Height))
	for y := 0; y < pix.Height; y++ {
		for x := 0; x < pix.Width; x++ {
			r, g, b := pix.At(x, y)
			i := src.PixOffset(x, y)
			src.Pix[i] = r
			src.Pix[i+1] = g
			src.Pix[i+2] = b
			src.Pix[i+3] = 255
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, target, target))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	pixelCount := target * target
	chw := make([]float32, 3*pixelCount)
	for y := 0; y < target; y++ {
		for x := 0; x < target; x++ {
			i := dst.PixOffset(x, y)
			di := y*target + x
			chw[di] = float32(dst.Pix[i]) / 255
			chw[pixelCount+di] = float32(dst.Pix[i+1]) / 255
			chw[2*pixelCount+di] = float32(dst.Pix[i+2]) / 255
		}
	}

	imShape = NewTensor([]int64{1, 2}, []float32{target, target})
	img = NewTensor([]int64{1, 3, target, target}, chw)
	scaleFactor = NewTensor([]int64{1, 2}, []float32{
		float32(target) / float32(pix.Height),
		float32(target) / float32(pix.Width),
	})
	return imShape, img, scaleFactor
}
