package mimage

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ResizeWithPadding resizes an image to the given working resolution while
// preserving its aspect ratio. The image is scaled with Lanczos resampling and
// centered on a black canvas, so detections made on the result line up with a
// plain per-axis rescale back to the original resolution.
func ResizeWithPadding(img image.Image, width, height int) *image.NRGBA {
	canvas := imaging.New(width, height, color.NRGBA{0, 0, 0, 255})
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return canvas
	}
	scale := math.Min(float64(width)/float64(srcW), float64(height)/float64(srcH))
	newW := int(math.Round(float64(srcW) * scale))
	newH := int(math.Round(float64(srcH) * scale))
	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)
	return imaging.PasteCenter(canvas, resized)
}
