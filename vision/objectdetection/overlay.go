package objectdetection

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

var overlayFont *truetype.Font

// init sets up the font used for the detection labels.
func init() {
	var err error
	overlayFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

const (
	overlayFontSize = 14.
	boxStrokeWidth  = 2.
	platePadding    = 10.
	textInset       = 5.
)

var (
	boxColor   = color.NRGBA{R: 255, G: 105, B: 180, A: 255}
	plateColor = color.NRGBA{R: 139, G: 0, B: 70, A: 255}
	textColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Overlay returns a new image with the bounding boxes and labels from the detections
// drawn on a copy of the original image. The original image is never modified.
func Overlay(img image.Image, dets []Detection) (image.Image, error) {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(truetype.NewFace(overlayFont, &truetype.Options{Size: overlayFontSize}))
	for _, det := range dets {
		if det.BoundingBox() == nil {
			return nil, errors.New("detection has no bounding box, cannot overlay")
		}
		drawDetection(dc, det)
	}
	return dc.Image(), nil
}

// drawDetection draws the box, then the label plate above its top left corner,
// then the label text on the plate.
func drawDetection(dc *gg.Context, det Detection) {
	box := det.BoundingBox()
	x1, y1 := float64(box.Min.X), float64(box.Min.Y)

	dc.SetColor(boxColor)
	dc.DrawRectangle(x1, y1, float64(box.Dx()), float64(box.Dy()))
	dc.SetLineWidth(boxStrokeWidth)
	dc.Stroke()

	label := det.Label()
	if label == "" {
		return
	}
	textW, textH := dc.MeasureString(label)
	dc.SetColor(plateColor)
	dc.DrawRectangle(x1, y1-textH-platePadding, textW+platePadding, textH+platePadding)
	dc.Fill()
	dc.SetColor(textColor)
	dc.DrawString(label, x1+textInset, y1-textInset)
}
