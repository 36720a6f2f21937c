package objectdetection

import (
	"image"

	"github.com/golang/geo/r2"
)

// RescaleBox takes a bounding box found on an image of srcDims and returns the
// box describing the same region on an image of dstDims. Each axis scales
// independently and coordinates truncate toward zero.
func RescaleBox(box image.Rectangle, srcDims, dstDims image.Point) image.Rectangle {
	if srcDims == dstDims || srcDims.X <= 0 || srcDims.Y <= 0 {
		return box
	}
	scale := r2.Point{
		X: float64(dstDims.X) / float64(srcDims.X),
		Y: float64(dstDims.Y) / float64(srcDims.Y),
	}
	return image.Rect(
		int(float64(box.Min.X)*scale.X),
		int(float64(box.Min.Y)*scale.Y),
		int(float64(box.Max.X)*scale.X),
		int(float64(box.Max.Y)*scale.Y),
	)
}

// RescaleDetection maps one detection onto dstDims, keeping its score and label.
func RescaleDetection(d Detection, srcDims, dstDims image.Point) Detection {
	box := RescaleBox(*d.BoundingBox(), srcDims, dstDims)
	return NewDetection(box, d.Score(), d.Label())
}

// RescaleDetections maps every detection onto dstDims.
func RescaleDetections(dets []Detection, srcDims, dstDims image.Point) []Detection {
	out := make([]Detection, 0, len(dets))
	for _, d := range dets {
		out = append(out, RescaleDetection(d, srcDims, dstDims))
	}
	return out
}
