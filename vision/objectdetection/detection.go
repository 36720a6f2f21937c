// Package objectdetection defines a 2D object detector and the utilities
// for filtering, rescaling and drawing its detections.
package objectdetection

import (
	"context"
	"fmt"
	"image"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Detection returns a bounding box around the object and a confidence score of the detection.
type Detection interface {
	BoundingBox() *image.Rectangle
	Score() float64
	Label() string
}

// NewDetection creates a simple 2D detection.
func NewDetection(boundingBox image.Rectangle, score float64, label string) Detection {
	return &detection2D{boundingBox, score, label}
}

// detection2D is a simple struct for storing 2D detections.
type detection2D struct {
	boundingBox image.Rectangle
	score       float64
	label       string
}

// BoundingBox returns a bounding box around the detected object.
func (d *detection2D) BoundingBox() *image.Rectangle {
	return &d.boundingBox
}

// Score returns a confidence score of the detection between 0.0 and 1.0.
func (d *detection2D) Score() float64 {
	return d.score
}

// Label returns the class label of the object in the bounding box.
func (d *detection2D) Label() string {
	return d.label
}

// String turns the detection into a string.
func (d *detection2D) String() string {
	return fmt.Sprintf("Label: %s, Score: %.2f, Location: %v", d.label, d.score, d.boundingBox)
}

// Detector returns a slice of object detections from an input image.
type Detector func(context.Context, image.Image) ([]Detection, error)

// Preprocessor is any function that transforms the image before detection happens.
type Preprocessor func(image.Image) image.Image

// Build zips up a preprocessor, a detector and a postprocessor into one Detector.
// The preprocessor and postprocessor are optional.
func Build(prep Preprocessor, det Detector, post Postprocessor) (Detector, error) {
	if det == nil {
		return nil, errors.New("must have a Detector to build a detection pipeline")
	}
	if prep == nil {
		prep = func(img image.Image) image.Image { return img }
	}
	if post == nil {
		post = func(inp []Detection) []Detection { return inp }
	}
	return func(ctx context.Context, img image.Image) ([]Detection, error) {
		_, span := trace.StartSpan(ctx, "objectdetection::Detector")
		defer span.End()
		detections, err := det(ctx, prep(img))
		if err != nil {
			return nil, err
		}
		return post(detections), nil
	}, nil
}
