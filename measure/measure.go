// Package measure turns object detections and a depth map into real world size
// measurements, and renders them back onto the image they came from.
package measure

import (
	"fmt"
	"sort"
)

// Measurement is one sized object in a processed frame. BBox is x1, y1, x2, y2
// in original image pixel space.
type Measurement struct {
	ObjectName string  `json:"objectName"`
	Dimensions string  `json:"dimensions"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

// Result is the externally visible outcome of measuring one frame. Success is
// true exactly when at least one measurement survived. AnnotatedImage is a JPEG
// data URI, present only on success.
type Result struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	Measurements   []Measurement `json:"measurements"`
	AnnotatedImage *string       `json:"annotatedImage,omitempty"`
}

// NewErrorResult wraps a whole frame failure into a result the caller returns as is.
func NewErrorResult(err error) Result {
	return Result{
		Success:      false,
		Message:      fmt.Sprintf("Error processing image: %s", err.Error()),
		Measurements: []Measurement{},
	}
}

// FormatDimensions renders a physical width and height for display, e.g. "0.38×0.76 m".
func FormatDimensions(width, height float64) string {
	return fmt.Sprintf("%.2f×%.2f m", width, height)
}

// FormatLabel renders the overlay label for one measurement, e.g. "bottle - 0.38×0.76 m (83%)".
func FormatLabel(objectName, dimensions string, confidence float64) string {
	return fmt.Sprintf("%s - %s (%.0f%%)", objectName, dimensions, confidence*100)
}

// Assemble orders the surviving measurements by descending confidence, ties
// keeping their input order, and wraps them into a Result. An empty list is the
// normal no detections outcome, not an error.
func Assemble(measurements []Measurement) Result {
	if len(measurements) == 0 {
		return Result{Success: false, Message: "No objects detected", Measurements: []Measurement{}}
	}
	sorted := make([]Measurement, len(measurements))
	copy(sorted, measurements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	return Result{
		Success:      true,
		Message:      fmt.Sprintf("Detected %d objects", len(sorted)),
		Measurements: sorted,
	}
}
