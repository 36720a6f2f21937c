// Package fake provides canned inference services so the measurement pipeline can
// run without a real model backend.
package fake

import (
	"context"

	"gorgonia.org/tensor"

	"github.com/UmeshNayak1/DimensiMeasure/ml"
	"github.com/UmeshNayak1/DimensiMeasure/mlmodel"
)

// DetectionService always reports a single object at a fixed normalized location.
type DetectionService struct {
	label string
	score float64
	box   [4]float64
}

// NewDetectionService returns an inference service that reports one detection with
// the given label and score. The box is normalized xmin, ymin, xmax, ymax.
func NewDetectionService(label string, score float64, box [4]float64) *DetectionService {
	return &DetectionService{label: label, score: score, box: box}
}

// Labels returns the label list matching the category indices the service emits.
func (s *DetectionService) Labels() []string {
	return []string{s.label}
}

// Metadata describes a detection model with a single float32 image input.
func (s *DetectionService) Metadata(ctx context.Context) (mlmodel.MLMetadata, error) {
	return mlmodel.MLMetadata{
		ModelName: "fake_detector",
		ModelType: "object_detector",
		Inputs: []mlmodel.TensorInfo{
			{Name: "image", DataType: "float32", Shape: []int{1, 480, 640, 3}},
		},
		Outputs: []mlmodel.TensorInfo{
			{Name: "location", DataType: "float32", Shape: []int{1, 1, 4}},
			{Name: "category", DataType: "float32", Shape: []int{1, 1}},
			{Name: "score", DataType: "float32", Shape: []int{1, 1}},
		},
	}, nil
}

// Infer ignores the input tensors and returns the canned detection. The location
// quadruple is ordered ymin, xmin, ymax, xmax like common detection model outputs.
func (s *DetectionService) Infer(ctx context.Context, tensors ml.Tensors) (ml.Tensors, error) {
	loc := []float32{float32(s.box[1]), float32(s.box[0]), float32(s.box[3]), float32(s.box[2])}
	return ml.Tensors{
		"location": tensor.New(tensor.WithShape(1, 1, 4), tensor.WithBacking(loc)),
		"category": tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float32{0})),
		"score":    tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float32{float32(s.score)})),
	}, nil
}

// Close does nothing.
func (s *DetectionService) Close(ctx context.Context) error {
	return nil
}

// DepthService reports the same depth for every pixel of a fixed size grid.
type DepthService struct {
	depth  float64
	width  int
	height int
}

// NewDepthService returns an inference service whose depth output is the given
// value, in meters, across a width by height grid.
func NewDepthService(depth float64, width, height int) *DepthService {
	return &DepthService{depth: depth, width: width, height: height}
}

// Metadata describes a depth model with a single float32 image input.
func (s *DepthService) Metadata(ctx context.Context) (mlmodel.MLMetadata, error) {
	return mlmodel.MLMetadata{
		ModelName: "fake_depth",
		ModelType: "depth_estimator",
		Inputs: []mlmodel.TensorInfo{
			{Name: "image", DataType: "float32", Shape: []int{1, s.height, s.width, 3}},
		},
		Outputs: []mlmodel.TensorInfo{
			{Name: "depth", DataType: "float32", Shape: []int{1, s.height, s.width, 1}},
		},
	}, nil
}

// Infer ignores the input tensors and returns the flat depth grid.
func (s *DepthService) Infer(ctx context.Context, tensors ml.Tensors) (ml.Tensors, error) {
	data := make([]float32, s.width*s.height)
	for i := range data {
		data[i] = float32(s.depth)
	}
	return ml.Tensors{
		"depth": tensor.New(tensor.WithShape(1, s.height, s.width, 1), tensor.WithBacking(data)),
	}, nil
}

// Close does nothing.
func (s *DepthService) Close(ctx context.Context) error {
	return nil
}
