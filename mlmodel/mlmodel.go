// Package mlmodel defines the interface to services that can take in a map of input
// tensors/arrays, pass them through an inference engine, and then return a map of output
// tensors/arrays.
package mlmodel

import (
	"context"

	"github.com/UmeshNayak1/DimensiMeasure/ml"
)

// Service runs inference and describes the tensors it expects and produces.
type Service interface {
	Infer(ctx context.Context, tensors ml.Tensors) (ml.Tensors, error)
	Metadata(ctx context.Context) (MLMetadata, error)
	Close(ctx context.Context) error
}

// MLMetadata contains the metadata of the model file, such as the name of the model, what
// kind of model it is, and the expected tensor/array shape and types of the input and output tensors.
type MLMetadata struct {
	ModelName        string
	ModelType        string // e.g. object_detector, depth_estimator
	ModelDescription string
	Inputs           []TensorInfo
	Outputs          []TensorInfo
}

// TensorInfo contains all the information necessary to build a struct from the input or output tensor.
type TensorInfo struct {
	Name        string // e.g. bounding_boxes
	Description string
	DataType    string // e.g. uint8, float32, int
	Shape       []int
	Extra       map[string]interface{}
}
