// Package ml provides the tensor primitives that connect images to inference backends.
package ml

import (
	"image"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gorgonia.org/tensor"
)

// Tensors are a data structure to hold the input and output map of tensors that a model will use.
type Tensors map[string]*tensor.Dense

// ImageToUInt8Tensor copies an image into a tensor of shape (1, height, width, 3)
// with the raw 8 bit RGB channel values.
func ImageToUInt8Tensor(img image.Image) *tensor.Dense {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]uint8, 0, h*w*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data = append(data, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return tensor.New(tensor.WithShape(1, h, w, 3), tensor.WithBacking(data))
}

// ImageToFloat32Tensor copies an image into a tensor of shape (1, height, width, 3)
// with the RGB channel values scaled to [0, 1].
func ImageToFloat32Tensor(img image.Image) *tensor.Dense {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]float32, 0, h*w*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data = append(data, float32(r>>8)/255., float32(g>>8)/255., float32(b>>8)/255.)
		}
	}
	return tensor.New(tensor.WithShape(1, h, w, 3), tensor.WithBacking(data))
}

// GetTensorByName returns the tensor whose name equals or contains the given name.
func GetTensorByName(ts Tensors, name string) (*tensor.Dense, error) {
	if t, ok := ts[name]; ok {
		return t, nil
	}
	for tname, t := range ts {
		if strings.Contains(strings.ToLower(tname), strings.ToLower(name)) {
			return t, nil
		}
	}
	return nil, errors.Errorf("no tensor named %q among output tensors [%s]", name, strings.Join(TensorNames(ts), ", "))
}

// TensorNames returns all the names of the tensors.
func TensorNames(t Tensors) []string {
	names := []string{}
	for name := range t {
		names = append(names, name)
	}
	return names
}

// number interface for converting between numbers.
type number interface {
	constraints.Integer | constraints.Float
}

// convertNumberSlice converts any number slice into another number slice.
func convertNumberSlice[T1, T2 number](t1 []T1) []T2 {
	t2 := make([]T2, len(t1))
	for i := range t1 {
		t2[i] = T2(t1[i])
	}
	return t2
}

// ToFloat64Slice forces the backing data of a tensor into a []float64.
func ToFloat64Slice(slice interface{}) ([]float64, error) {
	switch v := slice.(type) {
	case []float64:
		return v, nil
	case float64:
		return []float64{v}, nil
	case []float32:
		return convertNumberSlice[float32, float64](v), nil
	case float32:
		return convertNumberSlice[float32, float64]([]float32{v}), nil
	case []int:
		return convertNumberSlice[int, float64](v), nil
	case int:
		return convertNumberSlice[int, float64]([]int{v}), nil
	case []int8:
		return convertNumberSlice[int8, float64](v), nil
	case []int16:
		return convertNumberSlice[int16, float64](v), nil
	case []int32:
		return convertNumberSlice[int32, float64](v), nil
	case []int64:
		return convertNumberSlice[int64, float64](v), nil
	case []uint8:
		return convertNumberSlice[uint8, float64](v), nil
	case []uint16:
		return convertNumberSlice[uint16, float64](v), nil
	case []uint32:
		return convertNumberSlice[uint32, float64](v), nil
	case []uint64:
		return convertNumberSlice[uint64, float64](v), nil
	default:
		return nil, errors.Errorf("dont know how to convert slice of %T into a []float64", slice)
	}
}
