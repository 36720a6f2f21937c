package ml

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
	"gorgonia.org/tensor"
)

func TestImageToUInt8Tensor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	tens := ImageToUInt8Tensor(img)
	test.That(t, tens.Shape(), test.ShouldResemble, tensor.Shape{1, 2, 3, 3})
	data := tens.Data().([]uint8)
	test.That(t, len(data), test.ShouldEqual, 2*3*3)
	// pixel (1,0) sits at offset (0*3+1)*3
	test.That(t, data[3], test.ShouldEqual, uint8(10))
	test.That(t, data[4], test.ShouldEqual, uint8(20))
	test.That(t, data[5], test.ShouldEqual, uint8(30))
}

func TestImageToFloat32Tensor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})

	tens := ImageToFloat32Tensor(img)
	test.That(t, tens.Shape(), test.ShouldResemble, tensor.Shape{1, 2, 2, 3})
	data := tens.Data().([]float32)
	test.That(t, data[0], test.ShouldAlmostEqual, 1.0, .001)
	test.That(t, data[1], test.ShouldAlmostEqual, 0.0, .001)
	test.That(t, data[2], test.ShouldAlmostEqual, 0.2, .001)
}

func TestGetTensorByName(t *testing.T) {
	ts := Tensors{
		"location":        tensor.New(tensor.WithShape(1, 4), tensor.WithBacking([]float32{0, 0, 1, 1})),
		"detection_score": tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float32{0.9})),
	}

	got, err := GetTensorByName(ts, "location")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldEqual, ts["location"])

	// substring match is case insensitive
	got, err = GetTensorByName(ts, "Score")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldEqual, ts["detection_score"])

	_, err = GetTensorByName(ts, "category")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no tensor named")
}

func TestToFloat64Slice(t *testing.T) {
	out, err := ToFloat64Slice([]float32{1.5, 2.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, []float64{1.5, 2.5})

	out, err = ToFloat64Slice([]uint8{0, 255})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, []float64{0, 255})

	out, err = ToFloat64Slice(3.25)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldResemble, []float64{3.25})

	_, err = ToFloat64Slice("not a number")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "dont know how to convert")
}
