package mimage

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestResizeWithPaddingFills(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	// same aspect ratio, no padding needed
	out := ResizeWithPadding(uniformImage(320, 240, red), 640, 480)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 640, 480))
	test.That(t, out.NRGBAAt(0, 0), test.ShouldResemble, red)
	test.That(t, out.NRGBAAt(320, 240), test.ShouldResemble, red)
	test.That(t, out.NRGBAAt(639, 479), test.ShouldResemble, red)
}

func TestResizeWithPaddingLetterboxes(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	black := color.NRGBA{A: 255}
	// a wide image gets black bars above and below
	out := ResizeWithPadding(uniformImage(640, 240, red), 640, 480)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 640, 480))
	test.That(t, out.NRGBAAt(320, 10), test.ShouldResemble, black)
	test.That(t, out.NRGBAAt(320, 470), test.ShouldResemble, black)
	test.That(t, out.NRGBAAt(320, 240), test.ShouldResemble, red)

	// a tall image gets black bars left and right
	out = ResizeWithPadding(uniformImage(240, 480, red), 640, 480)
	test.That(t, out.NRGBAAt(10, 240), test.ShouldResemble, black)
	test.That(t, out.NRGBAAt(630, 240), test.ShouldResemble, black)
	test.That(t, out.NRGBAAt(320, 240), test.ShouldResemble, red)
}

func TestResizeWithPaddingNoop(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	out := ResizeWithPadding(uniformImage(640, 480, red), 640, 480)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 640, 480))
	test.That(t, out.NRGBAAt(320, 240), test.ShouldResemble, red)
}

func TestResizeWithPaddingDegenerate(t *testing.T) {
	out := ResizeWithPadding(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 640, 480)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 640, 480))
	test.That(t, out.NRGBAAt(320, 240), test.ShouldResemble, color.NRGBA{A: 255})
}
