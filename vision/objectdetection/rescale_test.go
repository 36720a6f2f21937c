package objectdetection

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestRescaleBox(t *testing.T) {
	// 640x480 detection frame back onto the 1920x1080 original
	box := RescaleBox(image.Rect(100, 100, 200, 300), image.Point{640, 480}, image.Point{1920, 1080})
	test.That(t, box, test.ShouldResemble, image.Rect(300, 225, 600, 675))

	// same dimensions is a no-op
	box = RescaleBox(image.Rect(5, 6, 7, 8), image.Point{640, 480}, image.Point{640, 480})
	test.That(t, box, test.ShouldResemble, image.Rect(5, 6, 7, 8))

	// degenerate source dimensions leave the box alone
	box = RescaleBox(image.Rect(5, 6, 7, 8), image.Point{0, 0}, image.Point{640, 480})
	test.That(t, box, test.ShouldResemble, image.Rect(5, 6, 7, 8))
}

func TestRescaleBoxTruncates(t *testing.T) {
	// 101 * 0.5 = 50.5 truncates to 50, 299 * 0.5 = 149.5 truncates to 149
	box := RescaleBox(image.Rect(101, 101, 199, 299), image.Point{640, 480}, image.Point{320, 240})
	test.That(t, box, test.ShouldResemble, image.Rect(50, 50, 99, 149))
}

func TestRescaleBoxPerAxis(t *testing.T) {
	// axes scale independently when the aspect ratio changes
	box := RescaleBox(image.Rect(0, 0, 320, 240), image.Point{640, 480}, image.Point{1280, 480})
	test.That(t, box, test.ShouldResemble, image.Rect(0, 0, 640, 240))
}

func TestRescaleDetections(t *testing.T) {
	dets := []Detection{
		NewDetection(image.Rect(0, 0, 320, 240), 0.9, "bottle"),
		NewDetection(image.Rect(100, 100, 200, 300), 0.4, "chair"),
	}
	out := RescaleDetections(dets, image.Point{640, 480}, image.Point{1280, 960})
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, *out[0].BoundingBox(), test.ShouldResemble, image.Rect(0, 0, 640, 480))
	test.That(t, out[0].Score(), test.ShouldEqual, 0.9)
	test.That(t, out[0].Label(), test.ShouldEqual, "bottle")
	test.That(t, *out[1].BoundingBox(), test.ShouldResemble, image.Rect(200, 200, 400, 600))
}
