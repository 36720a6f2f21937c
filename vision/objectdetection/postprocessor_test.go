package objectdetection

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestScoreFilter(t *testing.T) {
	dets := []Detection{
		NewDetection(image.Rect(0, 0, 10, 10), 0.9, "a"),
		NewDetection(image.Rect(0, 0, 10, 10), 0.5, "b"),
		NewDetection(image.Rect(0, 0, 10, 10), 0.1, "c"),
	}
	filt := NewScoreFilter(0.5)
	out := filt(dets)
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, out[0].Label(), test.ShouldEqual, "a")
	test.That(t, out[1].Label(), test.ShouldEqual, "b")
}

func TestAreaFilter(t *testing.T) {
	dets := []Detection{
		NewDetection(image.Rect(0, 0, 10, 10), 0.9, "big"),
		NewDetection(image.Rect(0, 0, 3, 3), 0.9, "small"),
	}
	filt := NewAreaFilter(50)
	out := filt(dets)
	test.That(t, out, test.ShouldHaveLength, 1)
	test.That(t, out[0].Label(), test.ShouldEqual, "big")
}

func TestLabelFilter(t *testing.T) {
	dets := []Detection{
		NewDetection(image.Rect(0, 0, 10, 10), 0.9, "bottle"),
		NewDetection(image.Rect(0, 0, 10, 10), 0.9, "chair"),
	}
	filt := NewLabelFilter(map[string]bool{"bottle": true})
	out := filt(dets)
	test.That(t, out, test.ShouldHaveLength, 1)
	test.That(t, out[0].Label(), test.ShouldEqual, "bottle")

	// empty set keeps everything
	filt = NewLabelFilter(nil)
	test.That(t, filt(dets), test.ShouldHaveLength, 2)
}
