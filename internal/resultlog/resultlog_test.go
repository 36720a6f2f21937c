package resultlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/UmeshNayak1/DimensiMeasure/config"
	"github.com/UmeshNayak1/DimensiMeasure/measure"
)

func TestLoggerAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.jsonl")
	logger := NewLogger(&config.ResultLogConfig{Path: path})

	annotated := "data:image/jpeg;base64,xyz"
	ok := measure.Result{
		Success: true,
		Message: "Detected 1 objects",
		Measurements: []measure.Measurement{
			{ObjectName: "bottle", Dimensions: "0.38×0.76 m", Confidence: 0.83, BBox: [4]int{100, 100, 200, 300}},
		},
		AnnotatedImage: &annotated,
	}
	test.That(t, logger.Append("req-1", ok), test.ShouldBeNil)
	test.That(t, logger.Append("req-2", measure.NewErrorResult(os.ErrClosed)), test.ShouldBeNil)
	test.That(t, logger.Close(), test.ShouldBeNil)

	raw, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 2)

	var first Record
	test.That(t, json.Unmarshal([]byte(lines[0]), &first), test.ShouldBeNil)
	test.That(t, first.RequestID, test.ShouldEqual, "req-1")
	test.That(t, first.Success, test.ShouldBeTrue)
	test.That(t, first.Measurements, test.ShouldHaveLength, 1)
	test.That(t, first.Measurements[0].ObjectName, test.ShouldEqual, "bottle")
	test.That(t, first.Time.IsZero(), test.ShouldBeFalse)
	// records must stay small; the annotated image never lands on disk
	test.That(t, lines[0], test.ShouldNotContainSubstring, "annotatedImage")

	var second Record
	test.That(t, json.Unmarshal([]byte(lines[1]), &second), test.ShouldBeNil)
	test.That(t, second.RequestID, test.ShouldEqual, "req-2")
	test.That(t, second.Success, test.ShouldBeFalse)
	test.That(t, second.Message, test.ShouldContainSubstring, "Error processing image: ")
}
