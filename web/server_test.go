package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/UmeshNayak1/DimensiMeasure/measure"
	"github.com/UmeshNayak1/DimensiMeasure/mimage"
	"github.com/UmeshNayak1/DimensiMeasure/mimage/transform"
	"github.com/UmeshNayak1/DimensiMeasure/vision/objectdetection"
)

// testPipeline measures one bottle at (100,100)-(200,300) seen 2m away.
func testPipeline(t *testing.T) *measure.Pipeline {
	t.Helper()
	detector := func(ctx context.Context, img image.Image) ([]objectdetection.Detection, error) {
		return []objectdetection.Detection{
			objectdetection.NewDetection(image.Rect(100, 100, 200, 300), 0.83, "bottle"),
		}, nil
	}
	estimator := func(ctx context.Context, img image.Image) (*mimage.DepthMap, error) {
		dm := mimage.NewEmptyDepthMap(640, 480)
		for y := 0; y < 480; y++ {
			for x := 0; x < 640; x++ {
				dm.Set(x, y, 2.0)
			}
		}
		return dm, nil
	}
	camera := &transform.PinholeModel{FocalLengthPx: 525}
	return measure.NewPipeline(detector, estimator, camera, measure.DepthSampler{}, image.Pt(640, 480), golog.NewTestLogger(t))
}

func measureBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	uri, err := mimage.EncodeToDataURI(context.Background(), image.NewRGBA(image.Rect(0, 0, 640, 480)))
	test.That(t, err, test.ShouldBeNil)
	body, err := json.Marshal(measureRequest{Image: uri})
	test.That(t, err, test.ShouldBeNil)
	return bytes.NewBuffer(body)
}

func TestMeasureEndpoint(t *testing.T) {
	logger := golog.NewTestLogger(t)
	server := NewServer(testPipeline(t), logger)
	handler := server.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/measure", measureBody(t)))

	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, rec.Header().Get("Content-Type"), test.ShouldEqual, "application/json")

	var res measure.Result
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &res), test.ShouldBeNil)
	test.That(t, res.Success, test.ShouldBeTrue)
	test.That(t, res.Message, test.ShouldEqual, "Detected 1 objects")
	test.That(t, res.Measurements, test.ShouldHaveLength, 1)
	test.That(t, res.Measurements[0].ObjectName, test.ShouldEqual, "bottle")
	test.That(t, res.Measurements[0].Dimensions, test.ShouldEqual, "0.38×0.76 m")
	test.That(t, res.Measurements[0].BBox, test.ShouldResemble, [4]int{100, 100, 200, 300})
	test.That(t, res.AnnotatedImage, test.ShouldNotBeNil)
	test.That(t, strings.HasPrefix(*res.AnnotatedImage, "data:image/jpeg;base64,"), test.ShouldBeTrue)
}

func TestMeasureRejectsMissingImage(t *testing.T) {
	logger := golog.NewTestLogger(t)
	server := NewServer(testPipeline(t), logger)
	handler := server.Handler()

	for _, body := range []string{`{}`, ``, `{"image": ""}`, `not json`} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/measure", strings.NewReader(body)))
		test.That(t, rec.Code, test.ShouldEqual, http.StatusBadRequest)
		test.That(t, strings.TrimSpace(rec.Body.String()), test.ShouldEqual,
			`{"success":false,"message":"No image data provided"}`)
	}
}

func TestMeasureUndecodablePayload(t *testing.T) {
	logger := golog.NewTestLogger(t)
	server := NewServer(testPipeline(t), logger)
	handler := server.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/measure",
		strings.NewReader(`{"image": "!!!definitely-not-an-image!!!"}`)))

	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	body := rec.Body.String()
	test.That(t, body, test.ShouldContainSubstring, `"success":false`)
	test.That(t, body, test.ShouldContainSubstring, `"message":"Error processing image: `)
	test.That(t, body, test.ShouldContainSubstring, `"measurements":[]`)
	test.That(t, body, test.ShouldNotContainSubstring, "annotatedImage")
}

func TestHealthEndpoint(t *testing.T) {
	logger := golog.NewTestLogger(t)
	server := NewServer(testPipeline(t), logger)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, strings.TrimSpace(rec.Body.String()), test.ShouldEqual,
		`{"status":"ok","model_loaded":true}`)

	empty := measure.NewPipeline(nil, nil, nil, measure.DepthSampler{}, image.Point{}, logger)
	rec = httptest.NewRecorder()
	NewServer(empty, logger).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	test.That(t, strings.TrimSpace(rec.Body.String()), test.ShouldEqual,
		`{"status":"ok","model_loaded":false}`)
}

func TestResultHooks(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var gotID string
	var gotRes measure.Result
	calls := 0
	hook := func(ctx context.Context, requestID string, res measure.Result) error {
		calls++
		gotID = requestID
		gotRes = res
		return nil
	}
	failing := func(ctx context.Context, requestID string, res measure.Result) error {
		return context.DeadlineExceeded
	}
	server := NewServer(testPipeline(t), logger, hook, failing)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/measure", measureBody(t)))

	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, calls, test.ShouldEqual, 1)
	test.That(t, gotID, test.ShouldNotBeEmpty)
	test.That(t, gotRes.Success, test.ShouldBeTrue)
	test.That(t, gotRes.Measurements, test.ShouldHaveLength, 1)
}

func TestCORSHeaders(t *testing.T) {
	logger := golog.NewTestLogger(t)
	server := NewServer(testPipeline(t), logger)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	test.That(t, rec.Header().Get("Access-Control-Allow-Origin"), test.ShouldEqual, "*")
}
