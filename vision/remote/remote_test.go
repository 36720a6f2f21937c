package remote

import (
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/UmeshNayak1/DimensiMeasure/mimage"
)

type recordedRequest struct {
	method string
	path   string
	imgW   int
	imgH   int
}

func recordFrame(r *http.Request) recordedRequest {
	rec := recordedRequest{method: r.Method, path: r.URL.Path}
	file, _, err := r.FormFile("image")
	if err != nil {
		return rec
	}
	img, err := jpeg.Decode(file)
	if err != nil {
		return rec
	}
	rec.imgW = img.Bounds().Dx()
	rec.imgH = img.Bounds().Dy()
	return rec
}

func TestDetector(t *testing.T) {
	logger := golog.NewTestLogger(t)
	var got recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = recordFrame(r)
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck
		w.Write([]byte(`[
			{"class": "bottle", "confidence": 0.83, "bbox": [100, 100, 200, 300]},
			{"class": "cup", "confidence": 0.6, "bbox": [10, 20, 30, 40]}
		]`))
	}))
	defer srv.Close()

	detector := NewClient(srv.URL, logger).Detector()
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	dets, err := detector(context.Background(), img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dets, test.ShouldHaveLength, 2)
	test.That(t, *dets[0].BoundingBox(), test.ShouldResemble, image.Rect(100, 100, 200, 300))
	test.That(t, dets[0].Score(), test.ShouldEqual, 0.83)
	test.That(t, dets[0].Label(), test.ShouldEqual, "bottle")
	test.That(t, dets[1].Label(), test.ShouldEqual, "cup")

	test.That(t, got.method, test.ShouldEqual, http.MethodPost)
	test.That(t, got.path, test.ShouldEqual, "/detect")
	test.That(t, got.imgW, test.ShouldEqual, 640)
	test.That(t, got.imgH, test.ShouldEqual, 480)
}

func TestDepthEstimator(t *testing.T) {
	logger := golog.NewTestLogger(t)
	dm := mimage.NewEmptyDepthMap(8, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			dm.Set(x, y, 2.0)
		}
	}
	dm.Set(3, 2, 1.234)

	var got recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = recordFrame(r)
		w.Header().Set("Content-Type", "image/png")
		//nolint:errcheck
		png.Encode(w, dm.ToGray16Picture())
	}))
	defer srv.Close()

	estimator := NewClient(srv.URL, logger).DepthEstimator()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	out, err := estimator(context.Background(), img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Width(), test.ShouldEqual, 8)
	test.That(t, out.Height(), test.ShouldEqual, 6)
	test.That(t, out.GetDepth(0, 0), test.ShouldEqual, 2.0)
	test.That(t, out.GetDepth(3, 2), test.ShouldEqual, 1.234)
	test.That(t, got.path, test.ShouldEqual, "/depth")
}

func TestBadResponses(t *testing.T) {
	logger := golog.NewTestLogger(t)
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no model loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, logger)
	_, err := client.Detector()(context.Background(), img)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "status 500")
	test.That(t, err.Error(), test.ShouldContainSubstring, "no model loaded")

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck
		w.Write([]byte("not a payload"))
	}))
	defer garbage.Close()

	client = NewClient(garbage.URL, logger)
	_, err = client.Detector()(context.Background(), img)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode detections")

	_, err = client.DepthEstimator()(context.Background(), img)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode depth image")
}

func TestCheckHealth(t *testing.T) {
	logger := golog.NewTestLogger(t)

	var gotPath string
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	test.That(t, NewClient(healthy.URL, logger).CheckHealth(context.Background()), test.ShouldBeNil)
	test.That(t, gotPath, test.ShouldEqual, "/health")

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()
	err := NewClient(unhealthy.URL, logger).CheckHealth(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "returned status 503")

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()
	err = NewClient(down.URL, logger).CheckHealth(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not reachable")
}
