// Package remote turns an inference sidecar speaking the measurement wire
// protocol into detector and depth estimator primitives. The sidecar accepts a
// JPEG frame and answers with postprocessed detections as JSON or a dense
// depth image.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	goutils "go.viam.com/utils"

	"github.com/UmeshNayak1/DimensiMeasure/mimage"
	"github.com/UmeshNayak1/DimensiMeasure/utils"
	"github.com/UmeshNayak1/DimensiMeasure/vision/depthestimation"
	"github.com/UmeshNayak1/DimensiMeasure/vision/objectdetection"
)

const requestTimeout = 30 * time.Second

// Client talks to an inference sidecar over HTTP.
type Client struct {
	address string
	httpc   *http.Client
	logger  golog.Logger
}

// NewClient returns a client for the sidecar at the given base address,
// e.g. "http://127.0.0.1:5002".
func NewClient(address string, logger golog.Logger) *Client {
	return &Client{
		address: address,
		httpc:   &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// CheckHealth pings the sidecar.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.address+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "sidecar at %s is not reachable", c.address)
	}
	defer goutils.UncheckedErrorFunc(resp.Body.Close)
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("sidecar at %s returned status %d", c.address, resp.StatusCode)
	}
	return nil
}

// postFrame encodes the image as JPEG and posts it as a multipart form to the
// given endpoint. The caller owns the response body on success.
func (c *Client) postFrame(ctx context.Context, endpoint string, img image.Image) (*http.Response, error) {
	imgBytes, err := mimage.EncodeImage(ctx, img, utils.MimeTypeJPEG)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "frame.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(imgBytes); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address+endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s%s failed", c.address, endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		defer goutils.UncheckedErrorFunc(resp.Body.Close)
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("%s%s returned status %d: %s", c.address, endpoint, resp.StatusCode, string(errBody))
	}
	return resp, nil
}

// remoteDetection is a sidecar detection in its wire form. Box corners are in
// pixels of the posted frame.
type remoteDetection struct {
	Class      string     `json:"class"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

// Detector returns a detector that runs each frame through the sidecar's
// /detect endpoint.
func (c *Client) Detector() objectdetection.Detector {
	return func(ctx context.Context, img image.Image) ([]objectdetection.Detection, error) {
		ctx, span := trace.StartSpan(ctx, "remote::Client::Detect")
		defer span.End()

		resp, err := c.postFrame(ctx, "/detect", img)
		if err != nil {
			return nil, err
		}
		defer goutils.UncheckedErrorFunc(resp.Body.Close)

		var raw []remoteDetection
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "cannot decode detections from sidecar")
		}
		detections := make([]objectdetection.Detection, 0, len(raw))
		for _, rd := range raw {
			rect := image.Rect(int(rd.BBox[0]), int(rd.BBox[1]), int(rd.BBox[2]), int(rd.BBox[3]))
			detections = append(detections, objectdetection.NewDetection(rect, rd.Confidence, rd.Class))
		}
		return detections, nil
	}
}

// DepthEstimator returns an estimator that posts each frame to the sidecar's
// /depth endpoint. The sidecar answers with a 16 bit grayscale PNG holding
// millimeter depth.
func (c *Client) DepthEstimator() depthestimation.DepthEstimator {
	return func(ctx context.Context, img image.Image) (*mimage.DepthMap, error) {
		ctx, span := trace.StartSpan(ctx, "remote::Client::Depth")
		defer span.End()

		resp, err := c.postFrame(ctx, "/depth", img)
		if err != nil {
			return nil, err
		}
		defer goutils.UncheckedErrorFunc(resp.Body.Close)

		depthImg, err := png.Decode(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "cannot decode depth image from sidecar")
		}
		return mimage.ConvertImageToDepthMap(depthImg)
	}
}
