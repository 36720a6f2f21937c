package measure

import (
	"context"
	"image"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/zap"

	"github.com/UmeshNayak1/DimensiMeasure/mimage"
	"github.com/UmeshNayak1/DimensiMeasure/mimage/transform"
	"github.com/UmeshNayak1/DimensiMeasure/vision/depthestimation"
	"github.com/UmeshNayak1/DimensiMeasure/vision/objectdetection"
)

// Default working resolution the models see.
const (
	DefaultWorkingWidth  = 640
	DefaultWorkingHeight = 480
)

// Pipeline wires a detector, a depth estimator and the camera geometry into the
// measure one frame operation. The camera model and sampler can be swapped at
// runtime when a config reload changes calibration; frames being processed keep
// the calibration they started with.
type Pipeline struct {
	mu          sync.RWMutex
	detector    objectdetection.Detector
	estimator   depthestimation.DepthEstimator
	camera      transform.CameraModel
	sampler     DepthSampler
	workingDims image.Point
	logger      golog.Logger
}

// NewPipeline puts together a measurement pipeline. Zero workingDims fall back
// to the 640x480 default.
func NewPipeline(
	detector objectdetection.Detector,
	estimator depthestimation.DepthEstimator,
	camera transform.CameraModel,
	sampler DepthSampler,
	workingDims image.Point,
	logger golog.Logger,
) *Pipeline {
	if workingDims.X <= 0 || workingDims.Y <= 0 {
		workingDims = image.Point{X: DefaultWorkingWidth, Y: DefaultWorkingHeight}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		detector:    detector,
		estimator:   estimator,
		camera:      camera,
		sampler:     sampler,
		workingDims: workingDims,
		logger:      logger,
	}
}

// Ready reports whether both model backends are wired in.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.detector != nil && p.estimator != nil
}

// SetCalibration swaps the camera model and depth sampler.
func (p *Pipeline) SetCalibration(camera transform.CameraModel, sampler DepthSampler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.camera = camera
	p.sampler = sampler
}

// ProcessInput decodes an image payload (data URI, file path or raw base64) and
// measures the objects in it. Decode failures come back as a failure result,
// never an error.
func (p *Pipeline) ProcessInput(ctx context.Context, payload string) Result {
	ctx, span := trace.StartSpan(ctx, "measure::Pipeline::ProcessInput")
	defer span.End()
	img, err := mimage.DecodeInput(ctx, payload)
	if err != nil {
		return NewErrorResult(err)
	}
	return p.Process(ctx, img)
}

// Process measures every object in one frame. Per object failures (no valid
// depth under the box, degenerate geometry) drop that object and continue; only
// whole frame failures produce an error result.
func (p *Pipeline) Process(ctx context.Context, src image.Image) Result {
	ctx, span := trace.StartSpan(ctx, "measure::Pipeline::Process")
	defer span.End()

	p.mu.RLock()
	detector := p.detector
	estimator := p.estimator
	camera := p.camera
	sampler := p.sampler
	workingDims := p.workingDims
	p.mu.RUnlock()

	if detector == nil || estimator == nil || camera == nil {
		return NewErrorResult(errors.New("measurement pipeline is not fully configured"))
	}

	origDims := src.Bounds().Size()
	working := mimage.ResizeWithPadding(src, workingDims.X, workingDims.Y)

	detections, err := detector(ctx, working)
	if err != nil {
		return NewErrorResult(errors.Wrap(err, "detector failed"))
	}
	if len(detections) == 0 {
		return Assemble(nil)
	}

	dm, err := estimator(ctx, working)
	if err != nil {
		return NewErrorResult(errors.Wrap(err, "depth estimation failed"))
	}
	// align the depth map to the frame the boxes were found on
	if dm.Width() != workingDims.X || dm.Height() != workingDims.Y {
		dm = dm.Resize(workingDims.X, workingDims.Y)
	}

	measurements := make([]Measurement, 0, len(detections))
	annotations := make([]objectdetection.Detection, 0, len(detections))
	for _, det := range detections {
		box := *det.BoundingBox()
		depth := sampler.Sample(dm, box)
		if depth <= 0 {
			p.logger.Debugw("no valid depth under detection, skipping", "label", det.Label())
			continue
		}
		width, height, err := camera.PhysicalSize(box, depth, workingDims)
		if err != nil {
			p.logger.Debugw("skipping detection with degenerate geometry", "label", det.Label(), "error", err)
			continue
		}
		dims := FormatDimensions(width, height)
		scaled := objectdetection.RescaleBox(box, workingDims, origDims)
		measurements = append(measurements, Measurement{
			ObjectName: det.Label(),
			Dimensions: dims,
			Confidence: det.Score(),
			BBox:       [4]int{scaled.Min.X, scaled.Min.Y, scaled.Max.X, scaled.Max.Y},
		})
		annotations = append(annotations,
			objectdetection.NewDetection(scaled, det.Score(), FormatLabel(det.Label(), dims, det.Score())))
	}

	res := Assemble(measurements)
	if !res.Success {
		return res
	}

	ovImg, err := objectdetection.Overlay(src, annotations)
	if err != nil {
		return NewErrorResult(errors.Wrap(err, "failed to annotate image"))
	}
	uri, err := mimage.EncodeToDataURI(ctx, ovImg)
	if err != nil {
		return NewErrorResult(errors.Wrap(err, "failed to encode annotated image"))
	}
	res.AnnotatedImage = &uri
	return res
}
