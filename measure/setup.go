package measure

import (
	"context"
	"image"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/UmeshNayak1/DimensiMeasure/config"
	"github.com/UmeshNayak1/DimensiMeasure/mimage/transform"
	"github.com/UmeshNayak1/DimensiMeasure/mlmodel/fake"
	"github.com/UmeshNayak1/DimensiMeasure/vision/depthestimation"
	"github.com/UmeshNayak1/DimensiMeasure/vision/objectdetection"
	"github.com/UmeshNayak1/DimensiMeasure/vision/remote"
)

// Defaults for the fake backends when their attributes leave them unset.
const (
	defaultFakeLabel = "object"
	defaultFakeScore = 0.99
	defaultFakeDepth = 2.0
)

// FromConfig builds a ready pipeline out of a validated config.
func FromConfig(ctx context.Context, cfg *config.Config, logger golog.Logger) (*Pipeline, error) {
	camera, err := cfg.Camera.Build()
	if err != nil {
		return nil, errors.Wrap(err, "cannot build camera model")
	}
	sampler := SamplerFromConfig(cfg.Depth, camera)

	workingDims := image.Pt(cfg.Server.WorkingWidth, cfg.Server.WorkingHeight)

	detector, err := buildDetector(ctx, cfg.Detector, logger)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build detector backend")
	}
	estimator, err := buildEstimator(ctx, cfg.Estimator, workingDims, logger)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build depth backend")
	}

	return NewPipeline(detector, estimator, camera, sampler, workingDims, logger), nil
}

// SamplerFromConfig resolves the depth sampler for a camera. A correction
// factor calibrated together with a fov model travels with it, so an unset
// factor defers to the model's own.
func SamplerFromConfig(dc config.DepthConfig, camera transform.CameraModel) DepthSampler {
	sampler := DepthSampler{
		MaxValidDepth:    dc.MaxValidDepth,
		CorrectionFactor: dc.CorrectionFactor,
	}
	if sampler.CorrectionFactor == 0 {
		if fov, ok := camera.(*transform.FieldOfViewModel); ok {
			sampler.CorrectionFactor = fov.DepthCorrectionFactor
		}
	}
	return sampler
}

func buildDetector(ctx context.Context, bc config.BackendConfig, logger golog.Logger) (objectdetection.Detector, error) {
	var detector objectdetection.Detector
	switch bc.Type {
	case config.BackendRemote:
		client := remote.NewClient(bc.Address, logger)
		if err := client.CheckHealth(ctx); err != nil {
			logger.Warnw("detector sidecar is not answering yet", "error", err)
		}
		detector = client.Detector()
	case config.BackendFake:
		svc := fakeDetectionService(bc.Attributes)
		mlDetector, err := objectdetection.NewMLModelDetector(ctx, svc, svc.Labels())
		if err != nil {
			return nil, err
		}
		detector = mlDetector
	default:
		return nil, errors.Errorf("unknown backend type %q", bc.Type)
	}
	return objectdetection.Build(nil, detector, postprocessorFromConfig(bc))
}

func buildEstimator(
	ctx context.Context,
	bc config.BackendConfig,
	workingDims image.Point,
	logger golog.Logger,
) (depthestimation.DepthEstimator, error) {
	switch bc.Type {
	case config.BackendRemote:
		client := remote.NewClient(bc.Address, logger)
		if err := client.CheckHealth(ctx); err != nil {
			logger.Warnw("depth sidecar is not answering yet", "error", err)
		}
		return client.DepthEstimator(), nil
	case config.BackendFake:
		depth := bc.Attributes.Float64("depth_meters", defaultFakeDepth)
		svc := fake.NewDepthService(depth, workingDims.X, workingDims.Y)
		return depthestimation.NewMLModelEstimator(ctx, svc)
	default:
		return nil, errors.Errorf("unknown backend type %q", bc.Type)
	}
}

func fakeDetectionService(attrs config.AttributeMap) *fake.DetectionService {
	label := attrs.String("label")
	if label == "" {
		label = defaultFakeLabel
	}
	score := attrs.Float64("score", defaultFakeScore)
	box := [4]float64{0.25, 0.25, 0.75, 0.75}
	if corners := attrs.Float64Slice("box"); len(corners) == 4 {
		copy(box[:], corners)
	}
	return fake.NewDetectionService(label, score, box)
}

func postprocessorFromConfig(bc config.BackendConfig) objectdetection.Postprocessor {
	filters := make([]objectdetection.Postprocessor, 0, 3)
	if bc.Threshold > 0 {
		filters = append(filters, objectdetection.NewScoreFilter(bc.Threshold))
	}
	if bc.MinBoxArea > 0 {
		filters = append(filters, objectdetection.NewAreaFilter(bc.MinBoxArea))
	}
	if len(bc.Labels) > 0 {
		keep := make(map[string]bool, len(bc.Labels))
		for _, label := range bc.Labels {
			keep[label] = true
		}
		filters = append(filters, objectdetection.NewLabelFilter(keep))
	}
	if len(filters) == 0 {
		return nil
	}
	return objectdetection.ComposePostprocessors(filters...)
}
