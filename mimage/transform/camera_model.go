// Package transform holds the camera models that turn pixel extents at a known
// depth into physical dimensions.
package transform

import (
	"fmt"
	"image"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/UmeshNayak1/DimensiMeasure/utils"
)

// ErrNoCalibration is when a camera does not have calibration parameters or other parameters.
var ErrNoCalibration = errors.New("camera calibration parameters are not available")

// NewNoCalibrationError is used when the calibration constants are not defined.
func NewNoCalibrationError(msg string) error {
	return errors.Wrapf(ErrNoCalibration, msg)
}

// CameraModel converts a pixel bounding box observed at a given depth into a
// physical width and height in meters. imgDims is the pixel size of the image
// the box was measured on. Exactly one model form is active per deployment;
// the forms are never combined within a single computation.
type CameraModel interface {
	PhysicalSize(bbox image.Rectangle, depth float64, imgDims image.Point) (width, height float64, err error)
	CheckValid() error
}

// checkPhysicalSize rejects conversion results that cannot describe a real
// object. The caller drops the offending detection and continues.
func checkPhysicalSize(width, height float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) || math.IsNaN(height) || math.IsInf(height, 0) {
		return errors.Errorf("computed dimensions are not finite (%v, %v)", width, height)
	}
	if width < 0 || height < 0 {
		return errors.Errorf("computed dimensions are negative (%v, %v)", width, height)
	}
	return nil
}

// PinholeModel computes physical size from the focal length of the camera in
// pixels. Depth must be in the same linear units the focal length was
// calibrated against; DepthScale premultiplies the sampled depth to get there.
type PinholeModel struct {
	FocalLengthPx  float64 `json:"focal_length_px"`
	FocalLengthYPx float64 `json:"focal_length_y_px,omitempty"`
	DepthScale     float64 `json:"depth_scale,omitempty"`
}

// CheckValid checks if the fields for PinholeModel have valid inputs.
func (m *PinholeModel) CheckValid() error {
	if m == nil {
		return NewNoCalibrationError("pinhole parameters do not exist")
	}
	if m.FocalLengthPx <= 0 {
		return NewNoCalibrationError(fmt.Sprintf("invalid focal length %#v", m.FocalLengthPx))
	}
	if m.FocalLengthYPx < 0 {
		return NewNoCalibrationError(fmt.Sprintf("invalid vertical focal length %#v", m.FocalLengthYPx))
	}
	if m.DepthScale < 0 {
		return NewNoCalibrationError(fmt.Sprintf("invalid depth scale %#v", m.DepthScale))
	}
	return nil
}

// PhysicalSize maps the box through width = bbox_px * depth / focal_length_px.
// The focal length is isotropic unless a distinct vertical value is set.
func (m *PinholeModel) PhysicalSize(bbox image.Rectangle, depth float64, _ image.Point) (float64, float64, error) {
	if depth <= 0 {
		return 0, 0, errors.Errorf("depth must be positive, got %v", depth)
	}
	ds := m.DepthScale
	if ds == 0 {
		ds = 1.0
	}
	fy := m.FocalLengthYPx
	if fy == 0 {
		fy = m.FocalLengthPx
	}
	z := depth * ds
	width := float64(bbox.Dx()) * z / m.FocalLengthPx
	height := float64(bbox.Dy()) * z / fy
	if err := checkPhysicalSize(width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// CameraMatrix returns the effective intrinsic matrix of the model at the
// given working resolution, with the principal point taken at the image
// center.
func (m *PinholeModel) CameraMatrix(imgDims image.Point) *mat.Dense {
	fy := m.FocalLengthYPx
	if fy == 0 {
		fy = m.FocalLengthPx
	}
	k := mat.NewDense(3, 3, nil)
	k.Set(0, 0, m.FocalLengthPx)
	k.Set(1, 1, fy)
	k.Set(0, 2, float64(imgDims.X)/2)
	k.Set(1, 2, float64(imgDims.Y)/2)
	k.Set(2, 2, 1)
	return k
}

// FieldOfViewModel computes physical size from the angular extent the camera
// captures. The bbox enters as a fraction of the image extent, which cancels
// absolute pixel scale, so this form holds across resolutions. Depth must
// already be in meters. DepthCorrectionFactor is not applied here; the depth
// sampler owns it and reads it from this model at setup time.
type FieldOfViewModel struct {
	HFOVDeg               float64 `json:"hfov_deg"`
	VFOVDeg               float64 `json:"vfov_deg"`
	DepthCorrectionFactor float64 `json:"depth_correction_factor,omitempty"`
}

// CheckValid checks if the fields for FieldOfViewModel have valid inputs.
func (m *FieldOfViewModel) CheckValid() error {
	if m == nil {
		return NewNoCalibrationError("field of view parameters do not exist")
	}
	if m.HFOVDeg <= 0 || m.HFOVDeg >= 180 {
		return NewNoCalibrationError(fmt.Sprintf("horizontal fov %#v is outside (0, 180)", m.HFOVDeg))
	}
	if m.VFOVDeg <= 0 || m.VFOVDeg >= 180 {
		return NewNoCalibrationError(fmt.Sprintf("vertical fov %#v is outside (0, 180)", m.VFOVDeg))
	}
	if m.DepthCorrectionFactor < 0 {
		return NewNoCalibrationError(fmt.Sprintf("invalid depth correction factor %#v", m.DepthCorrectionFactor))
	}
	return nil
}

// PhysicalSize maps the box through
// width = 2 * depth * tan(hfov/2) * (bbox_px / image_px), analogously for height.
func (m *FieldOfViewModel) PhysicalSize(bbox image.Rectangle, depth float64, imgDims image.Point) (float64, float64, error) {
	if depth <= 0 {
		return 0, 0, errors.Errorf("depth must be positive, got %v", depth)
	}
	if imgDims.X <= 0 || imgDims.Y <= 0 {
		return 0, 0, errors.Errorf("image dimensions must be positive, got %v", imgDims)
	}
	width := 2 * depth * math.Tan(utils.DegToRad(m.HFOVDeg)/2) * (float64(bbox.Dx()) / float64(imgDims.X))
	height := 2 * depth * math.Tan(utils.DegToRad(m.VFOVDeg)/2) * (float64(bbox.Dy()) / float64(imgDims.Y))
	if err := checkPhysicalSize(width, height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// NewFieldOfViewModelFromSensor derives the angular extents from the physical
// sensor dimensions and focal length, fov = 2*atan((sensor/2)/focal_length).
func NewFieldOfViewModelFromSensor(sensorWidthMM, sensorHeightMM, focalLengthMM float64) (*FieldOfViewModel, error) {
	if sensorWidthMM <= 0 || sensorHeightMM <= 0 {
		return nil, NewNoCalibrationError(fmt.Sprintf("invalid sensor dimensions (%#v, %#v)", sensorWidthMM, sensorHeightMM))
	}
	if focalLengthMM <= 0 {
		return nil, NewNoCalibrationError(fmt.Sprintf("invalid focal length %#v", focalLengthMM))
	}
	return &FieldOfViewModel{
		HFOVDeg: utils.RadToDeg(2 * math.Atan((sensorWidthMM/2)/focalLengthMM)),
		VFOVDeg: utils.RadToDeg(2 * math.Atan((sensorHeightMM/2)/focalLengthMM)),
	}, nil
}
