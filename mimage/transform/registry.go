package transform

import (
	"encoding/json"
	"io"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ModelType defines what camera model forms are known by the measurement pipeline.
type ModelType string

// The set of allowed camera model types.
const (
	PinholeModelType     = ModelType("pinhole")
	FieldOfViewModelType = ModelType("fov")
)

// RegisteredModelParameterSchemas maps the camera model types to the necessary parameters needed to create them.
var RegisteredModelParameterSchemas = map[ModelType]*jsonschema.Schema{
	PinholeModelType:     jsonschema.Reflect(&PinholeModel{}),
	FieldOfViewModelType: jsonschema.Reflect(&FieldOfViewModel{}),
}

// newModelTypeNotImplemented is used when the camera model type is not implemented.
func newModelTypeNotImplemented(name string) error {
	return errors.Errorf("camera model type %q is not implemented", name)
}

// ModelConfig specifies the type of camera model and the parameters needed to build it.
type ModelConfig struct {
	Model      string          `json:"model"`
	Parameters json.RawMessage `json:"parameters"`
}

// Build constructs the camera model the config describes and validates its parameters.
func (c *ModelConfig) Build() (CameraModel, error) {
	var model CameraModel
	switch ModelType(c.Model) {
	case PinholeModelType:
		model = &PinholeModel{}
	case FieldOfViewModelType:
		model = &FieldOfViewModel{}
	default:
		return nil, newModelTypeNotImplemented(c.Model)
	}
	if len(c.Parameters) > 0 {
		if err := json.Unmarshal(c.Parameters, model); err != nil {
			return nil, errors.Wrapf(err, "error parsing %q camera parameters", c.Model)
		}
	}
	if err := model.CheckValid(); err != nil {
		return nil, err
	}
	return model, nil
}

// NewCameraModelFromJSONFile takes in a file path to a JSON and turns it into a CameraModel.
func NewCameraModelFromJSONFile(jsonPath string) (CameraModel, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	cfg := &ModelConfig{}
	if err := json.Unmarshal(byteValue, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	return cfg.Build()
}
