// Package config defines the structures to configure a measurement server and its
// model backends.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/UmeshNayak1/DimensiMeasure/mimage/transform"
)

// Defaults applied by Ensure.
const (
	DefaultBindAddress   = ":5001"
	DefaultWorkingWidth  = 640
	DefaultWorkingHeight = 480
)

// Model backend types understood by the pipeline setup.
const (
	BackendRemote = "remote"
	BackendFake   = "fake"
)

// A Config describes the configuration of a measurement server.
type Config struct {
	Server    ServerConfig          `json:"server"`
	Camera    transform.ModelConfig `json:"camera"`
	Depth     DepthConfig           `json:"depth"`
	Detector  BackendConfig         `json:"detector"`
	Estimator BackendConfig         `json:"estimator"`
	ResultLog *ResultLogConfig      `json:"result_log,omitempty"`
	Archive   *ArchiveConfig        `json:"archive,omitempty"`

	Debug bool `json:"-"`

	ConfigFilePath string `json:"-"`
}

// Ensure ensures all parts of the config are valid and fills in defaults.
func (c *Config) Ensure() error {
	c.Server.ensure()
	if err := validateCamera("camera", &c.Camera); err != nil {
		return err
	}
	if err := c.Depth.Validate("depth"); err != nil {
		return err
	}
	if err := c.Detector.Validate("detector"); err != nil {
		return err
	}
	if err := c.Estimator.Validate("estimator"); err != nil {
		return err
	}
	if c.ResultLog != nil {
		if err := c.ResultLog.Validate("result_log"); err != nil {
			return err
		}
	}
	if c.Archive != nil {
		c.Archive.ensure()
	}
	return nil
}

// validateCamera builds the configured camera model once to surface bad
// parameters at load time rather than on the first request.
func validateCamera(path string, mc *transform.ModelConfig) error {
	if mc.Model == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "model")
	}
	if _, err := mc.Build(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// ServerConfig holds the HTTP server settings and the working resolution the
// models see.
type ServerConfig struct {
	BindAddress   string `json:"bind_address"`
	WorkingWidth  int    `json:"working_width"`
	WorkingHeight int    `json:"working_height"`
}

func (sc *ServerConfig) ensure() {
	if sc.BindAddress == "" {
		sc.BindAddress = DefaultBindAddress
	}
	if sc.WorkingWidth <= 0 {
		sc.WorkingWidth = DefaultWorkingWidth
	}
	if sc.WorkingHeight <= 0 {
		sc.WorkingHeight = DefaultWorkingHeight
	}
}

// DepthConfig tunes the depth sampler.
type DepthConfig struct {
	// MaxValidDepth is the far plane cutoff in meters. Zero keeps the sampler default.
	MaxValidDepth float64 `json:"max_valid_depth"`
	// CorrectionFactor aligns the depth model with ground truth. Zero means no
	// correction unless the camera model carries one.
	CorrectionFactor float64 `json:"correction_factor"`
}

// Validate ensures all parts of the config are valid.
func (dc *DepthConfig) Validate(path string) error {
	if dc.MaxValidDepth < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("max_valid_depth cannot be negative, got %v", dc.MaxValidDepth))
	}
	if dc.CorrectionFactor < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("correction_factor cannot be negative, got %v", dc.CorrectionFactor))
	}
	return nil
}

// BackendConfig describes one model backend, either a remote inference sidecar or
// the built in fake.
type BackendConfig struct {
	Type string `json:"type"`
	// Address is the base URL of the remote sidecar, e.g. "http://127.0.0.1:5002".
	Address string `json:"address,omitempty"`
	// Threshold drops detections below this confidence. Zero or negative keeps everything.
	Threshold float64 `json:"threshold,omitempty"`
	// MinBoxArea drops detections whose box covers fewer pixels. Zero keeps everything.
	MinBoxArea int `json:"min_box_area,omitempty"`
	// Labels keeps only detections with these class labels. Empty keeps everything.
	Labels []string `json:"labels,omitempty"`
	// Attributes holds backend specific options, e.g. the fake's canned detection.
	Attributes AttributeMap `json:"attributes,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (bc *BackendConfig) Validate(path string) error {
	if bc.Type == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	}
	switch bc.Type {
	case BackendRemote:
		if bc.Address == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "address")
		}
	case BackendFake:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown backend type %q", bc.Type))
	}
	if bc.Threshold > 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("threshold must be at most 1, got %v", bc.Threshold))
	}
	if bc.MinBoxArea < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("min_box_area cannot be negative, got %v", bc.MinBoxArea))
	}
	return nil
}

// ResultLogConfig points the measurement audit log at a file.
type ResultLogConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	Compress   bool   `json:"compress"`
}

// Validate ensures all parts of the config are valid.
func (rc *ResultLogConfig) Validate(path string) error {
	if rc.Path == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "path")
	}
	return nil
}

// ArchiveConfig connects measurement archiving to a MongoDB deployment. The
// connection URI comes from the named environment variable so credentials never
// sit in the config file; when the variable is unset archiving is skipped.
type ArchiveConfig struct {
	URIEnv     string `json:"uri_env"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

func (ac *ArchiveConfig) ensure() {
	if ac.URIEnv == "" {
		ac.URIEnv = "MONGODB_URI"
	}
	if ac.Database == "" {
		ac.Database = "dimensi"
	}
	if ac.Collection == "" {
		ac.Collection = "measurements"
	}
}

// String gives a compact description for logs.
func (c *Config) String() string {
	return fmt.Sprintf("config(bind=%s working=%dx%d camera=%s detector=%s estimator=%s)",
		c.Server.BindAddress, c.Server.WorkingWidth, c.Server.WorkingHeight,
		c.Camera.Model, c.Detector.Type, c.Estimator.Type)
}
