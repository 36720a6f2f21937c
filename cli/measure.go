package cli

import (
	"encoding/json"
	"fmt"

	"github.com/edaniels/golog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/UmeshNayak1/DimensiMeasure/config"
	"github.com/UmeshNayak1/DimensiMeasure/measure"
	"github.com/UmeshNayak1/DimensiMeasure/mimage"
	"github.com/UmeshNayak1/DimensiMeasure/mimage/transform"
	"github.com/UmeshNayak1/DimensiMeasure/web"
)

// MeasureAction runs the measurement pipeline over a single image file and
// prints what it found.
func MeasureAction(c *cli.Context) error {
	imgPath := c.Args().First()
	if imgPath == "" {
		return errors.New("must provide an image file to measure")
	}
	logger := actionLogger(c)

	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	pipeline, err := measure.FromConfig(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	img, err := mimage.NewImageFromFile(imgPath)
	if err != nil {
		return err
	}
	res := pipeline.Process(c.Context, img)

	if out := c.Path(measureFlagOut); out != "" && res.AnnotatedImage != nil {
		annotated, err := mimage.DecodeInput(c.Context, *res.AnnotatedImage)
		if err != nil {
			return err
		}
		if err := mimage.WriteImageToFile(c.Context, out, annotated); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Wrote annotated image to %s\n", out)
	}

	if c.Bool(measureFlagJSON) {
		// the annotated data URI would drown the interesting fields in base64
		res.AnnotatedImage = nil
		raw, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(raw))
		return nil
	}

	fmt.Fprintln(c.App.Writer, res.Message)
	if len(res.Measurements) > 0 {
		fmt.Fprintln(c.App.Writer, measurementTable(res.Measurements))
	}
	return nil
}

// ServeAction starts the HTTP measurement server through the same entry point
// the server binary uses, so the port flag and config handling match.
func ServeAction(c *cli.Context) error {
	cfgPath := c.String(configFlag)
	if cfgPath == "" {
		return errors.New("must provide a config file to serve from")
	}

	args := []string{"dimensi-server"}
	if c.Bool(debugFlag) {
		args = append(args, "--debug")
	}
	if port := c.Int(serveFlagPort); port != 0 {
		args = append(args, "--port", fmt.Sprintf("%d", port))
	}
	args = append(args, cfgPath)

	logger := golog.NewDevelopmentLogger("dimensi_server")
	if c.Bool(debugFlag) {
		logger = golog.NewDebugLogger("dimensi_server")
	}
	return web.RunServer(c.Context, args, logger)
}

// loadConfig reads the configured service config. Without one, or with the
// fake flag set, it falls back to canned model backends and a plain pinhole
// camera so the command works out of the box. The camera flag overrides the
// camera parameters either way.
func loadConfig(c *cli.Context, logger golog.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgPath := c.String(configFlag); cfgPath != "" && !c.Bool(measureFlagFake) {
		cfg, err = config.Read(c.Context, cfgPath, logger)
	} else {
		logger.Debug("using canned model backends")
		cfg = &config.Config{
			Camera: transform.ModelConfig{
				Model:      string(transform.PinholeModelType),
				Parameters: json.RawMessage(`{"focal_length_px": 525}`),
			},
			Detector:  config.BackendConfig{Type: config.BackendFake},
			Estimator: config.BackendConfig{Type: config.BackendFake},
		}
		err = cfg.Ensure()
	}
	if err != nil {
		return nil, err
	}

	if override := c.String(measureFlagCamera); override != "" {
		// normalize hand-typed JSON5 into strict JSON before the model
		// parameter parsing sees it
		var fields map[string]interface{}
		if err := json5.Unmarshal([]byte(override), &fields); err != nil {
			return nil, errors.Wrap(err, "invalid camera parameter override")
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		cfg.Camera.Parameters = raw
		if err := cfg.Ensure(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func measurementTable(measurements []measure.Measurement) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Object", "Dimensions", "Confidence", "BBox"})
	for i, m := range measurements {
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i+1),
			m.ObjectName,
			m.Dimensions,
			fmt.Sprintf("%.0f%%", m.Confidence*100),
			fmt.Sprintf("(%d,%d) (%d,%d)", m.BBox[0], m.BBox[1], m.BBox[2], m.BBox[3]),
		})
	}
	return t.Render()
}
