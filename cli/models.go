package cli

import (
	"encoding/json"
	"fmt"
	"image"
	"runtime/debug"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/UmeshNayak1/DimensiMeasure/config"
	"github.com/UmeshNayak1/DimensiMeasure/mimage/transform"
)

// schemaDoc is the slice of a reflected parameter schema the listing reads.
type schemaDoc struct {
	Defs map[string]struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
		Required []string `json:"required"`
	} `json:"$defs"`
}

// ModelsAction lists the supported camera model types and the parameters
// needed to configure them. Given a config file it also prints the configured
// camera's intrinsic matrix at the working resolution.
func ModelsAction(c *cli.Context) error {
	types := make([]string, 0, len(transform.RegisteredModelParameterSchemas))
	for modelType := range transform.RegisteredModelParameterSchemas {
		types = append(types, string(modelType))
	}
	sort.Strings(types)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Model", "Parameter", "Type", "Required"})
	for _, modelType := range types {
		schema := transform.RegisteredModelParameterSchemas[transform.ModelType(modelType)]
		raw, err := json.Marshal(schema)
		if err != nil {
			return err
		}
		var doc schemaDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		for _, def := range doc.Defs {
			required := make(map[string]bool, len(def.Required))
			for _, name := range def.Required {
				required[name] = true
			}
			names := make([]string, 0, len(def.Properties))
			for name := range def.Properties {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				t.AppendRow([]interface{}{modelType, name, def.Properties[name].Type, required[name]})
			}
		}
	}
	fmt.Fprintln(c.App.Writer, t.Render())

	if cfgPath := c.String(configFlag); cfgPath != "" {
		cfg, err := config.Read(c.Context, cfgPath, actionLogger(c))
		if err != nil {
			return err
		}
		camera, err := cfg.Camera.Build()
		if err != nil {
			return err
		}
		pinhole, ok := camera.(*transform.PinholeModel)
		if !ok {
			return nil
		}
		dims := image.Pt(cfg.Server.WorkingWidth, cfg.Server.WorkingHeight)
		fmt.Fprintf(c.App.Writer, "\nIntrinsics of the configured %q camera at %dx%d:\n", cfg.Camera.Model, dims.X, dims.Y)
		fmt.Fprintf(c.App.Writer, "%v\n", mat.Formatted(pinhole.CameraMatrix(dims), mat.Squeeze()))
	}
	return nil
}

// VersionAction is the corresponding action for 'version'.
func VersionAction(c *cli.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("error reading build info")
	}
	if c.Bool(debugFlag) {
		fmt.Fprintf(c.App.Writer, "%s\n", info.String())
	}
	settings := make(map[string]string, len(info.Settings))
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	version := "?"
	if rev, ok := settings["vcs.revision"]; ok {
		version = rev[:8]
		if settings["vcs.modified"] == "true" {
			version += "+"
		}
	}
	appVersion := config.Version
	if appVersion == "" {
		appVersion = "(dev)"
	}
	fmt.Fprintf(c.App.Writer, "Version %s Git=%s\n", appVersion, version)
	return nil
}
