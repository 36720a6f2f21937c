package web

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"go.viam.com/utils/perf"

	"github.com/UmeshNayak1/DimensiMeasure/config"
	"github.com/UmeshNayak1/DimensiMeasure/internal/archive"
	"github.com/UmeshNayak1/DimensiMeasure/internal/resultlog"
	"github.com/UmeshNayak1/DimensiMeasure/measure"
)

// Arguments for the command.
type Arguments struct {
	ConfigFile string              `flag:"0,required,usage=measurement service config file"`
	Debug      bool                `flag:"debug"`
	Port       goutils.NetPortFlag `flag:"port,usage=port to listen on"`
	Version    bool                `flag:"version,usage=print version"`
}

// RunServer is an entry point to starting the web server that can be called by main in a code
// sample or otherwise be used to initialize the server.
func RunServer(ctx context.Context, args []string, logger golog.Logger) (err error) {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	logger.Infof("DimensiMeasure Version: %s, Hash: %s", config.Version, config.GitRevision)
	if argsParsed.Version {
		return
	}

	exp := perf.NewNiceLoggingSpanExporter()
	trace.RegisterExporter(exp)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})

	initialReadCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	cfg, err := config.Read(initialReadCtx, argsParsed.ConfigFile, logger)
	if err != nil {
		cancel()
		return err
	}
	cancel()
	cfg.Debug = argsParsed.Debug

	err = serveMeasurements(ctx, cfg, argsParsed, logger)
	if err != nil {
		logger.Errorw("error serving measurements", "error", err)
	}
	return err
}

func serveMeasurements(ctx context.Context, cfg *config.Config, argsParsed Arguments, logger golog.Logger) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeline, err := measure.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var hooks []ResultHook
	if cfg.ResultLog != nil {
		auditLog := resultlog.NewLogger(cfg.ResultLog)
		defer func() {
			err = multierr.Combine(err, auditLog.Close())
		}()
		hooks = append(hooks, func(ctx context.Context, requestID string, res measure.Result) error {
			return auditLog.Append(requestID, res)
		})
	}
	if cfg.Archive != nil {
		store, storeErr := archive.NewStore(ctx, cfg.Archive, logger)
		if storeErr != nil {
			return storeErr
		}
		defer func() {
			err = multierr.Combine(err, store.Close(context.Background()))
		}()
		hooks = append(hooks, store.Archive)
	}

	watcher, watchErr := config.NewWatcher(ctx, cfg.ConfigFilePath, clock.New(), logger)
	if watchErr != nil {
		return watchErr
	}
	defer func() {
		err = multierr.Combine(err, watcher.Close())
	}()
	onWatchDone := make(chan struct{})
	goutils.ManagedGo(func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			select {
			case <-ctx.Done():
				return
			case updated := <-watcher.Config():
				camera, buildErr := updated.Camera.Build()
				if buildErr != nil {
					logger.Errorw("error building camera from updated config", "error", buildErr)
					continue
				}
				pipeline.SetCalibration(camera, measure.SamplerFromConfig(updated.Depth, camera))
				logger.Infow("applied updated calibration", "camera_model", updated.Camera.Model)
			}
		}
	}, func() {
		close(onWatchDone)
	})
	defer func() {
		<-onWatchDone
	}()
	defer cancel()

	bindAddress := cfg.Server.BindAddress
	if argsParsed.Port != 0 {
		bindAddress = fmt.Sprintf(":%d", argsParsed.Port)
	}

	return NewServer(pipeline, logger, hooks...).Serve(ctx, bindAddress)
}
