package config

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/a8m/envsubst"
	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// debounceInterval is how long the watcher waits after the last write event
// before rereading the file. Editors tend to issue several writes per save.
const debounceInterval = 50 * time.Millisecond

// A Watcher watches a config file for changes and delivers reparsed configs.
type Watcher struct {
	configCh                chan *Config
	fsWatcher               *fsnotify.Watcher
	logger                  golog.Logger
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewWatcher begins watching the config file at the given path. Each settled
// write is reread, expanded, and parsed; configs that fail to parse or
// validate are logged and skipped rather than delivered.
func NewWatcher(ctx context.Context, filePath string, clk clock.Clock, logger golog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filePath); err != nil {
		return nil, multierr.Combine(err, fsWatcher.Close())
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		configCh:  make(chan *Config),
		fsWatcher: fsWatcher,
		logger:    logger,
		cancel:    cancel,
	}
	w.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer w.activeBackgroundWorkers.Done()
		debounce := clk.Timer(debounceInterval)
		if !debounce.Stop() {
			<-debounce.C
		}
		var lastRead []byte
		for {
			if cancelCtx.Err() != nil {
				return
			}
			select {
			case <-cancelCtx.Done():
				return
			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				debounce.Reset(debounceInterval)
			case <-debounce.C:
				buf, err := envsubst.ReadFile(filePath)
				if err != nil {
					w.logger.Errorw("error reading config after write", "error", err)
					continue
				}
				if bytes.Equal(buf, lastRead) {
					continue
				}
				newConfig, err := FromReader(cancelCtx, filePath, bytes.NewReader(buf), logger)
				if err != nil {
					w.logger.Errorw("error parsing config after write", "error", err)
					continue
				}
				lastRead = buf
				select {
				case <-cancelCtx.Done():
					return
				case w.configCh <- newConfig:
				}
			}
		}
	})
	return w, nil
}

// Config returns the channel of config updates.
func (w *Watcher) Config() <-chan *Config {
	return w.configCh
}

// Close stops watching for changes.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.fsWatcher.Close()
	w.activeBackgroundWorkers.Wait()
	return err
}
