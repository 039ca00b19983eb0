// Package watch reloads the configuration file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"nathanbeddoewebdev/ccev/internal/config"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// settle is how long the watcher waits after the last event before
// reloading. Editors often write a file in several steps.
const settle = 100 * time.Millisecond

// Config watches path and stores every successfully parsed version in live.
// A file that fails to parse is logged and the previous version kept.
type Config struct {
	path     string
	live     *config.Live
	log      logrus.FieldLogger
	onReload func(*config.Config)
}

// NewConfig returns a watcher for path. onReload, when non-nil, is called
// after each successful reload.
func NewConfig(path string, live *config.Live, log logrus.FieldLogger, onReload func(*config.Config)) *Config {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Config{path: path, live: live, log: log.WithField("config", path), onReload: onReload}
}

// Run blocks until ctx is done. The parent directory is watched so that
// files replaced by rename are picked up.
func (w *Config) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.log.Debug("watching configuration")

	target := filepath.Clean(w.path)
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("config watcher error")
		}
	}
}

func (w *Config) reload() {
	cfg, err := config.LoadFrom(w.path)
	if err != nil {
		w.log.WithError(err).Warn("ignoring unreadable configuration")
		return
	}
	w.live.Store(cfg)
	w.log.Info("configuration reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
