package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watch reloads the config at p whenever it changes and passes every valid
// result to fn. Invalid files are logged and skipped. It blocks until ctx is
// done. The parent directory is watched so editors that replace the file are
// followed.
func Watch(ctx context.Context, p string, logger *slog.Logger, fn func(Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "config", "path", p)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer w.Close()

	abs, err := filepath.Abs(p)
	if err != nil {
		return errors.Wrap(err, "resolving config path")
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(abs))
	}

	debounced := debounce.New(50 * time.Millisecond)
	reload := func() {
		cfg, err := Load(abs)
		if err != nil {
			logger.Warn("ignoring config change", "err", err)
			return
		}
		logger.Info("config reloaded", "bpm", cfg.Tempo.BPM)
		fn(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				debounced(reload)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "err", err)
		}
	}
}
