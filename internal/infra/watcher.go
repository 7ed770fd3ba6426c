package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// SettingsWatcher reports changes to the JSON documents of a settings
// directory. Bursts of events within the debounce window are coalesced
// into one onChange call.
type SettingsWatcher struct {
	dir      string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger
}

// NewSettingsWatcher creates a watcher for dir.
func NewSettingsWatcher(dir string, debounce time.Duration, onChange func(), logger *zap.Logger) *SettingsWatcher {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &SettingsWatcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
}

// Run watches until ctx is cancelled. The directory is created if missing
// so the watch survives the first save.
func (w *SettingsWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching keyboard settings", zap.String("dir", w.dir))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("settings file event",
				zap.String("path", ev.Name),
				zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("settings watcher error", zap.Error(err))

		case <-timer.C:
			w.logger.Info("keyboard settings changed")
			w.onChange()
		}
	}
}

// relevant reports whether ev touches a settings or profile document.
func relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	return strings.EqualFold(filepath.Ext(ev.Name), ".json")
}
