package mapping

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay coalesces the burst of events editors produce on save.
const settleDelay = 100 * time.Millisecond

// Watcher reloads a mapping file when it changes on disk.
type Watcher struct {
	path     string
	fw       *fsnotify.Watcher
	onChange func([]Entry)
	log      *zap.Logger
}

// NewWatcher watches the directory containing path, so that editors that
// replace files by rename are still noticed. onChange receives each
// successfully parsed version of the file.
func NewWatcher(path string, onChange func([]Entry), log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mapping file path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create mapping file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch '%s': %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, fw: fw, onChange: onChange, log: log}, nil
}

// Run delivers reloads until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(settleDelay)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("mapping file watcher error", zap.Error(err))

		case <-timer.C:
			entries, err := LoadFile(w.path)
			if err != nil {
				w.log.Warn("ignoring unreadable mapping file", zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.log.Debug("mapping file reloaded", zap.String("path", w.path), zap.Int("entries", len(entries)))
			w.onChange(entries)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
