// Package watch feeds new screenshots from a directory into a handler.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultExtensions are the image extensions picked up without configuration (lowercase, without '.').
var DefaultExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "tiff", "webp"}

// Handler processes one settled file. Handlers run one at a time on the watch goroutine.
type Handler func(ctx context.Context, path string) error

type Config struct {
	Dir         string
	Extensions  []string      // added to DefaultExtensions
	Debounce    time.Duration // quiet period before a file is handed over; 0 = immediately
	InitialScan bool          // hand over files already in Dir at startup
	Logger      *zap.Logger
}

// Run watches cfg.Dir (not recursively) until ctx is done. Each file is handed
// over once; a failed file is retried on its next write. Handler errors are
// logged and do not stop the watch.
func Run(ctx context.Context, cfg Config, handle Handler) error {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Dir == "" {
		return errors.New("watch directory is required")
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", cfg.Dir)
	}
	exts := extensionSet(cfg.Extensions)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}
	logger.Info("watching directory", zap.String("dir", cfg.Dir), zap.Int("extensions", len(exts)))

	// done holds paths already handed over, so a re-save does not produce a
	// second capture. Removing or renaming the file forgets it.
	done := map[string]struct{}{}

	dispatch := func(path string) {
		if _, ok := done[path]; ok {
			logger.Debug("already handled", zap.String("path", path))
			return
		}
		if !settled(path) {
			return
		}
		if err := handle(ctx, path); err != nil {
			logger.Warn("handler failed", zap.String("path", path), zap.Error(err))
			return
		}
		done[path] = struct{}{}
	}

	if cfg.InitialScan {
		entries, err := os.ReadDir(cfg.Dir)
		if err != nil {
			return fmt.Errorf("scan %s: %w", cfg.Dir, err)
		}
		for _, e := range entries {
			path := filepath.Join(cfg.Dir, e.Name())
			if !e.IsDir() && Allowed(path, exts) {
				dispatch(path)
			}
		}
	}

	// pending is only touched from this goroutine; the timer just signals.
	pending := map[string]struct{}{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	flush := func() {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		clear(pending)
		sort.Strings(paths)
		for _, p := range paths {
			dispatch(p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
				delete(done, e.Name)
				delete(pending, e.Name)
				continue
			}
			if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
				continue
			}
			if !Allowed(e.Name, exts) {
				logger.Debug("ignoring file", zap.String("path", e.Name))
				continue
			}
			pending[e.Name] = struct{}{}
			if cfg.Debounce <= 0 {
				flush()
				continue
			}
			timer.Reset(cfg.Debounce)

		case <-timer.C:
			flush()

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Error("watcher error", zap.Error(err))
		}
	}
}

// Allowed reports whether path has one of exts and is not a hidden (in-progress) file.
func Allowed(path string, exts map[string]struct{}) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), ".")
	_, ok := exts[ext]
	return ok
}

func extensionSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(DefaultExtensions)+len(extra))
	for _, e := range append(append([]string{}, DefaultExtensions...), extra...) {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// settled reports whether path still exists as a regular file.
func settled(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
