package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"sharpfix/internal/config"
)

// DefaultDebounce is how long Watch waits for more changes before it
// re-analyses.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configure Watch.
type WatchOptions struct {
	Debounce time.Duration
	// OnResult receives every analysis, the initial one included. It runs on
	// the watch goroutine: a slow callback delays the next run.
	OnResult func(*Result, error)
}

// Watch analyses root once and again after every batch of changes to files
// the configuration matches, until ctx is done. Directories created later are
// watched as they appear.
func Watch(ctx context.Context, root string, opts Options, wo WatchOptions) error {
	if opts.Rules == nil {
		return ErrNoRules
	}
	if opts.Config == nil {
		cfg, err := config.Discover(root)
		if err != nil {
			return err
		}
		opts.Config = cfg
	}
	if wo.Debounce <= 0 {
		wo.Debounce = DefaultDebounce
	}
	report := wo.OnResult
	if report == nil {
		report = func(*Result, error) {}
	}
	log := opts.logger()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	if err := addWatches(fsw, root, opts.Config); err != nil {
		return err
	}
	log.Info("watching", "root", root)

	report(Diagnose(ctx, root, opts))

	timer := time.NewTimer(wo.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if relevant(fsw, ev, opts.Config) {
				log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
				timer.Reset(wo.Debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		case <-timer.C:
			res, err := Diagnose(ctx, root, opts)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			report(res, err)
		}
	}
}

// relevant reports whether ev should trigger a run; new directories are added
// to the watch list on the way.
func relevant(fsw *fsnotify.Watcher, ev fsnotify.Event, cfg *config.Config) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			if err := addWatches(fsw, abs, cfg); err != nil {
				return false
			}
			return true
		}
	}
	return cfg.Match(abs)
}

func addWatches(fsw *fsnotify.Watcher, root string, cfg *config.Config) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || cfg.Excluded(abs)) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
