package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/mmrech/py-shiny/internal/core"
)

const DefaultDelay = 200 * time.Millisecond

type Options struct {
	Dir         string
	ExcludeDirs []string
	// Ignore lists absolute paths whose events never trigger, typically the
	// export destination when it sits inside Dir.
	Ignore []string
	Delay  time.Duration
	Logger logrus.FieldLogger
}

// Run calls onChange after each burst of changes under opts.Dir until ctx is
// done. Calls to onChange never overlap.
func Run(ctx context.Context, opts Options, onChange func()) error {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.ExcludeDirs == nil {
		opts.ExcludeDirs = core.DefaultExcludeDirs
	}
	ignore := make([]string, 0, len(opts.Ignore))
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		ignore = append(ignore, p)
	}
	opts.Ignore = ignore

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w := &dirWatcher{watcher: watcher, opts: opts}
	if err := w.addTree(opts.Dir); err != nil {
		return err
	}

	pending := make(chan struct{}, 1)
	debounced := debounce.New(opts.Delay)
	trigger := func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if err := w.addTree(event.Name); err != nil {
					opts.Logger.WithError(err).WithField("path", event.Name).Warn("failed to watch new directory")
				}
			}
			opts.Logger.WithFields(logrus.Fields{
				"path": event.Name,
				"op":   event.Op.String(),
			}).Debug("change detected")
			debounced(trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.WithError(err).Warn("watch error")
		case <-pending:
			onChange()
		}
	}
}

type dirWatcher struct {
	watcher *fsnotify.Watcher
	opts    Options
}

// addTree watches root and every directory below it. Non-directories are
// ignored.
func (w *dirWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *dirWatcher) ignored(path string) bool {
	if rel, err := filepath.Rel(w.opts.Dir, path); err == nil {
		for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
			if part == "." || part == ".." {
				continue
			}
			if core.IsHiddenFile(part) || core.IsExcludedDir(part, w.opts.ExcludeDirs) {
				return true
			}
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, ignore := range w.opts.Ignore {
		if abs == ignore || strings.HasPrefix(abs, ignore+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
