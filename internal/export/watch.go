package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change to a file
// before exporting it. Editors often write a file in several steps.
const DefaultDebounce = 500 * time.Millisecond

// Watch re-exports plan files under dirs whenever they change, until ctx is
// cancelled. Changes are batched: a file is exported once debounce has
// passed without further events for it. Removed plan files have their
// workbook deleted. New subdirectories are not watched.
func (e *Exporter) Watch(ctx context.Context, debounce time.Duration, dirs ...string) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addTree(watcher, dir); err != nil {
			return err
		}
	}
	e.log.Info("watching for plan changes", "dirs", dirs, "debounce", debounce)

	pending := map[string]bool{} // path -> removed
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsPlanFile(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				pending[event.Name] = false
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				pending[event.Name] = true
			default:
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.log.Warn("watcher error", "error", err)

		case <-timer.C:
			e.flush(ctx, pending)
			pending = map[string]bool{}
		}
	}
}

// flush handles every pending path in name order.
func (e *Exporter) flush(ctx context.Context, pending map[string]bool) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		// A rename or an atomic save may leave the file in place.
		if pending[p] && !fileExists(p) {
			if err := e.Remove(p); err != nil {
				e.log.Warn("cleanup failed", "file", p, "error", err)
			}
			continue
		}
		e.exportCounted(ctx, p)
	}
}

// addTree watches dir and every non-hidden directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && len(d.Name()) > 1 && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
