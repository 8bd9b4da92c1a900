package game

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileWatcher polls YAML modification times under a config directory and
// triggers a callback with the changed paths.
type FileWatcher struct {
	Dir      string
	Interval time.Duration

	onChange  func([]string)
	stopCh    chan struct{}
	stopOnce  sync.Once
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for the YAML files under dir.
func NewFileWatcher(dir string, interval time.Duration, onChange func([]string)) *FileWatcher {
	return &FileWatcher{
		Dir:       dir,
		Interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start primes the mtime cache and begins polling in a goroutine.
func (w *FileWatcher) Start() {
	w.Scan(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Scan checks mtimes and reports files that were added, changed or removed
// since the last scan. With prime set it only records the current state.
func (w *FileWatcher) Scan(prime bool) []string {
	seen := make(map[string]bool, len(w.lastMTime))
	var changed []string
	_ = filepath.WalkDir(w.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped; the next scan retries them
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(p, ".yaml") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		seen[p] = true
		mt := info.ModTime()
		last, ok := w.lastMTime[p]
		if !ok || mt.After(last) {
			w.lastMTime[p] = mt
			changed = append(changed, p)
		}
		return nil
	})
	for p := range w.lastMTime {
		if !seen[p] {
			delete(w.lastMTime, p)
			changed = append(changed, p)
		}
	}
	if prime {
		return nil
	}
	if len(changed) > 0 && w.onChange != nil {
		w.onChange(changed)
	}
	return changed
}
