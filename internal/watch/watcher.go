// Package watch re-triggers a proof run when Ada sources or the GNAT project
// change. It uses fsnotify for change detection.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must be quiet before a change fires.
const DefaultDebounce = 500 * time.Millisecond

// DefaultExtensions are the file types that trigger a run.
var DefaultExtensions = []string{".adb", ".ads", ".gpr"}

// skipDirs are never watched. gnatprove writes its own output under obj/.
var skipDirs = map[string]bool{
	"obj":       true,
	"gnatprove": true,
}

// Watcher reports batches of changed source files under a root directory.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher

	// Debounce delays a batch until no event arrived for this long.
	Debounce time.Duration
	// Extensions filters which files count as changes.
	Extensions []string

	mu     sync.Mutex
	closed bool
}

// New creates a Watcher on root and every non-hidden subdirectory.
func New(root string) (*Watcher, error) {
	if root == "" {
		root = "."
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:       root,
		watcher:    watcher,
		Debounce:   DefaultDebounce,
		Extensions: DefaultExtensions,
	}
	if err := w.addTree(root); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || skipDirs[name]
}

// relevant reports whether a change to path should trigger a run.
func (w *Watcher) relevant(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range w.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Watch blocks until ctx is done, calling onChange with the sorted set of
// changed files after each quiet period. onChange runs on the calling
// goroutine, so runs never overlap; changes made meanwhile form the next batch.
func (w *Watcher) Watch(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if w.handleEvent(event, pending) {
				timer.Reset(w.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			clear(pending)
			onChange(ctx, changed)
		}
	}
}

// handleEvent records a relevant event in pending and reports whether it did.
// New directories are added to the watch set.
func (w *Watcher) handleEvent(event fsnotify.Event, pending map[string]bool) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
			_ = w.addTree(event.Name)
			return false
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if !w.relevant(event.Name) {
		return false
	}
	pending[event.Name] = true
	return true
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}
