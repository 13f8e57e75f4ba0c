package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// watchBatches runs w in the background and forwards each batch.
func watchBatches(t *testing.T, w *Watcher) <-chan []string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Watch(ctx, func(_ context.Context, changed []string) {
			batches <- changed
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return batches
}

func TestWatcher_ReportsSourceChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	w.Debounce = 100 * time.Millisecond
	batches := watchBatches(t, w)

	body := filepath.Join(dir, "ghc_sort.adb")
	spec := filepath.Join(dir, "ghc_sort.ads")
	require.NoError(t, os.WriteFile(body, []byte("package body GHC_Sort is end;\n"), 0o644))
	require.NoError(t, os.WriteFile(spec, []byte("package GHC_Sort is end;\n"), 0o644))

	select {
	case changed := <-batches:
		assert.Equal(t, []string{body, spec}, changed, "both writes land in one debounced batch")
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch received")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	objDir := filepath.Join(dir, "obj")
	require.NoError(t, os.MkdirAll(objDir, 0o755))

	w, err := New(dir)
	require.NoError(t, err)
	w.Debounce = 20 * time.Millisecond
	batches := watchBatches(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(objDir, "ghc_sort.ads"), []byte("x"), 0o644))

	select {
	case changed := <-batches:
		t.Fatalf("unexpected batch: %v", changed)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	w.Debounce = 50 * time.Millisecond
	batches := watchBatches(t, w)

	sub := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// Give the watcher time to add the new directory.
	time.Sleep(200 * time.Millisecond)
	path := filepath.Join(sub, "sorting.adb")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	select {
	case changed := <-batches:
		assert.Contains(t, changed, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch received")
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Watch(ctx, func(context.Context, []string) {
		t.Error("onChange must not run")
	}))
}

func TestWatcher_Close(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close is a no-op")
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestHandleEvent(t *testing.T) {
	t.Parallel()

	w := &Watcher{Extensions: DefaultExtensions}
	tests := map[string]struct {
		event fsnotify.Event
		want  bool
	}{
		"write to body":  {event: fsnotify.Event{Name: "/p/a.adb", Op: fsnotify.Write}, want: true},
		"create project": {event: fsnotify.Event{Name: "/p/test.gpr", Op: fsnotify.Create}, want: true},
		"remove spec":    {event: fsnotify.Event{Name: "/p/a.ads", Op: fsnotify.Remove}, want: true},
		"chmod only":     {event: fsnotify.Event{Name: "/p/a.adb", Op: fsnotify.Chmod}, want: false},
		"session file":   {event: fsnotify.Event{Name: "/p/why3session.xml", Op: fsnotify.Write}, want: false},
		"no extension":   {event: fsnotify.Event{Name: "/p/Makefile", Op: fsnotify.Write}, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			pending := make(map[string]bool)
			assert.Equal(t, tt.want, w.handleEvent(tt.event, pending))
			assert.Equal(t, tt.want, pending[tt.event.Name])
		})
	}
}
