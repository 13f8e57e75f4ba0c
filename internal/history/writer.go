package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Writer provides history logging with automatic pruning.
type Writer struct {
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain.
	MaxEntries int
	// Warnings receives non-fatal logging failures (default: os.Stderr).
	Warnings io.Writer
	// Revision is stamped on entries written by LogRun.
	Revision string

	mu sync.Mutex
}

// NewWriter creates a new history writer.
func NewWriter(stateDir string, maxEntries int) *Writer {
	return &Writer{
		StateDir:   stateDir,
		MaxEntries: maxEntries,
		Warnings:   os.Stderr,
	}
}

// LogEntry adds a new entry to the history file.
// It loads the existing history, appends the new entry, prunes if needed, and saves.
// Errors are non-fatal: they are reported as warnings and don't cause command failures.
func (w *Writer) LogEntry(entry HistoryEntry) {
	if err := w.logEntryInternal(entry); err != nil && w.Warnings != nil {
		fmt.Fprintf(w.Warnings, "Warning: failed to log history: %v\n", err)
	}
}

func (w *Writer) logEntryInternal(entry HistoryEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A watch loop and a one-off run may append at the same time.
	unlock, err := lockStateDir(w.StateDir)
	if err != nil {
		return err
	}
	defer unlock()

	history, err := LoadHistory(w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	history.Entries = append(history.Entries, entry)

	// Prune oldest entries if over limit
	if w.MaxEntries > 0 && len(history.Entries) > w.MaxEntries {
		excess := len(history.Entries) - w.MaxEntries
		history.Entries = history.Entries[excess:]
	}

	if err := SaveHistory(w.StateDir, history); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// lockStateDir takes the cross-process history lock.
func lockStateDir(stateDir string) (func(), error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	lock := flock.New(filepath.Join(stateDir, LockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking history: %w", err)
	}
	return func() { _ = lock.Unlock() }, nil
}

// LogRun is a convenience method to log a proof run.
func (w *Writer) LogRun(command, caseName string, exitCode int, duration time.Duration, runErr error) {
	entry := HistoryEntry{
		Timestamp: time.Now(),
		Command:   command,
		Case:      caseName,
		ExitCode:  exitCode,
		Duration:  duration.Round(time.Millisecond).String(),
		Revision:  w.Revision,
	}
	if runErr != nil {
		entry.Error = runErr.Error()
	}
	w.LogEntry(entry)
}
