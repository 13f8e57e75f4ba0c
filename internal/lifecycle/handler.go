// Package lifecycle wraps one proof case entry with timing, completion
// notification and history recording.
package lifecycle

import (
	"context"
	"time"
)

// NotificationHandler is satisfied by *notify.Handler.
type NotificationHandler interface {
	OnCaseComplete(caseName, mode string, err error, duration time.Duration)
}

// HistoryLogger is satisfied by *history.Writer.
type HistoryLogger interface {
	LogRun(command, caseName string, exitCode int, duration time.Duration, err error)
}

// Entry describes the case entry being run.
type Entry struct {
	// Command is the CLI command name recorded in history ("run" or "replay").
	Command string
	// Case is the proof case name.
	Case string
	// Mode is the proof mode passed to notifications ("prove" or "replay").
	Mode string
}

// Hooks receive the outcome of an entry. Nil fields are skipped.
type Hooks struct {
	Notifier NotificationHandler
	History  HistoryLogger
	// ExitCode maps the entry's error to the recorded exit code.
	ExitCode func(error) int
}

// Result is the outcome of Run.
type Result struct {
	Err      error
	Duration time.Duration
}

// Run executes fn, then reports its outcome to the hooks. fn's error is
// returned unchanged.
func Run(ctx context.Context, hooks Hooks, entry Entry, fn func(context.Context) error) Result {
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if hooks.History != nil {
		code := 0
		if hooks.ExitCode != nil {
			code = hooks.ExitCode(err)
		} else if err != nil {
			code = 1
		}
		hooks.History.LogRun(entry.Command, entry.Case, code, duration, err)
	}
	if hooks.Notifier != nil {
		hooks.Notifier.OnCaseComplete(entry.Case, entry.Mode, err, duration)
	}

	return Result{Err: err, Duration: duration}
}
