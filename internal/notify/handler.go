package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// dispatchTimeout bounds a single notification, long enough for a sound to play.
const dispatchTimeout = 5 * time.Second

// Handler decides whether a finished case warrants a notification and sends it.
// A nil *Handler is valid and never notifies.
type Handler struct {
	config NotificationConfig
	sender Sender
	logger *log.Logger

	// getenv and interactive are replaced in tests.
	getenv      func(string) string
	interactive func() bool
}

// NewHandler creates a handler for the current platform.
func NewHandler(config NotificationConfig, logger *log.Logger) *Handler {
	return NewHandlerWithSender(config, NewSender(), logger)
}

// NewHandlerWithSender creates a handler with a custom sender.
func NewHandlerWithSender(config NotificationConfig, sender Sender, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		config:      config,
		sender:      sender,
		logger:      logger,
		getenv:      os.Getenv,
		interactive: isInteractive,
	}
}

// Config returns the handler's notification configuration
func (h *Handler) Config() NotificationConfig {
	return h.config
}

// isEnabled reports whether notifications should be sent at all. They are
// skipped when disabled, in CI, or without a terminal.
func (h *Handler) isEnabled() bool {
	if h == nil || !h.config.Enabled {
		return false
	}
	if h.isCI() {
		h.logger.Debug("notification skipped", "reason", "ci")
		return false
	}
	if !h.interactive() {
		h.logger.Debug("notification skipped", "reason", "no tty")
		return false
	}
	return true
}

var ciVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_URL",
	"BUILDKITE",
	"DRONE",
	"TEAMCITY_VERSION",
	"TF_BUILD",
	"BITBUCKET_PIPELINES",
	"CODEBUILD_BUILD_ID",
}

func (h *Handler) isCI() bool {
	for _, v := range ciVars {
		if h.getenv(v) != "" {
			return true
		}
	}
	return false
}

// isInteractive checks stdout first since stdin is often piped.
func isInteractive() bool {
	for _, f := range []*os.File{os.Stdout, os.Stderr, os.Stdin} {
		if term.IsTerminal(int(f.Fd())) {
			return true
		}
	}
	return false
}

// OnCaseComplete is called when a run or replay of caseName finishes.
func (h *Handler) OnCaseComplete(caseName, mode string, err error, duration time.Duration) {
	if !h.isEnabled() {
		return
	}

	if err == nil {
		if !h.config.OnComplete || h.belowThreshold(duration) {
			return
		}
		h.dispatch(NewNotification("provecase",
			fmt.Sprintf("%s %s passed (%s)", caseName, mode, formatDuration(duration)), TypeSuccess))
		return
	}

	if !h.config.OnComplete && !h.config.OnError {
		return
	}
	if !h.config.OnError && h.belowThreshold(duration) {
		return
	}
	h.dispatch(NewNotification("provecase",
		fmt.Sprintf("%s %s failed (%s): %v", caseName, mode, formatDuration(duration), err), TypeFailure))
}

func (h *Handler) belowThreshold(d time.Duration) bool {
	if !h.config.OnLongRunning {
		return false
	}
	threshold := h.config.LongRunningThreshold
	return threshold > 0 && d < threshold
}

// dispatch sends n with the configured output type. Failures are logged and
// never reach the caller.
func (h *Handler) dispatch(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	kind := h.config.Type
	if kind == "" {
		kind = OutputBoth
	}
	if kind == OutputVisual || kind == OutputBoth {
		if err := h.sender.SendVisual(ctx, n); err != nil {
			h.logger.Debug("visual notification failed", "err", err)
		}
	}
	if kind == OutputSound || kind == OutputBoth {
		if err := h.sender.SendSound(ctx, h.config.SoundFile); err != nil {
			h.logger.Debug("sound notification failed", "err", err)
		}
	}
}

// formatDuration formats a duration for display in notifications
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
