package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Sender defines the interface for platform-specific notification senders
type Sender interface {
	// SendVisual sends a visual notification to the OS notification system
	SendVisual(ctx context.Context, n Notification) error

	// SendSound plays an audio notification
	SendSound(ctx context.Context, soundFile string) error

	// VisualAvailable returns true if visual notifications are supported
	VisualAvailable() bool

	// SoundAvailable returns true if sound notifications are supported
	SoundAvailable() bool
}

// NewSender creates a sender for the current OS. Unsupported platforms get a
// no-op sender.
func NewSender() Sender {
	return newSenderFor(runtime.GOOS, exec.LookPath)
}

func newSenderFor(goos string, lookPath func(string) (string, error)) Sender {
	available := func(name string) bool {
		_, err := lookPath(name)
		return err == nil
	}

	switch goos {
	case "darwin":
		return &commandSender{
			visualTool: "osascript",
			soundTool:  "afplay",
			visualArgs: func(n Notification) []string {
				return []string{"-e", fmt.Sprintf("display notification %q with title %q", n.Message, n.Title)}
			},
			soundArgs: func(file string) []string {
				if file == "" {
					file = "/System/Library/Sounds/Glass.aiff"
				}
				return []string{file}
			},
			available: available,
		}
	case "linux":
		return &commandSender{
			visualTool: "notify-send",
			soundTool:  "paplay",
			visualArgs: func(n Notification) []string {
				urgency := "normal"
				if n.NotificationType == TypeFailure {
					urgency = "critical"
				}
				return []string{"--urgency=" + urgency, n.Title, n.Message}
			},
			soundArgs: func(file string) []string {
				if file == "" {
					file = "/usr/share/sounds/freedesktop/stereo/complete.oga"
				}
				return []string{file}
			},
			available: available,
		}
	default:
		return noopSender{}
	}
}

// commandSender shells out to platform notification tools.
type commandSender struct {
	visualTool string
	soundTool  string
	visualArgs func(Notification) []string
	soundArgs  func(string) []string
	available  func(string) bool
}

func (s *commandSender) SendVisual(ctx context.Context, n Notification) error {
	if !s.VisualAvailable() {
		return fmt.Errorf("%s not found in PATH", s.visualTool)
	}
	return exec.CommandContext(ctx, s.visualTool, s.visualArgs(n)...).Run()
}

func (s *commandSender) SendSound(ctx context.Context, soundFile string) error {
	if !s.SoundAvailable() {
		return fmt.Errorf("%s not found in PATH", s.soundTool)
	}
	return exec.CommandContext(ctx, s.soundTool, s.soundArgs(soundFile)...).Run()
}

func (s *commandSender) VisualAvailable() bool { return s.available(s.visualTool) }
func (s *commandSender) SoundAvailable() bool  { return s.available(s.soundTool) }

// noopSender is a sender that does nothing (for unsupported platforms)
type noopSender struct{}

func (noopSender) SendVisual(context.Context, Notification) error { return nil }
func (noopSender) SendSound(context.Context, string) error        { return nil }
func (noopSender) VisualAvailable() bool                          { return false }
func (noopSender) SoundAvailable() bool                           { return false }
