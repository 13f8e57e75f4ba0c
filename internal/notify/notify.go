// Package notify sends desktop notifications when a proof case finishes.
// Level 4 proofs run for minutes, so a notification tells the user when the
// terminal needs attention again.
package notify

import "time"

// NotificationType represents the type of notification event
type NotificationType string

const (
	// TypeSuccess indicates a successful operation
	TypeSuccess NotificationType = "success"
	// TypeFailure indicates a failed operation
	TypeFailure NotificationType = "failure"
)

// OutputType represents the notification output type
type OutputType string

const (
	// OutputSound sends only an audible notification
	OutputSound OutputType = "sound"
	// OutputVisual sends only a visual notification
	OutputVisual OutputType = "visual"
	// OutputBoth sends both sound and visual notifications
	OutputBoth OutputType = "both"
)

// ValidOutputType checks if the given string is a valid output type
func ValidOutputType(s string) bool {
	switch OutputType(s) {
	case OutputSound, OutputVisual, OutputBoth:
		return true
	default:
		return false
	}
}

// NotificationConfig holds user preferences for notification behavior.
type NotificationConfig struct {
	// Enabled is the master switch (default: false, opt-in)
	Enabled bool `koanf:"enabled" yaml:"enabled"`

	// Type is sound, visual, or both (default: both)
	Type OutputType `koanf:"type" yaml:"type" validate:"omitempty,oneof=sound visual both"`

	// SoundFile is an optional custom sound file path
	SoundFile string `koanf:"sound_file" yaml:"sound_file"`

	// OnComplete notifies when a run or replay finishes (default: true)
	OnComplete bool `koanf:"on_complete" yaml:"on_complete"`

	// OnError notifies on failure even when OnComplete is off (default: true)
	OnError bool `koanf:"on_error" yaml:"on_error"`

	// OnLongRunning restricts notifications to runs that reach
	// LongRunningThreshold. A threshold of 0 or less always notifies.
	OnLongRunning        bool          `koanf:"on_long_running" yaml:"on_long_running"`
	LongRunningThreshold time.Duration `koanf:"long_running_threshold" yaml:"long_running_threshold"`
}

// DefaultConfig returns a NotificationConfig with default values
func DefaultConfig() NotificationConfig {
	return NotificationConfig{
		Type:                 OutputBoth,
		OnComplete:           true,
		OnError:              true,
		LongRunningThreshold: 2 * time.Minute,
	}
}

// Notification represents a single notification event to dispatch
type Notification struct {
	Title            string
	Message          string
	NotificationType NotificationType
}

// NewNotification creates a new Notification with the given parameters
func NewNotification(title, message string, notificationType NotificationType) Notification {
	return Notification{
		Title:            title,
		Message:          message,
		NotificationType: notificationType,
	}
}
