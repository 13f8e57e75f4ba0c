package config

import "time"

// GetDefaultConfigTemplate returns a commented config template
func GetDefaultConfigTemplate() string {
	return `# provecase configuration

gnatprove_cmd: gnatprove              # Command prefix, split shell-style
project_file: test.gpr                # GNAT project passed with -P
work_dir: ""                          # Directory gnatprove runs in (empty = cwd)
timeout: 0                            # Seconds per gnatprove run (0 = no timeout)
capture_output: false                 # Hide gnatprove output and show a spinner instead

# History settings
state_dir: ~/.provecase/state         # Directory for run history
max_history_entries: 200              # Max run history entries to retain

# Desktop notifications when a case finishes
notifications:
  enabled: false                      # Enable notifications (opt-in)
  type: both                          # sound | visual | both
  sound_file: ""                      # Custom sound file path (empty = system default)
  on_complete: true                   # Notify when run or replay finishes
  on_error: true                      # Notify on failures
  on_long_running: false              # Only notify for runs past the threshold
  long_running_threshold: 2m          # Threshold for on_long_running
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"gnatprove_cmd": "gnatprove",
		"project_file":  "test.gpr",
		"work_dir":      "",
		"timeout":       0,
		"state_dir":     "~/.provecase/state",
		// capture_output: gnatprove output is streamed by default.
		"capture_output": false,
		// max_history_entries: oldest entries are pruned beyond this limit.
		"max_history_entries": 200,
		// notifications: opt-in; both sound and visual once enabled.
		"notifications": map[string]interface{}{
			"enabled":                false,
			"type":                   "both",
			"sound_file":             "",
			"on_complete":            true,
			"on_error":               true,
			"on_long_running":        false,
			"long_running_threshold": (2 * time.Minute).String(),
		},
	}
}
