// Package history records provecase runs in a YAML file under the state directory.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the history file name inside the state directory.
const FileName = "history.yaml"

// LockFileName guards read-modify-write of the history file across processes.
const LockFileName = "history.lock"

// HistoryEntry is one recorded run.
type HistoryEntry struct {
	Timestamp time.Time `yaml:"timestamp"`
	// Command is "run" or "replay".
	Command string `yaml:"command"`
	// Case is the proof case name.
	Case     string `yaml:"case"`
	ExitCode int    `yaml:"exit_code"`
	Duration string `yaml:"duration"`
	// Revision is the git revision of the proof project, when known.
	Revision string `yaml:"revision,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// HistoryFile is the on-disk layout.
type HistoryFile struct {
	Entries []HistoryEntry `yaml:"entries"`
}

// Path returns the history file path for stateDir.
func Path(stateDir string) string {
	return filepath.Join(stateDir, FileName)
}

// LoadHistory reads the history file. A missing file yields an empty history.
func LoadHistory(stateDir string) (*HistoryFile, error) {
	data, err := os.ReadFile(Path(stateDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &HistoryFile{}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var history HistoryFile
	if err := yaml.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	return &history, nil
}

// SaveHistory writes the history file atomically.
func SaveHistory(stateDir string, history *HistoryFile) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tmp := Path(stateDir) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := os.Rename(tmp, Path(stateDir)); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}
