package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/provecase/internal/health"
	"github.com/ariel-frischer/provecase/internal/history"
	"github.com/ariel-frischer/provecase/internal/testutil"
)

func withChecker(t *testing.T, installed ...string) {
	t.Helper()
	set := make(map[string]bool)
	for _, name := range installed {
		set[name] = true
	}
	orig := newChecker
	newChecker = func() *health.Checker {
		return &health.Checker{LookPath: func(file string) (string, error) {
			if set[file] {
				return "/opt/spark/bin/" + file, nil
			}
			return "", errors.New("not found")
		}}
	}
	t.Cleanup(func() { newChecker = orig })
}

func TestDoctorCmd(t *testing.T) {
	tests := map[string]struct {
		installed    []string
		wantErr      bool
		wantContains []string
	}{
		"complete toolchain": {
			installed:    []string{"gnatprove", "z3", "cvc4", "alt-ergo"},
			wantContains: []string{"✓ gnatprove", "✓ z3", "✓ cvc4", "✓ altergo"},
		},
		"missing alt-ergo": {
			installed:    []string{"gnatprove", "z3", "cvc4"},
			wantErr:      true,
			wantContains: []string{"✗ altergo: alt-ergo not found in PATH"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testEnv(t)
			withChecker(t, tt.installed...)

			stdout, _, err := execute(t, testutil.NewRecordingProver(t), "doctor")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ExitMissingDependencies, ExitCodeFor(err))
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantContains {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		testEnv(t)

		stdout, _, err := execute(t, testutil.NewRecordingProver(t), "history")
		require.NoError(t, err)
		assert.Contains(t, stdout, "No runs recorded.")
	})

	t.Run("limit shows most recent", func(t *testing.T) {
		dir := testEnv(t)
		stateDir := filepath.Join(dir, ".provecase", "state")
		require.NoError(t, history.SaveHistory(stateDir, &history.HistoryFile{
			Entries: []history.HistoryEntry{
				{Timestamp: time.Now(), Command: "run", Case: "ghc_sort", Duration: "3m"},
				{Timestamp: time.Now(), Command: "replay", Case: "ghc_sort", ExitCode: 1, Duration: "40s", Revision: "main@abc123"},
			},
		}))

		stdout, _, err := execute(t, testutil.NewRecordingProver(t), "history", "--limit", "1")
		require.NoError(t, err)
		assert.Contains(t, stdout, "COMMAND")
		assert.Contains(t, stdout, "replay")
		assert.Contains(t, stdout, "main@abc123")
		assert.NotContains(t, stdout, "3m")
	})

	t.Run("corrupt history", func(t *testing.T) {
		dir := testEnv(t)
		stateDir := filepath.Join(dir, ".provecase", "state")
		require.NoError(t, os.MkdirAll(stateDir, 0o755))
		require.NoError(t, os.WriteFile(history.Path(stateDir), []byte("entries: [\n"), 0o644))

		_, _, err := execute(t, testutil.NewRecordingProver(t), "history")
		require.Error(t, err)
	})
}
