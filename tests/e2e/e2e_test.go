//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/provecase/internal/cli"
	"github.com/ariel-frischer/provecase/internal/testutil"
)

// TestE2E_GnatproveInvocation checks the exact argv each entry hands to
// gnatprove.
func TestE2E_GnatproveInvocation(t *testing.T) {
	base := []string{"-P", "test.gpr", "--quiet", "--level=4", "-j10", "--prover=z3,cvc4,altergo"}

	tests := map[string]struct {
		args     []string
		wantArgv []string
	}{
		"bare invocation": {
			args:     nil,
			wantArgv: base,
		},
		"run": {
			args:     []string{"run"},
			wantArgv: base,
		},
		"replay": {
			args:     []string{"replay"},
			wantArgv: append(append([]string{}, base...), "--replay"),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)

			result := env.Run(tt.args...)

			require.Equal(t, cli.ExitSuccess, result.ExitCode, "stderr: %s", result.Stderr)
			assert.Equal(t, tt.wantArgv, env.GnatproveArgs())
		})
	}
}

func TestE2E_ProjectFileOverride(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.Setenv("PROVECASE_PROJECT_FILE", "proofs.gpr")

	result := env.Run("replay")

	require.Equal(t, cli.ExitSuccess, result.ExitCode, "stderr: %s", result.Stderr)
	args := env.GnatproveArgs()
	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, []string{"-P", "proofs.gpr"}, args[:2])
}

func TestE2E_HistoryRecordsRuns(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	require.Equal(t, cli.ExitSuccess, env.Run("replay").ExitCode)
	env.SetMockExitCode(1)
	require.Equal(t, cli.ExitProofFailed, env.Run("run").ExitCode)

	_, err := os.Stat(filepath.Join(env.TempDir(), ".provecase", "state", "history.yaml"))
	require.NoError(t, err)

	result := env.Run("history")
	require.Equal(t, cli.ExitSuccess, result.ExitCode, "stderr: %s", result.Stderr)
	assert.Contains(t, result.Stdout, "replay")
	assert.Contains(t, result.Stdout, "run")
	assert.Contains(t, result.Stdout, "ghc_sort")
}

func TestE2E_NoHistory(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	require.Equal(t, cli.ExitSuccess, env.Run("--no-history", "replay").ExitCode)

	_, err := os.Stat(filepath.Join(env.TempDir(), ".provecase", "state", "history.yaml"))
	assert.True(t, os.IsNotExist(err))
}

// TestE2E_InfoReportsManualProof checks that a harness can read the case
// metadata from the binary without gnatprove running.
func TestE2E_InfoReportsManualProof(t *testing.T) {
	env := testutil.NewE2EEnv(t)

	result := env.Run("info")

	require.Equal(t, cli.ExitSuccess, result.ExitCode, "stderr: %s", result.Stderr)
	assert.Contains(t, result.Stdout, "contains_manual_proof: false\n")
	assert.Contains(t, result.Stdout, "case: ghc_sort\n")
	assert.Empty(t, env.GnatproveArgs())
}

// TestE2E_CaptureOutput checks where gnatprove's stderr ends up for a failed
// run: streamed as is, or folded into the error message.
func TestE2E_CaptureOutput(t *testing.T) {
	tests := map[string]struct {
		config      string
		wantInError bool
	}{
		"streamed by default": {config: "", wantInError: false},
		"captured":            {config: "capture_output: true\n", wantInError: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)
			env.WriteProjectConfig(tt.config)
			env.SetMockExitCode(1)

			result := env.Run("run")

			require.Equal(t, cli.ExitProofFailed, result.ExitCode)
			folded := "exit code 1: gnatprove: unproved check in ghc_sort.adb"
			if tt.wantInError {
				assert.Contains(t, result.Stderr, folded)
			} else {
				assert.NotContains(t, result.Stderr, folded)
				assert.Contains(t, result.Stderr, "gnatprove: unproved check in ghc_sort.adb\n")
			}
		})
	}
}
