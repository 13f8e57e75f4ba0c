package testsupport

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/provecase/internal/proof"
	"github.com/ariel-frischer/provecase/internal/testutil"
)

func TestHelperProcess(t *testing.T) {
	testutil.TestHelperProcess(t)
}

func caseConfig(replay bool) proof.Config {
	return proof.Config{Provers: []string{"z3", "cvc4", "altergo"}, Level: 4, Procs: 10, Replay: replay}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	g := New(Options{})
	assert.Equal(t, DefaultCommand, g.opts.Command)
	assert.Equal(t, DefaultProjectFile, g.opts.ProjectFile)
	assert.NotNil(t, g.opts.Logger)
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		project string
		cfg     proof.Config
		want    []string
	}{
		"full proof": {
			cfg:  caseConfig(false),
			want: []string{"-P", "test.gpr", "--quiet", "--level=4", "-j10", "--prover=z3,cvc4,altergo"},
		},
		"replay": {
			cfg:  caseConfig(true),
			want: []string{"-P", "test.gpr", "--quiet", "--level=4", "-j10", "--prover=z3,cvc4,altergo", "--replay"},
		},
		"custom project and single prover": {
			project: "sort.gpr",
			cfg:     proof.Config{Provers: []string{"cvc4"}, Level: 0, Procs: 1},
			want:    []string{"-P", "sort.gpr", "--quiet", "--level=0", "-j1", "--prover=cvc4"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := New(Options{ProjectFile: tt.project})
			assert.Equal(t, tt.want, g.BuildArgs(tt.cfg))
		})
	}
}

func TestBuildCommand(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		command   string
		cfg       proof.Config
		wantArgs  []string
		wantErr   bool
		errSubstr string
	}{
		"prefix with arguments": {
			command:  "docker run --rm 'spark image' gnatprove",
			cfg:      caseConfig(true),
			wantArgs: []string{"docker", "run", "--rm", "spark image", "gnatprove",
				"-P", "test.gpr", "--quiet", "--level=4", "-j10", "--prover=z3,cvc4,altergo", "--replay"},
		},
		"invalid config rejected before start": {
			command:   "gnatprove",
			cfg:       proof.Config{Provers: []string{"z3"}, Level: 4, Procs: 0},
			wantErr:   true,
			errSubstr: "procs must be at least 1",
		},
		"unterminated quote": {
			command:   "gnatprove 'oops",
			cfg:       caseConfig(false),
			wantErr:   true,
			errSubstr: "parsing gnatprove command",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := New(Options{Command: tt.command, WorkDir: "/tmp", Env: map[string]string{"SPARK_MODE": "on"}})
			cmd, err := g.BuildCommand(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, "/tmp", cmd.Dir)
			assert.Contains(t, cmd.Env, "SPARK_MODE=on")
		})
	}
}

func TestProveAll_ForwardsArguments(t *testing.T) {
	t.Parallel()

	for name, replay := range map[string]bool{"prove": false, "replay": true} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			g := New(Options{
				Command: testutil.HelperCommandLine(t, "TestHelperProcess"),
				Env:     testutil.HelperEnv(t, testutil.HelperProcessConfig{EchoArgs: true}),
				Stdout:  &stdout,
			})

			require.NoError(t, g.ProveAll(context.Background(), caseConfig(replay)))

			args, err := testutil.ParseEchoedArgs(stdout.String())
			require.NoError(t, err)
			assert.Equal(t, g.BuildArgs(caseConfig(replay)), args)
		})
	}
}

func TestProveAll_NonZeroExit(t *testing.T) {
	t.Parallel()

	g := New(Options{
		Command: testutil.HelperCommandLine(t, "TestHelperProcess"),
		Env: testutil.HelperEnv(t, testutil.HelperProcessConfig{
			ExitCode: 1,
			Stderr:   "phase 2 of 2: flow analysis and proof\nghc_sort.adb:12:7: medium: overflow check might fail",
		}),
	})

	err := g.ProveAll(context.Background(), caseConfig(true))
	require.Error(t, err)

	var proofErr *ProofError
	require.ErrorAs(t, err, &proofErr)
	assert.Equal(t, proof.ModeReplay, proofErr.Mode)
	assert.Equal(t, 1, proofErr.ExitCode)
	assert.Contains(t, proofErr.Output, "overflow check might fail")
	assert.Equal(t,
		"gnatprove replay failed with exit code 1: ghc_sort.adb:12:7: medium: overflow check might fail",
		err.Error())
}

func TestProveAll_Timeout(t *testing.T) {
	t.Parallel()

	g := New(Options{
		Command: testutil.HelperCommandLine(t, "TestHelperProcess"),
		Env:     testutil.HelperEnv(t, testutil.HelperProcessConfig{Sleep: 10 * time.Second}),
		Timeout: 100 * time.Millisecond,
	})

	err := g.ProveAll(context.Background(), caseConfig(false))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProveAll_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := New(Options{
		Command: testutil.HelperCommandLine(t, "TestHelperProcess"),
		Env:     testutil.HelperEnv(t, testutil.HelperProcessConfig{Sleep: 10 * time.Second}),
	})

	err := g.ProveAll(ctx, caseConfig(false))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProveAll_MissingBinary(t *testing.T) {
	t.Parallel()

	g := New(Options{Command: "provecase-no-such-gnatprove-binary"})
	err := g.ProveAll(context.Background(), caseConfig(false))
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestProofError_Error(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  *ProofError
		want string
	}{
		"without output": {
			err:  &ProofError{Mode: "prove", ExitCode: 2},
			want: "gnatprove prove failed with exit code 2",
		},
		"single line output": {
			err:  &ProofError{Mode: "replay", ExitCode: 1, Output: "session mismatch"},
			want: "gnatprove replay failed with exit code 1: session mismatch",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
