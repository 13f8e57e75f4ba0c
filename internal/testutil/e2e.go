package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	// provecaseBinaryPath caches the built provecase binary path.
	provecaseBinaryPath string
	provecaseBuildOnce  sync.Once
	provecaseBuildErr   error
)

// mockGnatprove records its argv one per line in $MOCK_ARGS_FILE and exits
// with $MOCK_EXIT_CODE.
const mockGnatprove = `#!/bin/sh
: > "$MOCK_ARGS_FILE"
for arg in "$@"; do
	printf '%s\n' "$arg" >> "$MOCK_ARGS_FILE"
done
if [ -n "$MOCK_SLEEP" ]; then
	sleep "$MOCK_SLEEP"
fi
if [ "${MOCK_EXIT_CODE:-0}" != "0" ]; then
	echo "gnatprove: unproved check in ghc_sort.adb" >&2
fi
exit "${MOCK_EXIT_CODE:-0}"
`

// E2EEnv provides an isolated environment for E2E testing.
// The mock gnatprove is the only "gnatprove" reachable through PATH.
type E2EEnv struct {
	t            *testing.T
	tempDir      string
	binDir       string
	cleanedUp    bool
	mockExitCode int
	mockSleep    string
	extraEnv     []string
}

// CommandResult captures the result of running a provecase command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates a new E2E test environment with PATH isolation.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	env := &E2EEnv{t: t}
	env.setup()
	t.Cleanup(env.Cleanup)

	return env
}

func (e *E2EEnv) setup() {
	e.t.Helper()

	tempDir, err := os.MkdirTemp("", "provecase-e2e-*")
	if err != nil {
		e.t.Fatalf("creating temp directory: %v", err)
	}
	e.tempDir = tempDir

	e.binDir = filepath.Join(tempDir, "bin")
	if err := os.MkdirAll(e.binDir, 0o755); err != nil {
		e.t.Fatalf("creating bin directory: %v", err)
	}

	if err := os.WriteFile(filepath.Join(e.binDir, "gnatprove"), []byte(mockGnatprove), 0o755); err != nil {
		e.t.Fatalf("writing mock gnatprove: %v", err)
	}

	e.buildProvecase()
}

func (e *E2EEnv) buildProvecase() {
	e.t.Helper()

	provecaseBuildOnce.Do(func() {
		provecaseBinaryPath, provecaseBuildErr = doBuildProvecase()
	})
	if provecaseBuildErr != nil {
		e.t.Fatalf("building provecase: %v", provecaseBuildErr)
	}

	content, err := os.ReadFile(provecaseBinaryPath)
	if err != nil {
		e.t.Fatalf("reading provecase binary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.binDir, "provecase"), content, 0o755); err != nil {
		e.t.Fatalf("writing provecase binary: %v", err)
	}
}

func doBuildProvecase() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "provecase-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "provecase")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/provecase")
	cmd.Dir = repoRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("building provecase: %w\nOutput: %s", err, output)
	}

	return binaryPath, nil
}

// Run executes a provecase command in the isolated environment.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(filepath.Join(e.binDir, "provecase"), args...)
	cmd.Dir = e.tempDir
	cmd.Env = e.buildIsolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}

	return result
}

func (e *E2EEnv) buildIsolatedEnv() []string {
	systemPath := os.Getenv("PATH")
	isolatedPath := e.binDir
	if systemPath != "" {
		isolatedPath = e.binDir + ":" + systemPath
	}

	env := []string{
		"PATH=" + isolatedPath,
		"HOME=" + e.tempDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.tempDir, ".config"),
		"MOCK_ARGS_FILE=" + e.ArgsFile(),
		fmt.Sprintf("MOCK_EXIT_CODE=%d", e.mockExitCode),
	}
	if e.mockSleep != "" {
		env = append(env, "MOCK_SLEEP="+e.mockSleep)
	}

	for _, key := range []string{"TERM", "LANG", "LC_ALL", "TMPDIR", "TMP", "TEMP"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}

	return append(env, e.extraEnv...)
}

// TempDir returns the root temp directory, which is also HOME and the
// working directory of every command.
func (e *E2EEnv) TempDir() string {
	return e.tempDir
}

// BinDir returns the bin directory containing the mock and provecase binaries.
func (e *E2EEnv) BinDir() string {
	return e.binDir
}

// ArgsFile is where the mock gnatprove writes the argv it received.
func (e *E2EEnv) ArgsFile() string {
	return filepath.Join(e.tempDir, "gnatprove.args")
}

// SetMockExitCode configures the exit code of the mock gnatprove.
func (e *E2EEnv) SetMockExitCode(code int) {
	e.mockExitCode = code
}

// SetMockSleep makes the mock gnatprove sleep before exiting. d is passed to
// sleep(1), e.g. "5".
func (e *E2EEnv) SetMockSleep(d string) {
	e.mockSleep = d
}

// Setenv adds KEY=value to the environment of every command.
func (e *E2EEnv) Setenv(key, value string) {
	e.extraEnv = append(e.extraEnv, key+"="+value)
}

// WriteProjectConfig writes the project config file .provecase/config.yml.
func (e *E2EEnv) WriteProjectConfig(content string) {
	e.t.Helper()

	dir := filepath.Join(e.tempDir, ".provecase")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("creating config directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing project config: %v", err)
	}
}

// GnatproveArgs returns the argv the mock gnatprove received on its last
// invocation, or nil when it never ran.
func (e *E2EEnv) GnatproveArgs() []string {
	data, err := os.ReadFile(e.ArgsFile())
	if err != nil {
		return nil
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}

// Cleanup removes temp files.
func (e *E2EEnv) Cleanup() {
	if e.cleanedUp {
		return
	}
	e.cleanedUp = true

	if e.tempDir != "" {
		if err := os.RemoveAll(e.tempDir); err != nil {
			e.t.Logf("note: could not remove temp directory: %v", err)
		}
	}
}
