package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// HelperProcessConfig configures the behavior of TestHelperProcess.
type HelperProcessConfig struct {
	// ExitCode is the exit code to return (default 0).
	ExitCode int `json:"exit_code"`
	// Stdout is the content to write to stdout.
	Stdout string `json:"stdout"`
	// Stderr is the content to write to stderr.
	Stderr string `json:"stderr"`
	// EchoArgs writes the received arguments as a JSON array line to stdout.
	EchoArgs bool `json:"echo_args"`
	// Sleep delays the exit, for timeout tests.
	Sleep time.Duration `json:"sleep"`
}

// Environment variable names used by TestHelperProcess.
const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	// EnvHelperProcessConfig contains JSON-encoded HelperProcessConfig.
	EnvHelperProcessConfig = "GO_HELPER_PROCESS_CONFIG"
)

// TestHelperProcess implements the helper process pattern. When the test
// binary is started with GO_WANT_HELPER_PROCESS=1 it behaves like a fake
// gnatprove and exits without returning.
//
// Usage in test file:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}
	runHelperProcess(parseHelperConfig(), helperArgs(os.Args))
}

// parseHelperConfig parses HelperProcessConfig from environment variable.
func parseHelperConfig() HelperProcessConfig {
	config := HelperProcessConfig{}
	if configJSON := os.Getenv(EnvHelperProcessConfig); configJSON != "" {
		// Ignore parse errors; use defaults on failure
		_ = json.Unmarshal([]byte(configJSON), &config)
	}
	return config
}

// helperArgs returns the arguments after the first "--".
func helperArgs(argv []string) []string {
	for i, a := range argv {
		if a == "--" {
			return argv[i+1:]
		}
	}
	return nil
}

// runHelperProcess executes the helper process behavior and always exits.
func runHelperProcess(config HelperProcessConfig, args []string) {
	if config.EchoArgs {
		data, _ := json.Marshal(args)
		fmt.Fprintln(os.Stdout, string(data))
	}
	if config.Stdout != "" {
		fmt.Fprint(os.Stdout, config.Stdout)
	}
	if config.Stderr != "" {
		fmt.Fprint(os.Stderr, config.Stderr)
	}
	if config.Sleep > 0 {
		time.Sleep(config.Sleep)
	}
	os.Exit(config.ExitCode)
}

// HelperCommandLine returns a shell-style command prefix that re-runs the
// test binary as a helper process. testName must contain a TestHelperProcess call.
func HelperCommandLine(t *testing.T, testName string) string {
	t.Helper()

	testBinary, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to get test binary path: %v", err)
	}
	return fmt.Sprintf("%s -test.run=^%s$ --", quote(testBinary), testName)
}

// HelperEnv returns the environment that activates the helper process.
func HelperEnv(t *testing.T, config HelperProcessConfig) map[string]string {
	t.Helper()

	configJSON, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("failed to marshal helper config: %v", err)
	}
	return map[string]string{
		EnvWantHelperProcess:   "1",
		EnvHelperProcessConfig: string(configJSON),
	}
}

// ParseEchoedArgs extracts the argument list written by an EchoArgs helper.
func ParseEchoedArgs(stdout string) ([]string, error) {
	line, _, _ := strings.Cut(stdout, "\n")
	var args []string
	if err := json.Unmarshal([]byte(line), &args); err != nil {
		return nil, fmt.Errorf("parsing echoed args: %w", err)
	}
	return args, nil
}

// quote wraps s in single quotes for shlex parsing.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
