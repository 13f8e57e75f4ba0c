package errors

import (
	"fmt"
	"strings"
)

// Common error messages for the provecase CLI.

// ProverNotFound creates an error for a missing gnatprove executable.
func ProverNotFound(command string, cause error) *CLIError {
	return &CLIError{
		Category: Prerequisite,
		Message:  fmt.Sprintf("gnatprove command %q could not be started", command),
		Remediation: []string{
			"Install SPARK (gnatprove) and make sure it is in PATH",
			"Or point gnatprove_cmd at it in .provecase/config.yml",
			"Run 'provecase doctor' to check the toolchain",
		},
		Cause: cause,
	}
}

// ProofFailed creates an error for a gnatprove run that exited non-zero.
func ProofFailed(mode string, cause error) *CLIError {
	remediation := []string{"Re-run with --verbose to see the gnatprove command line"}
	if mode == "replay" {
		remediation = append(remediation,
			"Recorded proof sessions may be stale; run 'provecase run' to regenerate them")
	}
	return &CLIError{
		Category:    Proof,
		Message:     cause.Error(),
		Remediation: remediation,
		Cause:       cause,
	}
}

// ProofTimeout creates an error for a gnatprove run that exceeded its timeout.
func ProofTimeout(mode string, cause error) *CLIError {
	return &CLIError{
		Category: Runtime,
		Message:  fmt.Sprintf("gnatprove %s timed out", mode),
		Remediation: []string{
			"Increase timeout in .provecase/config.yml (seconds, 0 = no timeout)",
			"Or set PROVECASE_TIMEOUT",
		},
		Cause: cause,
	}
}

// InvalidConfig creates an error for configuration that failed to load.
func InvalidConfig(cause error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  cause.Error(),
		Remediation: []string{
			"Check .provecase/config.yml and ~/.config/provecase/config.yml",
			"Check PROVECASE_* environment variables",
		},
		Cause: cause,
	}
}

// UnknownCommand creates an error for an unrecognized positional argument.
func UnknownCommand(args []string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("unexpected arguments: %s", strings.Join(args, " ")),
		"Run 'provecase' or 'provecase run' for a full proof",
		"Run 'provecase replay' to check recorded proofs",
	)
}
