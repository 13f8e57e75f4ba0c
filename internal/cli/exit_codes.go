package cli

import (
	clierrors "github.com/ariel-frischer/provecase/internal/errors"
)

// Exit codes for the provecase CLI
// These codes let an outer test-suite driver tell failure kinds apart
const (
	// ExitSuccess indicates the proof case passed
	ExitSuccess = 0

	// ExitProofFailed indicates gnatprove reported a failure
	ExitProofFailed = 1

	// ExitInvalidArguments indicates invalid command arguments or configuration
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates gnatprove or a prover is missing
	ExitMissingDependencies = 4

	// ExitTimeout indicates the gnatprove run timed out
	ExitTimeout = 5
)

// ExitCodeFor maps an error returned by a command to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	cliErr := clierrors.AsCLIError(err)
	if cliErr == nil {
		return ExitProofFailed
	}
	switch cliErr.Category {
	case clierrors.Argument, clierrors.Configuration:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingDependencies
	case clierrors.Runtime:
		if isTimeout(cliErr) {
			return ExitTimeout
		}
		return ExitProofFailed
	default:
		return ExitProofFailed
	}
}
