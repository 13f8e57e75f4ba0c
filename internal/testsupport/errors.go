package testsupport

import "fmt"

// ProofError reports a gnatprove run that exited non-zero: an unproved
// obligation, a replay mismatch or a tool crash.
type ProofError struct {
	// Mode is "prove" or "replay".
	Mode string
	// ExitCode is the gnatprove exit status.
	ExitCode int
	// Output holds captured stderr, if it was captured.
	Output string
}

func (e *ProofError) Error() string {
	msg := fmt.Sprintf("gnatprove %s failed with exit code %d", e.Mode, e.ExitCode)
	if e.Output != "" {
		msg += ": " + lastLine(e.Output)
	}
	return msg
}

func lastLine(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[i+1:]
		}
	}
	return s
}
