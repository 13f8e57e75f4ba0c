package proof

import (
	"context"
	"fmt"
)

// Prover is the proof orchestration entry point. Implementations run the
// configured solvers and report failure through the returned error.
type Prover interface {
	ProveAll(ctx context.Context, cfg Config) error
}

// ProverFunc adapts an ordinary function to the Prover interface.
type ProverFunc func(ctx context.Context, cfg Config) error

// ProveAll calls f(ctx, cfg).
func (f ProverFunc) ProveAll(ctx context.Context, cfg Config) error {
	return f(ctx, cfg)
}

// Known solver backend identifiers.
const (
	ProverZ3      = "z3"
	ProverCVC4    = "cvc4"
	ProverAltErgo = "altergo"
)

// KnownProvers lists the supported identifiers.
var KnownProvers = []string{ProverZ3, ProverCVC4, ProverAltErgo}

// executables maps identifiers whose binary name differs from the identifier.
var executables = map[string]string{
	ProverAltErgo: "alt-ergo",
}

// ParseProver returns name if it is a known prover identifier.
func ParseProver(name string) (string, error) {
	for _, known := range KnownProvers {
		if name == known {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown prover %q: valid options are %v", name, KnownProvers)
}

// Executable returns the binary name used to run the given prover.
func Executable(name string) string {
	if exe, ok := executables[name]; ok {
		return exe
	}
	return name
}
