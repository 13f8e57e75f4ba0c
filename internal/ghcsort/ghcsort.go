// Package ghcsort is the driver for the ghc_sort proof case. It owns nothing
// but the case's fixed proof configuration; proving, replaying and reporting
// are done by the Prover it is handed.
package ghcsort

import (
	"context"

	"github.com/ariel-frischer/provecase/internal/proof"
)

// Name is the proof case identifier.
const Name = "ghc_sort"

// ContainsManualProof reports whether any obligation of this case needs
// hand-written proof guidance.
const ContainsManualProof = false

// Fixed proof settings for this case.
const (
	Level = 4
	Procs = 10
)

// Provers returns the solver backends for this case, in order.
func Provers() []string {
	return []string{proof.ProverZ3, proof.ProverCVC4, proof.ProverAltErgo}
}

// Config builds the case configuration. A new value is returned on every call.
func Config(replay bool) proof.Config {
	return proof.Config{
		Provers: Provers(),
		Level:   Level,
		Procs:   Procs,
		Replay:  replay,
	}
}

// Run is the direct-run entry: a full proof attempt.
func Run(ctx context.Context, p proof.Prover) error {
	return p.ProveAll(ctx, Config(false))
}

// Replay re-checks the recorded proof results.
func Replay(ctx context.Context, p proof.Prover) error {
	return p.ProveAll(ctx, Config(true))
}

// Metadata describes the case to an outer test harness.
type Metadata struct {
	Case                string   `yaml:"case"`
	ContainsManualProof bool     `yaml:"contains_manual_proof"`
	Provers             []string `yaml:"provers,flow"`
	Level               int      `yaml:"level"`
	Procs               int      `yaml:"procs"`
}

// Info returns the case metadata.
func Info() Metadata {
	return Metadata{
		Case:                Name,
		ContainsManualProof: ContainsManualProof,
		Provers:             Provers(),
		Level:               Level,
		Procs:               Procs,
	}
}
