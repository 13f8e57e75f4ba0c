// Package testutil provides test utilities and helpers for provecase tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ariel-frischer/provecase/internal/proof"
)

// CallRecord captures a single ProveAll invocation.
type CallRecord struct {
	Method    string
	Config    proof.Config
	Timestamp time.Time
	Error     error
}

// RecordingProver is a proof.Prover that records every call and returns a
// configurable error. Safe for concurrent use.
type RecordingProver struct {
	t     *testing.T
	mu    sync.Mutex
	calls []CallRecord
	err   error
}

// NewRecordingProver creates a prover that succeeds unless WithError is used.
func NewRecordingProver(t *testing.T) *RecordingProver {
	t.Helper()
	return &RecordingProver{t: t}
}

// WithError makes every subsequent call return err.
func (r *RecordingProver) WithError(err error) *RecordingProver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

// ProveAll records the call. cfg is cloned so later mutation by the caller
// cannot alter the record.
func (r *RecordingProver) ProveAll(_ context.Context, cfg proof.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, CallRecord{
		Method:    "ProveAll",
		Config:    cfg.Clone(),
		Timestamp: time.Now(),
		Error:     r.err,
	})
	return r.err
}

// GetCalls returns a copy of the recorded calls.
func (r *RecordingProver) GetCalls() []CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecord, len(r.calls))
	copy(out, r.calls)
	return out
}

// GetCallsByMode returns calls whose configuration has the given mode.
func (r *RecordingProver) GetCallsByMode(mode string) []CallRecord {
	var out []CallRecord
	for _, c := range r.GetCalls() {
		if c.Config.Mode() == mode {
			out = append(out, c)
		}
	}
	return out
}

// AssertCallCount fails the test if the number of calls differs from want.
func (r *RecordingProver) AssertCallCount(want int) {
	r.t.Helper()
	if got := len(r.GetCalls()); got != want {
		r.t.Errorf("expected %d ProveAll calls, got %d", want, got)
	}
}

// Reset discards recorded calls.
func (r *RecordingProver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
