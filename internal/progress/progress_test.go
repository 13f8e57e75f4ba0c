package progress

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/provecase/internal/proof"
)

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		caps TerminalCapabilities
		want ProgressSymbols
	}{
		"unicode terminal": {
			caps: TerminalCapabilities{IsTTY: true, SupportsUnicode: true},
			want: ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14},
		},
		"ascii fallback": {
			caps: TerminalCapabilities{},
			want: ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SelectSymbols(tt.caps))
		})
	}
}

func TestDetect_NotATerminal(t *testing.T) {
	t.Parallel()

	// -1 is never a terminal.
	caps := detect(-1, func(string) string { return "" })
	assert.False(t, caps.IsTTY)
	assert.False(t, caps.SupportsColor)
	assert.False(t, caps.SupportsUnicode)
	assert.Zero(t, caps.Width)
}

func TestIndicator_WrapReportsOutcome(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		innerErr error
		want     string
	}{
		"success": {want: "[OK] ghc_sort replay\n"},
		"failure": {innerErr: errors.New("mismatch"), want: "[FAIL] ghc_sort replay\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			ind := NewIndicator(&out, TerminalCapabilities{}, false)

			var seen proof.Config
			inner := proof.ProverFunc(func(_ context.Context, cfg proof.Config) error {
				seen = cfg
				return tt.innerErr
			})

			cfg := proof.Config{Provers: []string{"z3"}, Level: 4, Procs: 10, Replay: true}
			err := ind.Wrap("ghc_sort", inner).ProveAll(context.Background(), cfg)

			if tt.innerErr != nil {
				require.ErrorIs(t, err, tt.innerErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, cfg, seen, "config is forwarded unchanged")
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestNewIndicator_SpinnerOnlyWithoutStreamedOutput(t *testing.T) {
	t.Parallel()

	tty := TerminalCapabilities{IsTTY: true, SupportsUnicode: true}
	tests := map[string]struct {
		caps     TerminalCapabilities
		streamed bool
		wantSpin bool
	}{
		"tty with captured output": {caps: tty, wantSpin: true},
		"tty with streamed output": {caps: tty, streamed: true, wantSpin: false},
		"no tty":                   {caps: TerminalCapabilities{}, wantSpin: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			ind := NewIndicator(&out, tt.caps, tt.streamed)
			assert.Equal(t, tt.wantSpin, ind.spin != nil)
		})
	}
}

func TestIndicator_StreamedPrintsOnlyStatus(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	ind := NewIndicator(&out, TerminalCapabilities{IsTTY: true, SupportsUnicode: true}, true)
	inner := proof.ProverFunc(func(context.Context, proof.Config) error {
		out.WriteString("sorting.adb:12:7: medium: overflow check might fail\n")
		return nil
	})

	cfg := proof.Config{Provers: []string{"z3"}, Level: 4, Procs: 10}
	require.NoError(t, ind.Wrap("ghc_sort", inner).ProveAll(context.Background(), cfg))
	assert.Equal(t, "sorting.adb:12:7: medium: overflow check might fail\n✓ ghc_sort prove\n", out.String())
}
