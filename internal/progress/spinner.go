package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/ariel-frischer/provecase/internal/proof"
)

// Indicator wraps a spinner that is active only on a TTY.
type Indicator struct {
	caps    TerminalCapabilities
	symbols ProgressSymbols
	out     io.Writer
	spin    *spinner.Spinner
}

// NewIndicator creates an Indicator writing to out. When streamed is set, other
// output is written to out while the indicator runs, so only the final status
// line is printed.
func NewIndicator(out io.Writer, caps TerminalCapabilities, streamed bool) *Indicator {
	symbols := SelectSymbols(caps)
	ind := &Indicator{caps: caps, symbols: symbols, out: out}
	if caps.IsTTY && !streamed {
		ind.spin = spinner.New(spinner.CharSets[symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(out))
	}
	return ind
}

// Start shows message next to the spinner. It is a no-op off a TTY or when
// output is streamed.
func (i *Indicator) Start(message string) {
	if i.spin == nil {
		return
	}
	i.spin.Suffix = " " + message
	i.spin.Start()
}

// Stop clears the spinner and prints a final status line.
func (i *Indicator) Stop(message string, ok bool) {
	if i.spin != nil {
		i.spin.Stop()
	}
	symbol := i.symbols.Checkmark
	if !ok {
		symbol = i.symbols.Failure
	}
	fmt.Fprintf(i.out, "%s %s\n", symbol, message)
}

// Wrap returns a Prover that runs inner with the indicator active.
func (i *Indicator) Wrap(caseName string, inner proof.Prover) proof.Prover {
	return proof.ProverFunc(func(ctx context.Context, cfg proof.Config) error {
		label := fmt.Sprintf("%s %s (%s)", caseName, cfg.Mode(), cfg.String())
		i.Start(label)
		err := inner.ProveAll(ctx, cfg)
		i.Stop(fmt.Sprintf("%s %s", caseName, cfg.Mode()), err == nil)
		return err
	})
}
