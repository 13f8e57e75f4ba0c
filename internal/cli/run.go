package cli

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/provecase/internal/config"
	clierrors "github.com/ariel-frischer/provecase/internal/errors"
	"github.com/ariel-frischer/provecase/internal/ghcsort"
	"github.com/ariel-frischer/provecase/internal/git"
	"github.com/ariel-frischer/provecase/internal/history"
	"github.com/ariel-frischer/provecase/internal/lifecycle"
	"github.com/ariel-frischer/provecase/internal/notify"
	"github.com/ariel-frischer/provecase/internal/progress"
	"github.com/ariel-frischer/provecase/internal/proof"
	"github.com/ariel-frischer/provecase/internal/testsupport"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "run",
		Short:   "Attempt a full proof of ghc_sort",
		Long:    "Run gnatprove on ghc_sort with provers z3, cvc4 and altergo at level 4 using 10 processes.",
		Args:    cobra.NoArgs,
		GroupID: GroupProof,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCase(cmd, opts, false)
		},
	}
}

func newReplayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Re-check the recorded ghc_sort proofs",
		Long: `Run gnatprove in replay mode on ghc_sort: the recorded proof sessions are
re-checked with the same provers, level and parallelism instead of being regenerated.`,
		Args:    cobra.NoArgs,
		GroupID: GroupProof,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCase(cmd, opts, true)
		},
	}
}

// caseRunner holds everything needed to run one entry of the proof case,
// possibly repeatedly.
type caseRunner struct {
	cfg     *config.Configuration
	logger  *log.Logger
	prover  proof.Prover
	history *history.Writer
	hooks   lifecycle.Hooks
	entry   lifecycle.Entry
	run     func(context.Context, proof.Prover) error
}

func newCaseRunner(cmd *cobra.Command, opts *rootOptions, replay bool) (*caseRunner, error) {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	// Streamed gnatprove output shares stderr with the spinner.
	indicator := progress.NewIndicator(cmd.ErrOrStderr(), progress.DetectTerminalCapabilities(), !cfg.CaptureOutput)

	r := &caseRunner{
		cfg:    cfg,
		logger: logger,
		prover: indicator.Wrap(ghcsort.Name, opts.newProver(cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())),
		run:    ghcsort.Run,
		entry:  lifecycle.Entry{Command: "run", Case: ghcsort.Name, Mode: ghcsort.Config(replay).Mode()},
		hooks: lifecycle.Hooks{
			Notifier: notify.NewHandler(cfg.Notifications, logger),
			ExitCode: ExitCodeFor,
		},
	}
	if replay {
		r.run, r.entry.Command = ghcsort.Replay, "replay"
	}
	if !opts.noHistory {
		r.history = history.NewWriter(cfg.StateDir, cfg.MaxHistoryEntries)
		r.history.Warnings = cmd.ErrOrStderr()
		r.hooks.History = r.history
	}
	return r, nil
}

// runOnce performs the entry and records it in the history.
func (r *caseRunner) runOnce(ctx context.Context) error {
	mode := r.entry.Mode
	r.logger.Debug("starting proof case", "case", ghcsort.Name, "mode", mode,
		"manual_proof", ghcsort.ContainsManualProof)

	if r.history != nil {
		r.history.Revision = ""
		if rev, err := git.CurrentRevision(r.cfg.WorkDir); err == nil {
			r.history.Revision = rev.String()
		} else {
			r.logger.Debug("no git revision for history", "err", err)
		}
	}

	res := lifecycle.Run(ctx, r.hooks, r.entry, func(ctx context.Context) error {
		return classify(r.run(ctx, r.prover), mode, r.cfg.GnatproveCmd)
	})

	r.logger.Info("proof case finished", "case", ghcsort.Name, "mode", mode,
		"ok", res.Err == nil, "duration", res.Duration.Round(time.Millisecond))
	return res.Err
}

// runCase performs one entry of the proof case.
func runCase(cmd *cobra.Command, opts *rootOptions, replay bool) error {
	r, err := newCaseRunner(cmd, opts, replay)
	if err != nil {
		return err
	}
	return r.runOnce(commandContext(cmd))
}

// classify attaches a category and remediation to a prover error. The original
// error stays reachable through errors.Is and errors.As.
func classify(err error, mode, command string) error {
	if err == nil {
		return nil
	}
	var proofErr *testsupport.ProofError
	switch {
	case errors.As(err, &proofErr):
		return clierrors.ProofFailed(mode, err)
	case errors.Is(err, context.DeadlineExceeded):
		return clierrors.ProofTimeout(mode, err)
	case errors.Is(err, exec.ErrNotFound):
		return clierrors.ProverNotFound(command, err)
	default:
		return clierrors.Wrap(err, clierrors.Runtime)
	}
}

// isTimeout reports whether a Runtime CLIError came from a deadline.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// compile-time check that the default binding satisfies the interface
var _ proof.Prover = (*testsupport.GnatProve)(nil)
