// Package cli implements the provecase command tree.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/provecase/internal/config"
	clierrors "github.com/ariel-frischer/provecase/internal/errors"
	"github.com/ariel-frischer/provecase/internal/proof"
	"github.com/ariel-frischer/provecase/internal/testsupport"
)

// Command group IDs
const (
	GroupProof = "proof"
	GroupTools = "tools"
)

// ProverFactory builds the prover used by run and replay.
type ProverFactory func(cfg *config.Configuration, logger *log.Logger, stdout, stderr io.Writer) proof.Prover

// DefaultProverFactory runs gnatprove as configured. Its output goes to stdout
// and stderr unless capture_output is set.
func DefaultProverFactory(cfg *config.Configuration, logger *log.Logger, stdout, stderr io.Writer) proof.Prover {
	opts := cfg.ProverOptions()
	if !cfg.CaptureOutput {
		opts.Stdout = stdout
		opts.Stderr = stderr
	}
	opts.Logger = logger
	return testsupport.New(opts)
}

// rootOptions holds persistent flag values.
type rootOptions struct {
	configPath string
	verbose    bool
	noHistory  bool

	newProver ProverFactory
}

// NewRootCmd builds the command tree. newProver may be nil to use DefaultProverFactory.
func NewRootCmd(newProver ProverFactory) *cobra.Command {
	if newProver == nil {
		newProver = DefaultProverFactory
	}
	opts := &rootOptions{newProver: newProver}

	cmd := &cobra.Command{
		Use:   "provecase",
		Short: "Run the ghc_sort proof case",
		Long: `provecase drives the ghc_sort proof case through gnatprove.

Without a subcommand it performs a full proof attempt (same as 'provecase run').
'provecase replay' re-checks the recorded proof sessions instead.`,
		Example: `  # Full proof attempt
  provecase

  # Re-check recorded proofs
  provecase replay

  # Re-check recorded proofs on every source change
  provecase watch --replay

  # Check that gnatprove and the provers are installed
  provecase doctor

  # Print the case metadata for a test harness
  provecase info`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return clierrors.UnknownCommand(args)
			}
			return runCase(cmd, opts, false)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Project config file (default: .provecase/config.yml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output, including the gnatprove command line")
	cmd.PersistentFlags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history file")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierrors.NewArgumentError(err.Error(), "Run 'provecase --help' for usage")
	})

	cmd.AddGroup(
		&cobra.Group{ID: GroupProof, Title: "Proof Commands:"},
		&cobra.Group{ID: GroupTools, Title: "Tools:"},
	)
	cmd.AddCommand(
		newRunCmd(opts),
		newReplayCmd(opts),
		newWatchCmd(opts),
		newDoctorCmd(opts),
		newHistoryCmd(opts),
		newInfoCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd(nil)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		clierrors.FprintAny(cmd.ErrOrStderr(), err)
	}
	return ExitCodeFor(err)
}

// newLogger returns the command logger writing to w.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "provecase",
		ReportTimestamp: verbose,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// loadConfig loads configuration honoring --config.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ProjectConfigPath: o.configPath,
		WarningWriter:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.InvalidConfig(err)
	}
	return cfg, nil
}
