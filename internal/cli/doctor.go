package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/provecase/internal/errors"
	"github.com/ariel-frischer/provecase/internal/ghcsort"
	"github.com/ariel-frischer/provecase/internal/health"
)

// newChecker is replaced in tests.
var newChecker = health.NewChecker

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Short:   "Check that gnatprove and the provers are installed",
		Args:    cobra.NoArgs,
		GroupID: GroupTools,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			report := newChecker().RunHealthChecks(commandContext(cmd), cfg.GnatproveCmd, ghcsort.Provers())
			fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))
			if !report.Passed {
				return &clierrors.CLIError{
					Category: clierrors.Prerequisite,
					Message:  "toolchain incomplete",
					Remediation: []string{
						"Install the missing tools listed above",
						"Or set gnatprove_cmd to a wrapper that provides them",
					},
				}
			}
			return nil
		},
	}
}
