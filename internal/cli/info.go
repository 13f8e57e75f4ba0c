package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ariel-frischer/provecase/internal/ghcsort"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the proof case metadata as YAML",
		Long: `Print the ghc_sort case metadata: its name, whether it contains manual
proof, and the fixed provers, level and process count. No configuration is
read and gnatprove is not run, so a test harness can query it anywhere.`,
		Example: `  provecase info
  provecase info | grep contains_manual_proof`,
		Args:    cobra.NoArgs,
		GroupID: GroupTools,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(ghcsort.Info()); err != nil {
				return fmt.Errorf("encoding case info: %w", err)
			}
			return enc.Close()
		},
	}
}
