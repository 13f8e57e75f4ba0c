package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/provecase/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Display version information",
		Args:    cobra.NoArgs,
		GroupID: GroupTools,
		Run: func(cmd *cobra.Command, args []string) {
			for _, line := range version.Lines() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		},
	}
}
