package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/provecase/internal/errors"
	"github.com/ariel-frischer/provecase/internal/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recent proof runs",
		Args:    cobra.NoArgs,
		GroupID: GroupTools,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			file, err := history.LoadHistory(cfg.StateDir)
			if err != nil {
				return clierrors.Wrap(err, clierrors.Runtime, "Delete "+history.Path(cfg.StateDir)+" to start over")
			}

			entries := file.Entries
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tCOMMAND\tCASE\tEXIT\tDURATION\tREVISION")
			for _, e := range entries {
				revision := e.Revision
				if revision == "" {
					revision = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"), e.Command, e.Case, e.ExitCode, e.Duration, revision)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of most recent runs to show (0 = all)")
	return cmd
}
