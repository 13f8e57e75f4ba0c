package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	clierrors "github.com/ariel-frischer/provecase/internal/errors"
	"github.com/ariel-frischer/provecase/internal/watch"
)

// newWatcher is replaced in tests.
var newWatcher = watch.New

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var replay bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the proof case whenever Ada sources change",
		Long: `Run the proof case once, then again each time a .adb, .ads or .gpr file
under work_dir changes. Failed runs are reported and watching continues.
Stop with Ctrl-C.`,
		Args:    cobra.NoArgs,
		GroupID: GroupProof,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newCaseRunner(cmd, opts, replay)
			if err != nil {
				return err
			}

			root := r.cfg.WorkDir
			if root == "" {
				root = "."
			}
			w, err := newWatcher(root)
			if err != nil {
				return clierrors.WrapWithMessage(err, clierrors.Runtime, "cannot watch "+root)
			}
			defer w.Close()

			report := func(err error) {
				if err != nil {
					clierrors.FprintAny(cmd.ErrOrStderr(), err)
				}
			}

			ctx := commandContext(cmd)
			report(r.runOnce(ctx))
			r.logger.Info("watching for changes", "dir", w.Root())

			return w.Watch(ctx, func(ctx context.Context, changed []string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Changed: %s\n", displayPaths(root, changed))
				report(r.runOnce(ctx))
			})
		},
	}

	cmd.Flags().BoolVar(&replay, "replay", false, "Re-check recorded proofs instead of a full proof attempt")
	return cmd
}

// displayPaths shortens paths relative to root for display.
func displayPaths(root string, paths []string) string {
	short := make([]string, len(paths))
	for i, p := range paths {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
		short[i] = p
	}
	return strings.Join(short, ", ")
}
