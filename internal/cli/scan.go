package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Reconcile the index with the folder once and exit",
		Long: `Scan walks the folder, indexes new and changed files, removes entries
for files that no longer exist, and retries any vector-store deletions
that failed earlier. Failed files are re-attempted regardless of whether
their content changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				root = cfg.WatchedRoot
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.Reconcile(ctx, root); err != nil {
				return err
			}

			stats := a.engine.Stats()
			fmt.Fprintf(cmd.OutOrStdout(),
				"indexed %d, skipped %d, failed %d, deleted %d, purged %d\n",
				stats.Indexed.Load(), stats.Skipped.Load(), stats.Failed.Load(),
				stats.Deleted.Load(), stats.Purged.Load())
			return nil
		},
	}
	return cmd
}
