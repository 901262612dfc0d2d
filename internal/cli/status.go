package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sechaba/ragwatch/pkg/types"
)

func newStatusCommand() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is indexed, failed, and awaiting cleanup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			files, err := a.tracker.ListFiles(ctx)
			if err != nil {
				return err
			}
			pending, err := a.tracker.ListPendingPurges(ctx)
			if err != nil {
				return err
			}

			var indexed, failed int
			var chunks int
			for _, f := range files {
				switch f.Status {
				case types.StatusIndexed:
					indexed++
				case types.StatusFailed:
					failed++
				}
				chunks += len(f.ChunkIDs)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tracked files:  %d\n", len(files))
			fmt.Fprintf(out, "  indexed:      %d\n", indexed)
			fmt.Fprintf(out, "  failed:       %d\n", failed)
			fmt.Fprintf(out, "Chunks:         %d\n", chunks)
			fmt.Fprintf(out, "Pending purges: %d\n", len(pending))

			if count, err := a.store.Count(ctx); err == nil {
				fmt.Fprintf(out, "Vectors stored: %d\n", count)
			}

			if showFiles {
				fmt.Fprintln(out)
				for _, f := range files {
					line := fmt.Sprintf("%-8s %4d chunks  %s", f.Status, len(f.ChunkIDs), f.Path)
					if f.FailReason != "" {
						line += "  [" + f.FailReason + "]"
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showFiles, "files", "f", false, "List every tracked file")
	return cmd
}
