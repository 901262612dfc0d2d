package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sechaba/ragwatch/internal/retriever"
)

func newQueryCommand() *cobra.Command {
	var limit int
	var showText bool

	cmd := &cobra.Command{
		Use:     "query <text>",
		Short:   "Run a one-shot search against the index",
		Example: `  ragwatch query "notes about tensor decomposition" -l 10`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if limit <= 0 {
				limit = cfg.Retrieval.TopK
			}
			resp, err := a.retriever.Search(ctx, retriever.SearchRequest{
				Query: strings.Join(args, " "),
				TopK:  limit,
			})
			if err != nil {
				return err
			}
			if len(resp.Results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no results")
				return nil
			}

			out := cmd.OutOrStdout()
			for i, r := range resp.Results {
				marker := ""
				if r.Stale {
					marker = " (stale)"
				}
				fmt.Fprintf(out, "%d. %.4f  %s#%d%s\n", i+1, r.Score, r.SourcePath, r.ChunkIndex, marker)
				if showText {
					fmt.Fprintf(out, "   %s\n", strings.ReplaceAll(r.Text, "\n", "\n   "))
				}
			}
			fmt.Fprintf(out, "\n%d results in %s\n", len(resp.Results), resp.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum results (default from config)")
	cmd.Flags().BoolVarP(&showText, "text", "t", false, "Print the matched chunk text")
	return cmd
}
