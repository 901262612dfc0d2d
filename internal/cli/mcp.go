package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sechaba/ragwatch/internal/mcp"
)

func newMCPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the index over the Model Context Protocol on stdio",
		Long: `Mcp starts an MCP server on stdio exposing search_documents,
index_status, and purge_pending, so editors and agents can query the
document collection. Stdout carries the protocol; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcp.NewServer(a.retriever, a.tracker, a.engine, logger)
			return srv.Serve(ctx)
		},
	}
	return cmd
}
