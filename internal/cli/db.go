package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sechaba/ragwatch/internal/extractor"
)

func newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db [path]",
		Short: "Print a SQLite database as readable text",
		Long: `Db renders a SQLite database: its tables, columns, row counts, and a
few sample rows per table. Without an argument it shows the tracker
database.`,
		Example: "  ragwatch db\n  ragwatch db ./some/other.sqlite3",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.DBPath()
			if len(args) == 1 {
				path = args[0]
			}

			text, err := extractor.New(0).Extract(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	return cmd
}
