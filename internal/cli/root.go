package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sechaba/ragwatch/internal/config"
)

var (
	cfg     *config.Config
	logger  *log.Logger
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ragwatch",
	Short: "Watch a document folder and keep a searchable vector index in sync",
	Long: `Ragwatch watches a folder of documents, keeps a vector index in sync
with every create, modify, and delete, and answers questions about the
collection through retrieval-grounded chat, one-shot queries, or an MCP
server for editors and agents.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() error {
	rootCmd.AddCommand(
		newWatchCommand(),
		newChatCommand(),
		newQueryCommand(),
		newStatusCommand(),
		newScanCommand(),
		newDBCommand(),
		newMCPCommand(),
	)
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file (default: ./ragwatch.yaml, then ~/.config/ragwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cobra.OnInitialize(initApp)
}

// initApp loads environment, config, and the shared logger before any
// command runs. Stdout stays clean for command output and the MCP protocol.
func initApp() {
	_ = godotenv.Load()

	logger = log.New(os.Stderr)
	logger.SetPrefix("ragwatch")
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	var err error
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}
}
