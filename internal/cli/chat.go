package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sechaba/ragwatch/internal/chat"
)

func newChatCommand() *cobra.Command {
	var topK int
	var model string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about the indexed documents interactively",
		Long: `Chat starts an interactive loop. Each question is matched against the
vector index and answered by Gemini with the retrieved chunks as context.
Requires GOOGLE_API_KEY or GEMINI_API_KEY in the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if model == "" {
				model = cfg.Chat.Model
			}
			gen, err := chat.NewGeminiGenerator(ctx, "", model)
			if err != nil {
				return err
			}
			defer func() { _ = gen.Close() }()

			if topK <= 0 {
				topK = cfg.Retrieval.TopK
			}
			session := chat.NewSession(a.retriever, gen, chat.Config{TopK: topK}, logger)
			return session.Run(ctx, os.Stdin, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Contexts retrieved per question (default from config)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Generation model (default "+chat.DefaultChatModel+")")
	return cmd
}
