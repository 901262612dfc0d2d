package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sechaba/ragwatch/internal/watcher"
)

func newWatchCommand() *cobra.Command {
	var root string
	var skipScan bool

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Watch a folder and keep the index in sync",
		Long: `Watch starts the filesystem watcher and sync engine. On startup the
watched folder is reconciled against the index so changes made while
ragwatch was not running are picked up; after that every create, modify,
delete, and rename updates the index incrementally.`,
		Example: "  ragwatch watch ~/Documents/notes",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				root = cfg.WatchedRoot
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !skipScan {
				logger.Info("reconciling index with disk", "root", root)
				if err := a.engine.Reconcile(ctx, root); err != nil {
					return fmt.Errorf("initial reconcile failed: %w", err)
				}
			}

			w, err := watcher.New(watcher.Config{
				Root:           root,
				DebounceWindow: cfg.DebounceWindow(),
				IgnorePaths:    cfg.IgnorePaths,
			}, logger)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			logger.Info("watching", "root", root)

			go func() {
				<-ctx.Done()
				w.Stop()
			}()

			err = a.engine.Run(ctx, w.Events())
			if errors.Is(err, context.Canceled) {
				err = nil
			}

			stats := a.engine.Stats()
			logger.Info("stopped",
				"indexed", stats.Indexed.Load(),
				"skipped", stats.Skipped.Load(),
				"failed", stats.Failed.Load(),
				"deleted", stats.Deleted.Load())
			return err
		},
	}

	cmd.Flags().BoolVar(&skipScan, "no-scan", false, "Skip the startup reconcile pass")
	return cmd
}
