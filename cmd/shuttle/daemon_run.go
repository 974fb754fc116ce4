package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shuttle/internal/catalog"
	"shuttle/internal/daemon"
	"shuttle/internal/remote"
	"shuttle/internal/router"
	"shuttle/internal/transfer"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the sync-and-route loop in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			provider, namer, err := ctx.parsingServices()
			if err != nil {
				return err
			}

			orch := transfer.New(cfg, store, remote.NewFactory(cfg, logger), namer, logger)
			rt := router.New(cfg, store, provider, logger)

			d, err := daemon.New(cfg, store, orch, rt, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}

			if err := d.Start(signalCtx); err != nil {
				return err
			}

			<-signalCtx.Done()
			logger.Info("shuttle daemon shutting down")
			d.Stop()
			return nil
		},
	}
}
