package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/catalog"
	"shuttle/internal/remote"
	"shuttle/internal/services"
)

// bootstrap seeds the catalog from the current remote state so an existing
// library is not re-downloaded on the first sync pass.
func newBootstrapCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Mark everything currently on the remote as already downloaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateRemote(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			client := remote.NewSFTPClient(cfg, logger)
			if err := client.Connect(cmd.Context()); err != nil {
				return err
			}
			defer client.Disconnect()

			total := 0
			for _, root := range cfg.SFTP.RemotePaths {
				rootCtx := services.WithRemotePath(cmd.Context(), root)
				entries, err := client.ListDir(rootCtx, root)
				if err != nil {
					return err
				}
				if err := store.ReplaceSnapshot(rootCtx, entries); err != nil {
					return err
				}
				seeded, err := store.BootstrapDownloadedFromSnapshot(rootCtx)
				if err != nil {
					return err
				}
				total += seeded
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bootstrapped %d remote entries as downloaded\n", total)
			return nil
		},
	}
}
