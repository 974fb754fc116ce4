package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/catalog"
	"shuttle/internal/remote"
	"shuttle/internal/transfer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Diff the remote roots and download new entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
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

			_, namer, err := ctx.parsingServices()
			if err != nil {
				return err
			}

			orch := transfer.New(cfg, store, remote.NewFactory(cfg, logger), namer, logger)
			summary, err := orch.SyncFromRemote(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be downloaded without transferring")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *transfer.Summary) {
	out := cmd.OutOrStdout()

	for _, outcome := range summary.Outcomes {
		switch {
		case outcome.Err != nil:
			fmt.Fprintf(out, "failed   %s: %v\n", outcome.Entry.Path, outcome.Err)
		case outcome.Skipped:
			note := outcome.SkipNote
			if note == "" {
				note = "skipped"
			}
			fmt.Fprintf(out, "skipped  %s (%s)\n", outcome.Entry.Path, note)
		default:
			fmt.Fprintf(out, "fetched  %s -> %s\n", outcome.Entry.Path, outcome.LocalPath)
		}
	}

	label := "Sync complete"
	if summary.DryRun {
		label = "Dry run complete"
	}
	fmt.Fprintf(out, "%s: %d scanned, %d new, %d downloaded, %d skipped, %d failed\n",
		label, summary.Scanned, summary.New, summary.Downloaded, summary.Skipped, summary.Failed)
}
