package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shuttle/internal/catalog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize catalog state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			counts, err := store.CountDownloadedFilesByStatus(cmd.Context())
			if err != nil {
				return err
			}
			tracked, err := store.ListShows(cmd.Context())
			if err != nil {
				return err
			}

			statuses := []catalog.Status{
				catalog.StatusPending,
				catalog.StatusDownloaded,
				catalog.StatusRouted,
				catalog.StatusError,
			}
			rows := make([][]string, 0, len(statuses))
			total := 0
			for _, status := range statuses {
				rows = append(rows, []string{string(status), strconv.Itoa(counts[status])})
				total += counts[status]
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Status", "Files"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			fmt.Fprintf(out, "%d files tracked across %d shows\n", total, len(tracked))
			return nil
		},
	}
}
