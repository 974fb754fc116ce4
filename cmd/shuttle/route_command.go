package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/catalog"
	"shuttle/internal/router"
)

func newRouteCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var incoming bool

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Move downloaded files into the show library",
		Long: "Route parses each downloaded file's name, resolves the episode against\n" +
			"the tracked shows, and moves the file into <show>/Season NN/. By default\n" +
			"it works through catalog records in the downloaded state; --incoming\n" +
			"scans the incoming directory itself and routes whatever media it finds.",
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

			provider, _, err := ctx.parsingServices()
			if err != nil {
				return err
			}

			rt := router.New(cfg, store, provider, logger)
			var outcomes []router.Outcome
			if incoming {
				outcomes, err = rt.RouteIncoming(cmd.Context(), dryRun)
			} else {
				outcomes, err = rt.RouteBacklog(cmd.Context(), dryRun)
			}
			if err != nil {
				return err
			}

			printRouteOutcomes(cmd, outcomes, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve destinations without moving anything")
	cmd.Flags().BoolVar(&incoming, "incoming", false, "Scan the incoming directory instead of the catalog backlog")
	return cmd
}

func printRouteOutcomes(cmd *cobra.Command, outcomes []router.Outcome, dryRun bool) {
	out := cmd.OutOrStdout()
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "Nothing to route")
		return
	}

	rows := make([][]string, 0, len(outcomes))
	routed := 0
	failed := 0
	for _, outcome := range outcomes {
		state := "skipped"
		detail := outcome.Reason
		switch {
		case outcome.Err != nil:
			state = "failed"
			detail = outcome.Err.Error()
			failed++
		case outcome.Routed:
			state = "routed"
			detail = outcome.To
			routed++
		case outcome.Skipped && outcome.To != "":
			detail = outcome.To
		}
		rows = append(rows, []string{outcome.Name, outcome.ShowName, state, detail})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"File", "Show", "Result", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))

	if dryRun {
		fmt.Fprintf(out, "Dry run: %d of %d would be routed\n", len(outcomes)-failed, len(outcomes))
		return
	}
	fmt.Fprintf(out, "Routed %d of %d, %d failed\n", routed, len(outcomes), failed)
}
