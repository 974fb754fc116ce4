package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shuttle/internal/catalog"
	"shuttle/internal/services/tmdb"
	"shuttle/internal/shows"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Manage tracked shows",
	}

	showCmd.AddCommand(newShowAddCommand(ctx))
	showCmd.AddCommand(newShowListCommand(ctx))
	showCmd.AddCommand(newShowRefreshCommand(ctx))

	return showCmd
}

func newShowAddCommand(ctx *commandContext) *cobra.Command {
	var aliases []string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Track a show and fetch its episode catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, store, err := showManager(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			show, err := manager.Add(cmd.Context(), args[0], aliases)
			if err != nil {
				return err
			}

			episodes, err := store.EpisodeCount(cmd.Context(), show.TMDBID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added %s (tmdb %d)\n", show.SysName, show.TMDBID)
			fmt.Fprintf(out, "Library path: %s\n", show.SysPath)
			fmt.Fprintf(out, "Episodes cataloged: %d\n", episodes)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&aliases, "alias", nil, "Alternate names the show may appear under (repeatable)")
	return cmd
}

func newShowListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked shows",
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

			tracked, err := store.ListShows(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tracked) == 0 {
				fmt.Fprintln(out, "No shows tracked")
				return nil
			}

			rows := make([][]string, 0, len(tracked))
			for _, show := range tracked {
				episodes, err := store.EpisodeCount(cmd.Context(), show.TMDBID)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					show.SysName,
					strconv.FormatInt(show.TMDBID, 10),
					strconv.Itoa(episodes),
					strings.Join(show.Aliases, ", "),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Show", "TMDB ID", "Episodes", "Aliases"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newShowRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <tmdb-id>",
		Short: "Re-fetch a tracked show's episode catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmdbID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tmdb id %q", args[0])
			}

			manager, store, err := showManager(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := manager.RefreshEpisodes(cmd.Context(), tmdbID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %d episodes\n", count)
			return nil
		},
	}
}

func showManager(ctx *commandContext) (*shows.Manager, *catalog.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	searcher, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, nil, err
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	return shows.New(cfg, store, searcher, logger), store, nil
}
