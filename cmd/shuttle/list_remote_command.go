package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shuttle/internal/remote"
)

func newListRemoteCommand(ctx *commandContext) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "list-remote",
		Short: "List the filtered contents of every remote root",
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

			client := remote.NewSFTPClient(cfg, logger)
			if err := client.Connect(cmd.Context()); err != nil {
				return err
			}
			defer client.Disconnect()

			var entries []remote.Entry
			for _, root := range cfg.SFTP.RemotePaths {
				list := client.ListDir
				if recursive {
					list = client.ListDirRecursive
				}
				rootEntries, err := list(cmd.Context(), root)
				if err != nil {
					return err
				}
				entries = append(entries, rootEntries...)
			}

			printRemoteEntries(cmd, entries)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into remote directories")
	return cmd
}

func printRemoteEntries(cmd *cobra.Command, entries []remote.Entry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No remote entries")
		return
	}

	if !stdoutIsTerminal() {
		for _, entry := range entries {
			fmt.Fprintf(out, "%s\t%d\t%s\t%s\n",
				entry.Path, entry.Size, entry.ModifiedTime.Format("2006-01-02 15:04:05"), entryKind(entry))
		}
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Path,
			strconv.FormatInt(entry.Size, 10),
			entry.ModifiedTime.Format("2006-01-02 15:04:05"),
			entryKind(entry),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Path", "Size", "Modified", "Type"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%d entries\n", len(entries))
}

func entryKind(entry remote.Entry) string {
	if entry.IsDir {
		return "dir"
	}
	return "file"
}
