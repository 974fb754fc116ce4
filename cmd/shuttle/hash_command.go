package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/hashing"
)

func newHashCommand() *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:         "hash <file>...",
		Short:       "Compute streaming content hashes for local files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			algo, ok := hashing.ParseAlgorithm(algorithm)
			if !ok {
				return fmt.Errorf("unsupported hash algorithm %q (use crc32, md5, or sha1)", algorithm)
			}

			for _, path := range args {
				digest, err := hashing.HashFile(path, algo, hashing.DefaultChunkSize)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", digest, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "crc32", "Hash algorithm: crc32, md5, or sha1")
	return cmd
}
