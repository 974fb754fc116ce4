package main

import (
	"github.com/spf13/cobra"

	"shuttle/internal/parser"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var rulesOnly bool

	cmd := &cobra.Command{
		Use:   "parse <filename>",
		Short: "Extract show metadata from a filename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var provider parser.Provider
			if !rulesOnly {
				provider, _, err = ctx.parsingServices()
				if err != nil {
					return err
				}
			}

			result := parser.Parse(cmd.Context(), args[0], provider, cfg.LLM.ConfidenceThreshold)
			return writeJSON(cmd, parseOutput{
				Filename:   args[0],
				ShowName:   result.ShowName,
				Season:     result.Season,
				Episode:    result.Episode,
				HashTag:    result.HashTag,
				Confidence: result.Confidence,
				Reasoning:  result.Reasoning,
			})
		},
	}

	cmd.Flags().BoolVar(&rulesOnly, "rules-only", false, "Skip the model parser even when enabled")
	return cmd
}

type parseOutput struct {
	Filename   string  `json:"filename"`
	ShowName   string  `json:"show_name"`
	Season     *int    `json:"season"`
	Episode    *int    `json:"episode"`
	HashTag    string  `json:"hash_tag,omitempty"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}
