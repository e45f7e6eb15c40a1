package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"flipfetch/internal/textutil"
)

func newInfoCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <share-url>",
		Short: "Show book metadata and page count without downloading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, _, err := cmdCtx.newLogger(newRunID())
			if err != nil {
				return err
			}

			decoder, cleanup, err := newDecodeService(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			b, err := newBookLoader(cfg, decoder, logger).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			source := "plain"
			if b.Encrypted {
				source = "encrypted"
			}
			rows := [][]string{
				{"Title", b.Title},
				{"Book", b.ID},
				{"URL", b.BaseURL},
				{"Pages", strconv.Itoa(len(b.Pages))},
				{"Source", source},
			}
			if desc := textutil.CleanDescription(b.Description, 120); desc != "" {
				rows = append(rows, []string{"Description", desc})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
