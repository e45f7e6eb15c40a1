package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"flipfetch/internal/ledger"
	"flipfetch/internal/textutil"
)

func newHistoryCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return fmt.Errorf("ledger is disabled in the configuration")
			}
			store, err := ledger.Open(cfg.Ledger.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No download sessions recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, session := range sessions {
				status := "interrupted"
				switch {
				case !session.Finished():
					// keep interrupted
				case session.Failed > 0:
					status = "failed"
				default:
					status = "ok"
				}
				rows = append(rows, []string{
					strconv.FormatInt(session.ID, 10),
					session.StartedAt.Local().Format(time.DateTime),
					textutil.ShortLabel(session.Title, 32),
					session.BookID,
					strconv.Itoa(session.PageCount),
					fmt.Sprintf("%d/%d/%d", session.OK, session.Skipped, session.Failed),
					status,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Title", "Book", "Pages", "OK/Skip/Fail", "Status"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sessions to list")
	return cmd
}
