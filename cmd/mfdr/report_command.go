package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Danondso/mfdr-sub001/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded scan and knit sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := report.Open(ctx.historyPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer history.Close()

			sessions, err := history.RecentSessions(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, session := range sessions {
				finished := "running"
				if session.Finished() {
					finished = session.FinishedAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{
					session.ID,
					session.Kind,
					session.StartedAt.Local().Format(time.DateTime),
					finished,
					strconv.Itoa(session.Totals.Processed),
					strconv.Itoa(session.Totals.Replaced),
					strconv.Itoa(session.Totals.Quarantined),
					strconv.Itoa(session.Totals.Failed),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Session", "Kind", "Started", "Finished", "Processed", "Replaced", "Quarantined", "Failed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum sessions to list")
	cmd.AddCommand(newReportShowCommand(ctx))
	return cmd
}

func newReportShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "List the per-track outcomes of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := report.Open(ctx.historyPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer history.Close()

			items, err := history.SessionItems(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items recorded for that session.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				score := ""
				if item.Score > 0 {
					score = formatScore(item.Score)
				}
				detail := item.CandidatePath
				if detail == "" {
					detail = item.Reason
				}
				rows = append(rows, []string{
					strconv.Itoa(item.TrackID),
					item.Name,
					item.Outcome,
					score,
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Track", "Name", "Outcome", "Score", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}
