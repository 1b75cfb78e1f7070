package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/CODERX24/tv/internal/journal"
)

var (
	runColumns = []column{
		left("Run"), left("Started"), right("Took"), left("Dry"),
		right("Checked"), right("Dead"), right("Fixed"), right("Upgraded"), right("Broken"), right("Skipped"),
	}
	changeColumns = []column{left("ID"), left("Title"), left("Kind"), left("Old"), left("New"), left("Reason")}
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit int
		runID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the change journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.config.JournalPath == "" {
				return errors.New("no journal configured (set LINKFIXER_JOURNAL or journal_path)")
			}
			store, err := journal.Open(ctx.config.JournalPath)
			if err != nil {
				return err
			}
			defer store.Close()
			out := cmd.OutOrStdout()

			if runID != "" {
				changes, err := store.Changes(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(changes) == 0 {
					fmt.Fprintf(out, "run %s made no changes\n", runID)
					return nil
				}
				rows := make([][]string, 0, len(changes))
				for _, c := range changes {
					rows = append(rows, []string{c.EntryID, c.Title, c.Kind, c.OldURL, c.NewURL, c.Reason})
				}
				fmt.Fprintln(out, renderTable(out, changeColumns, rows))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				dry := ""
				if r.DryRun {
					dry = "yes"
				}
				rows = append(rows, []string{
					r.ID,
					r.StartedAt.Local().Format(time.DateTime),
					r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
					dry,
					strconv.Itoa(r.Checked), strconv.Itoa(r.Dead), strconv.Itoa(r.Fixed),
					strconv.Itoa(r.Upgraded), strconv.Itoa(r.StillBroken), strconv.Itoa(r.Skipped),
				})
			}
			fmt.Fprintln(out, renderTable(out, runColumns, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the changes made by one run")
	return cmd
}
