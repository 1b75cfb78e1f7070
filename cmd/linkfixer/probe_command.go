package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe URL...",
		Short: "Check whether stream URLs are live",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ctx.newProber()
			rows := make([][]string, 0, len(args))
			dead := 0
			for _, u := range args {
				res := p.Probe(cmd.Context(), u)
				live := "yes"
				if !res.Live {
					live = "no"
					dead++
				}
				status := ""
				if res.StatusCode > 0 {
					status = strconv.Itoa(res.StatusCode)
				}
				rows = append(rows, []string{u, live, string(res.Reason), status, fmt.Sprintf("%dms", res.LatencyMs)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]column{left("URL"), left("Live"), left("Reason"), right("Status"), right("Latency")},
				rows))
			fmt.Fprintf(out, "%d of %d live\n", len(args)-dead, len(args))
			return nil
		},
	}
}
