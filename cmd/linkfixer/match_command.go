package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CODERX24/tv/internal/names"
	"github.com/CODERX24/tv/internal/rank"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		choose bool
	)
	cmd := &cobra.Command{
		Use:   "match TITLE",
		Short: "Show ranked feed candidates for a channel title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			terms := names.Normalize(title)
			out := cmd.OutOrStdout()
			if len(terms.Terms) == 0 {
				return fmt.Errorf("title %q has no searchable terms", title)
			}

			streams, err := ctx.newSource().Fetch(cmd.Context())
			if err != nil {
				return err
			}
			ranked := rank.Match(terms, title, streams)
			fmt.Fprintf(out, "terms: %s\n", strings.Join(terms.Terms, ", "))
			if len(ranked) == 0 {
				fmt.Fprintln(out, "no candidates")
				return nil
			}

			shown := ranked
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			rows := make([][]string, 0, len(shown))
			for i, c := range shown {
				rows = append(rows, []string{
					strconv.Itoa(i + 1), c.Tier.String(), strconv.Itoa(c.Score),
					c.Name, c.Country, c.URL, c.MismatchReason,
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]column{right("#"), left("Tier"), right("Score"), left("Name"), left("Country"), left("URL"), left("Mismatch")},
				rows))
			if len(shown) < len(ranked) {
				fmt.Fprintf(out, "%d more not shown\n", len(ranked)-len(shown))
			}

			if !choose {
				return nil
			}
			sel := rank.Selector{Prober: ctx.newProber(), Delay: ctx.config.ProbeDelay}
			if best, ok := sel.Select(cmd.Context(), ranked); ok {
				fmt.Fprintf(out, "selected: %s (%s, score %d)\n", best.URL, best.Tier, best.Score)
			} else {
				fmt.Fprintln(out, "selected: none live")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Rows to show (0 = all)")
	cmd.Flags().BoolVar(&choose, "select", false, "Probe candidates in order and report the first live one")
	return cmd
}
