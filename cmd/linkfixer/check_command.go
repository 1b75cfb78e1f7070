package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CODERX24/tv/internal/catalog"
	"github.com/CODERX24/tv/internal/health"
	"github.com/CODERX24/tv/internal/httpclient"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the feed is reachable and the catalog loads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			out := cmd.OutOrStdout()
			var failed []error

			client := httpclient.WithTimeout(cfg.FeedTimeout)
			if err := health.CheckFeed(cmd.Context(), client, cfg.FeedURL); err != nil {
				fmt.Fprintf(out, "feed     FAIL  %s: %v\n", cfg.FeedURL, err)
				failed = append(failed, err)
			} else {
				fmt.Fprintf(out, "feed     ok    %s\n", cfg.FeedURL)
			}

			n, err := health.CheckCatalog(cfg.CatalogPath)
			switch {
			case errors.Is(err, catalog.ErrNotFound):
				fmt.Fprintf(out, "catalog  FAIL  %s: file not found\n", cfg.CatalogPath)
				failed = append(failed, err)
			case errors.Is(err, catalog.ErrCorrupt):
				fmt.Fprintf(out, "catalog  FAIL  %s: %v\n", cfg.CatalogPath, err)
				failed = append(failed, err)
			case err != nil:
				fmt.Fprintf(out, "catalog  FAIL  %s: %v\n", cfg.CatalogPath, err)
				failed = append(failed, err)
			default:
				fmt.Fprintf(out, "catalog  ok    %s (%d entries)\n", cfg.CatalogPath, n)
			}

			if len(failed) > 0 {
				return fmt.Errorf("check failed: %w", errors.Join(failed...))
			}
			return nil
		},
	}
}
