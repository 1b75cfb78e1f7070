// Command linkfixer checks the stream URLs of a channel catalog, replaces dead
// ones with live streams from a feed, and upgrades live ones when the feed has
// a clearly better stream.
//
//	run      Reconcile the catalog once, or every --interval
//	probe    Probe stream URLs and print the result
//	match    Show the ranked feed candidates for a channel title
//	check    Preflight the feed and catalog
//	history  List recent runs from the change journal
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/CODERX24/tv/internal/metrics"
)

func main() {
	metrics.Register(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
