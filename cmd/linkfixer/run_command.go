package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/CODERX24/tv/internal/journal"
	"github.com/CODERX24/tv/internal/reconcile"
	"github.com/CODERX24/tv/internal/telemetry"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		interval    time.Duration
		dryRun      bool
		workers     int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the catalog against the feed",
		Long: "Probe every catalog stream, replace dead ones with the best live feed candidate " +
			"and upgrade live ones that the feed clearly beats. Runs once unless --interval is set; " +
			"SIGHUP triggers an immediate pass.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if cmd.Flags().Changed("interval") {
				cfg.Interval = interval
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runReconcile(cmd.Context(), ctx)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Repeat every interval (0 = single pass)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing the catalog")
	cmd.Flags().IntVar(&workers, "workers", 1, "Entries reconciled in parallel")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address")
	return cmd
}

func runReconcile(parent context.Context, cc *commandContext) error {
	cfg := cc.config
	log := cc.log("run")

	shutdownTracing, err := telemetry.Init(parent, "linkfixer", cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, log)
		defer stop()
	}

	job := &reconcile.Job{
		CatalogPath: cfg.CatalogPath,
		Feed:        cc.newSource(),
		Reconciler:  cc.newReconciler(),
		DryRun:      cfg.DryRun,
		Logger:      cc.log("job"),
	}
	if cfg.JournalPath != "" {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		job.Journal = store
	}

	if cfg.Interval <= 0 {
		_, err := job.Run(parent)
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("reconcile loop started", slog.Duration("interval", cfg.Interval))
	for {
		if _, err := job.Run(parent); err != nil && !errors.Is(err, context.Canceled) {
			// Already logged by the job; the loop keeps going.
			log.Debug("pass failed", slog.Any("err", err))
		}
		select {
		case <-parent.Done():
			log.Info("reconcile loop stopped")
			return nil
		case <-ticker.C:
		case <-hup:
			log.Info("SIGHUP received, running now")
		}
	}
}

func serveMetrics(addr string, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", slog.String("addr", addr), slog.Any("err", err))
		}
	}()
	log.Info("metrics listening", slog.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
