package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkfixer"

var (
	ProbesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "probes_total",
		Help:      "Liveness probes by result reason.",
	}, []string{"reason"})

	ProbeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "probe_duration_seconds",
		Help:      "Liveness probe duration in seconds, playlist and segment together.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	})

	EntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_total",
		Help:      "Catalog entries processed by outcome (live, upgraded, fixed, still_broken, skipped).",
	}, []string{"outcome"})

	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Reconcile runs by status (ok, aborted).",
	}, []string{"status"})

	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last reconcile run finished.",
	})

	FeedStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_streams",
		Help:      "Candidate streams in the most recent feed.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ProbesTotal,
		ProbeDuration,
		EntriesTotal,
		RunsTotal,
		LastRunTimestamp,
		FeedStreams,
	)
}
