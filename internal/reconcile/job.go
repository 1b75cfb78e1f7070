package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/CODERX24/tv/internal/catalog"
	"github.com/CODERX24/tv/internal/feed"
	"github.com/CODERX24/tv/internal/journal"
	"github.com/CODERX24/tv/internal/metrics"
)

var (
	// ErrFeedUnavailable means the feed could not be fetched or was empty.
	// The catalog is left untouched.
	ErrFeedUnavailable = errors.New("reconcile: feed unavailable")
	// ErrLocked means another run holds the catalog lock.
	ErrLocked = errors.New("reconcile: catalog locked by another run")
)

// Source supplies candidate streams.
type Source interface {
	Fetch(ctx context.Context) ([]feed.Stream, error)
}

// Recorder persists a finished run.
type Recorder interface {
	RecordRun(ctx context.Context, run journal.Run) error
}

// Job is one reconcile pass over a catalog file.
type Job struct {
	CatalogPath string
	Feed        Source
	Reconciler  *Reconciler
	Journal     Recorder // optional
	DryRun      bool
	Logger      *slog.Logger
	Now         func() time.Time
}

type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Streams    int
	Summary    Summary
	Saved      bool
}

func (j *Job) Run(ctx context.Context) (rep Report, err error) {
	log := j.logger()
	rep.RunID = uuid.NewString()
	rep.StartedAt = j.now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "aborted"
			log.Error("run aborted", slog.String("run_id", rep.RunID), slog.Any("err", err))
		}
		metrics.RunsTotal.WithLabelValues(status).Inc()
	}()

	lock := flock.New(j.CatalogPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return rep, fmt.Errorf("reconcile lock: %w", err)
	}
	if !locked {
		return rep, ErrLocked
	}
	defer lock.Unlock()

	doc, err := catalog.Load(j.CatalogPath)
	if err != nil {
		return rep, err
	}

	streams, err := j.Feed.Fetch(ctx)
	if err != nil {
		return rep, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	if len(streams) == 0 {
		return rep, ErrFeedUnavailable
	}
	rep.Streams = len(streams)
	metrics.FeedStreams.Set(float64(len(streams)))

	updated, sum := j.Reconciler.Reconcile(ctx, doc.Entries(), streams)
	rep.Summary = sum

	if len(sum.Changes) > 0 && !j.DryRun {
		if doc.Apply(updated) > 0 {
			if err := doc.Save(j.CatalogPath, j.now()); err != nil {
				return rep, err
			}
			rep.Saved = true
		}
	}
	rep.FinishedAt = j.now()
	metrics.LastRunTimestamp.Set(float64(rep.FinishedAt.Unix()))

	if j.Journal != nil {
		if err := j.Journal.RecordRun(ctx, journalRun(rep, j.DryRun)); err != nil {
			log.Warn("journal write failed", slog.String("run_id", rep.RunID), slog.Any("err", err))
		}
	}

	log.Info("run finished",
		slog.String("run_id", rep.RunID),
		slog.Int("streams", rep.Streams),
		slog.Int("checked", sum.Checked),
		slog.Int("dead", sum.Dead),
		slog.Int("fixed", sum.Fixed),
		slog.Int("upgraded", sum.Upgraded),
		slog.Int("still_broken", sum.StillBroken),
		slog.Int("skipped", sum.Skipped),
		slog.Bool("saved", rep.Saved),
		slog.Bool("dry_run", j.DryRun),
		slog.Duration("elapsed", rep.FinishedAt.Sub(rep.StartedAt)),
	)
	return rep, nil
}

func journalRun(rep Report, dryRun bool) journal.Run {
	run := journal.Run{
		ID:          rep.RunID,
		StartedAt:   rep.StartedAt,
		FinishedAt:  rep.FinishedAt,
		DryRun:      dryRun,
		Checked:     rep.Summary.Checked,
		Dead:        rep.Summary.Dead,
		Fixed:       rep.Summary.Fixed,
		Upgraded:    rep.Summary.Upgraded,
		StillBroken: rep.Summary.StillBroken,
		Skipped:     rep.Summary.Skipped,
	}
	for _, c := range rep.Summary.Changes {
		run.Changes = append(run.Changes, journal.Change(c))
	}
	return run
}

func (j *Job) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *Job) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
