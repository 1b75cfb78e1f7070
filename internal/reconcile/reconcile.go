// Package reconcile repairs and upgrades the stream URLs of catalog entries
// against a feed of candidate streams.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/CODERX24/tv/internal/catalog"
	"github.com/CODERX24/tv/internal/feed"
	"github.com/CODERX24/tv/internal/metrics"
	"github.com/CODERX24/tv/internal/names"
	"github.com/CODERX24/tv/internal/probe"
	"github.com/CODERX24/tv/internal/rank"
)

const (
	KindFixed    = "fixed"
	KindUpgraded = "upgraded"
)

// Entry outcomes, also used as the metrics label.
const (
	outcomeLive        = "live"
	outcomeUpgraded    = "upgraded"
	outcomeFixed       = "fixed"
	outcomeStillBroken = "still_broken"
	outcomeSkipped     = "skipped"
)

var tracer = otel.Tracer("github.com/CODERX24/tv/internal/reconcile")

type Change struct {
	EntryID string
	Title   string
	OldURL  string
	NewURL  string
	Kind    string
	Reason  string
}

type Summary struct {
	Checked     int
	Dead        int
	Fixed       int
	Upgraded    int
	StillBroken int
	Skipped     int
	Changes     []Change
}

// Reconciler checks entries one by one. The zero value probes serially
// with no delay; set Prober before use.
type Reconciler struct {
	Prober     rank.Prober
	ProbeDelay time.Duration
	Workers    int
	Logger     *slog.Logger
}

type outcome struct {
	done    bool
	entry   catalog.Entry
	result  string
	checked bool
	dead    bool
	change  *Change
}

// Reconcile returns a copy of entries with dead URLs replaced by live
// candidates and live URLs upgraded where a clearly better stream is live.
// Entries not reached before ctx ends are returned unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, entries []catalog.Entry, streams []feed.Stream) ([]catalog.Entry, Summary) {
	out := make([]catalog.Entry, len(entries))
	copy(out, entries)
	slots := make([]outcome, len(entries))

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			slots[i] = r.entry(ctx, entries[i], streams)
			return nil
		})
	}
	_ = g.Wait()

	var sum Summary
	for i, o := range slots {
		if !o.done {
			continue
		}
		out[i] = o.entry
		metrics.EntriesTotal.WithLabelValues(o.result).Inc()
		if o.result == outcomeSkipped {
			sum.Skipped++
			continue
		}
		if o.checked {
			sum.Checked++
		}
		if o.dead {
			sum.Dead++
		}
		switch o.result {
		case outcomeFixed:
			sum.Fixed++
		case outcomeUpgraded:
			sum.Upgraded++
		case outcomeStillBroken:
			sum.StillBroken++
		}
		if o.change != nil {
			sum.Changes = append(sum.Changes, *o.change)
		}
	}
	return out, sum
}

func (r *Reconciler) entry(ctx context.Context, e catalog.Entry, streams []feed.Stream) outcome {
	ctx, span := tracer.Start(ctx, "reconcile.entry", trace.WithAttributes(
		attribute.String("entry.id", e.ID),
		attribute.String("entry.title", e.Title),
	))
	defer span.End()

	o := r.process(ctx, e, streams)
	span.SetAttributes(attribute.String("entry.outcome", o.result))
	return o
}

func (r *Reconciler) process(ctx context.Context, e catalog.Entry, streams []feed.Stream) outcome {
	o := outcome{done: true, entry: e}
	if e.URL == "" {
		o.result = outcomeSkipped
		return o
	}
	o.checked = true
	log := r.logger().With(slog.String("id", e.ID), slog.String("title", e.Title))

	current := r.probe(ctx, e.URL)
	if current.Live {
		o.result = outcomeLive
		prop, ok := rank.Evaluate(e.URL, e.Country, e.Title, streams)
		if !ok {
			return o
		}
		if !r.pause(ctx) {
			return o
		}
		res := r.probe(ctx, prop.URL)
		if !res.Live {
			log.Debug("upgrade candidate not live", slog.String("url", prop.URL), slog.String("reason", string(res.Reason)))
			return o
		}
		o.result = outcomeUpgraded
		o.entry.URL = prop.URL
		o.change = &Change{EntryID: e.ID, Title: e.Title, OldURL: e.URL, NewURL: prop.URL, Kind: KindUpgraded, Reason: prop.Reason}
		log.Info("upgraded stream", slog.String("old", e.URL), slog.String("new", prop.URL), slog.Int("score", prop.Score), slog.Int("current_score", prop.CurrentScore))
		return o
	}

	o.dead = true
	log.Info("stream dead", slog.String("url", e.URL), slog.String("reason", string(current.Reason)))
	ranked := rank.Without(rank.Match(names.Normalize(e.Title), e.Title, streams), e.URL)
	if len(ranked) == 0 || !r.pause(ctx) {
		o.result = outcomeStillBroken
		log.Warn("no replacement found", slog.Int("candidates", len(ranked)))
		return o
	}
	sel := rank.Selector{
		Prober: probeFunc(r.probe),
		Delay:  r.ProbeDelay,
		OnProbe: func(c rank.Candidate, res probe.Result) {
			log.Debug("candidate probed", slog.String("url", c.URL), slog.String("tier", c.Tier.String()), slog.Int("score", c.Score), slog.String("reason", string(res.Reason)))
		},
	}
	best, ok := sel.Select(ctx, ranked)
	if !ok {
		o.result = outcomeStillBroken
		log.Warn("no replacement found", slog.Int("candidates", len(ranked)))
		return o
	}
	o.result = outcomeFixed
	o.entry.URL = best.URL
	o.change = &Change{
		EntryID: e.ID, Title: e.Title, OldURL: e.URL, NewURL: best.URL, Kind: KindFixed,
		Reason: fmt.Sprintf("%s match on %q, score %d", best.Tier, best.Term, best.Score),
	}
	log.Info("fixed stream", slog.String("old", e.URL), slog.String("new", best.URL), slog.String("tier", best.Tier.String()), slog.Int("score", best.Score))
	return o
}

// probe runs one liveness check and records it.
func (r *Reconciler) probe(ctx context.Context, url string) probe.Result {
	start := time.Now()
	res := r.Prober.Probe(ctx, url)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	metrics.ProbesTotal.WithLabelValues(string(res.Reason)).Inc()
	return res
}

// pause waits ProbeDelay and reports false if ctx ended first.
func (r *Reconciler) pause(ctx context.Context) bool {
	if r.ProbeDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(r.ProbeDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

type probeFunc func(ctx context.Context, url string) probe.Result

func (f probeFunc) Probe(ctx context.Context, url string) probe.Result { return f(ctx, url) }
