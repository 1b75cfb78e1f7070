package rank

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/CODERX24/tv/internal/probe"
)

// DefaultProbeDelay is the pause between consecutive probes for one channel.
const DefaultProbeDelay = 500 * time.Millisecond

// Prober checks one URL for liveness.
type Prober interface {
	Probe(ctx context.Context, url string) probe.Result
}

// Selector probes ranked candidates one at a time, in order, and stops at the
// first live one.
type Selector struct {
	Prober Prober
	// Delay between probes; the first probe is not delayed.
	Delay time.Duration
	// OnProbe, if set, sees every probe result.
	OnProbe func(Candidate, probe.Result)
}

// Select returns the first live candidate, or false when none is live or ctx ends.
func (s *Selector) Select(ctx context.Context, ranked []Candidate) (Candidate, bool) {
	limit := rate.Inf
	if s.Delay > 0 {
		limit = rate.Every(s.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)
	for _, c := range ranked {
		if err := limiter.Wait(ctx); err != nil {
			return Candidate{}, false
		}
		res := s.Prober.Probe(ctx, c.URL)
		if s.OnProbe != nil {
			s.OnProbe(c, res)
		}
		if res.Live {
			return c, true
		}
	}
	return Candidate{}, false
}
