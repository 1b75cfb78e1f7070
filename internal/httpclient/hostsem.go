package httpclient

import (
	"context"
	"sync"

	"github.com/CODERX24/tv/internal/safeurl"
)

// HostSemaphore caps concurrent requests per origin (scheme://host) across
// every reconcile worker, so parallel entries whose candidates share a CDN
// do not stack up on the same server.
//
//	release, err := sem.Acquire(ctx, streamURL)
//	if err != nil { ... }
//	defer release()
type HostSemaphore struct {
	mu    sync.Mutex
	sems  map[string]chan struct{}
	limit int
}

func NewHostSemaphore(concurrency int) *HostSemaphore {
	if concurrency < 1 {
		concurrency = 1
	}
	return &HostSemaphore{
		sems:  make(map[string]chan struct{}),
		limit: concurrency,
	}
}

// Acquire blocks until a slot for the origin of rawURL is free or ctx ends.
// A nil semaphore never blocks.
func (h *HostSemaphore) Acquire(ctx context.Context, rawURL string) (func(), error) {
	if h == nil {
		return func() {}, nil
	}
	sem := h.semFor(safeurl.Origin(rawURL))
	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Limit reports the per-origin cap.
func (h *HostSemaphore) Limit() int {
	if h == nil {
		return 0
	}
	return h.limit
}

func (h *HostSemaphore) semFor(origin string) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sems[origin]
	if !ok {
		s = make(chan struct{}, h.limit)
		h.sems[origin] = s
	}
	return s
}
