package httpclient

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy controls when DoWithRetry repeats a request.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first (minimum 1).
	Attempts int
	// Retry429 waits Retry-After (capped at Max429Wait) on 429 Too Many Requests.
	Retry429   bool
	Max429Wait time.Duration
	// Retry5xx waits Backoff5xx on any 5xx.
	Retry5xx   bool
	Backoff5xx time.Duration
}

// DefaultRetryPolicy retries once on 429 (cap 60s) and 5xx (1s backoff).
// It is used for the catalog feed only; liveness probes never retry.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:   2,
	Retry429:   true,
	Max429Wait: 60 * time.Second,
	Retry5xx:   true,
	Backoff5xx: 1 * time.Second,
}

// DoWithRetry performs req and repeats it on 429/5xx while the policy allows.
// Other 4xx are returned as-is. Requests with a body are never repeated.
// Caller must close resp.Body when err == nil.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	if client == nil {
		client = Default()
	}
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	if req.Body != nil && req.Body != http.NoBody {
		attempts = 1
	}
	for try := 1; ; try++ {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if try >= attempts {
			return resp, nil
		}
		wait, retry := retryDelay(resp, policy)
		if !retry {
			return resp, nil
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		req = req.Clone(ctx)
	}
}

func retryDelay(resp *http.Response, policy RetryPolicy) (time.Duration, bool) {
	code := resp.StatusCode
	switch {
	case code == http.StatusTooManyRequests && policy.Retry429:
		return parseRetryAfter(resp.Header.Get("Retry-After"), policy.Max429Wait), true
	case code >= 500 && policy.Retry5xx:
		return policy.Backoff5xx, true
	}
	return 0, false
}

// parseRetryAfter parses Retry-After (seconds or HTTP-date); returns duration capped at max.
func parseRetryAfter(s string, max time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1 * time.Second
	}
	if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
		return capDuration(time.Duration(sec)*time.Second, max)
	}
	t, err := http.ParseTime(s)
	if err != nil {
		return 1 * time.Second
	}
	until := time.Until(t)
	if until <= 0 {
		return 0
	}
	return capDuration(until, max)
}

func capDuration(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}
