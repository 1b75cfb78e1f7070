// Package probe decides whether a stream URL is live: the playlist must be a
// real HLS manifest and its first reference must deliver media bytes.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CODERX24/tv/internal/httpclient"
	"github.com/CODERX24/tv/internal/safeurl"
)

const (
	DefaultTimeout = 10 * time.Second

	playlistMarker   = "#EXTM3U"
	maxPlaylistBytes = 2 << 20
	maxLineSize      = 1 << 20
	chunkSize        = 4096
)

// Reason says why a probe ended the way it did.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonBadScheme     Reason = "bad_scheme"
	ReasonTimeout       Reason = "timeout"
	ReasonError         Reason = "error"
	ReasonBadStatus     Reason = "bad_status"
	ReasonCloudflare    Reason = "cloudflare"
	ReasonNoMarker      Reason = "no_marker"
	ReasonNoReference   Reason = "no_reference"
	ReasonSegmentStatus Reason = "segment_bad_status"
	ReasonSegmentEmpty  Reason = "segment_empty"
)

// Result is the outcome of probing one URL. Failures are values, never errors.
type Result struct {
	URL        string
	Live       bool
	Reason     Reason
	StatusCode int
	Segment    string // resolved first reference, when one was found
	LatencyMs  int64
}

// Prober runs two-stage liveness checks. The zero value is usable.
type Prober struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	// Hosts, when set, bounds concurrent requests per origin.
	Hosts *httpclient.HostSemaphore
}

// New returns a Prober with its own traced client.
func New(timeout time.Duration, userAgent string, hosts *httpclient.HostSemaphore) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		Client:    httpclient.WithTimeout(timeout),
		Timeout:   timeout,
		UserAgent: userAgent,
		Hosts:     hosts,
	}
}

// Probe fetches the playlist, finds its first reference and reads one chunk of it.
// There is no retry; every failure is reported as a dead Result.
func (p *Prober) Probe(ctx context.Context, streamURL string) Result {
	start := time.Now()
	res := p.probe(ctx, strings.TrimSpace(streamURL))
	res.URL = streamURL
	res.Live = res.Reason == ReasonOK
	res.LatencyMs = time.Since(start).Milliseconds()
	return res
}

func (p *Prober) probe(ctx context.Context, streamURL string) Result {
	if !safeurl.IsHTTPOrHTTPS(streamURL) {
		return Result{Reason: ReasonBadScheme}
	}

	body, code, reason := p.fetchPlaylist(ctx, streamURL)
	if reason != ReasonOK {
		return Result{Reason: reason, StatusCode: code}
	}
	if !bytes.Contains(body, []byte(playlistMarker)) {
		return Result{Reason: ReasonNoMarker, StatusCode: code}
	}
	ref := firstReference(body)
	if ref == "" {
		return Result{Reason: ReasonNoReference, StatusCode: code}
	}
	segment, err := safeurl.Resolve(streamURL, ref)
	if err != nil {
		return Result{Reason: ReasonNoReference, StatusCode: code}
	}
	segCode, reason := p.readChunk(ctx, segment)
	return Result{Reason: reason, StatusCode: segCode, Segment: segment}
}

func (p *Prober) fetchPlaylist(ctx context.Context, streamURL string) ([]byte, int, Reason) {
	resp, done, reason := p.get(ctx, streamURL)
	if reason != ReasonOK {
		return nil, 0, reason
	}
	defer done()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, classifyStatus(resp)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes))
	if err != nil {
		return nil, resp.StatusCode, classifyErr(err)
	}
	return body, resp.StatusCode, ReasonOK
}

func (p *Prober) readChunk(ctx context.Context, segment string) (int, Reason) {
	resp, done, reason := p.get(ctx, segment)
	if reason != ReasonOK {
		return 0, reason
	}
	defer done()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, ReasonSegmentStatus
	}
	buf := make([]byte, chunkSize)
	n, err := io.ReadAtLeast(resp.Body, buf, 1)
	if n > 0 {
		return resp.StatusCode, ReasonOK
	}
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		if r := classifyErr(err); r == ReasonTimeout {
			return resp.StatusCode, r
		}
	}
	return resp.StatusCode, ReasonSegmentEmpty
}

// get issues a bounded GET. On success the caller must call done, which
// closes the body and frees the host slot.
func (p *Prober) get(ctx context.Context, rawURL string) (*http.Response, func(), Reason) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	release, err := p.Hosts.Acquire(ctx, rawURL)
	if err != nil {
		cancel()
		return nil, nil, classifyErr(err)
	}
	fail := func(r Reason) (*http.Response, func(), Reason) {
		release()
		cancel()
		return nil, nil, r
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(ReasonError)
	}
	ua := p.UserAgent
	if ua == "" {
		ua = httpclient.DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	client := p.Client
	if client == nil {
		client = httpclient.WithTimeout(timeout)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fail(classifyErr(err))
	}
	done := func() {
		resp.Body.Close()
		release()
		cancel()
	}
	return resp, done, ReasonOK
}

// firstReference returns the first line that is neither blank nor a # tag.
func firstReference(body []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(nil, maxLineSize)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}

func classifyErr(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonError
}

// classifyStatus separates Cloudflare challenges from ordinary bad statuses.
// Only the Server header or a known challenge page counts.
func classifyStatus(resp *http.Response) Reason {
	if strings.EqualFold(strings.TrimSpace(resp.Header.Get("Server")), "cloudflare") {
		return ReasonCloudflare
	}
	switch resp.StatusCode {
	case 403, 503, 520, 521, 524:
		preview := make([]byte, 512)
		n, _ := io.ReadFull(resp.Body, preview)
		s := strings.ToLower(string(preview[:n]))
		if strings.Contains(s, "checking your browser") || strings.Contains(s, "cf-bypass") || strings.Contains(s, "ray id") {
			return ReasonCloudflare
		}
	}
	return ReasonBadStatus
}
