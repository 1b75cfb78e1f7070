// Package feed loads the external stream directory that replacement
// candidates are drawn from. The default source is the iptv-org
// streams.json API; M3U playlists and local files are also accepted.
package feed

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/CODERX24/tv/internal/httpclient"
	"github.com/CODERX24/tv/internal/safeurl"
)

const (
	DefaultURL     = "https://iptv-org.github.io/api/streams.json"
	DefaultTimeout = 30 * time.Second

	maxFeedBytes = 256 << 20
)

// ErrEmptyFeed is returned when a source decodes to zero streams.
var ErrEmptyFeed = errors.New("feed: no streams")

// Stream is one candidate from the directory.
type Stream struct {
	Channel   string `json:"channel,omitempty"` // iptv-org channel id, e.g. "cnn.us"
	Feed      string `json:"feed,omitempty"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url"`
	Country   string `json:"country,omitempty"`
	Quality   string `json:"quality,omitempty"` // e.g. "1080p"
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Status    string `json:"status,omitempty"` // directory health flag: "online", "offline", "error", "timeout"
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Resolution returns explicit width/height, or a height derived from Quality.
func (s Stream) Resolution() (width, height int) {
	if s.Width > 0 || s.Height > 0 {
		return s.Width, s.Height
	}
	q := strings.ToLower(strings.TrimSpace(s.Quality))
	q = strings.TrimRight(q, "pi")
	if h, err := strconv.Atoi(q); err == nil && h > 0 {
		return 0, h
	}
	return 0, 0
}

// ReportedDown reports whether the directory last saw the stream failing.
// It is only a hint; liveness is always decided by probing.
func (s Stream) ReportedDown() bool {
	switch strings.ToLower(strings.TrimSpace(s.Status)) {
	case "offline", "error", "timeout":
		return true
	}
	return false
}

// CountryCode returns Country, or the upper-cased suffix of the iptv-org
// channel id ("cnn.us" -> "US").
func (s Stream) CountryCode() string {
	if c := strings.TrimSpace(s.Country); c != "" {
		return c
	}
	if i := strings.LastIndex(s.Channel, "."); i >= 0 && i < len(s.Channel)-1 {
		return strings.ToUpper(s.Channel[i+1:])
	}
	return ""
}

// Fetcher loads streams from Source, an http(s) URL or a local file path.
type Fetcher struct {
	Source    string
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// Fetch downloads and decodes the directory. An empty result is ErrEmptyFeed.
func (f *Fetcher) Fetch(ctx context.Context) ([]Stream, error) {
	source := strings.TrimSpace(f.Source)
	if source == "" {
		source = DefaultURL
	}
	var (
		body []byte
		err  error
	)
	if safeurl.IsHTTPOrHTTPS(source) {
		body, err = f.download(ctx, source)
	} else {
		body, err = os.ReadFile(filepath.Clean(source))
		if err != nil {
			err = fmt.Errorf("feed read %s: %w", source, err)
		}
	}
	if err != nil {
		return nil, err
	}
	streams, err := Decode(body)
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, ErrEmptyFeed
	}
	f.logger().Info("feed loaded", slog.String("source", source), slog.Int("streams", len(streams)))
	return streams, nil
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func (f *Fetcher) download(ctx context.Context, source string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	ua := f.UserAgent
	if ua == "" {
		ua = httpclient.DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept-Encoding", "br, gzip")
	resp, err := httpclient.DoWithRetry(ctx, f.Client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed fetch: HTTP %d", resp.StatusCode)
	}
	r, err := decodeBody(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(r, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("feed fetch: read: %w", err)
	}
	return body, nil
}

func decodeBody(body io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "br":
		return brotli.NewReader(body), nil
	case "gzip", "x-gzip":
		return gzip.NewReader(body)
	default:
		return nil, fmt.Errorf("unsupported content-encoding %q", encoding)
	}
}

// Decode parses a JSON stream array or an M3U playlist.
func Decode(body []byte) ([]Stream, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, nil
	}
	if bytes.HasPrefix(trimmed, []byte("#EXTM3U")) || bytes.HasPrefix(trimmed, []byte("#EXTINF")) {
		return parseM3U(bytes.NewReader(trimmed))
	}
	var streams []Stream
	if err := json.Unmarshal(trimmed, &streams); err != nil {
		return nil, fmt.Errorf("feed decode: %w", err)
	}
	out := streams[:0]
	for _, s := range streams {
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
