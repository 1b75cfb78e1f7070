// Package iptvorg loads the iptv-org channel directory
// (https://iptv-org.github.io/api/channels.json) and uses it to fill in the
// display name and country of feed streams that only carry a channel id.
//
// Streams are matched to directory channels in this order:
//
//  1. The stream's channel id ("cnn.us").
//  2. The stream name, normalised, against channel names and alt_names.
//  3. The stream name after stripping a country/sub-provider prefix
//     ("US: ", "SLING: ") and quality markers (HD, 4K, RAW).
//
// Name lookups only count when exactly one channel matches.
package iptvorg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CODERX24/tv/internal/feed"
	"github.com/CODERX24/tv/internal/httpclient"
	"github.com/CODERX24/tv/internal/safeurl"
)

const DefaultChannelsURL = "https://iptv-org.github.io/api/channels.json"

// Channel is one record from channels.json.
type Channel struct {
	ID       string   `json:"id"`        // e.g. "cnn.us"
	Name     string   `json:"name"`      // e.g. "CNN"
	AltNames []string `json:"alt_names"` // alternative display names
	Country  string   `json:"country"`   // ISO 3166-1 alpha-2, e.g. "US"
	IsNSFW   bool     `json:"is_nsfw"`
	Closed   string   `json:"closed"` // date the channel shut down, if any
}

// DB is the channel directory with lookup indices.
type DB struct {
	Channels []Channel

	byID       map[string]int
	byNormName map[string][]int
}

// NewDB indexes channels.
func NewDB(channels []Channel) *DB {
	db := &DB{Channels: channels}
	db.buildIndices()
	return db
}

// Len returns the number of channels in the DB.
func (db *DB) Len() int { return len(db.Channels) }

// Load reads channels.json from an http(s) URL or a local path.
func Load(ctx context.Context, client *http.Client, source string) (*DB, error) {
	if source == "" {
		source = DefaultChannelsURL
	}
	var (
		body []byte
		err  error
	)
	if safeurl.IsHTTPOrHTTPS(source) {
		body, err = download(ctx, client, source)
	} else {
		body, err = os.ReadFile(filepath.Clean(source))
	}
	if err != nil {
		return nil, fmt.Errorf("iptv-org channels %s: %w", source, err)
	}
	var channels []Channel
	if err := json.Unmarshal(body, &channels); err != nil {
		return nil, fmt.Errorf("iptv-org channels parse: %w", err)
	}
	return NewDB(channels), nil
}

func download(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if client == nil {
		client = httpclient.Default()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", httpclient.DefaultUserAgent)
	resp, err := httpclient.DoWithRetry(ctx, client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Lookup returns the channel for a stream: by channel id first, then by a
// unique name match. Closed channels are still returned.
func (db *DB) Lookup(channelID, name string) (Channel, bool) {
	if i, ok := db.byID[strings.ToLower(strings.TrimSpace(channelID))]; ok {
		return db.Channels[i], true
	}
	if name == "" {
		return Channel{}, false
	}
	if ids := db.byNormName[normName(name)]; len(ids) == 1 {
		return db.Channels[ids[0]], true
	}
	if s := stripForMatch(name); s != "" {
		if ids := db.byNormName[s]; len(ids) == 1 {
			return db.Channels[ids[0]], true
		}
	}
	return Channel{}, false
}

// Enrich fills empty Name, Country and Channel fields of streams in place
// and returns how many streams changed.
func (db *DB) Enrich(streams []feed.Stream) int {
	changed := 0
	for i := range streams {
		s := &streams[i]
		if s.Name != "" && s.Country != "" && s.Channel != "" {
			continue
		}
		ch, ok := db.Lookup(s.Channel, firstNonEmpty(s.Name, s.Title))
		if !ok {
			continue
		}
		before := *s
		if s.Name == "" {
			s.Name = ch.Name
		}
		if s.Country == "" {
			s.Country = ch.Country
		}
		if s.Channel == "" {
			s.Channel = ch.ID
		}
		if *s != before {
			changed++
		}
	}
	return changed
}

// Source wraps a stream source and enriches every fetched feed from the
// channel directory. A directory that fails to load is logged and skipped.
type Source struct {
	Feed interface {
		Fetch(ctx context.Context) ([]feed.Stream, error)
	}
	Channels string // channels.json URL or path
	Client   *http.Client
	Logger   *slog.Logger
}

func (s *Source) Fetch(ctx context.Context) ([]feed.Stream, error) {
	streams, err := s.Feed.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	db, err := Load(ctx, s.Client, s.Channels)
	if err != nil {
		log.Warn("channel directory unavailable, feed not enriched", slog.Any("err", err))
		return streams, nil
	}
	n := db.Enrich(streams)
	log.Info("feed enriched", slog.Int("channels", db.Len()), slog.Int("streams", n))
	return streams, nil
}

func (db *DB) buildIndices() {
	db.byID = make(map[string]int, len(db.Channels))
	db.byNormName = make(map[string][]int, len(db.Channels)*2)

	for i, ch := range db.Channels {
		db.byID[strings.ToLower(ch.ID)] = i
		for _, n := range append([]string{ch.Name}, ch.AltNames...) {
			k := normName(n)
			if k != "" {
				db.byNormName[k] = appendUniq(db.byNormName[k], i)
			}
			if ks := stripForMatch(n); ks != "" && ks != k {
				db.byNormName[ks] = appendUniq(db.byNormName[ks], i)
			}
		}
	}
}

func appendUniq(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// qualityMarkerRe strips common quality/re-encode suffixes used in IPTV feeds.
var qualityMarkerRe = regexp.MustCompile(
	`(?i)\s*(HD2?|UHD|4K|8K|SD|RAW|FHD|ᴴᴰ|ᵁᴴᴰ|ᴿᴬᵂ)\s*$`,
)

// resolutionSuffixRe strips the "(1080p)" style suffix of iptv-org stream titles.
var resolutionSuffixRe = regexp.MustCompile(`(?i)\s*\(\d{3,4}[pi]\)\s*$`)

var countryPrefixMatchRe = regexp.MustCompile(`(?i)^[A-Z]{1,5}:\s*`)

var subproviderPrefixRe = regexp.MustCompile(`(?i)^(GO|SLING|RK|TUBI|CITY|NF|NBA|PRIME|PLUTO):\s*`)

var nonAlphanumRe = regexp.MustCompile(`[^a-z0-9 ]`)

func normName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlphanumRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func stripForMatch(s string) string {
	s = strings.TrimSpace(s)
	s = resolutionSuffixRe.ReplaceAllString(s, "")
	s = countryPrefixMatchRe.ReplaceAllString(s, "")
	s = subproviderPrefixRe.ReplaceAllString(s, "")
	s = qualityMarkerRe.ReplaceAllString(s, "")
	return normName(s)
}
