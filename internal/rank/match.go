// Package rank orders feed candidates for a channel, picks the first live
// one, and decides when a working stream deserves an upgrade.
package rank

import (
	"sort"
	"strings"

	"github.com/CODERX24/tv/internal/feed"
	"github.com/CODERX24/tv/internal/names"
	"github.com/CODERX24/tv/internal/score"
)

// Tier is the textual match class of a candidate. Lower is better.
type Tier int

const (
	TierExactName Tier = iota
	TierExactTitle
	TierPartialName
	TierPartialTitle
)

func (t Tier) String() string {
	switch t {
	case TierExactName:
		return "exact-name"
	case TierExactTitle:
		return "exact-title"
	case TierPartialName:
		return "partial-name"
	case TierPartialTitle:
		return "partial-title"
	}
	return "unknown"
}

// Candidate is one ranked feed stream for a channel.
type Candidate struct {
	URL            string
	Name           string
	Title          string
	Country        string
	Score          int
	Tier           Tier
	Term           string
	MismatchReason string
	// ReportedDown is the feed's own health flag for the stream.
	ReportedDown bool

	termIndex int
	feedIndex int
}

// HasPlaylistMarker reports whether url looks like an HLS playlist.
func HasPlaylistMarker(url string) bool {
	return strings.Contains(strings.ToLower(url), ".m3u8")
}

// Metadata converts a feed stream into scorer input.
func Metadata(s feed.Stream) score.Metadata {
	w, h := s.Resolution()
	return score.Metadata{
		Name:    s.Name,
		Title:   s.Title,
		Country: s.CountryCode(),
		Width:   w,
		Height:  h,
	}
}

// Match returns the candidates for terms in probe order: exact-name, then
// exact-title, then all partial matches, each bucket by score descending.
// A stream lands in at most one tier, decided by the first term it matches.
func Match(terms names.TermSet, channelTitle string, streams []feed.Stream) []Candidate {
	var exactName, exactTitle, partial []Candidate
	for i, s := range streams {
		if s.URL == "" || !HasPlaylistMarker(s.URL) {
			continue
		}
		tier, ti, ok := classify(terms.Terms, names.Upper(strings.TrimSpace(s.Name)), names.Upper(strings.TrimSpace(s.Title)))
		if !ok {
			continue
		}
		meta := Metadata(s)
		b := score.Explain(s.URL, meta, channelTitle)
		c := Candidate{
			URL:            s.URL,
			Name:           s.Name,
			Title:          s.Title,
			Country:        meta.Country,
			Score:          b.Total,
			Tier:           tier,
			Term:           terms.Terms[ti],
			MismatchReason: b.MismatchReason,
			ReportedDown:   s.ReportedDown(),
			termIndex:      ti,
			feedIndex:      i,
		}
		switch tier {
		case TierExactName:
			exactName = append(exactName, c)
		case TierExactTitle:
			exactTitle = append(exactTitle, c)
		default:
			partial = append(partial, c)
		}
	}
	sortBucket(exactName)
	sortBucket(exactTitle)
	sortBucket(partial)
	out := make([]Candidate, 0, len(exactName)+len(exactTitle)+len(partial))
	out = append(out, exactName...)
	out = append(out, exactTitle...)
	return append(out, partial...)
}

// classify walks terms in order and, for each term, tries exact-name,
// exact-title, partial-name, then partial-title. The first hit wins, so an
// early term's partial match outranks a later term's exact one.
func classify(terms []string, name, title string) (Tier, int, bool) {
	for i, t := range terms {
		if t == "" {
			continue
		}
		switch {
		case name == t:
			return TierExactName, i, true
		case title == t:
			return TierExactTitle, i, true
		case strings.Contains(name, t):
			return TierPartialName, i, true
		case strings.Contains(title, t):
			return TierPartialTitle, i, true
		}
	}
	return 0, 0, false
}

// sortBucket orders by score descending. On equal scores, streams the feed
// reports as down go last; remaining ties keep discovery order (term, name
// before title, feed position).
func sortBucket(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ReportedDown != b.ReportedDown {
			return b.ReportedDown
		}
		if a.termIndex != b.termIndex {
			return a.termIndex < b.termIndex
		}
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		return a.feedIndex < b.feedIndex
	})
}

// Without returns cs minus any candidate whose URL equals url.
func Without(cs []Candidate, url string) []Candidate {
	out := make([]Candidate, 0, len(cs))
	for _, c := range cs {
		if c.URL != url {
			out = append(out, c)
		}
	}
	return out
}
