// Package score computes the ordinal quality score used to rank feed candidates.
//
// Steps run in a fixed order from a base of 50: mismatch penalty, country,
// resolution, reliable domain, low-quality markers. Resolution has three
// sources (URL keyword, URL WxH pattern, feed metadata); the strongest one
// present is applied and the others are ignored.
package score

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/CODERX24/tv/internal/mismatch"
	"github.com/CODERX24/tv/internal/names"
)

const Base = 50

// Metadata is what the feed knows about a candidate besides its URL.
type Metadata struct {
	Name    string
	Title   string
	Country string
	Width   int
	Height  int
}

// Breakdown is the per-step contribution to one score.
type Breakdown struct {
	Mismatch         int
	MismatchReason   string
	Country          int
	Resolution       int
	ResolutionSource string // "keyword", "pattern", "metadata" or ""
	Domain           int
	LowQuality       int
	Total            int
}

// Score returns the quality score of url for the channel. It may be negative.
func Score(url string, meta Metadata, channelTitle string) int {
	return Explain(url, meta, channelTitle).Total
}

// Explain is Score with the contribution of every step.
func Explain(url string, meta Metadata, channelTitle string) Breakdown {
	var b Breakdown
	if m := mismatch.Detect(channelTitle, meta.Name, meta.Title, url); m.Mismatch {
		b.Mismatch = m.Penalty
		b.MismatchReason = m.Reason
	}
	b.Country = countryBonus(meta.Country)
	b.Resolution, b.ResolutionSource = resolutionBonus(url, meta)
	b.Domain = domainBonus(url)
	b.LowQuality = lowQualityPenalty(url)
	b.Total = Base + b.Mismatch + b.Country + b.Resolution + b.Domain + b.LowQuality
	return b
}

func countryBonus(country string) int {
	switch names.Upper(strings.TrimSpace(country)) {
	case "":
		return 0
	case "US", "USA", "UNITED STATES":
		return 40
	case "UK", "GB", "UNITED KINGDOM", "CA", "CANADA":
		return 20
	case "INT", "INTERNATIONAL":
		return 10
	default:
		return 5
	}
}

type keywordTier struct {
	re    *regexp.Regexp
	bonus int
}

func tier(bonus int, words ...string) keywordTier {
	// Tokens bounded by non-alphanumerics, optional "p" suffix ("1080p").
	pat := `(?i)(?:^|[^a-z0-9])(?:` + strings.Join(words, "|") + `)p?(?:[^a-z0-9]|$)`
	return keywordTier{re: regexp.MustCompile(pat), bonus: bonus}
}

var keywordLadder = []keywordTier{
	tier(40, "4k", "uhd", "2160"),
	tier(35, "1440", "2k"),
	tier(30, "1080", "fhd", "1920"),
	tier(20, "720", "900", "hd", "1280"),
	tier(10, "480", "sd", "600", "640", "854"),
	tier(-10, "240", "320", "360", "426"),
}

var dimensionRe = regexp.MustCompile(`(?:^|\D)(\d{3,4})[x_-](\d{3,4})(?:\D|$)`)

func keywordBonus(url string) (int, bool) {
	for _, t := range keywordLadder {
		if t.re.MatchString(url) {
			return t.bonus, true
		}
	}
	return 0, false
}

func patternBonus(url string) (int, bool) {
	m := dimensionRe.FindStringSubmatch(url)
	if m == nil {
		return 0, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	return dimensionBonus(max(w, h)), true
}

func metadataBonus(meta Metadata) (int, bool) {
	d := max(meta.Width, meta.Height)
	if d <= 0 {
		return 0, false
	}
	return dimensionBonus(d), true
}

func dimensionBonus(d int) int {
	switch {
	case d >= 2160:
		return 40
	case d >= 1440:
		return 35
	case d >= 1080:
		return 30
	case d >= 900:
		return 25
	case d >= 720:
		return 20
	case d >= 600:
		return 15
	case d >= 480:
		return 10
	case d >= 360:
		return 5
	default:
		return -10
	}
}

func resolutionBonus(url string, meta Metadata) (int, string) {
	best, src := 0, ""
	consider := func(v int, ok bool, name string) {
		if ok && (src == "" || v > best) {
			best, src = v, name
		}
	}
	v, ok := keywordBonus(url)
	consider(v, ok, "keyword")
	v, ok = patternBonus(url)
	consider(v, ok, "pattern")
	v, ok = metadataBonus(meta)
	consider(v, ok, "metadata")
	return best, src
}

func lowQualityPenalty(url string) int {
	u := strings.ToLower(url)
	if strings.Contains(u, "backup") || strings.Contains(u, "alt") {
		return -5
	}
	return 0
}
