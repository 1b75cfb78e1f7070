package rank

import (
	"fmt"
	"strings"

	"github.com/CODERX24/tv/internal/feed"
	"github.com/CODERX24/tv/internal/names"
	"github.com/CODERX24/tv/internal/score"
)

// UpgradeMargin is how many points a replacement must beat the current stream by.
const UpgradeMargin = 20

// Proposal is an advisory upgrade; the caller must probe URL before using it.
type Proposal struct {
	URL          string
	Name         string
	Score        int
	CurrentScore int
	Reason       string
}

// Evaluate scores the current stream and the feed streams mentioning any of
// the channel's terms, and proposes the best one when it beats the current
// score by more than UpgradeMargin.
func Evaluate(currentURL, currentCountry, channelTitle string, streams []feed.Stream) (Proposal, bool) {
	terms := names.Normalize(channelTitle)
	if len(terms.Terms) == 0 {
		return Proposal{}, false
	}

	current := score.Metadata{Country: currentCountry}
	for _, s := range streams {
		if s.URL == currentURL {
			current = Metadata(s)
			if currentCountry != "" {
				current.Country = currentCountry
			}
			break
		}
	}
	currentScore := score.Score(currentURL, current, channelTitle)

	var best Proposal
	found := false
	for _, s := range streams {
		if s.URL == "" || s.URL == currentURL || !HasPlaylistMarker(s.URL) {
			continue
		}
		text := names.Upper(s.Name + " " + s.Title)
		if !containsAny(text, terms.Terms) {
			continue
		}
		sc := score.Score(s.URL, Metadata(s), channelTitle)
		if !found || sc > best.Score {
			best = Proposal{URL: s.URL, Name: s.Name, Score: sc}
			found = true
		}
	}
	if !found || best.Score <= currentScore+UpgradeMargin {
		return Proposal{}, false
	}
	best.CurrentScore = currentScore
	label := best.Name
	if label == "" {
		label = best.URL
	}
	best.Reason = fmt.Sprintf("%s scores %d vs current %d (+%d, margin %d)",
		label, best.Score, currentScore, best.Score-currentScore, UpgradeMargin)
	return best, true
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
