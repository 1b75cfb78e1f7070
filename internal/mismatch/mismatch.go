// Package mismatch flags feed candidates that match a channel's name but are
// a different channel: a local affiliate, a sibling service or a "2"/"+" variant.
package mismatch

import (
	"fmt"
	"strings"

	"github.com/CODERX24/tv/internal/names"
)

// Result is the verdict for one candidate. Penalty is 0 when Mismatch is false.
type Result struct {
	Mismatch bool
	Reason   string
	Penalty  int
}

// Detect checks a candidate against the channel title in three layers
// (affiliate guard, avoid-list, generic variant guard); the first hit wins.
// Missing name or title is no evidence and never an error.
func Detect(channelTitle, name, title, rawURL string) Result {
	ts := names.Normalize(channelTitle)
	if ts.Cleaned == "" {
		return Result{}
	}
	nameU := names.Upper(strings.TrimSpace(name))
	titleU := names.Upper(strings.TrimSpace(title))
	text := strings.TrimSpace(nameU + " " + titleU)
	urlL := strings.ToLower(rawURL)

	if r, ok := affiliateCheck(ts.Cleaned, text, urlL); ok {
		return r
	}
	if r, ok := avoidCheck(ts, nameU, titleU, urlL); ok {
		return r
	}
	if nameU != "" && strings.Contains(nameU, ts.Cleaned) {
		for _, tok := range secondaryTokens {
			if strings.Contains(nameU, tok) {
				return Result{
					Mismatch: true,
					Reason:   fmt.Sprintf("secondary variant %q of %s", tok, ts.Cleaned),
					Penalty:  secondaryVariantPenalty,
				}
			}
		}
	}
	return Result{}
}

func affiliateCheck(cleaned, text, urlL string) (Result, bool) {
	if text == "" {
		return Result{}, false
	}
	for _, g := range affiliateGuards {
		if !containsAnyWord(cleaned, g.identity) {
			continue
		}
		for _, a := range g.affiliates {
			if names.ContainsWord(text, a) && !names.ContainsWord(cleaned, a) {
				return Result{
					Mismatch: true,
					Reason:   fmt.Sprintf("local affiliate %q of %s", a, g.brand),
					Penalty:  affiliatePenalty,
				}, true
			}
		}
		if containsAny(text, g.required) || containsAny(urlL, g.urlSpellings) {
			return Result{}, false
		}
		return Result{
			Mismatch: true,
			Reason:   fmt.Sprintf("missing %s keyword (%s)", g.brand, strings.Join(g.required, "/")),
			Penalty:  missingKeywordPenalty,
		}, true
	}
	return Result{}, false
}

func avoidCheck(ts names.TermSet, nameU, titleU, urlL string) (Result, bool) {
	brand := ts.Key
	if brand == "" {
		brand = ts.Cleaned
	}
	for _, rule := range Rules {
		if rule.Brand != brand {
			continue
		}
		for _, term := range rule.Avoid {
			if strings.Contains(ts.Cleaned, term) {
				continue
			}
			if strings.Contains(nameU, term) || strings.Contains(titleU, term) || strings.Contains(urlL, urlForm(term)) {
				return Result{
					Mismatch: true,
					Reason:   fmt.Sprintf("avoid-list: %s (%s)", rule.Reason, term),
					Penalty:  rule.Penalty,
				}, true
			}
		}
	}
	return Result{}, false
}

// urlForm spells an avoid term the way it shows up in stream URLs: "AMC+" -> "amcplus".
func urlForm(term string) string {
	s := strings.ToLower(term)
	s = strings.ReplaceAll(s, "+", "plus")
	return strings.ReplaceAll(s, " ", "")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if names.ContainsWord(s, w) {
			return true
		}
	}
	return false
}
