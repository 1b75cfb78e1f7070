// Package names turns free-text channel titles into the search terms used to
// find the same channel in a stream feed.
package names

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// annotationRe matches bracketed status annotations that feeds append to titles.
var annotationRe = regexp.MustCompile(`(?i)[\(\[]\s*(?:temporary|geo[- ]?blocked|not 24/7|(?:high |low )?latency|backup|offline)\s*[\)\]]`)

// TermSet is the normalized lookup form of one channel title.
type TermSet struct {
	// Key is the canonical channel identity, or "" when the title is not in the alias table.
	Key string
	// Cleaned is the title with annotations removed, upper-cased and trimmed.
	Cleaned string
	// Terms are tried in order by the matcher.
	Terms []string
}

// Mapped reports whether the title resolved to a known canonical channel.
func (ts TermSet) Mapped() bool { return ts.Key != "" }

// Upper upper-cases s with Unicode case mapping.
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Clean strips known annotations, collapses whitespace and upper-cases.
func Clean(title string) string {
	s := annotationRe.ReplaceAllString(title, " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(Upper(s))
}

// Normalize maps a channel title to its search term set.
// "Fox News (Temporary)" -> {FOX NEWS, FOXNEWS, FOX, FNC};
// unknown titles degrade to the single cleaned title.
func Normalize(title string) TermSet {
	cleaned := Clean(title)
	if cleaned == "" {
		return TermSet{}
	}
	for _, a := range aliasTable {
		for _, n := range a.Names {
			if ContainsWord(cleaned, n) {
				return TermSet{Key: a.Key, Cleaned: cleaned, Terms: append([]string(nil), a.Names...)}
			}
		}
	}
	return TermSet{Cleaned: cleaned, Terms: []string{cleaned}}
}

// ContainsWord reports whether sub occurs in s with no letter or digit
// immediately before or after it. "CN" is found in "CN HD" but not in "CNN".
func ContainsWord(s, sub string) bool {
	if sub == "" {
		return false
	}
	for from := 0; from <= len(s)-len(sub); {
		i := strings.Index(s[from:], sub)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(sub)
		if (start == 0 || !isAlnum(s[start-1])) && (end == len(s) || !isAlnum(s[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
