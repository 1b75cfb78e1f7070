package safeurl

import (
	"errors"
	"net/url"
	"strings"
)

var errNotHTTP = errors.New("not an http(s) url")

// IsHTTPOrHTTPS returns true if u is a valid URL with scheme http or https.
// Anything else (file://, ftp://, bare paths) is never fetched by the prober or the feed.
func IsHTTPOrHTTPS(u string) bool {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil || parsed.Host == "" {
		return false
	}
	s := strings.ToLower(parsed.Scheme)
	return s == "http" || s == "https"
}

// Resolve resolves a playlist reference against the directory of base.
// Absolute references are returned unchanged; "seg.ts" replaces the last
// path component of base and "/seg.ts" replaces the whole path.
func Resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if !IsHTTPOrHTTPS(base) {
		return "", errNotHTTP
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// Origin returns scheme://host for u, or u unchanged when it does not parse.
func Origin(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return u
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host)
}

// Hostname returns the lower-cased host of u without port, or "".
func Hostname(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
