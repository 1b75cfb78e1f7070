package feed

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

const maxLineSize = 1 << 20 // 1 MiB per line

var extinfAttrRe = regexp.MustCompile(`([a-zA-Z0-9_-]+)="([^"]*)"`)

// parseM3U reads #EXTINF/URL pairs. tvg-name becomes Name, the text after the
// last comma becomes Title, tvg-country and tvg-id fill Country and Channel.
func parseM3U(r io.Reader) ([]Stream, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)
	var out []Stream
	var extinf string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF:") {
			extinf = line
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if extinf != "" {
			out = append(out, streamFromEXTINF(extinf, line))
		}
		extinf = ""
	}
	return out, sc.Err()
}

func streamFromEXTINF(extinf, url string) Stream {
	attrs := map[string]string{}
	for _, m := range extinfAttrRe.FindAllStringSubmatch(extinf, -1) {
		attrs[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
	}
	title := ""
	if i := strings.LastIndex(extinf, ","); i >= 0 {
		title = strings.TrimSpace(extinf[i+1:])
	}
	name := attrs["tvg-name"]
	if name == "" {
		name = title
	}
	country := attrs["tvg-country"]
	if i := strings.IndexAny(country, ";,"); i >= 0 {
		country = country[:i]
	}
	return Stream{
		Channel:   attrs["tvg-id"],
		Name:      name,
		Title:     title,
		URL:       url,
		Country:   strings.ToUpper(country),
		Referrer:  attrs["http-referrer"],
		UserAgent: attrs["http-user-agent"],
	}
}
