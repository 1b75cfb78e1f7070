package score

import (
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/CODERX24/tv/internal/safeurl"
)

// reliableDomains are CDNs and FAST platforms whose streams rarely disappear.
var reliableDomains = []string{
	"akamaized.net",
	"akamaihd.net",
	"cloudfront.net",
	"fastly.net",
	"llnwd.net",
	"amagi.tv",
	"pluto.tv",
	"wurl.com",
	"wurl.tv",
	"plex.tv",
	"xumo.com",
	"tubi.video",
	"stirr.com",
	"roku.com",
	"cbsnews.com",
	"foxnews.com",
	"cnn.com",
	"nbcnews.com",
}

// domainBonus gives +15 once when the host, or its registrable domain, is on the list.
func domainBonus(url string) int {
	host := safeurl.Hostname(url)
	if host == "" {
		return 0
	}
	registrable, _ := publicsuffix.EffectiveTLDPlusOne(host)
	for _, d := range reliableDomains {
		if host == d || strings.HasSuffix(host, "."+d) || registrable == d {
			return 15
		}
	}
	return 0
}
