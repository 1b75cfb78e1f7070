package mismatch

// affiliateGuard protects a national news brand from its local affiliates,
// which share the brand name but carry regional programming.
type affiliateGuard struct {
	brand string
	// identity names that make the channel title count as this brand.
	identity []string
	// affiliates are call-signs, local numbers and cities.
	affiliates []string
	// required: at least one must appear in the candidate name/title.
	required []string
	// urlSpellings excuse a missing keyword when the URL names the brand.
	urlSpellings []string
}

const (
	affiliatePenalty        = -60
	missingKeywordPenalty   = -55
	secondaryVariantPenalty = -25
)

var cities = []string{
	"DC", "WASHINGTON", "NEW YORK", "NYC", "LOS ANGELES", "CHICAGO", "DALLAS", "HOUSTON",
	"ATLANTA", "PHOENIX", "DETROIT", "TAMPA", "ORLANDO", "SEATTLE", "BOSTON",
	"PHILADELPHIA", "MINNEAPOLIS", "SAN FRANCISCO", "DENVER", "MIAMI", "LOCAL",
}

var affiliateGuards = []affiliateGuard{
	{
		brand:    "FOX NEWS",
		identity: []string{"FOX NEWS", "FOXNEWS", "FNC"},
		affiliates: withCities(
			"FOX 2", "FOX 4", "FOX 5", "FOX 6", "FOX 7", "FOX 8", "FOX 9", "FOX 10", "FOX 11",
			"FOX 12", "FOX 13", "FOX 17", "FOX 19", "FOX 25", "FOX 26", "FOX 29", "FOX 32",
			"FOX 35", "FOX 40", "FOX 45", "FOX 59", "FOX 61",
			"WNYW", "WTTG", "KTTV", "WFLD", "KDFW", "WTXF", "KRIV", "WAGA", "KSAZ", "WJBK",
			"KMSP", "WTVT", "WOFL", "KCPQ", "WFXT", "LIVENOW",
		),
		required:     []string{"NEWS", "FNC"},
		urlSpellings: []string{"foxnews", "fox-news", "fox_news", "fnc"},
	},
	{
		brand:    "CBS NEWS",
		identity: []string{"CBS NEWS", "CBSNEWS", "CBSN"},
		affiliates: withCities(
			"CBS 2", "CBS 3", "CBS 4", "CBS 8", "CBS 11", "CBS 12", "CBS 58",
			"WCBS", "KCBS", "KCAL", "WBBM", "KYW", "WJZ", "WBZ", "KPIX", "WCCO", "KDKA",
		),
		required:     []string{"NEWS", "CBSN"},
		urlSpellings: []string{"cbsnews", "cbs-news", "cbsn"},
	},
	{
		brand:    "ABC NEWS",
		identity: []string{"ABC NEWS", "ABCNEWS"},
		affiliates: withCities(
			"ABC 7", "ABC7", "ABC 11", "ABC 13", "ABC13", "ABC 30",
			"WABC", "KABC", "WLS", "WPVI", "KGO", "KTRK", "WTVD", "KFSN", "EYEWITNESS",
		),
		required:     []string{"NEWS"},
		urlSpellings: []string{"abcnews", "abc-news"},
	},
}

func withCities(names ...string) []string {
	return append(names, cities...)
}

// Rule is one avoid-list entry: candidates for Brand must not carry any of
// the Avoid labels, which name sibling or secondary services.
type Rule struct {
	Brand   string
	Avoid   []string
	Penalty int
	Reason  string
}

// Rules are evaluated in order; the first avoid term found wins.
var Rules = []Rule{
	{"FOX NEWS", []string{"FOX BUSINESS", "FOX WEATHER", "FOX SPORTS", "FOX SOUL", "FOX NATION"}, -50, "Fox sibling network"},
	{"FS1", []string{"FS2", "FOX SPORTS 2", "FOX DEPORTES"}, -40, "Fox Sports secondary feed"},
	{"CNN", []string{"CNN INTERNATIONAL", "CNN EN ESPANOL", "CNN ESPANOL", "CNN BRASIL", "CNN TURK", "CNN CHILE", "CNN INDONESIA", "CNN PORTUGAL", "CNN PRIMA", "HLN"}, -50, "foreign or sibling CNN edition"},
	{"BBC NEWS", []string{"BBC ONE", "BBC TWO", "BBC THREE", "BBC FOUR", "BBC ARABIC", "BBC PERSIAN"}, -30, "other BBC service"},
	{"HBO", []string{"HBO MAX", "HBO 2", "HBO2", "HBO FAMILY", "HBO SIGNATURE", "HBO ZONE", "HBO COMEDY", "HBO LATINO", "LATINO", "CINEMAX", "MOREMAX", "ACTIONMAX"}, -40, "HBO secondary service"},
	{"CINEMAX", []string{"MOREMAX", "ACTIONMAX", "5STARMAX", "THRILLERMAX", "OUTERMAX", "MOVIEMAX", "CINEMAX 2"}, -35, "Cinemax multiplex channel"},
	{"AMC", []string{"AMC+", "AMC PLUS", "AMC PRESENTS", "AMC THRILLERS"}, -40, "AMC secondary service"},
	{"ESPN2", []string{"ESPNU", "ESPNEWS", "ESPN DEPORTES"}, -30, "ESPN sibling network"},
	{"ESPN", []string{"ESPN2", "ESPN 2", "ESPNU", "ESPNEWS", "ESPN DEPORTES", "ESPN+", "ESPN PLUS"}, -45, "ESPN sibling network"},
	{"TNT", []string{"TNT SPORTS", "TNT DRAMA", "TNT COMEDY", "TNT SERIES"}, -30, "regional TNT variant"},
	{"TBS", []string{"TBS SPORTS"}, -25, "TBS sports feed"},
	{"DISNEY CHANNEL", []string{"DISNEY JUNIOR", "DISNEY JR", "DISNEY XD", "DISNEY+"}, -35, "Disney sibling network"},
	{"CARTOON NETWORK", []string{"CARTOONITO", "BOOMERANG", "ADULT SWIM"}, -35, "Cartoon Network sibling"},
	{"NICKTOONS", []string{"NICK JR", "NICK JUNIOR", "TEENNICK", "NICK MUSIC"}, -30, "Nickelodeon sibling"},
}

var secondaryTokens = []string{"2", "3", "+", "PLUS", "EXTRA", "XTRA"}
