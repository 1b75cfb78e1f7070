package names

// Alias is one canonical channel identity and the names it goes by in feeds.
// Names[0] is the canonical key.
type Alias struct {
	Key   string
	Names []string
}

// aliasTable is walked in order and the first hit wins, so narrower
// identities sit above the broader ones that would swallow them
// (FS1 before FOX NEWS, CNBC and CNN before CARTOON NETWORK's "CN",
// ESPN2 before ESPN). Broad umbrella names come last in their list so the
// precise terms are tried first.
var aliasTable = []Alias{
	{"FS1", []string{"FS1", "FOX SPORTS 1", "FOXSPORTS1"}},
	{"FOX BUSINESS", []string{"FOX BUSINESS", "FOXBUSINESS", "FBN"}},
	{"FOX NEWS", []string{"FOX NEWS", "FOXNEWS", "FOX", "FNC"}},
	{"CBSN", []string{"CBSN", "CBS NEWS", "CBSNEWS"}},
	{"ABC NEWS", []string{"ABC NEWS", "ABCNEWS", "ABC NEWS LIVE"}},
	{"CNBC", []string{"CNBC"}},
	{"CNN", []string{"CNN", "CABLE NEWS NETWORK"}},
	{"OANN", []string{"OANN", "OAN", "ONE AMERICA NEWS"}},
	{"NEWSMAX TV", []string{"NEWSMAX TV", "NEWSMAX", "NEWSMAXTV"}},
	{"MSNBC", []string{"MSNBC"}},
	{"BBC NEWS", []string{"BBC NEWS", "BBCNEWS", "BBC WORLD NEWS", "BBC"}},
	{"TBN", []string{"TBN", "TRINITY BROADCASTING", "TRINITY"}},
	{"TCM", []string{"TCM", "TURNER CLASSIC MOVIES", "TURNER CLASSIC"}},
	{"AMC", []string{"AMC"}},
	{"TNT", []string{"TNT"}},
	{"TBS", []string{"TBS"}},
	{"CARTOON NETWORK", []string{"CARTOON NETWORK", "CARTOONNETWORK", "CN"}},
	{"NICKTOONS", []string{"NICKTOONS", "NICK TOONS", "NICKELODEON"}},
	{"DISNEY CHANNEL", []string{"DISNEY CHANNEL", "DISNEYCHANNEL", "DISNEY"}},
	{"ESPN2", []string{"ESPN2", "ESPN 2"}},
	{"ESPN", []string{"ESPN"}},
	{"HBO", []string{"HBO"}},
	{"CINEMAX", []string{"CINEMAX", "MAX PRIME"}},
	{"STADIUM", []string{"STADIUM"}},
}

// Aliases returns a copy of the canonical alias table in lookup order.
func Aliases() []Alias {
	out := make([]Alias, len(aliasTable))
	for i, a := range aliasTable {
		out[i] = Alias{Key: a.Key, Names: append([]string(nil), a.Names...)}
	}
	return out
}
