package names

import (
	"reflect"
	"testing"
)

func TestClean(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Fox News (Temporary)", "FOX NEWS"},
		{"CNN [Geo-blocked]", "CNN"},
		{"  bbc   news  (NOT 24/7) ", "BBC NEWS"},
		{"ESPN (High Latency)", "ESPN"},
		{"TCM (geo blocked) [Backup]", "TCM"},
		{"Plain", "PLAIN"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_foxNewsTemporary(t *testing.T) {
	ts := Normalize("Fox News (Temporary)")
	if ts.Key != "FOX NEWS" {
		t.Fatalf("Key = %q, want FOX NEWS", ts.Key)
	}
	found := false
	for _, term := range ts.Terms {
		if term == "FOX NEWS" {
			found = true
		}
	}
	if !found {
		t.Errorf("Terms %v missing FOX NEWS", ts.Terms)
	}
}

func TestNormalize_unknownFallsBackToCleaned(t *testing.T) {
	ts := Normalize("Some Obscure Channel")
	if ts.Mapped() {
		t.Errorf("unexpected key %q", ts.Key)
	}
	if !reflect.DeepEqual(ts.Terms, []string{"SOME OBSCURE CHANNEL"}) {
		t.Errorf("Terms = %v", ts.Terms)
	}
}

func TestNormalize_tableOrder(t *testing.T) {
	cases := []struct{ in, key string }{
		{"Fox Sports 1", "FS1"},
		{"FOX Business Network", "FOX BUSINESS"},
		{"FOX", "FOX NEWS"},
		{"CNN International", "CNN"},
		{"CNBC", "CNBC"},
		{"Cartoon Network", "CARTOON NETWORK"},
		{"CN HD", "CARTOON NETWORK"},
		{"ESPN 2", "ESPN2"},
		{"ESPN2 HD", "ESPN2"},
		{"ESPN", "ESPN"},
		{"AMC+", "AMC"},
		{"Newsmax", "NEWSMAX TV"},
		{"BBC One", "BBC NEWS"},
		{"Trinity", "TBN"},
		{"Nickelodeon", "NICKTOONS"},
	}
	for _, c := range cases {
		if got := Normalize(c.in).Key; got != c.key {
			t.Errorf("Normalize(%q).Key = %q, want %q", c.in, got, c.key)
		}
	}
}

func TestNormalize_umbrellaTermsLast(t *testing.T) {
	cases := map[string][]string{
		"BBC":       {"BBC NEWS", "BBCNEWS", "BBC WORLD NEWS", "BBC"},
		"TBN":       {"TBN", "TRINITY BROADCASTING", "TRINITY"},
		"NICKTOONS": {"NICKTOONS", "NICK TOONS", "NICKELODEON"},
	}
	for in, want := range cases {
		if got := Normalize(in).Terms; !reflect.DeepEqual(got, want) {
			t.Errorf("Normalize(%q).Terms = %v, want %v", in, got, want)
		}
	}
}

func TestNormalize_termsAreCopies(t *testing.T) {
	a := Normalize("HBO")
	a.Terms[0] = "MUTATED"
	if b := Normalize("HBO"); b.Terms[0] != "HBO" {
		t.Fatalf("alias table mutated through returned terms: %v", b.Terms)
	}
}

func TestContainsWord(t *testing.T) {
	cases := []struct {
		s, sub string
		want   bool
	}{
		{"CNN", "CN", false},
		{"CN HD", "CN", true},
		{"FOX 5 DC", "DC", true},
		{"DCX", "DC", false},
		{"AMC+", "AMC", true},
		{"XCNN CN", "CN", true},
		{"ANY", "", false},
	}
	for _, c := range cases {
		if got := ContainsWord(c.s, c.sub); got != c.want {
			t.Errorf("ContainsWord(%q, %q) = %v, want %v", c.s, c.sub, got, c.want)
		}
	}
}
