package rank

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/CODERX24/tv/internal/feed"
	"github.com/CODERX24/tv/internal/names"
	"github.com/CODERX24/tv/internal/probe"
	"github.com/CODERX24/tv/internal/score"
)

func TestMatch_tiersAndExclusions(t *testing.T) {
	streams := []feed.Stream{
		{Name: "CNN International", URL: "http://a.example/cnni.m3u8"},          // partial name
		{Title: "CNN", URL: "http://a.example/title.m3u8"},                      // exact title
		{Name: "CNN", URL: "http://a.example/cnn.mp4"},                          // no playlist marker
		{Name: "CNN", URL: ""},                                                  // no URL
		{Name: "CNN", URL: "http://a.example/cnn.M3U8", Country: "US"},          // exact name
		{Name: "Other", Title: "CNN Live Feed", URL: "http://a.example/x.m3u8"}, // partial title
		{Name: "Unrelated", URL: "http://a.example/u.m3u8"},
	}
	got := Match(names.Normalize("CNN"), "CNN", streams)
	want := []struct {
		url  string
		tier Tier
	}{
		{"http://a.example/cnn.M3U8", TierExactName},
		{"http://a.example/title.m3u8", TierExactTitle},
		{"http://a.example/x.m3u8", TierPartialTitle},
		{"http://a.example/cnni.m3u8", TierPartialName},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates: %+v", len(got), got)
	}
	for i, w := range want {
		if got[i].URL != w.url || got[i].Tier != w.tier {
			t.Errorf("got[%d] = %s %s, want %s %s", i, got[i].URL, got[i].Tier, w.url, w.tier)
		}
	}
	// cnni carries the CNN International avoid-list penalty, so it ranks below
	// the partial-title match despite name-before-title discovery.
	if got[3].MismatchReason == "" {
		t.Errorf("expected mismatch reason on CNN International")
	}
}

func TestMatch_sortedByScoreWithinTier(t *testing.T) {
	streams := []feed.Stream{
		{Name: "CNN", URL: "http://a.example/sd/cnn.m3u8"},
		{Name: "CNN", URL: "http://a.example/1080p/cnn.m3u8", Country: "US"},
		{Name: "CNN", URL: "http://a.example/720p/cnn.m3u8"},
	}
	got := Match(names.Normalize("CNN"), "CNN", streams)
	if len(got) != 3 {
		t.Fatalf("got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("not sorted: %d before %d", got[i-1].Score, got[i].Score)
		}
	}
	if got[0].URL != "http://a.example/1080p/cnn.m3u8" {
		t.Errorf("top = %s", got[0].URL)
	}
}

func TestMatch_tiesKeepFeedOrder(t *testing.T) {
	streams := []feed.Stream{
		{Name: "CNN", URL: "http://a.example/one.m3u8"},
		{Name: "CNN", URL: "http://a.example/two.m3u8"},
	}
	got := Match(names.Normalize("CNN"), "CNN", streams)
	if got[0].URL != "http://a.example/one.m3u8" || got[1].URL != "http://a.example/two.m3u8" {
		t.Errorf("order = %s, %s", got[0].URL, got[1].URL)
	}
}

func TestMatch_reportedDownLosesTies(t *testing.T) {
	streams := []feed.Stream{
		{Name: "CNN", URL: "http://a.example/one.m3u8", Status: "offline"},
		{Name: "CNN", URL: "http://a.example/two.m3u8", Status: "online"},
		{Name: "CNN", URL: "http://a.example/1080p/three.m3u8", Status: "error"},
	}
	got := Match(names.Normalize("CNN"), "CNN", streams)
	if len(got) != 3 {
		t.Fatalf("got %d", len(got))
	}
	// Score still dominates: the 1080p stream leads despite its flag.
	want := []string{"http://a.example/1080p/three.m3u8", "http://a.example/two.m3u8", "http://a.example/one.m3u8"}
	for i, w := range want {
		if got[i].URL != w {
			t.Errorf("got[%d] = %s, want %s", i, got[i].URL, w)
		}
	}
	if !got[0].ReportedDown || got[1].ReportedDown {
		t.Errorf("flags = %v, %v", got[0].ReportedDown, got[1].ReportedDown)
	}
}

func TestMatch_firstMatchingTermDecidesTier(t *testing.T) {
	// FOX NEWS reaches the first stream through its title before FNC can
	// match the name exactly, so both streams share the partial bucket and
	// the stronger one is tried first.
	streams := []feed.Stream{
		{Name: "FNC", Title: "Fox News Channel", URL: "http://a.example/fnc.m3u8"},
		{Name: "Fox News HD", URL: "http://a.example/1080p/foxnews.m3u8", Country: "US", Quality: "1080p"},
	}
	got := Match(names.Normalize("Fox News"), "Fox News", streams)
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].URL != "http://a.example/1080p/foxnews.m3u8" || got[0].Tier != TierPartialName {
		t.Errorf("got[0] = %s %s", got[0].URL, got[0].Tier)
	}
	if got[1].URL != "http://a.example/fnc.m3u8" || got[1].Tier != TierPartialTitle || got[1].Term != "FOX NEWS" {
		t.Errorf("got[1] = %s %s term=%q", got[1].URL, got[1].Tier, got[1].Term)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores %d, %d not descending", got[0].Score, got[1].Score)
	}
}

func TestMatch_laterTermExactWhenEarlierTermsMiss(t *testing.T) {
	streams := []feed.Stream{{Name: "FNC", URL: "http://a.example/fnc.m3u8"}}
	got := Match(names.Normalize("Fox News"), "Fox News", streams)
	if len(got) != 1 || got[0].Tier != TierExactName || got[0].Term != "FNC" {
		t.Fatalf("got %+v", got)
	}
}

type fakeProber struct {
	mu    sync.Mutex
	live  map[string]bool
	calls []string
	times []time.Time
}

func (f *fakeProber) Probe(_ context.Context, url string) probe.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.times = append(f.times, time.Now())
	if f.live[url] {
		return probe.Result{URL: url, Live: true, Reason: probe.ReasonOK}
	}
	return probe.Result{URL: url, Reason: probe.ReasonBadStatus}
}

func TestSelector_firstLiveInOrder(t *testing.T) {
	fp := &fakeProber{live: map[string]bool{"b": true, "c": true}}
	var seen int
	s := &Selector{Prober: fp, OnProbe: func(Candidate, probe.Result) { seen++ }}
	got, ok := s.Select(context.Background(), []Candidate{{URL: "a"}, {URL: "b"}, {URL: "c"}})
	if !ok || got.URL != "b" {
		t.Fatalf("Select = %q, %v", got.URL, ok)
	}
	if len(fp.calls) != 2 || seen != 2 {
		t.Errorf("calls = %v, hook saw %d", fp.calls, seen)
	}
}

func TestSelector_notFound(t *testing.T) {
	fp := &fakeProber{}
	s := &Selector{Prober: fp}
	if _, ok := s.Select(context.Background(), []Candidate{{URL: "a"}, {URL: "b"}}); ok {
		t.Fatal("expected NotFound")
	}
	if _, ok := s.Select(context.Background(), nil); ok {
		t.Fatal("expected NotFound for empty list")
	}
}

func TestSelector_pacesProbes(t *testing.T) {
	fp := &fakeProber{}
	s := &Selector{Prober: fp, Delay: 40 * time.Millisecond}
	s.Select(context.Background(), []Candidate{{URL: "a"}, {URL: "b"}, {URL: "c"}})
	if len(fp.times) != 3 {
		t.Fatalf("calls = %d", len(fp.times))
	}
	if gap := fp.times[2].Sub(fp.times[0]); gap < 70*time.Millisecond {
		t.Errorf("three probes took %v, want >= ~80ms of pacing", gap)
	}
}

func TestSelector_cancelled(t *testing.T) {
	fp := &fakeProber{live: map[string]bool{"b": true}}
	s := &Selector{Prober: fp, Delay: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := s.Select(ctx, []Candidate{{URL: "a"}, {URL: "b"}}); ok {
		t.Fatal("expected NotFound after cancellation")
	}
	if len(fp.calls) != 1 {
		t.Errorf("calls = %v", fp.calls)
	}
}

func TestEvaluate_noUpgradeBelowMargin(t *testing.T) {
	current := "http://origin.example/cnn/live.m3u8"
	streams := []feed.Stream{
		{Name: "CNN", URL: current},
		{Name: "CNN", URL: "http://origin.example/cnn/hd.m3u8"}, // +20 only
	}
	curScore := score.Score(current, score.Metadata{Name: "CNN"}, "CNN")
	if _, ok := Evaluate(current, "", "CNN", streams); ok {
		t.Fatalf("upgrade proposed although best is only +20 over %d", curScore)
	}
}

func TestEvaluate_proposesClearlyBetter(t *testing.T) {
	current := "http://origin.example/cnn/live.m3u8"
	streams := []feed.Stream{
		{Name: "CNN", URL: current},
		{Name: "CNN HD", URL: "http://origin.example/cnn/1080p.m3u8", Country: "US"},
		{Name: "Weather", URL: "http://origin.example/weather/4k.m3u8", Country: "US"},
		{Name: "CNN", URL: "http://origin.example/cnn/4k.mp4", Country: "US"},
	}
	p, ok := Evaluate(current, "", "CNN", streams)
	if !ok {
		t.Fatal("expected proposal")
	}
	if p.URL != "http://origin.example/cnn/1080p.m3u8" {
		t.Errorf("URL = %s", p.URL)
	}
	if p.Score-p.CurrentScore <= UpgradeMargin || p.Reason == "" {
		t.Errorf("proposal = %+v", p)
	}
}

func TestEvaluate_currentCountryCounts(t *testing.T) {
	current := "http://origin.example/cnn/live.m3u8"
	streams := []feed.Stream{
		{Name: "CNN", URL: current},
		{Name: "CNN", URL: "http://origin.example/cnn/1080p.m3u8", Country: "US"}, // 50+40+30 = 120
	}
	// Without a country the current stream scores 50 and loses by 70.
	if _, ok := Evaluate(current, "", "CNN", streams); !ok {
		t.Fatal("expected proposal without current country")
	}
	// With US the current stream scores 90; 120 still clears 90+20.
	if _, ok := Evaluate(current, "US", "CNN", streams); !ok {
		t.Fatal("expected proposal: 120 > 90+20")
	}
	streams[1].URL = "http://origin.example/cnn/720p.m3u8" // 50+40+20 = 110, not > 110
	if _, ok := Evaluate(current, "US", "CNN", streams); ok {
		t.Fatal("unexpected proposal at exactly the margin")
	}
}
