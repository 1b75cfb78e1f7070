package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CODERX24/tv/internal/httpclient"
)

func newStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/live/ok.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXT-X-VERSION:3\n\n#EXTINF:6.0,\nseg001.ts\nseg002.ts\n"))
	})
	mux.HandleFunc("/live/seg001.ts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0x47, 0x40, 0x00, 0x10})
	})
	mux.HandleFunc("/live/nomarker.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>moved</html>\nseg001.ts\n"))
	})
	mux.HandleFunc("/live/noref.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n#EXT-X-ENDLIST\n"))
	})
	mux.HandleFunc("/live/emptyseg.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\nempty.ts\n"))
	})
	mux.HandleFunc("/live/empty.ts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/live/badseg.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\nmissing.ts\n"))
	})
	mux.HandleFunc("/live/rootref.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n/media/seg.ts\n"))
	})
	mux.HandleFunc("/media/seg.ts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	})
	mux.HandleFunc("/live/gone.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/live/cf.m3u8", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/live/slow.m3u8", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe(t *testing.T) {
	srv := newStreamServer(t)
	p := New(time.Second, "test-agent", httpclient.NewHostSemaphore(2))
	ctx := context.Background()

	cases := []struct {
		path   string
		live   bool
		reason Reason
	}{
		{"/live/ok.m3u8", true, ReasonOK},
		{"/live/rootref.m3u8", true, ReasonOK},
		{"/live/nomarker.m3u8", false, ReasonNoMarker},
		{"/live/noref.m3u8", false, ReasonNoReference},
		{"/live/emptyseg.m3u8", false, ReasonSegmentEmpty},
		{"/live/badseg.m3u8", false, ReasonSegmentStatus},
		{"/live/gone.m3u8", false, ReasonBadStatus},
		{"/live/cf.m3u8", false, ReasonCloudflare},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			r := p.Probe(ctx, srv.URL+c.path)
			if r.Live != c.live || r.Reason != c.reason {
				t.Errorf("Probe(%s) = live=%v reason=%s, want live=%v reason=%s", c.path, r.Live, r.Reason, c.live, c.reason)
			}
		})
	}
}

func TestProbe_resolvesAgainstPlaylistDirectory(t *testing.T) {
	srv := newStreamServer(t)
	r := New(time.Second, "", nil).Probe(context.Background(), srv.URL+"/live/ok.m3u8")
	if want := srv.URL + "/live/seg001.ts"; r.Segment != want {
		t.Errorf("Segment = %q, want %q", r.Segment, want)
	}
}

func TestProbe_badScheme(t *testing.T) {
	p := &Prober{}
	for _, u := range []string{"", "   ", "file:///tmp/x.m3u8", "rtmp://host/live", "not a url"} {
		if r := p.Probe(context.Background(), u); r.Live || r.Reason != ReasonBadScheme {
			t.Errorf("Probe(%q) = %+v, want bad_scheme", u, r)
		}
	}
}

func TestProbe_timeout(t *testing.T) {
	srv := newStreamServer(t)
	p := New(100*time.Millisecond, "", nil)
	r := p.Probe(context.Background(), srv.URL+"/live/slow.m3u8")
	if r.Live || r.Reason != ReasonTimeout {
		t.Errorf("got %+v, want timeout", r)
	}
}

func TestProbe_connectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/x.m3u8"
	srv.Close()
	r := New(time.Second, "", nil).Probe(context.Background(), url)
	if r.Live || r.Reason != ReasonError {
		t.Errorf("got %+v, want error", r)
	}
}

func TestProbe_sendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	New(time.Second, "custom/2.0", nil).Probe(context.Background(), srv.URL+"/a.m3u8")
	if got != "custom/2.0" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestFirstReference(t *testing.T) {
	cases := []struct{ in, want string }{
		{"#EXTM3U\n\n#EXTINF:1,\n  a.ts  \nb.ts\n", "a.ts"},
		{"#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\nhi/index.m3u8\n", "hi/index.m3u8"},
		{"#EXTM3U\n#EXT-X-ENDLIST\n", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := firstReference([]byte(c.in)); got != c.want {
			t.Errorf("firstReference(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
