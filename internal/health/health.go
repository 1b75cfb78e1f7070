package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/CODERX24/tv/internal/catalog"
	"github.com/CODERX24/tv/internal/httpclient"
	"github.com/CODERX24/tv/internal/safeurl"
)

const feedCheckTimeout = 15 * time.Second

// CheckFeed confirms the feed source is usable: HTTP 200 for a URL, an
// existing regular file for a local path.
func CheckFeed(ctx context.Context, client *http.Client, source string) error {
	if source == "" {
		return fmt.Errorf("no feed source configured")
	}
	if !safeurl.IsHTTPOrHTTPS(source) {
		fi, err := os.Stat(filepath.Clean(source))
		if err != nil {
			return fmt.Errorf("feed file: %w", err)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("feed file %s is not a regular file", source)
		}
		return nil
	}
	if client == nil {
		client = httpclient.WithTimeout(feedCheckTimeout)
	}
	// Some CDNs reject HEAD; GET and drop the body.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", httpclient.DefaultUserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("feed unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// CheckCatalog loads the catalog and returns the number of entries.
// Errors wrap catalog.ErrNotFound or catalog.ErrCorrupt.
func CheckCatalog(path string) (int, error) {
	doc, err := catalog.Load(path)
	if err != nil {
		return 0, err
	}
	return len(doc.Entries()), nil
}
