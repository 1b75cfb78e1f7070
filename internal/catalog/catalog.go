// Package catalog reads and writes the local channel catalog file
// (advancefeed.json). Only the stream URL of each item is ever changed;
// every other field in the document is preserved as loaded.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const itemsKey = "shortFormVideos"

var (
	// ErrNotFound means the catalog file does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrCorrupt means the file exists but is not a usable catalog.
	ErrCorrupt = errors.New("catalog: corrupt")
)

// Entry is one channel in the catalog. URL may be empty, in which case the
// entry is left alone by the reconciler.
type Entry struct {
	ID      string
	Title   string
	Country string
	URL     string
}

// Document is a loaded catalog file.
type Document struct {
	mu    sync.RWMutex
	root  map[string]any
	items []map[string]any
}

// Load reads path. A missing file is ErrNotFound; bad JSON, a missing
// item list or a duplicate id is ErrCorrupt.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("catalog load: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog JSON. Numbers are kept verbatim.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	raw, ok := root[itemsKey].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q array", ErrCorrupt, itemsKey)
	}
	d := &Document{root: root, items: make([]map[string]any, 0, len(raw))}
	seen := make(map[string]bool, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrCorrupt, i)
		}
		if id := stringField(m, "id"); id != "" {
			if seen[id] {
				return nil, fmt.Errorf("%w: duplicate id %q", ErrCorrupt, id)
			}
			seen[id] = true
		}
		d.items = append(d.items, m)
	}
	return d, nil
}

// Entries returns one entry per item, in file order.
func (d *Document) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Entry, len(d.items))
	for i, m := range d.items {
		out[i] = Entry{
			ID:      stringField(m, "id"),
			Title:   stringField(m, "title"),
			Country: stringField(m, "country"),
			URL:     firstVideoURL(m),
		}
	}
	return out
}

// Apply writes the URLs of entries back into the items with the same id and
// returns how many items changed. Entries with an unknown id are ignored.
func (d *Document) Apply(entries []Entry) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	byID := make(map[string]map[string]any, len(d.items))
	for _, m := range d.items {
		byID[stringField(m, "id")] = m
	}
	changed := 0
	for _, e := range entries {
		m, ok := byID[e.ID]
		if !ok || e.URL == "" || firstVideoURL(m) == e.URL {
			continue
		}
		if setFirstVideoURL(m, e.URL) {
			changed++
		}
	}
	return changed
}

// LastUpdated returns the lastUpdated field as stored.
func (d *Document) LastUpdated() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, _ := d.root["lastUpdated"].(string)
	return s
}

// Save stamps lastUpdated with now and writes the whole document atomically.
func (d *Document) Save(path string, now time.Time) error {
	d.mu.Lock()
	d.root["lastUpdated"] = now.UTC().Format(time.RFC3339)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(d.root)
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("catalog save: encode: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(filepath.Clean(path))
	tmp, err := os.CreateTemp(dir, ".catalog-*.json.tmp")
	if err != nil {
		return fmt.Errorf("catalog save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if writeErr != nil {
			return fmt.Errorf("catalog save: write: %w", writeErr)
		}
		return fmt.Errorf("catalog save: close: %w", closeErr)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog save: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog save: rename: %w", err)
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// firstVideo returns content.videos[0], or nil.
func firstVideo(m map[string]any) map[string]any {
	content, _ := m["content"].(map[string]any)
	videos, _ := content["videos"].([]any)
	if len(videos) == 0 {
		return nil
	}
	v, _ := videos[0].(map[string]any)
	return v
}

func firstVideoURL(m map[string]any) string {
	v := firstVideo(m)
	if v == nil {
		return ""
	}
	s, _ := v["url"].(string)
	return s
}

func setFirstVideoURL(m map[string]any, url string) bool {
	v := firstVideo(m)
	if v == nil {
		return false
	}
	v["url"] = url
	return true
}
