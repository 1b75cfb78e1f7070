package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultCatalogPath = "advancefeed.json"
	DefaultFeedURL     = "https://iptv-org.github.io/api/streams.json"
	DefaultUserAgent   = "tv-linkfixer/1.0"
)

// Config holds link fixer settings.
// Precedence: defaults, then the TOML file (if any), then LINKFIXER_* env.
type Config struct {
	CatalogPath string
	FeedURL     string
	FeedTimeout time.Duration
	ChannelsURL string // iptv-org channels.json used to enrich the feed; "" = off

	ProbeTimeout    time.Duration
	ProbeDelay      time.Duration // pause between probes for one channel
	Workers         int           // entries reconciled in parallel
	HostConcurrency int           // simultaneous requests per origin; 0 = unlimited
	UserAgent       string

	JournalPath  string // sqlite change journal; "" = disabled
	MetricsAddr  string // e.g. ":9105"; "" = no /metrics listener
	Interval     time.Duration
	DryRun       bool
	LogLevel     string
	LogFormat    string
	OTLPEndpoint string // "" = tracing off
}

// fileConfig mirrors Config for TOML; durations are Go duration strings ("30s").
type fileConfig struct {
	CatalogPath     *string `toml:"catalog_path"`
	FeedURL         *string `toml:"feed_url"`
	FeedTimeout     *string `toml:"feed_timeout"`
	ChannelsURL     *string `toml:"channels_url"`
	ProbeTimeout    *string `toml:"probe_timeout"`
	ProbeDelay      *string `toml:"probe_delay"`
	Workers         *int    `toml:"workers"`
	HostConcurrency *int    `toml:"host_concurrency"`
	UserAgent       *string `toml:"user_agent"`
	JournalPath     *string `toml:"journal_path"`
	MetricsAddr     *string `toml:"metrics_addr"`
	Interval        *string `toml:"interval"`
	DryRun          *bool   `toml:"dry_run"`
	LogLevel        *string `toml:"log_level"`
	LogFormat       *string `toml:"log_format"`
	OTLPEndpoint    *string `toml:"otlp_endpoint"`
}

func Default() Config {
	return Config{
		CatalogPath:     DefaultCatalogPath,
		FeedURL:         DefaultFeedURL,
		FeedTimeout:     30 * time.Second,
		ProbeTimeout:    10 * time.Second,
		ProbeDelay:      500 * time.Millisecond,
		Workers:         1,
		HostConcurrency: 2,
		UserAgent:       DefaultUserAgent,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load builds the config. path may be empty; a named file that does not
// exist is an error. Call LoadEnvFile(".env") first to pick up a .env file.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.mergeFile(path); err != nil {
			return nil, err
		}
	}
	c.mergeEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		return fmt.Errorf("open config: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&c.CatalogPath, fc.CatalogPath)
	setString(&c.FeedURL, fc.FeedURL)
	setString(&c.ChannelsURL, fc.ChannelsURL)
	setString(&c.UserAgent, fc.UserAgent)
	setString(&c.JournalPath, fc.JournalPath)
	setString(&c.MetricsAddr, fc.MetricsAddr)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)
	setString(&c.OTLPEndpoint, fc.OTLPEndpoint)
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.HostConcurrency != nil {
		c.HostConcurrency = *fc.HostConcurrency
	}
	if fc.DryRun != nil {
		c.DryRun = *fc.DryRun
	}
	for _, d := range []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"feed_timeout", fc.FeedTimeout, &c.FeedTimeout},
		{"probe_timeout", fc.ProbeTimeout, &c.ProbeTimeout},
		{"probe_delay", fc.ProbeDelay, &c.ProbeDelay},
		{"interval", fc.Interval, &c.Interval},
	} {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(*d.src))
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.CatalogPath = getEnv("LINKFIXER_CATALOG", c.CatalogPath)
	c.FeedURL = getEnv("LINKFIXER_FEED_URL", c.FeedURL)
	c.FeedTimeout = getEnvDuration("LINKFIXER_FEED_TIMEOUT", c.FeedTimeout)
	c.ChannelsURL = getEnv("LINKFIXER_CHANNELS_URL", c.ChannelsURL)
	c.ProbeTimeout = getEnvDuration("LINKFIXER_PROBE_TIMEOUT", c.ProbeTimeout)
	c.ProbeDelay = getEnvDuration("LINKFIXER_PROBE_DELAY", c.ProbeDelay)
	c.Workers = getEnvInt("LINKFIXER_WORKERS", c.Workers)
	c.HostConcurrency = getEnvInt("LINKFIXER_HOST_CONCURRENCY", c.HostConcurrency)
	c.UserAgent = getEnv("LINKFIXER_USER_AGENT", c.UserAgent)
	c.JournalPath = getEnv("LINKFIXER_JOURNAL", c.JournalPath)
	c.MetricsAddr = getEnv("LINKFIXER_METRICS_ADDR", c.MetricsAddr)
	c.Interval = getEnvDuration("LINKFIXER_INTERVAL", c.Interval)
	c.DryRun = getEnvBool("LINKFIXER_DRY_RUN", c.DryRun)
	c.LogLevel = getEnv("LINKFIXER_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LINKFIXER_LOG_FORMAT", c.LogFormat)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.CatalogPath) == "":
		return errors.New("config: catalog_path is required")
	case strings.TrimSpace(c.FeedURL) == "":
		return errors.New("config: feed_url is required")
	case c.Workers < 1:
		return fmt.Errorf("config: workers must be >= 1, got %d", c.Workers)
	case c.HostConcurrency < 0:
		return fmt.Errorf("config: host_concurrency must be >= 0, got %d", c.HostConcurrency)
	case c.FeedTimeout <= 0:
		return fmt.Errorf("config: feed_timeout must be positive, got %s", c.FeedTimeout)
	case c.ProbeTimeout <= 0:
		return fmt.Errorf("config: probe_timeout must be positive, got %s", c.ProbeTimeout)
	case c.ProbeDelay < 0:
		return fmt.Errorf("config: probe_delay must not be negative, got %s", c.ProbeDelay)
	case c.Interval < 0:
		return fmt.Errorf("config: interval must not be negative, got %s", c.Interval)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "console", "text", "json":
	default:
		return fmt.Errorf("config: log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
