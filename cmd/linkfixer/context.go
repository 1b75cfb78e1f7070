package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/CODERX24/tv/internal/config"
	"github.com/CODERX24/tv/internal/feed"
	"github.com/CODERX24/tv/internal/httpclient"
	"github.com/CODERX24/tv/internal/iptvorg"
	"github.com/CODERX24/tv/internal/logging"
	"github.com/CODERX24/tv/internal/probe"
	"github.com/CODERX24/tv/internal/reconcile"
)

type rootFlags struct {
	config    string
	envFile   string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	logger     *slog.Logger
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads .env, the config file and env once, then applies the
// persistent flag overrides and builds the logger.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		if path := strings.TrimSpace(c.flags.envFile); path != "" {
			if err := config.LoadEnvFile(path); err != nil {
				c.configErr = fmt.Errorf("load env file: %w", err)
				return
			}
		}
		cfg, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags.logLevel != "" {
			cfg.LogLevel = c.flags.logLevel
		}
		if c.flags.logFormat != "" {
			cfg.LogFormat = c.flags.logFormat
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			Output: cmd.ErrOrStderr(),
		})
		if err != nil {
			c.configErr = err
			return
		}
		slog.SetDefault(logger)
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

func (c *commandContext) log(component string) *slog.Logger {
	return logging.Component(c.logger, component)
}

func (c *commandContext) newProber() *probe.Prober {
	var hosts *httpclient.HostSemaphore
	if c.config.HostConcurrency > 0 {
		hosts = httpclient.NewHostSemaphore(c.config.HostConcurrency)
	}
	return probe.New(c.config.ProbeTimeout, c.config.UserAgent, hosts)
}

func (c *commandContext) newFetcher() *feed.Fetcher {
	return &feed.Fetcher{
		Source:    c.config.FeedURL,
		Client:    httpclient.WithTimeout(c.config.FeedTimeout),
		Timeout:   c.config.FeedTimeout,
		UserAgent: c.config.UserAgent,
		Logger:    c.log("feed"),
	}
}

// newSource is the feed, enriched from the channel directory when one is configured.
func (c *commandContext) newSource() reconcile.Source {
	f := c.newFetcher()
	if c.config.ChannelsURL == "" {
		return f
	}
	return &iptvorg.Source{
		Feed:     f,
		Channels: c.config.ChannelsURL,
		Client:   f.Client,
		Logger:   c.log("iptvorg"),
	}
}

func (c *commandContext) newReconciler() *reconcile.Reconciler {
	return &reconcile.Reconciler{
		Prober:     c.newProber(),
		ProbeDelay: c.config.ProbeDelay,
		Workers:    c.config.Workers,
		Logger:     c.log("reconcile"),
	}
}
