package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Danondso/mfdr-sub001/internal/config"
	"github.com/Danondso/mfdr-sub001/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		outputs := []string{"stderr"}
		if logPath := cfg.LogPath(); logPath != "" {
			outputs = append(outputs, logPath)
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
	})
	return c.logger, c.loggerErr
}

// signalContext returns a context cancelled by SIGINT or SIGTERM so long
// operations can checkpoint and exit cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (c *commandContext) historyPath() string {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Paths.CacheDir == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.CacheDir, "history.db")
}

func (c *commandContext) checkpointPath() string {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Paths.CacheDir == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.CacheDir, "checkpoint.json")
}

func (c *commandContext) tracklistCachePath() string {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Paths.CacheDir == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.CacheDir, "tracklists.json")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
