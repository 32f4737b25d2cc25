// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cli implements the navmenu command-line interface.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/olegiv/navmenu/internal/cache"
	"github.com/olegiv/navmenu/internal/config"
	"github.com/olegiv/navmenu/internal/logging"
	"github.com/olegiv/navmenu/internal/store"
	"github.com/olegiv/navmenu/internal/version"
)

// CLI holds shared state for all commands.
type CLI struct {
	environ map[string]string
	logOut  io.Writer

	cfg    *config.Config
	logger *slog.Logger
}

// Option configures a CLI.
type Option func(*CLI)

// WithEnviron reads configuration from environ instead of the process
// environment.
func WithEnviron(environ map[string]string) Option {
	return func(c *CLI) { c.environ = environ }
}

// New creates a CLI that logs to logOut.
func New(logOut io.Writer, opts ...Option) *CLI {
	c := &CLI{logOut: logOut}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "navmenu",
		Short:        "navmenu stores navigation menus and draws them for a page",
		Version:      version.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(verbose)
		},
	}

	root.SetVersionTemplate("navmenu " + version.Get().String() + "\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.auditCommand())

	return root
}

func (c *CLI) setup(verbose bool) error {
	cfg, err := config.LoadFrom(c.environ)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	logger, err := logging.New(c.logOut, level, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	c.cfg = cfg
	c.logger = logger
	return nil
}

// openDB opens the configured database and applies pending migrations.
func (c *CLI) openDB() (*sql.DB, error) {
	if c.cfg.DBDriver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(c.cfg.DBDSN), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	c.logger.Debug("opening database", "driver", c.cfg.DBDriver)
	db, err := store.Open(c.cfg.DBDriver, c.cfg.DBDSN, store.DefaultDBConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	if err := store.MigrateDriver(db, c.cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// openCache creates the configured cache backend. With sharedOnly set,
// only a backend visible to other processes is opened, so one-shot
// commands can invalidate what a running server holds.
func (c *CLI) openCache(ctx context.Context, sharedOnly bool) (cache.Cache, *cache.MenuCache, error) {
	if sharedOnly && !c.cfg.UseRedisCache() {
		return nil, nil, nil
	}

	backend, err := cache.New(ctx, cache.Config{
		Type:       c.cfg.CacheType,
		RedisURL:   c.cfg.RedisURL,
		Prefix:     c.cfg.CachePrefix,
		DefaultTTL: c.cfg.CacheTTLDuration(),
		MaxSize:    c.cfg.CacheMaxSize,
	})
	if err != nil {
		return nil, nil, err
	}
	if backend == nil {
		return nil, nil, nil
	}
	return backend, cache.NewMenuCache(backend, c.cfg.CacheTTLDuration()), nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("error closing database connection", "error", err)
	}
}
