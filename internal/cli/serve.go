// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/navmenu/internal/cache"
	"github.com/olegiv/navmenu/internal/handler"
	"github.com/olegiv/navmenu/internal/metrics"
	"github.com/olegiv/navmenu/internal/render"
	"github.com/olegiv/navmenu/internal/scheduler"
	"github.com/olegiv/navmenu/internal/service"
	"github.com/olegiv/navmenu/internal/store"
)

// app is the wired server: store, cache, service and router.
type app struct {
	db        *sql.DB
	backend   cache.Cache
	menuCache *cache.MenuCache
	service   *service.MenuService
	handler   http.Handler
}

// newRenderer loads the page templates; replaced in tests.
var newRenderer = render.New

func (a *app) Close() {
	if a.backend != nil {
		_ = a.backend.Close()
	}
	_ = a.db.Close()
}

func (c *CLI) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the menu audit job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *CLI) newApp(ctx context.Context) (*app, error) {
	db, err := c.openDB()
	if err != nil {
		return nil, err
	}

	if err := store.Seed(ctx, db, c.cfg.DoSeed); err != nil {
		closeDB(db, c.logger)
		return nil, fmt.Errorf("seeding database: %w", err)
	}

	backend, menuCache, err := c.openCache(ctx, false)
	if err != nil {
		closeDB(db, c.logger)
		return nil, fmt.Errorf("initializing cache: %w", err)
	}
	c.logger.Info("cache ready", "type", c.cfg.CacheType)
	a := &app{db: db, backend: backend, menuCache: menuCache}

	renderer, err := newRenderer()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	rec := metrics.New()
	svc := service.NewMenuService(db, menuCache, rec, c.logger)
	a.service = svc

	router := handler.NewRouter(handler.RouterConfig{
		DB:             db,
		Service:        svc,
		MenuCache:      menuCache,
		Renderer:       renderer,
		Metrics:        rec,
		Logger:         c.logger,
		DefaultMenu:    c.cfg.DefaultMenu,
		IsDev:          c.cfg.IsDevelopment(),
		RateLimit:      c.cfg.APIRateLimit,
		RateBurst:      c.cfg.APIRateBurst,
		TrustedOrigins: c.cfg.TrustedOrigins,
	})

	a.handler = router
	return a, nil
}

func (c *CLI) serve(ctx context.Context) error {
	a, err := c.newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              c.cfg.ServerAddr(),
		Handler:           a.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.logger.Info("starting server", "addr", srv.Addr, "env", c.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		c.logger.Info("server stopped")
		return nil
	})

	if c.cfg.AuditEnabled() {
		sched := scheduler.New(a.service, c.logger)
		g.Go(func() error {
			return sched.Run(gctx, c.cfg.AuditSchedule)
		})
	}

	return g.Wait()
}
