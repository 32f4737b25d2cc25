// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the HTTP routes of the navmenu server.
package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/navmenu/internal/cache"
	"github.com/olegiv/navmenu/internal/metrics"
	"github.com/olegiv/navmenu/internal/middleware"
	"github.com/olegiv/navmenu/internal/render"
	"github.com/olegiv/navmenu/internal/service"
)

// requestTimeout bounds every request, including store access.
const requestTimeout = 30 * time.Second

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	DB          *sql.DB
	Service     *service.MenuService
	MenuCache   *cache.MenuCache
	Renderer    *render.Renderer
	Metrics     *metrics.Recorder
	Logger      *slog.Logger
	DefaultMenu string
	IsDev       bool

	RateLimit      float64
	RateBurst      int
	TrustedOrigins []string
}

// NewRouter builds the application router.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDev)))

	health := NewHealthHandler(cfg.DB, cfg.MenuCache)
	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	menus := NewMenuHandler(cfg.Service, cfg.Renderer, logger)
	r.Route("/api/menus", func(r chi.Router) {
		r.Get("/", menus.List)
		r.Get("/{menu}/tree", menus.Tree)
		r.Get("/{menu}/nodes", menus.Nodes)

		// State changing routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.TrustedOrigins, cfg.IsDev)))
			r.Use(middleware.NewIPRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware())

			r.Post("/", menus.CreateMenu)
			r.Delete("/{menu}", menus.DeleteMenu)
			r.Post("/{menu}/nodes", menus.AddNode)
			r.Put("/{menu}/nodes/{id}", menus.UpdateNode)
			r.Delete("/{menu}/nodes/{id}", menus.DeleteNode)
		})
	})

	pages := NewPageHandler(cfg.Service, cfg.Renderer, cfg.DefaultMenu, logger)
	r.With(middleware.CanonicalPath).Get("/*", pages.ServeHTTP)

	return r
}
