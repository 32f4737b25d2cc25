// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service wires the menu store, the snapshot cache and the tree
// builder together. It is the only place that talks to all three.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/navmenu/internal/cache"
	"github.com/olegiv/navmenu/internal/menu"
	"github.com/olegiv/navmenu/internal/metrics"
	"github.com/olegiv/navmenu/internal/model"
	"github.com/olegiv/navmenu/internal/store"
)

// Drawn is everything a renderer needs to emit one menu.
type Drawn struct {
	Name        string       `json:"name"`
	CurrentPath string       `json:"current_path"`
	Items       []*menu.Item `json:"items"`
}

// MenuService provides menu lookup, tree drawing and menu management.
type MenuService struct {
	db        *sql.DB
	queries   *store.Queries
	menuCache *cache.MenuCache
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// NewMenuService creates a new MenuService.
// menuCache and rec may be nil to disable caching or metrics.
func NewMenuService(db *sql.DB, menuCache *cache.MenuCache, rec *metrics.Recorder, logger *slog.Logger) *MenuService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{
		db:        db,
		queries:   store.New(db),
		menuCache: menuCache,
		metrics:   rec,
		logger:    logger,
	}
}

// Lookup returns the flat node set of the named menu in sibling order.
// An unknown menu yields an empty result and no error; store failures are
// returned to the caller.
func (s *MenuService) Lookup(ctx context.Context, name string) ([]model.Node, error) {
	snap, err := s.snapshot(ctx, name)
	if err != nil || snap == nil {
		return nil, err
	}
	return snap.Nodes, nil
}

// Draw looks up the named menu and builds its tree for currentPath.
// Malformed references are logged and counted but never fail the draw.
func (s *MenuService) Draw(ctx context.Context, name, currentPath string) (Drawn, error) {
	drawn := Drawn{Name: name, CurrentPath: currentPath}

	snap, err := s.snapshot(ctx, name)
	if err != nil {
		return drawn, err
	}
	if snap == nil {
		// Unknown names come from request paths and never become metric labels.
		drawn.Items = menu.Build(nil, currentPath)
		return drawn, nil
	}

	items, report := menu.BuildWithReport(snap.Nodes, currentPath)
	s.reportProblems(ctx, snap.Menu.Name, report)

	drawn.Items = items
	s.metrics.Render(snap.Menu.Name, len(snap.Nodes), len(menu.ActivePath(items)) > 0)
	return drawn, nil
}

// snapshot loads a menu and its nodes, through the cache when configured.
// It returns nil, nil for an unknown menu.
func (s *MenuService) snapshot(ctx context.Context, name string) (*cache.MenuSnapshot, error) {
	if s.menuCache != nil {
		if snap, ok := s.menuCache.Get(ctx, name); ok {
			s.metrics.Lookup(metrics.LookupHit)
			return snap, nil
		}
	}

	m, err := s.queries.GetMenuByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.Lookup(metrics.LookupNotFound)
			s.logger.Debug("menu not found", "menu", name)
			return nil, nil
		}
		s.metrics.Lookup(metrics.LookupError)
		return nil, fmt.Errorf("looking up menu %q: %w", name, err)
	}

	nodes, err := s.queries.ListMenuNodes(ctx, m.ID)
	if err != nil {
		s.metrics.Lookup(metrics.LookupError)
		return nil, fmt.Errorf("listing nodes of menu %q: %w", name, err)
	}
	s.metrics.Lookup(metrics.LookupStore)

	snap := &cache.MenuSnapshot{Menu: m, Nodes: nodes}
	if s.menuCache != nil {
		if err := s.menuCache.Set(ctx, snap); err != nil {
			s.logger.Warn("failed to cache menu", "menu", name, "error", err)
		}
	}
	return snap, nil
}

func (s *MenuService) reportProblems(ctx context.Context, name string, report menu.Report) {
	for _, p := range report.Problems {
		s.logger.WarnContext(ctx, "malformed menu reference", "menu", name, "problem", p)
		s.metrics.Problem(name, string(p.Kind))
	}
}

// invalidate drops the cached snapshot of a menu after a write.
func (s *MenuService) invalidate(ctx context.Context, name string) {
	if s.menuCache == nil {
		return
	}
	if err := s.menuCache.Invalidate(ctx, name); err != nil {
		s.logger.Warn("failed to invalidate menu cache", "menu", name, "error", err)
	}
}
