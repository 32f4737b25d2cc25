// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/navmenu/internal/model"
)

// seedNode describes one seeded node; parent refers to an earlier index.
type seedNode struct {
	name   string
	url    string
	parent int // -1 for roots
	order  int
}

var defaultMenus = map[string][]seedNode{
	model.MenuMain: {
		{name: "Home", url: "/", parent: -1, order: 0},
		{name: "About", url: "/about", parent: -1, order: 1},
		{name: "Team", url: "/about/team", parent: 1, order: 0},
		{name: "History", url: "/about/history", parent: 1, order: 1},
		{name: "Contact", url: "/contact", parent: -1, order: 2},
	},
	model.MenuFooter: {
		{name: "Privacy", url: "/privacy", parent: -1, order: 0},
		{name: "Terms", url: "/terms", parent: -1, order: 1},
	},
}

// Seed creates the default menus when enabled and missing.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	queries := New(db)
	for _, name := range []string{model.MenuMain, model.MenuFooter} {
		_, err := queries.GetMenuByName(ctx, name)
		if err == nil {
			slog.Info("menu already exists, skipping seed", "menu", name)
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking for menu %q: %w", name, err)
		}

		if err := seedMenu(ctx, db, name, defaultMenus[name]); err != nil {
			return err
		}
		slog.Info("seeded default menu", "menu", name, "nodes", len(defaultMenus[name]))
	}

	return nil
}

func seedMenu(ctx context.Context, db *sql.DB, name string, nodes []seedNode) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := New(tx)
	now := time.Now().UTC()

	menu, err := q.CreateMenu(ctx, CreateMenuParams{
		Name:      name,
		Slug:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating menu %q: %w", name, err)
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		parent := sql.NullInt64{}
		if n.parent >= 0 {
			parent = sql.NullInt64{Int64: ids[n.parent], Valid: true}
		}
		created, err := q.CreateNode(ctx, CreateNodeParams{
			MenuID:    menu.ID,
			ParentID:  parent,
			Name:      n.name,
			URL:       sql.NullString{String: n.url, Valid: n.url != ""},
			Order:     n.order,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating node %q: %w", n.name, err)
		}
		ids[i] = created.ID
	}

	return tx.Commit()
}
