// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olegiv/navmenu/internal/menu"
	"github.com/olegiv/navmenu/internal/model"
	"github.com/olegiv/navmenu/internal/service"
	"github.com/olegiv/navmenu/internal/store"
)

// Exporter writes stored menus as nested documents.
type Exporter struct {
	store  *store.Queries
	logger *slog.Logger
}

// NewExporter creates a new Exporter instance.
func NewExporter(db store.DBTX, logger *slog.Logger) *Exporter {
	return &Exporter{
		store:  store.New(db),
		logger: logger,
	}
}

// Export builds a document holding the named menus, or every menu when
// no names are given.
func (e *Exporter) Export(ctx context.Context, names ...string) (*Document, error) {
	menus, err := e.selectMenus(ctx, names)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Menus:      make([]ExportMenu, 0, len(menus)),
	}

	for _, m := range menus {
		nodes, err := e.store.ListMenuNodes(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("listing nodes of menu %q: %w", m.Name, err)
		}

		tree, report := menu.BuildWithReport(nodes, "")
		for _, p := range report.Problems {
			e.logger.Warn("exporting malformed menu reference", "menu", m.Name, "problem", p.String())
		}

		doc.Menus = append(doc.Menus, ExportMenu{
			Name:  m.Name,
			Slug:  m.Slug,
			Items: exportItems(tree),
		})
	}

	e.logger.Info("menus exported", "menus", len(doc.Menus))
	return doc, nil
}

// ExportTo writes the export of the named menus to w.
func (e *Exporter) ExportTo(ctx context.Context, w io.Writer, names ...string) error {
	doc, err := e.Export(ctx, names...)
	if err != nil {
		return err
	}
	return Encode(w, doc)
}

func (e *Exporter) selectMenus(ctx context.Context, names []string) ([]model.Menu, error) {
	if len(names) == 0 {
		menus, err := e.store.ListMenus(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing menus: %w", err)
		}
		return menus, nil
	}

	menus := make([]model.Menu, 0, len(names))
	for _, name := range names {
		m, err := e.store.GetMenuByName(ctx, name)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("menu %q: %w", name, service.ErrNotFound)
			}
			return nil, fmt.Errorf("loading menu %q: %w", name, err)
		}
		menus = append(menus, m)
	}
	return menus, nil
}

func exportItems(items []*menu.Item) []ExportItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]ExportItem, 0, len(items))
	for _, item := range items {
		url := item.URL
		if url == model.PlaceholderURL {
			url = ""
		}
		out = append(out, ExportItem{
			Name:     item.Name,
			URL:      url,
			Children: exportItems(item.Children),
		})
	}
	return out
}
