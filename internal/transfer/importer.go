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
	"os"
	"strings"
	"time"

	"github.com/olegiv/navmenu/internal/model"
	"github.com/olegiv/navmenu/internal/service"
	"github.com/olegiv/navmenu/internal/store"
	"github.com/olegiv/navmenu/internal/util"
)

// Invalidator drops cached menu snapshots after an import.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Importer loads documents into the store.
type Importer struct {
	store  *store.Queries
	db     *sql.DB
	cache  Invalidator
	logger *slog.Logger
}

// NewImporter creates a new Importer instance. cache may be nil.
func NewImporter(db *sql.DB, cache Invalidator, logger *slog.Logger) *Importer {
	return &Importer{
		store:  store.New(db),
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// Import validates doc and writes it in a single transaction. Nothing is
// written when any menu fails.
func (i *Importer) Import(ctx context.Context, doc *Document, opts ImportOptions) (*ImportResult, error) {
	result := NewImportResult(opts.DryRun)
	if opts.ConflictStrategy == "" {
		opts.ConflictStrategy = ConflictSkip
	}

	if errs := Validate(doc); len(errs) > 0 {
		for _, err := range errs {
			result.AddError(err.Entity, err.ID, err.Message)
		}
		return result, ErrValidation
	}

	if opts.DryRun {
		if err := i.countEntities(ctx, doc, opts, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	i.importMenus(ctx, i.store.WithTx(tx), doc.Menus, opts, result)
	if !result.Success {
		return result, errors.New("import failed, no changes were written")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if i.cache != nil {
		if err := i.cache.InvalidateAll(ctx); err != nil {
			i.logger.Warn("failed to invalidate menu cache", "error", err)
		}
	}

	i.logger.Info("menus imported",
		"created", result.TotalCreated(),
		"updated", result.TotalUpdated(),
		"skipped", result.TotalSkipped())
	return result, nil
}

// ImportFromReader reads and imports from an io.Reader.
func (i *Importer) ImportFromReader(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, doc, opts)
}

// ImportFromFile reads and imports from a file path.
func (i *Importer) ImportFromFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return i.ImportFromReader(ctx, f, opts)
}

// Validate checks a document without touching the store.
func Validate(doc *Document) []ImportError {
	var errs []ImportError
	add := func(entity, id, msg string) {
		errs = append(errs, ImportError{Entity: entity, ID: id, Message: msg})
	}

	if doc == nil {
		add("document", "", "is empty")
		return errs
	}
	switch doc.Version {
	case "":
		add("document", "version", "missing version")
	case FormatVersion:
	default:
		add("document", "version", fmt.Sprintf("unsupported version %q", doc.Version))
	}

	seen := make(map[string]bool, len(doc.Menus))
	for idx, m := range doc.Menus {
		name, slug, err := service.NormalizeMenuName(m.Name)
		if err != nil {
			add("menu", fmt.Sprintf("#%d", idx+1), err.Error())
			continue
		}
		if seen[slug] {
			add("menu", name, "appears more than once")
			continue
		}
		seen[slug] = true
		validateItems(m.Items, name, 1, add)
	}
	return errs
}

func validateItems(items []ExportItem, path string, depth int, add func(entity, id, msg string)) {
	if len(items) > 0 && depth > MaxDepth {
		add("node", path, fmt.Sprintf("nesting deeper than %d levels", MaxDepth))
		return
	}
	for idx, item := range items {
		id := fmt.Sprintf("%s/%d", path, idx+1)
		in, err := service.NormalizeNode(service.NodeInput{Name: item.Name, URL: item.URL, Order: idx})
		if err != nil {
			add("node", id, err.Error())
			continue
		}
		validateItems(item.Children, path+"/"+in.Name, depth+1, add)
	}
}

func (i *Importer) countEntities(ctx context.Context, doc *Document, opts ImportOptions, result *ImportResult) error {
	for _, m := range doc.Menus {
		name, _, _ := service.NormalizeMenuName(m.Name)
		nodes := countItems(m.Items)

		_, err := i.store.GetMenuByName(ctx, name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result.IncrementCreated(entityMenus)
			result.Created[entityNodes] += nodes
		case err != nil:
			return fmt.Errorf("loading menu %q: %w", name, err)
		case opts.ConflictStrategy == ConflictOverwrite:
			result.IncrementUpdated(entityMenus)
			result.Created[entityNodes] += nodes
		default:
			result.IncrementSkipped(entityMenus)
		}
	}
	return nil
}

func countItems(items []ExportItem) int {
	n := len(items)
	for _, item := range items {
		n += countItems(item.Children)
	}
	return n
}

func (i *Importer) importMenus(ctx context.Context, queries *store.Queries, menus []ExportMenu, opts ImportOptions, result *ImportResult) {
	now := time.Now().UTC()

	for _, m := range menus {
		name, slug, _ := service.NormalizeMenuName(m.Name)

		existing, err := queries.GetMenuByName(ctx, name)
		menuExists := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			result.AddError("menu", name, err.Error())
			continue
		}

		var menuID int64
		if menuExists {
			switch opts.ConflictStrategy {
			case ConflictOverwrite:
				if err := queries.DeleteMenuNodes(ctx, existing.ID); err != nil {
					result.AddError("menu", name, err.Error())
					continue
				}
				if err := queries.TouchMenu(ctx, existing.ID, now); err != nil {
					result.AddError("menu", name, err.Error())
					continue
				}
				menuID = existing.ID
				result.IncrementUpdated(entityMenus)
			default:
				result.IncrementSkipped(entityMenus)
				continue
			}
		} else {
			created, err := queries.CreateMenu(ctx, store.CreateMenuParams{
				Name:      name,
				Slug:      slug,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				msg := err.Error()
				if store.IsUniqueViolation(err) {
					msg = fmt.Sprintf("slug %q is taken by another menu", slug)
				}
				result.AddError("menu", name, msg)
				continue
			}
			menuID = created.ID
			result.IncrementCreated(entityMenus)
		}

		if err := i.importItems(ctx, queries, menuID, m.Items, sql.NullInt64{}, now, result); err != nil {
			result.AddError("menu", name, err.Error())
		}
	}
}

func (i *Importer) importItems(ctx context.Context, queries *store.Queries, menuID int64, items []ExportItem, parentID sql.NullInt64, now time.Time, result *ImportResult) error {
	for idx, item := range items {
		in, err := service.NormalizeNode(service.NodeInput{Name: item.Name, URL: item.URL, Order: idx})
		if err != nil {
			return err
		}

		created, err := queries.CreateNode(ctx, store.CreateNodeParams{
			MenuID:    menuID,
			ParentID:  parentID,
			Name:      in.Name,
			URL:       util.NullStringFromValue(importURL(in.URL)),
			Order:     in.Order,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating node %q: %w", in.Name, err)
		}
		result.IncrementCreated(entityNodes)

		if len(item.Children) > 0 {
			newParentID := sql.NullInt64{Int64: created.ID, Valid: true}
			if err := i.importItems(ctx, queries, menuID, item.Children, newParentID, now, result); err != nil {
				return err
			}
		}
	}
	return nil
}

// importURL stores the placeholder as an absent URL.
func importURL(u string) string {
	if strings.TrimSpace(u) == model.PlaceholderURL {
		return ""
	}
	return u
}
