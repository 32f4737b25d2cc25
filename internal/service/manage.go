// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/navmenu/internal/model"
	"github.com/olegiv/navmenu/internal/store"
	"github.com/olegiv/navmenu/internal/util"
)

// nameSanitizer strips all markup from user supplied names.
var nameSanitizer = bluemonday.StrictPolicy()

// NodeInput holds the editable fields of a menu node.
type NodeInput struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	ParentID *int64 `json:"parent_id"`
	Order    int    `json:"order"`
}

// ListMenus returns all menus ordered by name.
func (s *MenuService) ListMenus(ctx context.Context) ([]model.Menu, error) {
	menus, err := s.queries.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing menus: %w", err)
	}
	return menus, nil
}

// MenuBySlug returns a menu by its slug.
func (s *MenuService) MenuBySlug(ctx context.Context, slug string) (model.Menu, error) {
	m, err := s.queries.GetMenuBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Menu{}, fmt.Errorf("menu %q: %w", slug, ErrNotFound)
		}
		return model.Menu{}, fmt.Errorf("loading menu %q: %w", slug, err)
	}
	return m, nil
}

// CreateMenu creates an empty menu. The slug is derived from the name.
func (s *MenuService) CreateMenu(ctx context.Context, name string) (model.Menu, error) {
	name, slug, err := NormalizeMenuName(name)
	if err != nil {
		return model.Menu{}, err
	}

	now := time.Now().UTC()
	m, err := s.queries.CreateMenu(ctx, store.CreateMenuParams{
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Menu{}, fmt.Errorf("menu %q: %w", name, ErrConflict)
		}
		return model.Menu{}, fmt.Errorf("creating menu: %w", err)
	}

	s.invalidate(ctx, name)
	s.logger.Info("menu created", "menu", name, "slug", slug)
	return m, nil
}

// DeleteMenu removes a menu and all of its nodes.
func (s *MenuService) DeleteMenu(ctx context.Context, slug string) error {
	m, err := s.MenuBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.queries.DeleteMenu(ctx, m.ID); err != nil {
		return fmt.Errorf("deleting menu %q: %w", slug, err)
	}

	s.invalidate(ctx, m.Name)
	s.logger.Info("menu deleted", "menu", m.Name)
	return nil
}

// Nodes returns the stored nodes of the menu with the given slug.
func (s *MenuService) Nodes(ctx context.Context, slug string) (model.Menu, []model.Node, error) {
	m, err := s.MenuBySlug(ctx, slug)
	if err != nil {
		return model.Menu{}, nil, err
	}
	nodes, err := s.queries.ListMenuNodes(ctx, m.ID)
	if err != nil {
		return model.Menu{}, nil, fmt.Errorf("listing nodes of menu %q: %w", slug, err)
	}
	return m, nodes, nil
}

// AddNode appends a node to the menu with the given slug.
func (s *MenuService) AddNode(ctx context.Context, slug string, in NodeInput) (model.Node, error) {
	m, err := s.MenuBySlug(ctx, slug)
	if err != nil {
		return model.Node{}, err
	}
	in, err = s.validateNode(ctx, m, 0, in)
	if err != nil {
		return model.Node{}, err
	}

	now := time.Now().UTC()
	var node model.Node
	err = s.withTx(ctx, func(q *store.Queries) error {
		var err error
		node, err = q.CreateNode(ctx, store.CreateNodeParams{
			MenuID:    m.ID,
			ParentID:  util.NullInt64FromPtr(in.ParentID),
			Name:      in.Name,
			URL:       util.NullStringFromValue(in.URL),
			Order:     in.Order,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		return q.TouchMenu(ctx, m.ID, now)
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Node{}, fmt.Errorf("position %d under this parent is taken: %w", in.Order, ErrConflict)
		}
		return model.Node{}, fmt.Errorf("creating node: %w", err)
	}

	s.invalidate(ctx, m.Name)
	s.logger.Info("menu node created", "menu", m.Name, "node_id", node.ID, "name", node.Name)
	return node, nil
}

// UpdateNode rewrites a node of the menu with the given slug.
func (s *MenuService) UpdateNode(ctx context.Context, slug string, id int64, in NodeInput) (model.Node, error) {
	m, err := s.MenuBySlug(ctx, slug)
	if err != nil {
		return model.Node{}, err
	}
	existing, err := s.nodeOf(ctx, m, id)
	if err != nil {
		return model.Node{}, err
	}
	in, err = s.validateNode(ctx, m, id, in)
	if err != nil {
		return model.Node{}, err
	}

	now := time.Now().UTC()
	err = s.withTx(ctx, func(q *store.Queries) error {
		if err := q.UpdateNode(ctx, store.UpdateNodeParams{
			ID:        id,
			ParentID:  util.NullInt64FromPtr(in.ParentID),
			Name:      in.Name,
			URL:       util.NullStringFromValue(in.URL),
			Order:     in.Order,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		return q.TouchMenu(ctx, m.ID, now)
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Node{}, fmt.Errorf("position %d under this parent is taken: %w", in.Order, ErrConflict)
		}
		return model.Node{}, fmt.Errorf("updating node %d: %w", id, err)
	}

	existing.ParentID = util.NullInt64FromPtr(in.ParentID)
	existing.Name = in.Name
	existing.URL = in.URL
	existing.Order = in.Order
	existing.UpdatedAt = now

	s.invalidate(ctx, m.Name)
	s.logger.Info("menu node updated", "menu", m.Name, "node_id", id)
	return existing, nil
}

// DeleteNode removes a node and its descendants.
func (s *MenuService) DeleteNode(ctx context.Context, slug string, id int64) error {
	m, err := s.MenuBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := s.nodeOf(ctx, m, id); err != nil {
		return err
	}
	if err := s.queries.DeleteNode(ctx, id); err != nil {
		return fmt.Errorf("deleting node %d: %w", id, err)
	}

	s.invalidate(ctx, m.Name)
	s.logger.Info("menu node deleted", "menu", m.Name, "node_id", id)
	return nil
}

// nodeOf loads a node and checks that it belongs to m.
func (s *MenuService) nodeOf(ctx context.Context, m model.Menu, id int64) (model.Node, error) {
	n, err := s.queries.GetNode(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Node{}, fmt.Errorf("node %d: %w", id, ErrNotFound)
		}
		return model.Node{}, fmt.Errorf("loading node %d: %w", id, err)
	}
	if n.MenuID != m.ID {
		return model.Node{}, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return n, nil
}

// NormalizeNode trims and sanitizes the fields of in and checks the limits
// that do not depend on stored state.
func NormalizeNode(in NodeInput) (NodeInput, error) {
	in.Name = sanitizeName(in.Name)
	in.URL = strings.TrimSpace(in.URL)

	if in.Name == "" {
		return in, invalid("name", "is required")
	}
	if utf8.RuneCountInString(in.Name) > model.MaxNodeNameLength {
		return in, invalid("name", fmt.Sprintf("must be at most %d characters", model.MaxNodeNameLength))
	}
	if len(in.URL) > model.MaxNodeURLLength {
		return in, invalid("url", fmt.Sprintf("must be at most %d characters", model.MaxNodeURLLength))
	}
	if err := validateURL(in.URL); err != nil {
		return in, err
	}
	if in.Order < 0 {
		return in, invalid("order", "must not be negative")
	}
	return in, nil
}

// NormalizeMenuName sanitizes a menu name and derives its slug.
func NormalizeMenuName(name string) (string, string, error) {
	name = sanitizeName(name)
	if name == "" {
		return "", "", invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > model.MaxMenuNameLength {
		return "", "", invalid("name", fmt.Sprintf("must be at most %d characters", model.MaxMenuNameLength))
	}
	slug := util.Slugify(name)
	if slug == "" {
		return "", "", invalid("name", "must contain at least one letter or digit")
	}
	return name, slug, nil
}

// validateNode normalizes in and checks it against the stored menu.
// id is the node being updated, or 0 for a new node.
func (s *MenuService) validateNode(ctx context.Context, m model.Menu, id int64, in NodeInput) (NodeInput, error) {
	in, err := NormalizeNode(in)
	if err != nil {
		return in, err
	}
	if in.ParentID == nil {
		return in, nil
	}

	parentID := *in.ParentID
	if parentID == id {
		return in, invalid("parent_id", "a node cannot be its own parent")
	}
	if _, err := s.nodeOf(ctx, m, parentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return in, invalid("parent_id", "parent must belong to the same menu")
		}
		return in, err
	}
	if id == 0 {
		return in, nil
	}

	// Reject a move below one of the node's own descendants.
	nodes, err := s.queries.ListMenuNodes(ctx, m.ID)
	if err != nil {
		return in, fmt.Errorf("listing nodes of menu %q: %w", m.Name, err)
	}
	if isDescendant(nodes, parentID, id) {
		return in, invalid("parent_id", "a node cannot be moved below its own descendant")
	}
	return in, nil
}

// isDescendant reports whether candidate sits below ancestor in nodes.
func isDescendant(nodes []model.Node, candidate, ancestor int64) bool {
	parents := make(map[int64]sql.NullInt64, len(nodes))
	for _, n := range nodes {
		parents[n.ID] = n.ParentID
	}
	seen := make(map[int64]bool, len(nodes))
	for cur := candidate; !seen[cur]; {
		seen[cur] = true
		p, ok := parents[cur]
		if !ok || !p.Valid {
			return false
		}
		if p.Int64 == ancestor {
			return true
		}
		cur = p.Int64
	}
	return false
}

// validateURL accepts site relative paths and http, https, mailto and tel links.
func validateURL(raw string) error {
	if raw == "" || raw == model.PlaceholderURL {
		return nil
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalid("url", "is not a valid URL")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return invalid("url", "must include a host")
		}
		return nil
	case "mailto", "tel":
		return nil
	default:
		return invalid("url", "must be a site path or an http, https, mailto or tel link")
	}
}

func sanitizeName(s string) string {
	return strings.TrimSpace(html.UnescapeString(nameSanitizer.Sanitize(s)))
}

func (s *MenuService) withTx(ctx context.Context, fn func(q *store.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
