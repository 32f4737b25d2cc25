// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/navmenu/internal/model"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the menu statements against a database or transaction.
type Queries struct {
	db DBTX
}

// New creates Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const menuColumns = `id, name, slug, created_at, updated_at`

const nodeColumns = `id, menu_id, parent_id, name, url, sort_order, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMenu(row rowScanner) (model.Menu, error) {
	var m model.Menu
	err := row.Scan(&m.ID, &m.Name, &m.Slug, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanNode(row rowScanner) (model.Node, error) {
	var (
		n   model.Node
		url sql.NullString
	)
	err := row.Scan(&n.ID, &n.MenuID, &n.ParentID, &n.Name, &url, &n.Order, &n.CreatedAt, &n.UpdatedAt)
	n.URL = url.String
	return n, err
}

// ListMenus returns all menus ordered by name.
func (q *Queries) ListMenus(ctx context.Context) ([]model.Menu, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+menuColumns+` FROM menus ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var menus []model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

// GetMenuByName returns the menu with the given name or sql.ErrNoRows.
func (q *Queries) GetMenuByName(ctx context.Context, name string) (model.Menu, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE name = ?`, name)
	return scanMenu(row)
}

// GetMenuBySlug returns the menu with the given slug or sql.ErrNoRows.
func (q *Queries) GetMenuBySlug(ctx context.Context, slug string) (model.Menu, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE slug = ?`, slug)
	return scanMenu(row)
}

// CreateMenuParams holds the values for CreateMenu.
type CreateMenuParams struct {
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateMenu inserts a menu and returns it.
func (q *Queries) CreateMenu(ctx context.Context, arg CreateMenuParams) (model.Menu, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO menus (name, slug, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return model.Menu{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Menu{}, fmt.Errorf("reading menu id: %w", err)
	}
	return model.Menu{
		ID:        id,
		Name:      arg.Name,
		Slug:      arg.Slug,
		CreatedAt: arg.CreatedAt,
		UpdatedAt: arg.UpdatedAt,
	}, nil
}

// TouchMenu bumps the menu's updated_at.
func (q *Queries) TouchMenu(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, `UPDATE menus SET updated_at = ? WHERE id = ?`, at, id)
	return err
}

// DeleteMenu removes a menu; its nodes are removed by cascade.
func (q *Queries) DeleteMenu(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menus WHERE id = ?`, id)
	return err
}

// ListMenuNodes returns the nodes of one menu in ascending sort order.
// Ties are broken by id so the order is stable across calls.
func (q *Queries) ListMenuNodes(ctx context.Context, menuID int64) ([]model.Node, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+nodeColumns+` FROM menu_nodes WHERE menu_id = ? ORDER BY sort_order, id`,
		menuID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var nodes []model.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// GetNode returns a node by id or sql.ErrNoRows.
func (q *Queries) GetNode(ctx context.Context, id int64) (model.Node, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM menu_nodes WHERE id = ?`, id)
	return scanNode(row)
}

// CreateNodeParams holds the values for CreateNode.
type CreateNodeParams struct {
	MenuID    int64
	ParentID  sql.NullInt64
	Name      string
	URL       sql.NullString
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateNode inserts a node and returns it.
func (q *Queries) CreateNode(ctx context.Context, arg CreateNodeParams) (model.Node, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO menu_nodes (menu_id, parent_id, name, url, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.MenuID, arg.ParentID, arg.Name, arg.URL, arg.Order, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return model.Node{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Node{}, fmt.Errorf("reading node id: %w", err)
	}
	return model.Node{
		ID:        id,
		MenuID:    arg.MenuID,
		ParentID:  arg.ParentID,
		Name:      arg.Name,
		URL:       arg.URL.String,
		Order:     arg.Order,
		CreatedAt: arg.CreatedAt,
		UpdatedAt: arg.UpdatedAt,
	}, nil
}

// UpdateNodeParams holds the values for UpdateNode.
type UpdateNodeParams struct {
	ID        int64
	ParentID  sql.NullInt64
	Name      string
	URL       sql.NullString
	Order     int
	UpdatedAt time.Time
}

// UpdateNode rewrites a node's editable fields.
func (q *Queries) UpdateNode(ctx context.Context, arg UpdateNodeParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE menu_nodes SET parent_id = ?, name = ?, url = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		arg.ParentID, arg.Name, arg.URL, arg.Order, arg.UpdatedAt, arg.ID,
	)
	return err
}

// DeleteNode removes a node; its descendants are removed by cascade.
func (q *Queries) DeleteNode(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menu_nodes WHERE id = ?`, id)
	return err
}

// DeleteMenuNodes removes every node of a menu.
func (q *Queries) DeleteMenuNodes(ctx context.Context, menuID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM menu_nodes WHERE menu_id = ?`, menuID)
	return err
}
