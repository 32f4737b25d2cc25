// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the stored menu records shared by the store, cache,
// service and transfer layers.
package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/olegiv/navmenu/internal/util"
)

// Default menu names seeded on first start.
const (
	MenuMain   = "main"
	MenuFooter = "footer"
)

// PlaceholderURL is rendered for nodes without an explicit URL.
// It never equals a real request path, which always starts with "/".
const PlaceholderURL = "#"

// Field limits enforced when nodes are written.
const (
	MaxMenuNameLength = 100
	MaxNodeNameLength = 40
	MaxNodeURLLength  = 200 // fits absolute links; matches VARCHAR(200)
)

// Menu represents a named navigation menu.
type Menu struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Node represents one stored menu entry. An empty URL means the node has no
// explicit link.
type Node struct {
	ID        int64         `json:"id"`
	MenuID    int64         `json:"menu_id"`
	ParentID  sql.NullInt64 `json:"-"`
	Name      string        `json:"name"`
	URL       string        `json:"url,omitempty"`
	Order     int           `json:"order"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsRoot returns true if the node has no parent reference.
func (n Node) IsRoot() bool {
	return !n.ParentID.Valid
}

// ResolvedURL returns the explicit URL, or PlaceholderURL when none is set.
func (n Node) ResolvedURL() string {
	if n.URL != "" {
		return n.URL
	}
	return PlaceholderURL
}

// nodeJSON is the wire form of Node: parent_id is a number or null.
type nodeJSON struct {
	nodeFields
	ParentID *int64 `json:"parent_id"`
}

type nodeFields Node

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{nodeFields: nodeFields(n), ParentID: util.NullInt64ToPtr(n.ParentID)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node(in.nodeFields)
	n.ParentID = util.NullInt64FromPtr(in.ParentID)
	return nil
}
