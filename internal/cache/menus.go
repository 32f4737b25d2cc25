// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"

	"github.com/olegiv/navmenu/internal/model"
)

const menuKeyPrefix = "menu:"

// MenuSnapshot is the flat record set of one menu as read from the store.
type MenuSnapshot struct {
	Menu  model.Menu   `json:"menu"`
	Nodes []model.Node `json:"nodes"`
}

// MenuCache caches menu snapshots by menu name.
// Entries are dropped on every write through the menu service; the TTL only
// bounds staleness after writes made by other processes.
type MenuCache struct {
	backend Cache
	typed   *TypedCache[MenuSnapshot]
}

// NewMenuCache creates a menu cache on top of backend.
func NewMenuCache(backend Cache, ttl time.Duration) *MenuCache {
	return &MenuCache{
		backend: backend,
		typed:   NewTypedCache[MenuSnapshot](backend, ttl),
	}
}

func menuKey(name string) string {
	return menuKeyPrefix + name
}

// Get returns the cached snapshot for a menu name.
func (c *MenuCache) Get(ctx context.Context, name string) (*MenuSnapshot, bool) {
	return c.typed.Get(ctx, menuKey(name))
}

// Set stores a snapshot under its menu name.
func (c *MenuCache) Set(ctx context.Context, snap *MenuSnapshot) error {
	return c.typed.Set(ctx, menuKey(snap.Menu.Name), snap)
}

// Invalidate drops the snapshot of one menu.
func (c *MenuCache) Invalidate(ctx context.Context, name string) error {
	return c.typed.Delete(ctx, menuKey(name))
}

// InvalidateAll drops every cached menu.
func (c *MenuCache) InvalidateAll(ctx context.Context) error {
	if p, ok := c.backend.(interface {
		DeleteByPrefix(context.Context, string) error
	}); ok {
		return p.DeleteByPrefix(ctx, menuKeyPrefix)
	}
	return c.backend.Clear(ctx)
}

// Stats returns backend statistics when the backend tracks them.
func (c *MenuCache) Stats() (Stats, bool) {
	if p, ok := c.backend.(StatsProvider); ok {
		return p.Stats(), true
	}
	return Stats{}, false
}
