// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

// Walk visits items depth-first in display order.
// Returning false from fn skips the children of that item.
func Walk(items []*Item, fn func(item *Item, depth int) bool) {
	walk(items, 0, fn)
}

func walk(items []*Item, depth int, fn func(item *Item, depth int) bool) {
	for _, item := range items {
		if fn(item, depth) {
			walk(item.Children, depth+1, fn)
		}
	}
}

// Count returns the total number of items in the forest.
func Count(items []*Item) int {
	n := 0
	Walk(items, func(*Item, int) bool {
		n++
		return true
	})
	return n
}

// ActivePath returns the chain of active items from a root down to the
// deepest active descendant. It is empty when nothing matches.
func ActivePath(items []*Item) []*Item {
	var path []*Item
	for {
		var next *Item
		for _, item := range items {
			if item.Active {
				next = item
				break
			}
		}
		if next == nil {
			return path
		}
		path = append(path, next)
		items = next.Children
	}
}
