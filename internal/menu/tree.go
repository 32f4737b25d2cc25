// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package menu turns the flat, parent-referencing node list of one menu into
// a navigation tree and marks the items on the current request path as active.
//
// The package performs no I/O and keeps no state between calls. Every call
// builds its own index over the input and returns freshly allocated items, so
// concurrent renders never share anything.
package menu

import (
	"github.com/olegiv/navmenu/internal/model"
)

// Item is one rendered menu entry.
type Item struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	Active   bool    `json:"active"`
	Children []*Item `json:"children"`
}

// HasChildren reports whether the item has at least one child.
func (i *Item) HasChildren() bool {
	return len(i.Children) > 0
}

// entry tracks a node while the tree is assembled.
type entry struct {
	item   *Item
	pos    int
	parent int64
	linked bool // parent resolved within the set
	direct bool // resolved URL equals the current path
}

// Build converts nodes into a forest of items for currentPath.
// Nodes are expected in sibling order; the order is preserved, not re-sorted.
func Build(nodes []model.Node, currentPath string) []*Item {
	roots, _ := BuildWithReport(nodes, currentPath)
	return roots
}

// BuildWithReport is Build that also returns the malformed references it
// recovered from. Malformed input never fails the build:
//   - a duplicate id keeps the first node and drops the later ones
//   - a parent id outside the set makes the node a root
//   - a parent cycle is cut at its earliest node, which becomes a root
func BuildWithReport(nodes []model.Node, currentPath string) ([]*Item, Report) {
	var report Report

	entries, index := indexNodes(nodes, currentPath, &report)
	resolveParents(entries, index, &report)
	breakCycles(entries, index, &report)

	roots := make([]*Item, 0)
	for _, e := range entries {
		if !e.linked {
			roots = append(roots, e.item)
			continue
		}
		parent := index[e.parent].item
		parent.Children = append(parent.Children, e.item)
	}

	propagateActive(entries, index)

	return roots, report
}

// Audit checks nodes for malformed references without building items.
func Audit(nodes []model.Node) Report {
	var report Report
	entries, index := indexNodes(nodes, "", &report)
	resolveParents(entries, index, &report)
	breakCycles(entries, index, &report)
	return report
}

// indexNodes creates one entry per distinct id, in input order.
func indexNodes(nodes []model.Node, currentPath string, report *Report) ([]*entry, map[int64]*entry) {
	entries := make([]*entry, 0, len(nodes))
	index := make(map[int64]*entry, len(nodes))

	for _, n := range nodes {
		if _, exists := index[n.ID]; exists {
			report.add(Problem{
				Kind:   ProblemDuplicateID,
				NodeID: n.ID,
				Name:   n.Name,
			})
			continue
		}

		url := n.ResolvedURL()
		e := &entry{
			item: &Item{
				ID:       n.ID,
				Name:     n.Name,
				URL:      url,
				Children: make([]*Item, 0),
			},
			pos:    len(entries),
			parent: n.ParentID.Int64,
			linked: !n.IsRoot(),
			direct: url != model.PlaceholderURL && url == currentPath,
		}
		e.item.Active = e.direct

		entries = append(entries, e)
		index[n.ID] = e
	}

	return entries, index
}

// resolveParents unlinks entries whose parent is not part of the set.
func resolveParents(entries []*entry, index map[int64]*entry, report *Report) {
	for _, e := range entries {
		if !e.linked {
			continue
		}
		if _, ok := index[e.parent]; !ok {
			report.add(Problem{
				Kind:     ProblemDanglingParent,
				NodeID:   e.item.ID,
				ParentID: e.parent,
				Name:     e.item.Name,
			})
			e.linked = false
		}
	}
}

// breakCycles walks every parent chain once. When a chain loops back on
// itself, the cycle member that came first in the input is unlinked.
func breakCycles(entries []*entry, index map[int64]*entry, report *Report) {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[int64]int, len(entries))
	var chain []*entry

	for _, start := range entries {
		chain = chain[:0]

		for cur := start; ; {
			st := state[cur.item.ID]
			if st == done {
				break
			}
			if st == visiting {
				cut := earliestInCycle(chain, cur)
				report.add(Problem{
					Kind:     ProblemCycle,
					NodeID:   cut.item.ID,
					ParentID: cut.parent,
					Name:     cut.item.Name,
				})
				cut.linked = false
				break
			}

			state[cur.item.ID] = visiting
			chain = append(chain, cur)

			if !cur.linked {
				break
			}
			cur = index[cur.parent]
		}

		for _, e := range chain {
			state[e.item.ID] = done
		}
	}
}

// earliestInCycle returns the cycle member with the lowest input position.
// The cycle is the tail of chain starting at head.
func earliestInCycle(chain []*entry, head *entry) *entry {
	cut := head
	inCycle := false
	for _, e := range chain {
		if e == head {
			inCycle = true
		}
		if inCycle && e.pos < cut.pos {
			cut = e
		}
	}
	return cut
}

// propagateActive marks the ancestors of every direct match as active.
// The walk stops at the first ancestor that is already active: either an
// earlier walk covered the rest of the chain or that ancestor is a direct
// match whose own walk will.
func propagateActive(entries []*entry, index map[int64]*entry) {
	for _, e := range entries {
		if !e.direct {
			continue
		}
		for cur := e; cur.linked; {
			parent := index[cur.parent]
			if parent.item.Active {
				break
			}
			parent.item.Active = true
			cur = parent
		}
	}
}
