// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"database/sql"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/navmenu/internal/model"
)

func node(id int64, name, url string, parent int64, order int) model.Node {
	n := model.Node{ID: id, MenuID: 1, Name: name, URL: url, Order: order}
	if parent != 0 {
		n.ParentID = sql.NullInt64{Int64: parent, Valid: true}
	}
	return n
}

func ids(items []*Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestBuildEndToEnd(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(2, "About", "/about", 0, 1),
		node(3, "Team", "/about/team", 2, 0),
	}

	tree := Build(nodes, "/about/team")

	want := []*Item{
		{ID: 1, Name: "Home", URL: "/", Active: false, Children: []*Item{}},
		{ID: 2, Name: "About", URL: "/about", Active: true, Children: []*Item{
			{ID: 3, Name: "Team", URL: "/about/team", Active: true, Children: []*Item{}},
		}},
	}
	assert.Equal(t, want, tree)
	assert.False(t, tree[0].HasChildren())
	assert.True(t, tree[1].HasChildren())
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(nil, "/anything")
	assert.NotNil(t, tree)
	assert.Empty(t, tree)

	tree = Build([]model.Node{}, "/")
	assert.Empty(t, tree)
}

func TestBuildPlaceholderNeverActive(t *testing.T) {
	tree := Build([]model.Node{node(1, "Section", "", 0, 0)}, "#")

	require.Len(t, tree, 1)
	assert.Equal(t, model.PlaceholderURL, tree[0].URL)
	assert.False(t, tree[0].Active)
}

func TestBuildDeepChainActivation(t *testing.T) {
	// root -> a -> b -> c, each level with an inactive sibling
	nodes := []model.Node{
		node(1, "root", "/root", 0, 0),
		node(2, "root-sibling", "/other", 0, 1),
		node(3, "a", "", 1, 0),
		node(4, "a-sibling", "/root/x", 1, 1),
		node(5, "b", "/root/a/b", 3, 0),
		node(6, "b-sibling", "/root/a/y", 3, 1),
		node(7, "c", "/root/a/b/c", 5, 0),
		node(8, "c-sibling", "/root/a/b/z", 5, 1),
	}

	tree := Build(nodes, "/root/a/b/c")

	for _, id := range []int64{1, 3, 5, 7} {
		item := findItem(tree, id)
		require.NotNil(t, item, "item %d", id)
		assert.True(t, item.Active, "item %d should be active", id)
	}
	for _, id := range []int64{2, 4, 6, 8} {
		item := findItem(tree, id)
		require.NotNil(t, item, "item %d", id)
		assert.False(t, item.Active, "item %d should not be active", id)
	}

	path := ActivePath(tree)
	assert.Equal(t, []int64{1, 3, 5, 7}, ids(path))
}

func TestBuildChildBeforeParent(t *testing.T) {
	// Deepest node first: activation must still reach the root.
	nodes := []model.Node{
		node(7, "c", "/c", 5, 0),
		node(5, "b", "", 3, 0),
		node(3, "a", "", 1, 0),
		node(1, "root", "", 0, 0),
	}

	tree := Build(nodes, "/c")

	require.Len(t, tree, 1)
	assert.Equal(t, int64(1), tree[0].ID)
	assert.Equal(t, []int64{1, 3, 5, 7}, ids(ActivePath(tree)))
	assert.Equal(t, 4, Count(tree))
}

func TestBuildPreservesSiblingOrder(t *testing.T) {
	nodes := []model.Node{
		node(10, "first", "/1", 0, 0),
		node(11, "child-a", "/1/a", 10, 0),
		node(12, "second", "/2", 0, 1),
		node(13, "child-b", "/1/b", 10, 1),
		node(14, "third", "/3", 0, 2),
		node(15, "child-c", "/1/c", 10, 2),
	}

	tree := Build(nodes, "/")

	assert.Equal(t, []int64{10, 12, 14}, ids(tree))
	assert.Equal(t, []int64{11, 13, 15}, ids(tree[0].Children))
}

func TestBuildDoesNotResort(t *testing.T) {
	// The input order wins even when order values disagree.
	nodes := []model.Node{
		node(1, "b", "/b", 0, 5),
		node(2, "a", "/a", 0, 1),
	}

	assert.Equal(t, []int64{1, 2}, ids(Build(nodes, "/")))
}

func TestBuildPreservesNodeSet(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(2, "Docs", "", 0, 1),
		node(3, "Guide", "/docs/guide", 2, 0),
		node(4, "API", "/docs/api", 2, 1),
		node(5, "Types", "/docs/api/types", 4, 0),
		node(6, "Blog", "/blog", 0, 2),
	}

	tree := Build(nodes, "/docs/api/types")

	var got []int64
	Walk(tree, func(item *Item, _ int) bool {
		got = append(got, item.ID)
		return true
	})
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, got)
	assert.Equal(t, len(nodes), Count(tree))
}

func TestBuildIdempotent(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(2, "About", "/about", 0, 1),
		node(3, "Team", "/about/team", 2, 0),
		node(4, "Jobs", "", 2, 1),
	}

	first := Build(nodes, "/about/team")
	second := Build(nodes, "/about/team")

	assert.Equal(t, first, second)
	// Results never share items.
	assert.NotSame(t, first[1], second[1])
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(2, "Child", "/child", 1, 0),
		node(3, "Orphan", "/orphan", 99, 0),
	}
	snapshot := make([]model.Node, len(nodes))
	copy(snapshot, nodes)

	_ = Build(nodes, "/child")

	assert.Equal(t, snapshot, nodes)
}

func TestBuildDanglingParent(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(2, "Orphan", "/orphan", 42, 0),
		node(3, "Orphan child", "/orphan/child", 2, 0),
	}

	tree, report := BuildWithReport(nodes, "/orphan/child")

	assert.Equal(t, []int64{1, 2}, ids(tree))
	assert.True(t, tree[1].Active)
	assert.Equal(t, []int64{3}, ids(tree[1].Children))

	require.Len(t, report.Problems, 1)
	assert.Equal(t, ProblemDanglingParent, report.Problems[0].Kind)
	assert.Equal(t, int64(2), report.Problems[0].NodeID)
	assert.Equal(t, int64(42), report.Problems[0].ParentID)
}

func TestBuildDuplicateIDFirstWins(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(2, "About", "/about", 0, 1),
		node(2, "About again", "/about-again", 0, 2),
	}

	tree, report := BuildWithReport(nodes, "/about-again")

	require.Len(t, tree, 2)
	assert.Equal(t, "About", tree[1].Name)
	assert.False(t, tree[1].Active)
	assert.Equal(t, 1, report.Count(ProblemDuplicateID))
}

func TestBuildSelfParent(t *testing.T) {
	nodes := []model.Node{
		node(1, "Loop", "/loop", 1, 0),
	}

	tree, report := BuildWithReport(nodes, "/loop")

	require.Len(t, tree, 1)
	assert.True(t, tree[0].Active)
	assert.Empty(t, tree[0].Children)
	assert.Equal(t, 1, report.Count(ProblemCycle))
}

func TestBuildCycleIsCutAtEarliestNode(t *testing.T) {
	// 1 -> 3 -> 2 -> 1, plus 4 hanging off 2.
	nodes := []model.Node{
		node(1, "one", "/1", 3, 0),
		node(2, "two", "/2", 1, 0),
		node(3, "three", "/3", 2, 0),
		node(4, "four", "/4", 2, 1),
	}

	tree, report := BuildWithReport(nodes, "/4")

	require.Len(t, report.Problems, 1)
	assert.Equal(t, ProblemCycle, report.Problems[0].Kind)
	assert.Equal(t, int64(1), report.Problems[0].NodeID)

	require.Equal(t, []int64{1}, ids(tree))
	assert.Equal(t, 4, Count(tree))
	assert.Equal(t, []int64{1, 2, 4}, ids(ActivePath(tree)))
	assert.False(t, findItem(tree, 3).Active)
}

func TestBuildCycleReachedFromOutside(t *testing.T) {
	// 5 hangs off the 2 <-> 3 cycle and comes first in the input.
	nodes := []model.Node{
		node(5, "tail", "/tail", 2, 0),
		node(2, "two", "/2", 3, 0),
		node(3, "three", "/3", 2, 0),
	}

	tree, report := BuildWithReport(nodes, "/tail")

	require.Len(t, report.Problems, 1)
	assert.Equal(t, int64(2), report.Problems[0].NodeID)
	assert.Equal(t, []int64{2}, ids(tree))
	assert.Equal(t, 3, Count(tree))
	assert.True(t, tree[0].Active)
}

func TestAudit(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(1, "Home copy", "/", 0, 1),
		node(2, "Orphan", "/o", 7, 0),
		node(3, "Loop", "/l", 3, 0),
	}

	report := Audit(nodes)

	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Count(ProblemDuplicateID))
	assert.Equal(t, 1, report.Count(ProblemDanglingParent))
	assert.Equal(t, 1, report.Count(ProblemCycle))

	assert.True(t, Audit([]model.Node{node(1, "ok", "/", 0, 0)}).OK())
}

func TestBuildConcurrent(t *testing.T) {
	nodes := []model.Node{
		node(1, "Home", "/", 0, 0),
		node(2, "About", "/about", 0, 1),
		node(3, "Team", "/about/team", 2, 0),
	}
	paths := []string{"/", "/about", "/about/team", "/missing"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			tree := Build(nodes, path)
			if Count(tree) != 3 {
				t.Errorf("Count = %d, want 3", Count(tree))
			}
		}(paths[i%len(paths)])
	}
	wg.Wait()
}

func TestProblemString(t *testing.T) {
	p := Problem{Kind: ProblemDanglingParent, NodeID: 2, ParentID: 9, Name: "x"}
	assert.Contains(t, p.String(), "missing parent 9")
}

// findItem returns the item with the given id, or nil.
func findItem(items []*Item, id int64) *Item {
	var found *Item
	Walk(items, func(item *Item, _ int) bool {
		if found != nil {
			return false
		}
		if item.ID == id {
			found = item
			return false
		}
		return true
	})
	return found
}
