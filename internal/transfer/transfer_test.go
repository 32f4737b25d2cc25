// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/navmenu/internal/service"
	"github.com/olegiv/navmenu/internal/store"
	"github.com/olegiv/navmenu/internal/testutil"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateAll(context.Context) error {
	c.calls++
	return nil
}

func names(items []ExportItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestExportSeededMenu(t *testing.T) {
	db := testutil.SeededDB(t)
	exp := NewExporter(db, testutil.TestLogger())

	doc, err := exp.Export(t.Context(), "main")
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, doc.Version)
	require.Len(t, doc.Menus, 1)
	m := doc.Menus[0]
	assert.Equal(t, "main", m.Name)
	assert.Equal(t, []string{"Home", "About", "Contact"}, names(m.Items))
	assert.Equal(t, []string{"Team", "History"}, names(m.Items[1].Children))
	assert.Equal(t, "/about/team", m.Items[1].Children[0].URL)
	assert.Nil(t, m.Items[0].Children)
}

func TestExportAllAndUnknown(t *testing.T) {
	db := testutil.SeededDB(t)
	exp := NewExporter(db, testutil.TestLogger())

	doc, err := exp.Export(t.Context())
	require.NoError(t, err)
	require.Len(t, doc.Menus, 2)
	assert.Equal(t, "footer", doc.Menus[0].Name)

	_, err = exp.Export(t.Context(), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestExportToWritesYAML(t *testing.T) {
	db := testutil.SeededDB(t)
	exp := NewExporter(db, testutil.TestLogger())

	var buf bytes.Buffer
	require.NoError(t, exp.ExportTo(t.Context(), &buf, "footer"))

	out := buf.String()
	assert.Contains(t, out, `version: "1.0"`)
	assert.Contains(t, out, "- name: footer")
	assert.Contains(t, out, "url: /privacy")
}

func TestRoundTrip(t *testing.T) {
	src := testutil.SeededDB(t)
	var buf bytes.Buffer
	require.NoError(t, NewExporter(src, testutil.TestLogger()).ExportTo(t.Context(), &buf))

	dst := testutil.TestDB(t)
	inv := &countingInvalidator{}
	imp := NewImporter(dst, inv, testutil.TestLogger())

	result, err := imp.ImportFromReader(t.Context(), &buf, DefaultImportOptions())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Created[entityMenus])
	assert.Equal(t, 7, result.Created[entityNodes])
	assert.Equal(t, 1, inv.calls)

	want, err := NewExporter(src, testutil.TestLogger()).Export(t.Context())
	require.NoError(t, err)
	got, err := NewExporter(dst, testutil.TestLogger()).Export(t.Context())
	require.NoError(t, err)
	assert.Equal(t, want.Menus, got.Menus)
}

func TestImportConflictSkip(t *testing.T) {
	db := testutil.SeededDB(t)
	imp := NewImporter(db, nil, testutil.TestLogger())
	doc := &Document{Version: FormatVersion, Menus: []ExportMenu{
		{Name: "main", Items: []ExportItem{{Name: "Only", URL: "/only"}}},
	}}

	result, err := imp.Import(t.Context(), doc, DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped[entityMenus])

	got, err := NewExporter(db, testutil.TestLogger()).Export(t.Context(), "main")
	require.NoError(t, err)
	assert.Len(t, got.Menus[0].Items, 3)
}

func TestImportConflictOverwrite(t *testing.T) {
	db := testutil.SeededDB(t)
	imp := NewImporter(db, nil, testutil.TestLogger())
	doc := &Document{Version: FormatVersion, Menus: []ExportMenu{
		{Name: "main", Items: []ExportItem{
			{Name: "Docs", Children: []ExportItem{
				{Name: "Guide", URL: "/docs/guide"},
			}},
		}},
	}}

	result, err := imp.Import(t.Context(), doc, ImportOptions{ConflictStrategy: ConflictOverwrite})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated[entityMenus])
	assert.Equal(t, 2, result.Created[entityNodes])

	got, err := NewExporter(db, testutil.TestLogger()).Export(t.Context(), "main")
	require.NoError(t, err)
	require.Len(t, got.Menus[0].Items, 1)
	docs := got.Menus[0].Items[0]
	assert.Equal(t, "Docs", docs.Name)
	assert.Empty(t, docs.URL)
	assert.Equal(t, []string{"Guide"}, names(docs.Children))
}

func TestImportDryRun(t *testing.T) {
	db := testutil.SeededDB(t)
	imp := NewImporter(db, nil, testutil.TestLogger())
	doc := &Document{Version: FormatVersion, Menus: []ExportMenu{
		{Name: "main", Items: []ExportItem{{Name: "A", URL: "/a"}}},
		{Name: "Side Nav", Items: []ExportItem{{Name: "B", URL: "/b", Children: []ExportItem{{Name: "C"}}}}},
	}}

	result, err := imp.Import(t.Context(), doc, ImportOptions{DryRun: true, ConflictStrategy: ConflictOverwrite})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Updated[entityMenus])
	assert.Equal(t, 1, result.Created[entityMenus])
	assert.Equal(t, 3, result.Created[entityNodes])

	_, err = store.New(db).GetMenuByName(t.Context(), "Side Nav")
	assert.Error(t, err, "dry run must not write")
}

func TestImportSanitizesAndSlugs(t *testing.T) {
	db := testutil.TestDB(t)
	imp := NewImporter(db, nil, testutil.TestLogger())
	doc := &Document{Version: FormatVersion, Menus: []ExportMenu{
		{Name: "Side Nav", Items: []ExportItem{{Name: "<b>Q&amp;A</b>", URL: " /qa "}}},
	}}

	_, err := imp.Import(t.Context(), doc, DefaultImportOptions())
	require.NoError(t, err)

	m, err := store.New(db).GetMenuByName(t.Context(), "Side Nav")
	require.NoError(t, err)
	assert.Equal(t, "side-nav", m.Slug)

	nodes, err := store.New(db).ListMenuNodes(t.Context(), m.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Q&A", nodes[0].Name)
	assert.Equal(t, "/qa", nodes[0].URL)
}

func TestValidate(t *testing.T) {
	deep := ExportItem{Name: "leaf"}
	for range MaxDepth {
		deep = ExportItem{Name: "level", Children: []ExportItem{deep}}
	}

	tests := []struct {
		name     string
		doc      *Document
		contains string
	}{
		{"nil document", nil, "empty"},
		{"missing version", &Document{}, "missing version"},
		{"unsupported version", &Document{Version: "9"}, "unsupported version"},
		{"empty menu name", &Document{Version: FormatVersion, Menus: []ExportMenu{{Name: " "}}}, "name"},
		{"duplicate menu", &Document{Version: FormatVersion, Menus: []ExportMenu{{Name: "main"}, {Name: "Main"}}}, "more than once"},
		{"script url", &Document{Version: FormatVersion, Menus: []ExportMenu{
			{Name: "main", Items: []ExportItem{{Name: "x", URL: "javascript:alert(1)"}}},
		}}, "url"},
		{"long name", &Document{Version: FormatVersion, Menus: []ExportMenu{
			{Name: "main", Items: []ExportItem{{Name: strings.Repeat("n", 41)}}},
		}}, "at most"},
		{"too deep", &Document{Version: FormatVersion, Menus: []ExportMenu{
			{Name: "main", Items: []ExportItem{deep}},
		}}, "nesting deeper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.doc)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.contains)
		})
	}

	ok := &Document{Version: FormatVersion, Menus: []ExportMenu{{Name: "main", Items: []ExportItem{{Name: "Home", URL: "/"}}}}}
	assert.Empty(t, Validate(ok))
}

func TestImportRejectsInvalidWithoutWriting(t *testing.T) {
	db := testutil.TestDB(t)
	imp := NewImporter(db, nil, testutil.TestLogger())
	doc := &Document{Version: FormatVersion, Menus: []ExportMenu{
		{Name: "good", Items: []ExportItem{{Name: "Home", URL: "/"}}},
		{Name: "bad", Items: []ExportItem{{Name: "", URL: "/"}}},
	}}

	result, err := imp.Import(t.Context(), doc, DefaultImportOptions())
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "node", result.Errors[0].Entity)

	menus, err := store.New(db).ListMenus(t.Context())
	require.NoError(t, err)
	assert.Empty(t, menus)
}

func TestImportSlugCollisionRollsBack(t *testing.T) {
	db := testutil.TestDB(t)
	q := store.New(db)
	now := time.Now().UTC()
	_, err := q.CreateMenu(t.Context(), store.CreateMenuParams{Name: "Side", Slug: "side-nav", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	imp := NewImporter(db, nil, testutil.TestLogger())
	doc := &Document{Version: FormatVersion, Menus: []ExportMenu{
		{Name: "fresh", Items: []ExportItem{{Name: "Home", URL: "/"}}},
		{Name: "Side Nav"},
	}}

	result, err := imp.Import(t.Context(), doc, DefaultImportOptions())
	require.Error(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "side-nav")

	_, err = q.GetMenuByName(t.Context(), "fresh")
	assert.Error(t, err, "first menu must be rolled back")
}

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(`
version: "1.0"
menus:
  - name: main
    items:
      - name: Home
        url: /
`))
	require.NoError(t, err)
	require.Len(t, doc.Menus, 1)
	assert.Equal(t, "Home", doc.Menus[0].Items[0].Name)

	_, err = Decode(strings.NewReader("version: \"1.0\"\nextra: true\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(""))
	assert.Error(t, err)
}

func TestImportFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.0\"\nmenus:\n  - name: main\n"), 0o600))

	imp := NewImporter(testutil.TestDB(t), nil, testutil.TestLogger())
	result, err := imp.ImportFromFile(t.Context(), path, DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCreated())

	_, err = imp.ImportFromFile(t.Context(), filepath.Join(t.TempDir(), "missing.yaml"), DefaultImportOptions())
	assert.Error(t, err)
}

func TestParseConflictStrategy(t *testing.T) {
	s, err := ParseConflictStrategy("overwrite")
	require.NoError(t, err)
	assert.Equal(t, ConflictOverwrite, s)

	_, err = ParseConflictStrategy("rename")
	assert.Error(t, err)
}

func TestImportResultTotals(t *testing.T) {
	r := NewImportResult(false)
	r.IncrementCreated(entityMenus)
	r.IncrementCreated(entityNodes)
	r.IncrementUpdated(entityMenus)
	r.IncrementSkipped(entityMenus)

	assert.Equal(t, 2, r.TotalCreated())
	assert.Equal(t, 1, r.TotalUpdated())
	assert.Equal(t, 1, r.TotalSkipped())
	assert.True(t, r.Success)

	r.AddError("menu", "main", "boom")
	assert.False(t, r.Success)
	assert.Equal(t, "menu main: boom", r.Errors[0].Error())
}
