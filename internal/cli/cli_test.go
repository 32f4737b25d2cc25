// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/navmenu/internal/cache"
	"github.com/olegiv/navmenu/internal/render"
	"github.com/olegiv/navmenu/internal/store"
)

// seededDSN creates a migrated and seeded SQLite file and returns its path.
func seededDSN(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "navmenu.db")
	db, err := store.NewDB(path)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))
	require.NoError(t, store.Seed(t.Context(), db, true))
	require.NoError(t, db.Close())
	return path
}

func testEnv(dsn string) map[string]string {
	return map[string]string{
		"NAVMENU_DB_DSN":    dsn,
		"NAVMENU_LOG_LEVEL": "error",
	}
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()

	root := New(io.Discard, WithEnviron(env)).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "navmenu dev")
}

func TestInvalidConfig(t *testing.T) {
	env := testEnv(filepath.Join(t.TempDir(), "x.db"))
	env["NAVMENU_DB_DRIVER"] = "postgres"

	_, err := run(t, env, "migrate")
	assert.ErrorContains(t, err, "NAVMENU_DB_DRIVER")
}

func TestMigrate(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "navmenu.db")

	out, err := run(t, testEnv(dsn), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
	assert.FileExists(t, dsn)
}

func TestRenderText(t *testing.T) {
	out, err := run(t, testEnv(seededDSN(t)), "render", "main", "/about/team")
	require.NoError(t, err)

	want := "- Home (/)\n" +
		"* About (/about)\n" +
		"  * Team (/about/team)\n" +
		"  - History (/about/history)\n" +
		"- Contact (/contact)\n"
	assert.Equal(t, want, out)
}

func TestRenderDefaultPathAndUnknownMenu(t *testing.T) {
	env := testEnv(seededDSN(t))

	out, err := run(t, env, "render", "footer")
	require.NoError(t, err)
	assert.Equal(t, "- Privacy (/privacy)\n- Terms (/terms)\n", out)

	out, err = run(t, env, "render", "missing", "/")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderHTML(t *testing.T) {
	out, err := run(t, testEnv(seededDSN(t)), "render", "--html", "footer", "/terms")
	require.NoError(t, err)
	assert.Contains(t, out, `<nav class="menu menu-footer"`)
	assert.Contains(t, out, `<li class="active">`)
}

func TestExportImport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "menus.yaml")
	_, err := run(t, testEnv(seededDSN(t)), "export", "-o", file)
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: footer")

	target := testEnv(filepath.Join(t.TempDir(), "copy.db"))

	out, err := run(t, target, "import", "--dry-run", file)
	require.NoError(t, err)
	assert.Contains(t, out, "dry run: menus created=2")

	out, err = run(t, target, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "menus created=2 updated=0 skipped=0, nodes created=7")

	out, err = run(t, target, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped=2")

	out, err = run(t, target, "import", "--strategy", "overwrite", file)
	require.NoError(t, err)
	assert.Contains(t, out, "updated=2")

	out, err = run(t, target, "render", "main", "/contact")
	require.NoError(t, err)
	assert.Contains(t, out, "* Contact (/contact)")
}

func TestExportToStdout(t *testing.T) {
	out, err := run(t, testEnv(seededDSN(t)), "export", "footer")
	require.NoError(t, err)
	assert.Contains(t, out, "url: /terms")
	assert.NotContains(t, out, "name: main")

	_, err = run(t, testEnv(seededDSN(t)), "export", "missing")
	assert.Error(t, err)
}

func TestImportErrors(t *testing.T) {
	env := testEnv(seededDSN(t))

	_, err := run(t, env, "import", "--strategy", "rename", "menus.yaml")
	assert.ErrorContains(t, err, "unknown conflict strategy")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: \"1.0\"\nmenus:\n  - name: x\n    items:\n      - name: \"\"\n"), 0o600))
	out, err := run(t, env, "import", bad)
	require.Error(t, err)
	assert.Contains(t, out, "error: node x/1")
}

func TestAudit(t *testing.T) {
	dsn := seededDSN(t)

	out, err := run(t, testEnv(dsn), "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "well formed")

	db, err := store.NewDB(dsn)
	require.NoError(t, err)
	ctx := t.Context()
	m, err := store.New(db).GetMenuByName(ctx, "footer")
	require.NoError(t, err)

	// Foreign keys block dangling parents, so write one with checks disabled.
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	now := time.Now().UTC()
	_, err = store.New(conn).CreateNode(ctx, store.CreateNodeParams{
		MenuID:    m.ID,
		ParentID:  sql.NullInt64{Int64: 999, Valid: true},
		Name:      "Orphan",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	require.NoError(t, db.Close())

	out, err = run(t, testEnv(dsn), "audit")
	assert.ErrorContains(t, err, "found 1 malformed references")
	assert.Contains(t, out, "footer: 0 duplicate ids, 1 dangling parents, 0 cycles")
	assert.Contains(t, out, "missing parent 999")
}

func TestNewAppServesMenus(t *testing.T) {
	env := testEnv(filepath.Join(t.TempDir(), "navmenu.db"))
	env["NAVMENU_DO_SEED"] = "true"

	c := New(io.Discard, WithEnviron(env))
	require.NoError(t, c.setup(false))

	a, err := c.newApp(t.Context())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.menuCache)

	req := httptest.NewRequest(http.MethodGet, "/api/menus/main/tree?path=/about", nil)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"About"`)
}

func TestNewAppTemplateFailure(t *testing.T) {
	env := testEnv(filepath.Join(t.TempDir(), "navmenu.db"))
	c := New(io.Discard, WithEnviron(env))
	require.NoError(t, c.setup(false))

	orig := newRenderer
	t.Cleanup(func() { newRenderer = orig })
	newRenderer = func() (*render.Renderer, error) { return nil, errors.New("bad template") }

	a, err := c.newApp(t.Context())
	require.ErrorContains(t, err, "loading templates: bad template")
	assert.Nil(t, a)
}

func TestAppCloseReleasesCacheAndDB(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "navmenu.db"))
	require.NoError(t, err)
	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{})

	a := &app{db: db, backend: backend}
	a.Close()

	assert.ErrorIs(t, backend.Set(t.Context(), "k", []byte("v"), time.Minute), cache.ErrCacheClosed)
	assert.Error(t, db.PingContext(t.Context()))
}
