// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render turns built menu trees into HTML and plain text.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/olegiv/navmenu/internal/menu"
)

//go:embed templates/*.html
var templatesFS embed.FS

// blankLinesRegex matches two or more consecutive newlines (with optional whitespace between).
var blankLinesRegex = regexp.MustCompile(`(\r?\n\s*){2,}`)

// telURLRegex matches the tel: links accepted by the menu service.
var telURLRegex = regexp.MustCompile(`^tel:[0-9+\-(). ]+$`)

// Renderer executes the embedded menu templates.
type Renderer struct {
	templates *template.Template
}

// MenuData is the input of the "menu" template.
type MenuData struct {
	Name  string
	Items []*menu.Item
}

// PageData is the input of the demo page template.
type PageData struct {
	Title       string
	CurrentPath string
	Menu        MenuData
	Breadcrumb  []*menu.Item
	CurrentYear int
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// html/template rejects tel: links, so they are passed through
		// once they match the shape the service validated.
		"menuURL": func(u string) any {
			if telURLRegex.MatchString(u) {
				return template.URL(u)
			}
			return u
		},
	}
}

// Menu writes the nested list markup of one menu.
func (r *Renderer) Menu(w io.Writer, name string, items []*menu.Item) error {
	return r.execute(w, "menu", MenuData{Name: name, Items: items})
}

// Page renders the demo page for a drawn menu.
func (r *Renderer) Page(w http.ResponseWriter, name, currentPath string, items []*menu.Item) error {
	data := PageData{
		Title:       pageTitle(items),
		CurrentPath: currentPath,
		Menu:        MenuData{Name: name, Items: items},
		Breadcrumb:  menu.ActivePath(items),
		CurrentYear: time.Now().Year(),
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := r.execute(buf, "page", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	buf := new(bytes.Buffer)
	if err := r.templates.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	compacted := blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n"))
	_, err := w.Write(compacted)
	return err
}

// pageTitle is the name of the deepest active item, if any.
func pageTitle(items []*menu.Item) string {
	path := menu.ActivePath(items)
	if len(path) == 0 {
		return "Not in menu"
	}
	return path[len(path)-1].Name
}
