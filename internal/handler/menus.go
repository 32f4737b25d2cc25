// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/navmenu/internal/menu"
	"github.com/olegiv/navmenu/internal/render"
	"github.com/olegiv/navmenu/internal/service"
	"github.com/olegiv/navmenu/internal/util"
)

// MenuHandler serves the menu tree and management endpoints.
type MenuHandler struct {
	svc      *service.MenuService
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc *service.MenuService, renderer *render.Renderer, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{svc: svc, renderer: renderer, logger: logger}
}

// List handles GET /api/menus.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.svc.ListMenus(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, map[string]any{"menus": menus})
}

// Tree handles GET /api/menus/{name}/tree?path=/x.
// With format=html the nested list markup is returned instead of JSON.
func (h *MenuHandler) Tree(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "menu")
	path := r.URL.Query().Get("path")

	drawn, err := h.svc.Draw(r.Context(), name, path)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.renderer.Menu(w, drawn.Name, drawn.Items); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to render menu", "menu", name, "error", err)
		}
		return
	}

	writeJSONSuccess(w, http.StatusOK, map[string]any{
		"menu":         drawn.Name,
		"current_path": drawn.CurrentPath,
		"count":        menu.Count(drawn.Items),
		"items":        drawn.Items,
	})
}

type createMenuRequest struct {
	Name string `json:"name"`
}

// CreateMenu handles POST /api/menus.
func (h *MenuHandler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req createMenuRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.svc.CreateMenu(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSONSuccess(w, http.StatusCreated, map[string]any{"menu": m})
}

// DeleteMenu handles DELETE /api/menus/{slug}.
func (h *MenuHandler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	slug, ok := menuSlug(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteMenu(r.Context(), slug); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, nil)
}

// Nodes handles GET /api/menus/{slug}/nodes and returns the stored flat records.
func (h *MenuHandler) Nodes(w http.ResponseWriter, r *http.Request) {
	slug, ok := menuSlug(w, r)
	if !ok {
		return
	}
	m, nodes, err := h.svc.Nodes(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, map[string]any{"menu": m, "nodes": nodes})
}

// AddNode handles POST /api/menus/{slug}/nodes.
func (h *MenuHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	slug, ok := menuSlug(w, r)
	if !ok {
		return
	}
	var in service.NodeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.svc.AddNode(r.Context(), slug, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSONSuccess(w, http.StatusCreated, map[string]any{"node": node})
}

// UpdateNode handles PUT /api/menus/{slug}/nodes/{id}.
func (h *MenuHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	slug, ok := menuSlug(w, r)
	if !ok {
		return
	}
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	var in service.NodeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	node, err := h.svc.UpdateNode(r.Context(), slug, id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, map[string]any{"node": node})
}

// DeleteNode handles DELETE /api/menus/{slug}/nodes/{id}.
func (h *MenuHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	slug, ok := menuSlug(w, r)
	if !ok {
		return
	}
	id, ok := nodeID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteNode(r.Context(), slug, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSONSuccess(w, http.StatusOK, nil)
}

// nodeID parses the {id} URL parameter, writing a 400 when it is malformed.
func nodeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id := util.ParseNullInt64Positive(chi.URLParam(r, "id"))
	if !id.Valid {
		writeJSONError(w, http.StatusBadRequest, "invalid node id")
		return 0, false
	}
	return id.Int64, true
}

// menuSlug reads the {menu} route parameter of the management endpoints,
// which address menus by slug only.
func menuSlug(w http.ResponseWriter, r *http.Request) (string, bool) {
	slug := chi.URLParam(r, "menu")
	if !util.IsValidSlug(slug) {
		writeJSONError(w, http.StatusBadRequest, "invalid menu slug")
		return "", false
	}
	return slug, true
}

// PageHandler draws a menu for whatever path is requested.
type PageHandler struct {
	svc      *service.MenuService
	renderer *render.Renderer
	menuName string
	logger   *slog.Logger
}

// NewPageHandler creates a handler drawing menuName on every page.
func NewPageHandler(svc *service.MenuService, renderer *render.Renderer, menuName string, logger *slog.Logger) *PageHandler {
	return &PageHandler{svc: svc, renderer: renderer, menuName: menuName, logger: logger}
}

// ServeHTTP handles GET /*.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	menuName := h.menuName
	if m := strings.TrimSpace(r.URL.Query().Get("menu")); m != "" {
		menuName = m
	}

	drawn, err := h.svc.Draw(r.Context(), menuName, r.URL.Path)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to draw menu", "menu", menuName, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.renderer.Page(w, drawn.Name, drawn.CurrentPath, drawn.Items); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "menu", menuName, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
