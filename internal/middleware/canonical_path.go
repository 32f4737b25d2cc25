// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"
)

// CanonicalPath redirects page paths to their canonical form (HTTP 301):
// repeated slashes collapse to one and a trailing slash is dropped, except
// for the root path "/". Menu URLs match the current path exactly, so
// "/about/" and "/about" must reach the page handler as the same string.
func CanonicalPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		canonical := canonicalPath(path)
		if canonical == path {
			next.ServeHTTP(w, r)
			return
		}

		target := canonical
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}

func canonicalPath(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
