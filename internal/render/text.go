// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olegiv/navmenu/internal/menu"
)

// Text writes an indented outline of the tree. Active items are marked
// with an asterisk.
func Text(w io.Writer, items []*menu.Item) error {
	var err error
	menu.Walk(items, func(item *menu.Item, depth int) bool {
		if err != nil {
			return false
		}
		marker := "-"
		if item.Active {
			marker = "*"
		}
		_, err = fmt.Fprintf(w, "%s%s %s (%s)\n", strings.Repeat("  ", depth), marker, item.Name, item.URL)
		return err == nil
	})
	return err
}
