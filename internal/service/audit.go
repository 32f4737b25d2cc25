// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"

	"github.com/olegiv/navmenu/internal/menu"
)

// Audit checks every stored menu for malformed references and returns the
// non-empty reports keyed by menu name.
func (s *MenuService) Audit(ctx context.Context) (map[string]menu.Report, error) {
	menus, err := s.ListMenus(ctx)
	if err != nil {
		return nil, err
	}

	reports := make(map[string]menu.Report)
	for _, m := range menus {
		nodes, err := s.queries.ListMenuNodes(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("listing nodes of menu %q: %w", m.Name, err)
		}
		report := menu.Audit(nodes)
		if report.OK() {
			continue
		}
		s.reportProblems(ctx, m.Name, report)
		reports[m.Name] = report
	}
	return reports, nil
}
