// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic audit of stored menus.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/navmenu/internal/menu"
)

// auditTimeout bounds a single audit run.
const auditTimeout = time.Minute

// Auditor checks stored menus for malformed references.
type Auditor interface {
	Audit(ctx context.Context) (map[string]menu.Report, error)
}

// Scheduler handles scheduled menu audits.
type Scheduler struct {
	auditor Auditor
	cron    *cron.Cron
	logger  *slog.Logger
}

// New creates a new scheduler instance.
func New(auditor Auditor, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		auditor: auditor,
		cron:    cron.New(),
		logger:  logger,
	}
}

// ValidateSchedule checks a standard cron expression or descriptor such as "@every 1h".
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Start schedules the audit job and starts the cron runner.
func (s *Scheduler) Start(spec string) error {
	if err := ValidateSchedule(spec); err != nil {
		return err
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if _, err := s.RunAudit(ctx); err != nil {
			s.logger.Error("menu audit failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "schedule", spec)
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, spec string) error {
	if err := s.Start(spec); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunAudit audits every menu once and returns the number of problems found.
func (s *Scheduler) RunAudit(ctx context.Context) (int, error) {
	start := time.Now()
	reports, err := s.auditor.Audit(ctx)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		n := len(reports[name].Problems)
		total += n
		s.logger.Warn("menu has malformed references", "menu", name, "problems", n)
	}

	s.logger.Info("menu audit finished", "menus_with_problems", len(reports), "problems", total,
		"duration", time.Since(start).Round(time.Millisecond))
	return total, nil
}
