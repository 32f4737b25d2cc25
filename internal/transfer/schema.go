// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer moves menus in and out of the store as YAML documents.
// Exported menus use the nested form produced by the menu builder.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the current version of the document format.
const FormatVersion = "1.0"

// MaxDepth limits how deeply items may nest in an imported document.
const MaxDepth = 16

// ErrValidation is returned when a document fails validation.
var ErrValidation = errors.New("validation failed")

// Document is the top-level structure of an export file.
type Document struct {
	Version    string       `yaml:"version"`
	ExportedAt time.Time    `yaml:"exported_at"`
	Menus      []ExportMenu `yaml:"menus"`
}

// ExportMenu is one menu with its items nested under their parents.
type ExportMenu struct {
	Name  string       `yaml:"name"`
	Slug  string       `yaml:"slug,omitempty"`
	Items []ExportItem `yaml:"items,omitempty"`
}

// ExportItem is a node of an exported menu. Sibling order is the list order.
type ExportItem struct {
	Name     string       `yaml:"name"`
	URL      string       `yaml:"url,omitempty"`
	Children []ExportItem `yaml:"children,omitempty"`
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML document. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &doc, nil
}

// ConflictStrategy decides what happens when an imported menu already exists.
type ConflictStrategy string

const (
	// ConflictSkip leaves the existing menu untouched.
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces the existing menu's nodes.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ParseConflictStrategy validates a strategy name.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case ConflictSkip, ConflictOverwrite:
		return ConflictStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown conflict strategy %q (want skip or overwrite)", s)
	}
}

// ImportOptions controls an import run.
type ImportOptions struct {
	DryRun           bool
	ConflictStrategy ConflictStrategy
}

// DefaultImportOptions returns options that skip existing menus.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{ConflictStrategy: ConflictSkip}
}

// ImportError describes one rejected entity.
type ImportError struct {
	Entity  string `yaml:"entity"`
	ID      string `yaml:"id"`
	Message string `yaml:"message"`
}

func (e ImportError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Message)
}

// ImportResult tallies what an import did, or would do on a dry run.
type ImportResult struct {
	Success bool
	DryRun  bool
	Created map[string]int
	Updated map[string]int
	Skipped map[string]int
	Errors  []ImportError
}

// NewImportResult creates an empty successful result.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{
		Success: true,
		DryRun:  dryRun,
		Created: make(map[string]int),
		Updated: make(map[string]int),
		Skipped: make(map[string]int),
	}
}

// IncrementCreated counts one created entity.
func (r *ImportResult) IncrementCreated(entity string) { r.Created[entity]++ }

// IncrementUpdated counts one updated entity.
func (r *ImportResult) IncrementUpdated(entity string) { r.Updated[entity]++ }

// IncrementSkipped counts one skipped entity.
func (r *ImportResult) IncrementSkipped(entity string) { r.Skipped[entity]++ }

// AddError records a failure and marks the result unsuccessful.
func (r *ImportResult) AddError(entity, id, message string) {
	r.Success = false
	r.Errors = append(r.Errors, ImportError{Entity: entity, ID: id, Message: message})
}

// TotalCreated returns the number of created entities.
func (r *ImportResult) TotalCreated() int { return total(r.Created) }

// TotalUpdated returns the number of updated entities.
func (r *ImportResult) TotalUpdated() int { return total(r.Updated) }

// TotalSkipped returns the number of skipped entities.
func (r *ImportResult) TotalSkipped() int { return total(r.Skipped) }

func total(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// Entity names used in results.
const (
	entityMenus = "menus"
	entityNodes = "nodes"
)
