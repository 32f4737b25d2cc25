// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package menu

import (
	"fmt"
	"log/slog"
)

// ProblemKind classifies a malformed reference.
type ProblemKind string

// Problem kinds reported by BuildWithReport and Audit.
const (
	ProblemDuplicateID    ProblemKind = "duplicate_id"
	ProblemDanglingParent ProblemKind = "dangling_parent"
	ProblemCycle          ProblemKind = "cycle"
)

// Problem describes one malformed reference and how it was recovered.
type Problem struct {
	Kind     ProblemKind `json:"kind"`
	NodeID   int64       `json:"node_id"`
	ParentID int64       `json:"parent_id,omitempty"`
	Name     string      `json:"name"`
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemDuplicateID:
		return fmt.Sprintf("node %d (%q) repeats an earlier id and was dropped", p.NodeID, p.Name)
	case ProblemDanglingParent:
		return fmt.Sprintf("node %d (%q) references missing parent %d and was rendered as a root", p.NodeID, p.Name, p.ParentID)
	case ProblemCycle:
		return fmt.Sprintf("node %d (%q) closes a parent cycle through %d and was rendered as a root", p.NodeID, p.Name, p.ParentID)
	default:
		return fmt.Sprintf("node %d (%q): %s", p.NodeID, p.Name, p.Kind)
	}
}

// LogValue implements slog.LogValuer.
func (p Problem) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(p.Kind)),
		slog.Int64("node_id", p.NodeID),
		slog.String("name", p.Name),
	}
	if p.ParentID != 0 {
		attrs = append(attrs, slog.Int64("parent_id", p.ParentID))
	}
	return slog.GroupValue(attrs...)
}

// Report collects the problems found in one node set.
type Report struct {
	Problems []Problem `json:"problems,omitempty"`
}

func (r *Report) add(p Problem) {
	r.Problems = append(r.Problems, p)
}

// OK returns true if no problems were found.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Count returns the number of problems of the given kind.
func (r Report) Count(kind ProblemKind) int {
	n := 0
	for _, p := range r.Problems {
		if p.Kind == kind {
			n++
		}
	}
	return n
}
