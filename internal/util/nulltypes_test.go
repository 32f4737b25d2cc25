// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
)

func TestNullInt64RoundTrip(t *testing.T) {
	v := int64(42)
	n := NullInt64FromPtr(&v)
	if !n.Valid || n.Int64 != 42 {
		t.Fatalf("NullInt64FromPtr = %+v", n)
	}
	if p := NullInt64ToPtr(n); p == nil || *p != 42 {
		t.Errorf("NullInt64ToPtr = %v, want 42", p)
	}
	if NullInt64FromPtr(nil).Valid {
		t.Error("NullInt64FromPtr(nil) should be invalid")
	}
	if NullInt64ToPtr(sql.NullInt64{}) != nil {
		t.Error("NullInt64ToPtr(invalid) should be nil")
	}
}

func TestParseNullInt64Positive(t *testing.T) {
	tests := []struct {
		input string
		want  sql.NullInt64
	}{
		{"", sql.NullInt64{}},
		{"0", sql.NullInt64{}},
		{"-3", sql.NullInt64{}},
		{"abc", sql.NullInt64{}},
		{"7", sql.NullInt64{Int64: 7, Valid: true}},
	}

	for _, tt := range tests {
		if got := ParseNullInt64Positive(tt.input); got != tt.want {
			t.Errorf("ParseNullInt64Positive(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestNullStringFromValue(t *testing.T) {
	if NullStringFromValue("").Valid {
		t.Error("empty string should be invalid")
	}
	if got := NullStringFromValue("/a"); !got.Valid || got.String != "/a" {
		t.Errorf("NullStringFromValue = %+v", got)
	}
}
