// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Main Menu", "main-menu"},
		{"punctuation", "Header, Top!", "header-top"},
		{"numbers", "Footer 2", "footer-2"},
		{"accents", "Café résumé", "cafe-resume"},
		{"multiple spaces", "Side   Bar", "side-bar"},
		{"hyphen padding", "Top - Bar", "top-bar"},
		{"surrounding spaces", "  main  ", "main"},
		{"symbols only", "!@#$%^&*()", ""},
		{"umlauts", "Über München", "uber-munchen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSlugifyTransliterates(t *testing.T) {
	for _, input := range []string{"Главное меню", "メニュー"} {
		got := Slugify(input)
		if !IsValidSlug(got) {
			t.Errorf("Slugify(%q) = %q, want a valid non-empty slug", input, got)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"main", true},
		{"main-menu", true},
		{"footer-2", true},
		{"", false},
		{"Main", false},
		{"-main", false},
		{"main-", false},
		{"main--menu", false},
		{"main menu", false},
		{"main_menu", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}
