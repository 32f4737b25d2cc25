// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, "sqlite")
	}
	if cfg.DBDSN != "./data/navmenu.db" {
		t.Errorf("DBDSN = %q, want %q", cfg.DBDSN, "./data/navmenu.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.CacheType != "memory" || cfg.UseRedisCache() {
		t.Errorf("CacheType = %q, want memory", cfg.CacheType)
	}
	if cfg.CacheTTLDuration() != 5*time.Minute {
		t.Errorf("CacheTTLDuration() = %v, want 5m", cfg.CacheTTLDuration())
	}
	if cfg.DefaultMenu != "main" {
		t.Errorf("DefaultMenu = %q, want main", cfg.DefaultMenu)
	}
	if !cfg.AuditEnabled() {
		t.Error("AuditEnabled() = false, want true")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.DoSeed {
		t.Error("DoSeed should default to false")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"NAVMENU_DB_DRIVER":       "mysql",
		"NAVMENU_DB_DSN":          "user:pass@tcp(db:3306)/navmenu",
		"NAVMENU_SERVER_HOST":     "0.0.0.0",
		"NAVMENU_SERVER_PORT":     "3000",
		"NAVMENU_ENV":             "production",
		"NAVMENU_LOG_FORMAT":      "json",
		"NAVMENU_CACHE_TYPE":      "redis",
		"NAVMENU_REDIS_URL":       "redis://localhost:6379/0",
		"NAVMENU_TRUSTED_ORIGINS": "a.example,b.example:8443",
		"NAVMENU_AUDIT_SCHEDULE":  "off",
		"NAVMENU_DO_SEED":         "true",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.DBDriver != "mysql" {
		t.Errorf("DBDriver = %q, want mysql", cfg.DBDriver)
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false, want true")
	}
	if len(cfg.TrustedOrigins) != 2 || cfg.TrustedOrigins[1] != "b.example:8443" {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
	if cfg.AuditEnabled() {
		t.Error("off schedule should disable the audit job")
	}
	if !cfg.DoSeed {
		t.Error("DoSeed = false, want true")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
	}{
		{"unknown driver", map[string]string{"NAVMENU_DB_DRIVER": "postgres"}, "NAVMENU_DB_DRIVER"},
		{"bad port", map[string]string{"NAVMENU_SERVER_PORT": "70000"}, "NAVMENU_SERVER_PORT"},
		{"non-numeric port", map[string]string{"NAVMENU_SERVER_PORT": "http"}, "parsing config"},
		{"bad log format", map[string]string{"NAVMENU_LOG_FORMAT": "xml"}, "NAVMENU_LOG_FORMAT"},
		{"bad cache type", map[string]string{"NAVMENU_CACHE_TYPE": "disk"}, "NAVMENU_CACHE_TYPE"},
		{"redis without url", map[string]string{"NAVMENU_CACHE_TYPE": "redis"}, "NAVMENU_REDIS_URL"},
		{"negative ttl", map[string]string{"NAVMENU_CACHE_TTL": "-1"}, "NAVMENU_CACHE_TTL"},
		{"zero rate", map[string]string{"NAVMENU_API_RATE_LIMIT": "0"}, "NAVMENU_API_RATE_LIMIT"},
		{"zero burst", map[string]string{"NAVMENU_API_RATE_BURST": "0"}, "NAVMENU_API_RATE_BURST"},
		{"bad audit schedule", map[string]string{"NAVMENU_AUDIT_SCHEDULE": "every hour"}, "NAVMENU_AUDIT_SCHEDULE"},
		{"audit schedule with seconds", map[string]string{"NAVMENU_AUDIT_SCHEDULE": "0 0 * * * *"}, "NAVMENU_AUDIT_SCHEDULE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			if err == nil {
				t.Fatal("LoadFrom() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
