// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/navmenu/internal/scheduler"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver string `env:"NAVMENU_DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"NAVMENU_DB_DSN" envDefault:"./data/navmenu.db"`

	ServerHost      string        `env:"NAVMENU_SERVER_HOST" envDefault:"localhost"`
	ServerPort      int           `env:"NAVMENU_SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"NAVMENU_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Env             string        `env:"NAVMENU_ENV" envDefault:"development"`
	LogLevel        string        `env:"NAVMENU_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"NAVMENU_LOG_FORMAT" envDefault:"text"` // text, json or pretty

	// Cache configuration
	CacheType    string `env:"NAVMENU_CACHE_TYPE" envDefault:"memory"`     // memory, redis or none
	RedisURL     string `env:"NAVMENU_REDIS_URL"`                          // Required when CacheType is redis
	CachePrefix  string `env:"NAVMENU_CACHE_PREFIX" envDefault:"navmenu:"` // Redis key prefix
	CacheTTL     int    `env:"NAVMENU_CACHE_TTL" envDefault:"300"`         // Menu snapshot TTL in seconds
	CacheMaxSize int    `env:"NAVMENU_CACHE_MAX_SIZE" envDefault:"1000"`   // Max memory cache entries

	// Menu drawing
	DefaultMenu string `env:"NAVMENU_DEFAULT_MENU" envDefault:"main"` // Menu drawn on the demo page

	// Management API protection
	APIRateLimit   float64  `env:"NAVMENU_API_RATE_LIMIT" envDefault:"5"` // Requests per second per IP
	APIRateBurst   int      `env:"NAVMENU_API_RATE_BURST" envDefault:"20"`
	TrustedOrigins []string `env:"NAVMENU_TRUSTED_ORIGINS" envSeparator:","` // host[:port] values

	// Periodic audit of stored menus, cron syntax; "off" disables it
	AuditSchedule string `env:"NAVMENU_AUDIT_SCHEDULE" envDefault:"@every 1h"`

	// Seeding configuration
	DoSeed bool `env:"NAVMENU_DO_SEED" envDefault:"false"` // Seed the main and footer menus
}

// Accepted enumerated values.
var (
	dbDrivers  = []string{"sqlite", "mysql"}
	logFormats = []string{"text", "json", "pretty"}
	cacheTypes = []string{"memory", "redis", "none"}
)

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.CacheType == "redis"
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// AuditEnabled reports whether the periodic audit job is scheduled.
func (c Config) AuditEnabled() bool {
	return c.AuditSchedule != "" && c.AuditSchedule != "off"
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given environment instead of the process one.
// A nil map reads the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains(dbDrivers, c.DBDriver) {
		return fmt.Errorf("NAVMENU_DB_DRIVER must be one of %v, got %q", dbDrivers, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("NAVMENU_DB_DSN must not be empty")
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("NAVMENU_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		return fmt.Errorf("NAVMENU_LOG_FORMAT must be one of %v, got %q", logFormats, c.LogFormat)
	}
	if !slices.Contains(cacheTypes, c.CacheType) {
		return fmt.Errorf("NAVMENU_CACHE_TYPE must be one of %v, got %q", cacheTypes, c.CacheType)
	}
	if c.UseRedisCache() && c.RedisURL == "" {
		return fmt.Errorf("NAVMENU_REDIS_URL is required when NAVMENU_CACHE_TYPE is redis")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("NAVMENU_CACHE_TTL must not be negative, got %d", c.CacheTTL)
	}
	if c.APIRateLimit <= 0 || c.APIRateBurst < 1 {
		return fmt.Errorf("NAVMENU_API_RATE_LIMIT and NAVMENU_API_RATE_BURST must be positive")
	}
	if c.DefaultMenu == "" {
		return fmt.Errorf("NAVMENU_DEFAULT_MENU must not be empty")
	}
	if c.AuditEnabled() {
		if err := scheduler.ValidateSchedule(c.AuditSchedule); err != nil {
			return fmt.Errorf("NAVMENU_AUDIT_SCHEDULE: %w", err)
		}
	}
	return nil
}
