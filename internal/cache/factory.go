// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by Config.Type.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
	TypeNone   = "none"
)

// Config holds configuration for cache creation.
type Config struct {
	// Type is the cache backend: "memory", "redis" or "none"
	Type string

	// RedisURL is the Redis connection URL (only for redis type)
	RedisURL string

	// Prefix is the key prefix for Redis (only for redis type)
	Prefix string

	// DefaultTTL is the default TTL for cache entries
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited)
	MaxSize int
}

// New creates the configured backend. Type "none" returns a nil Cache,
// which callers treat as caching disabled.
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Type {
	case TypeNone:
		return nil, nil
	case TypeRedis:
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		c, err := NewRedisCache(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return c, nil
	case TypeMemory, "":
		return NewMemoryCache(MemoryCacheOptions{
			DefaultTTL:      cfg.DefaultTTL,
			MaxSize:         cfg.MaxSize,
			CleanupInterval: time.Minute,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
