// Package store caches rendered cards between requests.
package store

import (
	"context"
	"fmt"
	"time"
)

// Store is a byte cache with per-entry TTL.
type Store interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// Drivers accepted by New.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// DefaultMaxCost bounds the memory store at 64 MiB of values.
const DefaultMaxCost = 64 << 20

// Config selects and configures a store.
type Config struct {
	Driver string

	// Memory
	MaxCost int64

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// New returns the store named by cfg.Driver. The empty driver is memory.
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(cfg.MaxCost)
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("store: redis driver needs an address")
		}
		return NewRedis(cfg), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
