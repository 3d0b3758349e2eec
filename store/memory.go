package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is an in-process store backed by ristretto. Cost is the value length.
type Memory struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemory creates a memory store bounded by maxCost bytes.
func NewMemory(maxCost int64) (*Memory, error) {
	if maxCost <= 0 {
		maxCost = DefaultMaxCost
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 100_000,
		MaxCost:     maxCost,
		BufferItems: 64,
		OnReject: func(item *ristretto.Item[[]byte]) {
			slog.Debug("card cache rejected item", slog.Uint64("key", item.Key), slog.Int64("cost", item.Cost))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto cache: %w", err)
	}
	return &Memory{cache: c}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if !m.cache.SetWithTTL(key, val, int64(len(val)), ttl) {
		return fmt.Errorf("memory store: set %s dropped", key)
	}
	m.cache.Wait()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.cache.Close()
	return nil
}
