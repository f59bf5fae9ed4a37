// Package cache stores joined markdown documents so unchanged chapters are not
// parsed again on the next run.
package cache

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

// Key derives a cache key from the supplied parts. Parts are length-prefixed
// so ("ab", "c") and ("a", "bc") hash differently.
func Key(parts ...string) string {
	h := blake3.New()
	var prefix [8]byte
	for _, part := range parts {
		n := uint64(len(part))
		for i := range prefix {
			prefix[i] = byte(n >> (8 * i))
		}
		_, _ = h.Write(prefix[:])
		_, _ = h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Memory is an in-process CacheProvider.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

var _ interfaces.CacheProvider = (*Memory)(nil)

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: map[string]string{}}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]string{}
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
