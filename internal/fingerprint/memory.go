// Package fingerprint keeps fingerprints of live index schemas that validated clean, in
// process, for deployments without Redis.
package fingerprint

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 1024

// Memory is a bounded in-process fingerprint store. Only the latest fingerprint per
// index is kept.
type Memory struct {
	cache *lru.Cache[string, string]
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	cache, _ := lru.New[string, string](size)
	return &Memory{cache: cache}
}

func (m *Memory) Seen(_ context.Context, index, fingerprint string) (bool, error) {
	v, ok := m.cache.Get(index)
	return ok && v == fingerprint, nil
}

func (m *Memory) Remember(_ context.Context, index, fingerprint string) error {
	m.cache.Add(index, fingerprint)
	return nil
}

func (m *Memory) Forget(_ context.Context, index string) error {
	m.cache.Remove(index)
	return nil
}

func (m *Memory) Len() int { return m.cache.Len() }
