package kv

import (
	"context"
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps values in process memory. Values are copied on the way
// in and out so callers cannot mutate stored bytes.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 0)}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, nil
	}
	return clone(v.([]byte)), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	m.c.Set(key, clone(value), gocache.NoExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) (map[string][]byte, error) {
	result := make(map[string][]byte)
	for k, item := range m.c.Items() {
		if strings.HasPrefix(k, prefix) {
			result[k] = clone(item.Object.([]byte))
		}
	}
	return result, nil
}

func (m *MemoryStore) Clear(_ context.Context, prefix string) error {
	if prefix == "" {
		m.c.Flush()
		return nil
	}
	for k := range m.c.Items() {
		if strings.HasPrefix(k, prefix) {
			m.c.Delete(k)
		}
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
