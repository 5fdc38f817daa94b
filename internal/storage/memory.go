package storage

import (
	"encoding/json"
	"sync"
)

// MemoryCache keeps encoded values in a map. It is safe for concurrent use.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		values: make(map[string][]byte),
	}
}

func (m *MemoryCache) Get(key string, dst any) bool {
	m.mu.RLock()
	b, exists := m.values[key]
	m.mu.RUnlock()

	if !exists {
		return false
	}

	return json.Unmarshal(b, dst) == nil
}

func (m *MemoryCache) Set(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.values[key] = b
	m.mu.Unlock()

	return nil
}

// SetRaw stores b under key as-is. Used to simulate corrupted entries.
func (m *MemoryCache) SetRaw(key string, b []byte) {
	m.mu.Lock()
	m.values[key] = append([]byte(nil), b...)
	m.mu.Unlock()
}

func (m *MemoryCache) Remove(key string) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
}

// Keys returns the stored keys in no particular order.
func (m *MemoryCache) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}
