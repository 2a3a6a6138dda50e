package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryDriver is a map-backed TTL cache. Expired entries are dropped lazily
// on read and on write of the same key; the working set here is a handful of
// stats snapshots, so no sweeper is needed.
type memoryDriver struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func newMemoryDriver() *memoryDriver {
	return &memoryDriver{entries: make(map[string]memoryEntry)}
}

func (m *memoryDriver) Get(key string, dest interface{}) bool {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	return json.Unmarshal(entry.data, dest) == nil
}

func (m *memoryDriver) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryDriver) Forget(keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}
