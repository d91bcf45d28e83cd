package rpccache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	deadline time.Time
}

// MemoryCacher is a process-local Cacher for tests and single-shot CLI
// runs where a Redis round trip isn't worth it. Expired entries are
// dropped lazily on read.
type MemoryCacher struct {
	mtx     sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryCacher() *MemoryCacher {
	return &MemoryCacher{
		entries: make(map[string]*memoryEntry),
	}
}

func (m *MemoryCacher) Start() error {
	return nil
}

func (m *MemoryCacher) Stop() error {
	return nil
}

func (m *MemoryCacher) Get(key string) ([]byte, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	entry := m.live(key)
	if entry == nil {
		return nil, nil
	}

	return entry.value, nil
}

func (m *MemoryCacher) Set(key string, value []byte) error {
	return m.SetEx(key, value, 0)
}

func (m *MemoryCacher) SetEx(key string, value []byte, expiration time.Duration) error {
	var deadline time.Time
	if expiration > 0 {
		deadline = time.Now().Add(expiration)
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.entries[key] = &memoryEntry{
		value:    value,
		deadline: deadline,
	}
	return nil
}

func (m *MemoryCacher) Has(key string) (bool, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.live(key) != nil, nil
}

func (m *MemoryCacher) Del(key string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	delete(m.entries, key)
	return nil
}

// live must be called with the lock held.
func (m *MemoryCacher) live(key string) *memoryEntry {
	entry := m.entries[key]
	if entry == nil {
		return nil
	}
	if !entry.deadline.IsZero() && time.Now().After(entry.deadline) {
		delete(m.entries, key)
		return nil
	}

	return entry
}
