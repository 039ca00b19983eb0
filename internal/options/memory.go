package options

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and one-shot runs
// that should not touch disk.
type MemoryRepository struct {
	mu     sync.Mutex
	values map[string]memoryValue
	now    func() time.Time
}

type memoryValue struct {
	value   string
	expires time.Time
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{values: make(map[string]memoryValue), now: time.Now}
}

func (m *MemoryRepository) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lookup(name)
	return v, ok, nil
}

func (m *MemoryRepository) Set(_ context.Context, name, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv := memoryValue{value: value}
	if ttl > 0 {
		mv.expires = m.now().Add(ttl)
	}
	m.values[name] = mv
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

func (m *MemoryRepository) Consume(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.lookup(name)
	delete(m.values, name)
	return v, ok, nil
}

func (m *MemoryRepository) Close() error { return nil }

func (m *MemoryRepository) lookup(name string) (string, bool) {
	mv, ok := m.values[name]
	if !ok {
		return "", false
	}
	if !mv.expires.IsZero() && !m.now().Before(mv.expires) {
		delete(m.values, name)
		return "", false
	}
	return mv.value, true
}
