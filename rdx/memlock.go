package rdx

import (
	"context"
	"sync"
	"time"
)

// MemLocker is a process-local Locker for tests and single-node development.
type MemLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

func NewMemLocker() *MemLocker {
	return &MemLocker{held: make(map[string]time.Time), clock: time.Now}
}

func (m *MemLocker) Acquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	if exp, ok := m.held[name]; ok && now.Before(exp) {
		return false, nil
	}
	m.held[name] = now.Add(ttl)
	return true, nil
}

func (m *MemLocker) Release(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	return nil
}
