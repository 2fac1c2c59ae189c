package session

import (
	"context"
	"sync"
)

// MemoryStore is a Store that lives as long as the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	email string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(ctx context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != "", nil
}

func (m *MemoryStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) SetEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	m.email = email
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Email(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.email, nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.email = ""
	return nil
}
