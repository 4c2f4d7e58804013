package tokenstore

import (
	"context"
	"sync"
)

const keyAccessToken = "access_token"

// Store persists the little state the client keeps across restarts: the
// access token and whatever cookies the jar is told to keep.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error

	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStore is a Store that forgets everything on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Token(ctx context.Context) (string, error) {
	value, _, err := m.Get(ctx, keyAccessToken)
	return value, err
}

func (m *MemoryStore) SetToken(ctx context.Context, token string) error {
	return m.Set(ctx, keyAccessToken, token)
}

func (m *MemoryStore) ClearToken(ctx context.Context) error {
	return m.Delete(ctx, keyAccessToken)
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}
