package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"invensys/clock"
)

// MemStore keeps objects in process memory. Used by BLOB_BACKEND=memory and
// in tests.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	clock   clock.Clock
	// FailPut, when set, is returned by every Put.
	FailPut error
}

type Object struct {
	Data        []byte
	ContentType string
}

func NewMemStore(clk clock.Clock) *MemStore {
	return &MemStore{objects: make(map[string]Object), clock: clk}
}

func (m *MemStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return m.FailPut
	}
	m.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *MemStore) PresignedGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	exp := m.clock.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory:///%s?expires=%d", url.PathEscape(key), exp), nil
}

// Get returns a stored object.
func (m *MemStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
