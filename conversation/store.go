package conversation

import (
	"context"
	"errors"
	"sync"
)

type sessionKeyContext struct{}

const defaultSessionKey = "default"

// WithSessionKey sets the routing key used by keyed stores in the context.
// One process can host many concurrent sessions; the key keeps their state
// and history apart.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// SessionKeyFromContext gets the routing key from the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(sessionKeyContext{})
	if value == nil {
		return "", false
	}
	key, ok := value.(string)
	return key, ok
}

func sessionKeyOrDefault(ctx context.Context) string {
	key, ok := SessionKeyFromContext(ctx)
	if ok && key != "" {
		return key
	}
	return defaultSessionKey
}

// Cache is the raw keyed storage the keyed Store builds on.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// MemoryCache is the in-process Cache a single-binary deployment uses.
type MemoryCache[S any] struct {
	mu      sync.RWMutex
	entries map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{entries: make(map[string]S)}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = val
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.entries[key]
	return val, ok, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[key]
	return ok, nil
}

// Store namespaces a Cache and routes by the context session key.
type Store[S any] struct {
	core      Cache[S]
	namespace string
}

func NewStore[S any](core Cache[S], namespace string) Store[S] {
	return Store[S]{core: core, namespace: namespace}
}

func (c Store[S]) key(ctx context.Context) string {
	return c.namespace + ":" + sessionKeyOrDefault(ctx)
}

func (c Store[S]) Set(ctx context.Context, val S) error {
	return c.core.Set(ctx, c.key(ctx), val)
}

func (c Store[S]) Get(ctx context.Context) (S, bool, error) {
	if c.core == nil {
		var zero S
		return zero, false, errors.New("store has no cache")
	}
	return c.core.Get(ctx, c.key(ctx))
}

func (c Store[S]) Del(ctx context.Context) error {
	return c.core.Del(ctx, c.key(ctx))
}

func (c Store[S]) Exists(ctx context.Context) (bool, error) {
	return c.core.Exists(ctx, c.key(ctx))
}
