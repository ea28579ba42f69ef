package sharedkv

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests and as the degraded-mode
// fallback when no Redis endpoint is configured. It never fails, standing
// in at the boundary where a real client would be wired in.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]entry
	sets    map[string]map[string]struct{}
	nowFunc func() time.Time
}

type entry struct {
	value   []byte
	expires time.Time
}

// NewMemoryStore builds an empty in-memory shared-KV stand-in.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  map[string]entry{},
		sets:    map[string]map[string]struct{}{},
		nowFunc: time.Now,
	}
}

func (m *MemoryStore) now() time.Time { return m.nowFunc() }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.values, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.values[key] = entry{value: value, expires: exp}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Incr(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current int64
	if e, ok := m.values[key]; ok && (e.expires.IsZero() || !m.now().After(e.expires)) {
		current = decodeInt64(e.value)
	}
	current += delta
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.values[key] = entry{value: encodeInt64(current), expires: exp}
	return current, nil
}

func (m *MemoryStore) AddToSet(_ context.Context, key, member string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		set = map[string]struct{}{}
		m.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

func (m *MemoryStore) RemoveFromSet(_ context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if set, ok := m.sets[key]; ok {
		delete(set, member)
	}
	return nil
}

func (m *MemoryStore) Members(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.sets[key]
	out := make([]string, 0, len(set))
	for member := range set {
		out = append(out, member)
	}
	return out, nil
}

func encodeInt64(v int64) []byte {
	return []byte(strconv.FormatInt(v, 10))
}

func decodeInt64(b []byte) int64 {
	v, _ := strconv.ParseInt(string(b), 10, 64)
	return v
}
