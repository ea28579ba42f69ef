// Package cache implements the Classification Cache: a
// process-local bounded insertion-ordered tier backed by a shared-KV tier.
// The local tier's eviction shape (map + timestamps, evict-oldest-on-
// overflow) is adapted from the teacher's internal/cache.DedupeCache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/sharedkv"
)

// DefaultLocalCapacity and DefaultTTL are the cache's local capacity and entry TTL.
const (
	DefaultLocalCapacity = 1000
	DefaultTTL           = 1 * time.Hour
	evictFraction        = 0.2
)

// Fingerprint computes the cache key: a digest of text ∥ user ∥ session ∥
// use_context. SHA-256 satisfies "any collision-resistant
// digest".
func Fingerprint(text, user, session string, useContext bool) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%t", text, user, session, useContext)
	return hex.EncodeToString(h.Sum(nil))
}

type localEntry struct {
	result    model.ClassificationResult
	expiresAt time.Time
	insertSeq uint64
}

// ClassificationCache is a two-tier (local LRU + shared KV) cache.
type ClassificationCache struct {
	mu       sync.Mutex
	local    map[string]localEntry
	capacity int
	ttl      time.Duration
	seq      uint64
	shared   sharedkv.Store
	now      func() time.Time
}

// Config configures the cache's capacity, TTL, and shared tier.
type Config struct {
	LocalCapacity int
	TTL           time.Duration
	Shared        sharedkv.Store
	Now           func() time.Time
}

// New builds a ClassificationCache. Shared may be nil, in which case only
// the local tier is used (degraded mode).
func New(cfg Config) *ClassificationCache {
	capacity := cfg.LocalCapacity
	if capacity <= 0 {
		capacity = DefaultLocalCapacity
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ClassificationCache{
		local:    map[string]localEntry{},
		capacity: capacity,
		ttl:      ttl,
		shared:   cfg.Shared,
		now:      now,
	}
}

// Get returns a cached result for the fingerprint, checking the local tier
// first and then the shared tier (populating the local tier on shared hit).
// A shared-KV failure is swallowed: it degrades to a local-only miss rather
// than failing the request.
func (c *ClassificationCache) Get(ctx context.Context, key string) (model.ClassificationResult, bool) {
	if result, ok := c.getLocal(key); ok {
		return result, true
	}
	if c.shared == nil {
		return model.ClassificationResult{}, false
	}
	raw, ok, err := c.shared.Get(ctx, sharedKey(key))
	if err != nil || !ok {
		return model.ClassificationResult{}, false
	}
	var result model.ClassificationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return model.ClassificationResult{}, false
	}
	c.putLocal(key, result)
	return result, true
}

func (c *ClassificationCache) getLocal(key string) (model.ClassificationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.local[key]
	if !ok {
		return model.ClassificationResult{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.local, key)
		return model.ClassificationResult{}, false
	}
	return e.result, true
}

// Put writes through both tiers.
func (c *ClassificationCache) Put(ctx context.Context, key string, result model.ClassificationResult) {
	c.putLocal(key, result)
	if c.shared == nil {
		return
	}
	if raw, err := json.Marshal(result); err == nil {
		_ = c.shared.Set(ctx, sharedKey(key), raw, c.ttl) // fire-and-forget
	}
}

func (c *ClassificationCache) putLocal(key string, result model.ClassificationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.local[key] = localEntry{result: result, expiresAt: c.now().Add(c.ttl), insertSeq: c.seq}
	c.evictIfNeeded()
}

// evictIfNeeded drops expired entries, then the oldest 20% if still over
// capacity. Caller must hold c.mu.
func (c *ClassificationCache) evictIfNeeded() {
	now := c.now()
	for k, e := range c.local {
		if now.After(e.expiresAt) {
			delete(c.local, k)
		}
	}
	if len(c.local) <= c.capacity {
		return
	}
	type kv struct {
		key string
		seq uint64
	}
	ordered := make([]kv, 0, len(c.local))
	for k, e := range c.local {
		ordered = append(ordered, kv{k, e.insertSeq})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	toEvict := int(float64(len(ordered)) * evictFraction)
	if toEvict < len(ordered)-c.capacity {
		toEvict = len(ordered) - c.capacity
	}
	for i := 0; i < toEvict && i < len(ordered); i++ {
		delete(c.local, ordered[i].key)
	}
}

// Size returns the number of entries in the local tier (for tests/metrics).
func (c *ClassificationCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.local)
}

func sharedKey(fingerprint string) string {
	return "classify:" + fingerprint
}
