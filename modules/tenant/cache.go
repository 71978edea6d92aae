package tenant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds tenant records for the lock-free status path. Implementations
// must be safe for concurrent use; misses and backend errors are both
// reported as absence so a degraded cache never fails a read.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*Tenant, bool)
	Set(ctx context.Context, id uuid.UUID, t *Tenant)
	Delete(ctx context.Context, id uuid.UUID)
}

type memoryCache struct {
	mu    sync.RWMutex
	items map[uuid.UUID]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

type memoryItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// DefaultCacheTTL bounds how stale a cached tenant record may be.
const DefaultCacheTTL = 5 * time.Minute

// NewMemoryCache returns an in-process TTL cache. Expired entries are
// dropped lazily on access; the working set is one entry per recently read
// tenant, so no background janitor is needed.
func NewMemoryCache(ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &memoryCache{
		items: make(map[uuid.UUID]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *memoryCache) Get(ctx context.Context, id uuid.UUID) (*Tenant, bool) {
	c.mu.RLock()
	item, ok := c.items[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(item.expiresAt) {
		c.mu.Lock()
		if held, still := c.items[id]; still && c.now().After(held.expiresAt) {
			delete(c.items, id)
		}
		c.mu.Unlock()
		return nil, false
	}
	return item.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, id uuid.UUID, t *Tenant) {
	c.mu.Lock()
	c.items[id] = memoryItem{tenant: t, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *memoryCache) Delete(ctx context.Context, id uuid.UUID) {
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

type redisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache returns a Cache backed by Redis, for deployments where
// status reads should survive process restarts and be shared across
// replicas. Backend errors are swallowed: a broken Redis degrades to cache
// misses, never to failed reads.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &redisCache{client: client, ttl: ttl}
}

func redisKey(id uuid.UUID) string {
	return "tenant:" + id.String()
}

func (c *redisCache) Get(ctx context.Context, id uuid.UUID) (*Tenant, bool) {
	payload, err := c.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(payload, &t); err != nil {
		// Corrupt entry, drop it.
		c.client.Del(ctx, redisKey(id))
		return nil, false
	}
	return &t, true
}

func (c *redisCache) Set(ctx context.Context, id uuid.UUID, t *Tenant) {
	payload, err := json.Marshal(t)
	if err != nil {
		return
	}
	c.client.Set(ctx, redisKey(id), payload, c.ttl)
}

func (c *redisCache) Delete(ctx context.Context, id uuid.UUID) {
	c.client.Del(ctx, redisKey(id))
}

type tieredCache struct {
	local  Cache
	remote Cache
}

// NewTieredCache layers a local cache in front of a remote one. Reads fall
// through local to remote and backfill local on a remote hit; writes and
// invalidations go to both tiers.
func NewTieredCache(local, remote Cache) Cache {
	return &tieredCache{local: local, remote: remote}
}

func (c *tieredCache) Get(ctx context.Context, id uuid.UUID) (*Tenant, bool) {
	if t, ok := c.local.Get(ctx, id); ok {
		return t, true
	}
	if t, ok := c.remote.Get(ctx, id); ok {
		c.local.Set(ctx, id, t)
		return t, true
	}
	return nil, false
}

func (c *tieredCache) Set(ctx context.Context, id uuid.UUID, t *Tenant) {
	c.local.Set(ctx, id, t)
	c.remote.Set(ctx, id, t)
}

func (c *tieredCache) Delete(ctx context.Context, id uuid.UUID) {
	c.local.Delete(ctx, id)
	c.remote.Delete(ctx, id)
}

type noopCache struct{}

// NewNoopCache returns a Cache that never stores anything, for tests and
// for disabling caching outright.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, uuid.UUID) (*Tenant, bool) { return nil, false }
func (noopCache) Set(context.Context, uuid.UUID, *Tenant)        {}
func (noopCache) Delete(context.Context, uuid.UUID)              {}
