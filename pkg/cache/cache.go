package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second
)

// ErrCacheMiss is returned by Get when the key is absent or caching is disabled.
var ErrCacheMiss = errors.New("cache miss")

// incrementWindowScript bumps a counter and arms its expiry on the first hit,
// returning the new value and the remaining TTL in milliseconds.
var incrementWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// decrementWindowScript releases one unit of a live counter. An expired or
// exhausted key is left alone so no TTL-less negative counter is created.
var decrementWindowScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current <= 0 then
	return 0
end
return redis.call("DECR", KEYS[1])
`)

type Cache struct {
	client  *redis.Client
	enabled bool

	// local backs the window counters when Redis is not configured.
	local *localCounters
}

func NewCache(addr string, enable bool) (*Cache, error) {
	if !enable {
		return &Cache{enabled: false, local: newLocalCounters(time.Now)}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:  client,
		enabled: true,
	}, nil
}

// NewLocal returns a disabled cache whose window counters run in-process on the given clock.
func NewLocal(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{local: newLocalCounters(now)}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// operationContext creates a context with timeout for Redis operations
func (c *Cache) operationContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, defaultOperationTimeout)
}

func (c *Cache) Set(key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(nil)
	defer cancel()

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, expiration).Err()
}

func (c *Cache) Get(key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrCacheMiss
	}

	ctx, cancel := c.operationContext(nil)
	defer cancel()

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrCacheMiss
	} else if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Delete(key string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(nil)
	defer cancel()

	return c.client.Del(ctx, key).Err()
}

func (c *Cache) DeletePattern(pattern string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := c.operationContext(nil)
	defer cancel()

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// IncrementWindow atomically increments key and starts its expiry window on the
// first increment. It returns the post-increment count and the time left in the window.
func (c *Cache) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		return 0, 0, errors.New("window must be positive")
	}

	if !c.Enabled() {
		count, ttl := c.local.increment(key, window)
		return count, ttl, nil
	}

	opCtx, cancel := c.operationContext(ctx)
	defer cancel()

	raw, err := incrementWindowScript.Run(opCtx, c.client, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected counter reply %v", raw)
	}
	count, _ := values[0].(int64)
	ttl, _ := values[1].(int64)

	return count, time.Duration(ttl) * time.Millisecond, nil
}

// DecrementWindow gives back one unit of a window counter without touching its
// expiry. It is a no-op once the window has expired.
func (c *Cache) DecrementWindow(ctx context.Context, key string) error {
	if !c.Enabled() {
		c.local.decrement(key)
		return nil
	}

	opCtx, cancel := c.operationContext(ctx)
	defer cancel()

	return decrementWindowScript.Run(opCtx, c.client, []string{key}).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) CacheListing(cacheKey string, listing interface{}) error {
	return c.Set(cacheKey, listing, 5*time.Minute)
}

func (c *Cache) GetCachedListing(cacheKey string, dest interface{}) error {
	return c.Get(cacheKey, dest)
}

func (c *Cache) InvalidateListings() error {
	return c.DeletePattern("blog:*")
}

type localCounter struct {
	count     int64
	expiresAt time.Time
}

type localCounters struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]*localCounter
}

func newLocalCounters(now func() time.Time) *localCounters {
	return &localCounters{now: now, entries: make(map[string]*localCounter)}
}

func (l *localCounters) increment(key string, window time.Duration) (int64, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	entry, ok := l.entries[key]
	if !ok {
		entry = &localCounter{expiresAt: now.Add(window)}
		l.entries[key] = entry
	}
	entry.count++

	return entry.count, entry.expiresAt.Sub(now)
}

func (l *localCounters) decrement(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || entry.count <= 0 {
		return
	}
	if !l.now().Before(entry.expiresAt) {
		delete(l.entries, key)
		return
	}
	entry.count--
}

func (l *localCounters) sweepLocked(now time.Time) {
	for key, entry := range l.entries {
		if !now.Before(entry.expiresAt) {
			delete(l.entries, key)
		}
	}
}
