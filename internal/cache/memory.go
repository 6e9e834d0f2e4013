package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/vantage/backend/pkg/logger"
)

// MemoryCache is an in-process TTL cache used when Redis is disabled.
// Values are stored JSON-encoded so reads behave like the Redis cache.
// ⭐ SSOT: 프로세스 내 캐싱은 이 구조체에서만
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	logger  *logger.Logger
	now     func() time.Time
}

type entry struct {
	data      []byte
	expiresAt time.Time // zero = never
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		logger:  log,
		now:     time.Now,
	}
}

// Get decodes a live entry into dest
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || e.expired(c.now()) {
		return false, nil
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores a value; ttl <= 0 keeps it until deleted
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes an entry
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanExpired removes expired entries
func (c *MemoryCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0

	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned expired entries from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalCount: len(c.entries)}
	now := c.now()
	for _, e := range c.entries {
		if e.expired(now) {
			stats.ExpiredCount++
		}
	}
	stats.LiveCount = stats.TotalCount - stats.ExpiredCount

	return stats
}

// Stats represents cache statistics
type Stats struct {
	TotalCount   int `json:"total_count"`
	LiveCount    int `json:"live_count"`
	ExpiredCount int `json:"expired_count"`
}
