package s1_universe

import (
	"context"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// CachedProvider serves a universe from cache until it expires
type CachedProvider struct {
	next   contracts.UniverseProvider
	store  contracts.CacheStore
	key    string
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps next with a cache entry under key
func NewCachedProvider(next contracts.UniverseProvider, store contracts.CacheStore, key string, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		store:  store,
		key:    key,
		ttl:    ttl,
		logger: log,
	}
}

// Universe returns the cached universe or fetches and stores a fresh one.
// Cache failures only log; the upstream result still returns.
func (p *CachedProvider) Universe(ctx context.Context) (*contracts.Universe, error) {
	var cached contracts.Universe
	found, err := p.store.Get(ctx, p.key, &cached)
	if err != nil {
		p.logger.WithError(err).Warn("Universe cache read failed")
	}
	if found && len(cached.Issuers) > 0 {
		return &cached, nil
	}

	universe, err := p.next.Universe(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, p.key, universe, p.ttl); err != nil {
		p.logger.WithError(err).Warn("Universe cache write failed")
	}
	return universe, nil
}
