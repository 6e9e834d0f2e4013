package s0_data

import (
	"context"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/logger"
	"github.com/wonny/vantage/backend/pkg/redis"
)

// CachedProvider serves raw metrics from cache while they are fresh.
// Metrics change at most daily so the default TTL is 24h.
type CachedProvider struct {
	next   contracts.MarketDataProvider
	store  contracts.CacheStore
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps next; ttl <= 0 uses redis.TTLDaily
func NewCachedProvider(next contracts.MarketDataProvider, store contracts.CacheStore, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &CachedProvider{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: log,
	}
}

// Fetch returns cached metrics or fetches and caches fresh ones.
// Provider errors are not cached so the next run retries.
func (p *CachedProvider) Fetch(ctx context.Context, ticker string) (*contracts.RawMetrics, error) {
	key := redis.MetricsKey(ticker)

	var cached contracts.RawMetrics
	found, err := p.store.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Metrics cache read failed")
	}
	if found {
		return &cached, nil
	}

	raw, err := p.next.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, key, raw, p.ttl); err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("Metrics cache write failed")
	}
	return raw, nil
}
