package contracts

import (
	"context"
	"time"
)

// UniverseProvider supplies the issuers to rank
// ⭐ SSOT: 유니버스 제공 인터페이스
type UniverseProvider interface {
	Universe(ctx context.Context) (*Universe, error)
}

// MarketDataProvider supplies raw metrics for one issuer.
// A returned error means "no data for this issuer", never a fatal run error.
type MarketDataProvider interface {
	Fetch(ctx context.Context, ticker string) (*RawMetrics, error)
}

// PriceBar is one daily close
type PriceBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// CacheStore is a JSON key/value cache with expiry (Redis in production)
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
