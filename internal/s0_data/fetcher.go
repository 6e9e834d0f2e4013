package s0_data

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// DefaultConcurrency bounds in-flight provider calls
const DefaultConcurrency = 8

// FetchStats summarizes one batch fetch
type FetchStats struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Fetcher pulls raw metrics for a whole universe with bounded concurrency
// ⭐ SSOT: 종목별 지표 병렬 수집은 여기서만
type Fetcher struct {
	provider    contracts.MarketDataProvider
	concurrency int
	logger      *logger.Logger
}

// NewFetcher creates a fetcher; concurrency < 1 uses DefaultConcurrency
func NewFetcher(provider contracts.MarketDataProvider, concurrency int, log *logger.Logger) *Fetcher {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{
		provider:    provider,
		concurrency: concurrency,
		logger:      log,
	}
}

// FetchAll fetches every ticker. A failed ticker is logged and left out of
// the map so the engine treats all of its metrics as absent.
// Only context cancellation is returned as an error.
func (f *Fetcher) FetchAll(ctx context.Context, tickers []string) (map[string]*contracts.RawMetrics, FetchStats, error) {
	start := time.Now()
	stats := FetchStats{Requested: len(tickers)}

	var (
		mu      sync.Mutex
		results = make(map[string]*contracts.RawMetrics, len(tickers))
		failed  atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, ticker := range tickers {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			raw, err := f.provider.Fetch(gctx, ticker)
			if err != nil {
				failed.Add(1)
				f.logger.WithError(err).WithField("ticker", ticker).Warn("Fetch failed, issuer metrics unavailable")
				return nil // don't abort batch on individual failure
			}

			mu.Lock()
			results[ticker] = raw
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	stats.Succeeded = len(results)
	stats.Failed = int(failed.Load())
	stats.Duration = time.Since(start)

	f.logger.WithFields(map[string]interface{}{
		"requested":   stats.Requested,
		"succeeded":   stats.Succeeded,
		"failed":      stats.Failed,
		"concurrency": f.concurrency,
		"duration":    stats.Duration.String(),
	}).Info("Fetched market data")

	return results, stats, nil
}
