package commands

import (
	"context"
	"fmt"

	"github.com/wonny/vantage/backend/internal/brain"
	"github.com/wonny/vantage/backend/internal/cache"
	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/s0_data"
	"github.com/wonny/vantage/backend/internal/s1_universe"
	"github.com/wonny/vantage/backend/internal/s2_signals"
	"github.com/wonny/vantage/backend/internal/selection"
	"github.com/wonny/vantage/backend/internal/strategyconfig"
	"github.com/wonny/vantage/backend/pkg/config"
	"github.com/wonny/vantage/backend/pkg/database"
	"github.com/wonny/vantage/backend/pkg/httputil"
	"github.com/wonny/vantage/backend/pkg/logger"
	"github.com/wonny/vantage/backend/pkg/redis"
)

// app holds the wired pipeline shared by all commands
type app struct {
	cfg          *config.Config
	log          *logger.Logger
	strategy     *strategyconfig.Config
	strategyHash string
	universe     contracts.UniverseProvider
	orchestrator *brain.Orchestrator

	db       *database.DB
	redis    *redis.Client
	memCache *cache.MemoryCache // set when Redis is disabled
}

// newApp loads configuration and wires providers, engine and orchestrator.
// quiet raises the log level so table output stays readable.
func newApp(ctx context.Context, quiet bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strategyFile != "" {
		cfg.StrategyConfig = strategyFile
	}
	if quiet && !verbose {
		cfg.LogLevel = "warn"
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// 3. Strategy → engine
	a.strategy, a.strategyHash, err = loadStrategy(cfg.StrategyConfig)
	if err != nil {
		return nil, err
	}
	selCfg, err := a.strategy.ToSelectionConfig()
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	engine, err := selection.NewEngine(selCfg, log)
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}

	// 4. Optional stores
	if cfg.Database.URL != "" {
		if a.db, err = database.New(cfg); err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		ran, err := database.Migrate(ctx, a.db.Querier())
		if err != nil {
			a.close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.WithField("applied", ran).Info("Connected to database")
	}

	if a.redis, err = redis.New(ctx, cfg); err != nil {
		a.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	var store contracts.CacheStore
	if a.redis.Enabled() {
		store = redis.NewCache(a.redis, "vantage")
		log.Info("Connected to redis")
	} else {
		a.memCache = cache.NewMemoryCache(log)
		store = a.memCache
	}

	// 5. Providers
	httpClient := httputil.New(cfg, log)
	market, opts := a.marketData(httpClient, store)
	a.universe = a.universeProvider(httpClient, store)

	fetcher := s0_data.NewFetcher(market, cfg.MarketData.Concurrency, log)
	a.orchestrator = brain.NewOrchestrator(a.universe, fetcher, engine, a.strategyHash, log, opts...)

	log.WithFields(map[string]interface{}{
		"data_source":   cfg.MarketData.Source,
		"strategy":      a.strategy.Meta.StrategyID,
		"strategy_hash": a.strategyHash[:12],
		"redis":         a.redis.Enabled(),
		"persist":       a.db != nil,
	}).Info("Pipeline wired")

	return a, nil
}

// marketData picks the raw-metric source and the stores the run saves into
func (a *app) marketData(httpClient *httputil.Client, store contracts.CacheStore) (contracts.MarketDataProvider, []brain.Option) {
	if a.cfg.MarketData.Source == config.DataSourcePostgres {
		// 저장된 지표로 재계산 (외부 호출 없음)
		return s0_data.NewMetricRepository(a.db.Querier()), nil
	}

	var market contracts.MarketDataProvider = s0_data.NewYahooClient(
		httpClient,
		s2_signals.NewBuilder(a.log),
		a.log,
		s0_data.WithBaseURL(a.cfg.MarketData.BaseURL),
		s0_data.WithPriceRange(a.cfg.MarketData.PriceRange),
	)
	market = s0_data.NewCachedProvider(market, store, a.cfg.MarketData.CacheTTL, a.log)

	var opts []brain.Option
	if a.db != nil {
		opts = append(opts,
			brain.WithUniverseStore(s1_universe.NewRepository(a.db.Querier())),
			brain.WithMetricStore(s0_data.NewMetricRepository(a.db.Querier())),
		)
	}
	return market, opts
}

// universeProvider picks the issuer list source
func (a *app) universeProvider(httpClient *httputil.Client, store contracts.CacheStore) contracts.UniverseProvider {
	switch {
	case len(a.cfg.Universe.Tickers) > 0:
		return s1_universe.NewStaticProvider(a.cfg.Universe.Tickers)
	case a.cfg.MarketData.Source == config.DataSourcePostgres:
		return s1_universe.NewRepository(a.db.Querier())
	}

	provider := s1_universe.NewWikipediaProvider(httpClient, a.cfg.Universe.URL, a.log)
	return s1_universe.NewCachedProvider(provider, store, redis.UniverseKey(s1_universe.SourceWikipedia), a.cfg.MarketData.CacheTTL, a.log)
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// loadStrategy reads the strategy file, or the built-in default when path is empty
func loadStrategy(path string) (*strategyconfig.Config, string, error) {
	cfg := strategyconfig.Default()
	if path != "" {
		loaded, _, err := strategyconfig.Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("load strategy %s: %w", path, err)
		}
		cfg = loaded
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("hash strategy: %w", err)
	}
	return cfg, hash, nil
}
