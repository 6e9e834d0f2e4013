package brain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/s0_data"
	"github.com/wonny/vantage/backend/internal/selection"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// ErrRunInProgress is returned when a refresh is requested while one is running
var ErrRunInProgress = errors.New("ranking run already in progress")

// UniverseStore persists the issuer list of a run
type UniverseStore interface {
	SaveUniverse(ctx context.Context, universe *contracts.Universe) error
}

// MetricStore persists the raw metrics of a run
type MetricStore interface {
	SaveMetrics(ctx context.Context, batch []*contracts.RawMetrics) error
}

// Snapshot is the outcome of one complete run.
// It replaces the previous snapshot wholesale; no history is kept.
type Snapshot struct {
	RunID          string                           `json:"run_id"`
	RunAt          time.Time                        `json:"run_at"`
	ConfigHash     string                           `json:"config_hash"`
	UniverseSource string                           `json:"universe_source"`
	Fetch          s0_data.FetchStats               `json:"fetch"`
	Result         *contracts.RankingResult         `json:"result"`
	Raw            map[string]*contracts.RawMetrics `json:"-"`
	Duration       time.Duration                    `json:"duration"`
}

// Orchestrator runs universe → fetch → rank and keeps the latest result
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	universe   contracts.UniverseProvider
	fetcher    *s0_data.Fetcher
	engine     *selection.Engine
	configHash string

	universeStore UniverseStore
	metricStore   MetricStore

	logger *logger.Logger
	now    func() time.Time

	runMu  sync.Mutex // 동시 실행 방지
	mu     sync.RWMutex
	latest *Snapshot
}

// Option configures the orchestrator
type Option func(*Orchestrator)

// WithUniverseStore saves each fetched universe
func WithUniverseStore(s UniverseStore) Option {
	return func(o *Orchestrator) {
		o.universeStore = s
	}
}

// WithMetricStore saves each fetched metric batch
func WithMetricStore(s MetricStore) Option {
	return func(o *Orchestrator) {
		o.metricStore = s
	}
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	universe contracts.UniverseProvider,
	fetcher *s0_data.Fetcher,
	engine *selection.Engine,
	configHash string,
	log *logger.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		universe:   universe,
		fetcher:    fetcher,
		engine:     engine,
		configHash: configHash,
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one full ranking run and publishes it as the latest snapshot.
// On failure the previous snapshot stays in place.
func (o *Orchestrator) Run(ctx context.Context) (*Snapshot, error) {
	if !o.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.runMu.Unlock()

	start := o.now()
	runID := start.UTC().Format("20060102T150405Z")
	log := o.logger.WithField("run_id", runID)
	log.Info("Starting ranking run")

	// 1. Universe
	universe, err := o.universe.Universe(ctx)
	if err != nil {
		return nil, fmt.Errorf("universe: %w", err)
	}

	// 2. Market data
	raw, stats, err := o.fetcher.FetchAll(ctx, universe.Tickers())
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	issuers := EnrichIssuers(universe.Issuers, raw)
	o.persist(ctx, &contracts.Universe{Source: universe.Source, FetchedAt: universe.FetchedAt, Issuers: issuers}, raw)

	// 3. Rank
	result := o.engine.Rank(issuers, raw)

	snapshot := &Snapshot{
		RunID:          runID,
		RunAt:          start,
		ConfigHash:     o.configHash,
		UniverseSource: universe.Source,
		Fetch:          stats,
		Result:         result,
		Raw:            raw,
		Duration:       o.now().Sub(start),
	}

	o.mu.Lock()
	o.latest = snapshot
	o.mu.Unlock()

	log.WithFields(map[string]interface{}{
		"issuers":  len(result.Rows),
		"ranked":   result.RankedCount(),
		"warnings": len(result.Warnings),
		"duration": snapshot.Duration.String(),
	}).Info("Ranking run completed")

	return snapshot, nil
}

// Latest returns the most recent successful snapshot
func (o *Orchestrator) Latest() (*Snapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.latest, o.latest != nil
}

// ConfigHash identifies the strategy configuration in use
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Engine returns the ranking engine
func (o *Orchestrator) Engine() *selection.Engine {
	return o.engine
}

// persist stores the run inputs; failures only log
func (o *Orchestrator) persist(ctx context.Context, universe *contracts.Universe, raw map[string]*contracts.RawMetrics) {
	if o.universeStore != nil {
		if err := o.universeStore.SaveUniverse(ctx, universe); err != nil {
			o.logger.WithError(err).Warn("Failed to save universe")
			return
		}
	}

	if o.metricStore != nil && len(raw) > 0 {
		batch := make([]*contracts.RawMetrics, 0, len(raw))
		for _, is := range universe.Issuers {
			if r, ok := raw[is.Ticker]; ok {
				batch = append(batch, r)
			}
		}
		if err := o.metricStore.SaveMetrics(ctx, batch); err != nil {
			o.logger.WithError(err).Warn("Failed to save metrics")
		}
	}
}

// EnrichIssuers fills missing name, sector and description from the
// market-data profile. Universe values win when present.
func EnrichIssuers(issuers []contracts.Issuer, raw map[string]*contracts.RawMetrics) []contracts.Issuer {
	out := make([]contracts.Issuer, len(issuers))
	for i, is := range issuers {
		if r, ok := raw[is.Ticker]; ok && r != nil {
			p := r.Profile
			if (is.Name == "" || is.Name == is.Ticker) && p.LongName != "" {
				is.Name = p.LongName
			}
			if is.Sector == "" {
				is.Sector = p.Sector
			}
			if is.Description == "" {
				is.Description = p.Description
			}
		}
		out[i] = is
	}
	return out
}
