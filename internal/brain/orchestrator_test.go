package brain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/s0_data"
	"github.com/wonny/vantage/backend/internal/selection"
	"github.com/wonny/vantage/backend/pkg/logger"
)

type stubUniverse struct {
	universe *contracts.Universe
	err      error
	entered  chan struct{}
	block    chan struct{}
}

func (s *stubUniverse) Universe(ctx context.Context) (*contracts.Universe, error) {
	if s.block != nil {
		close(s.entered)
		<-s.block
	}
	return s.universe, s.err
}

type stubMarket struct {
	values map[string]float64 // ticker → P/E
}

func (s *stubMarket) Fetch(ctx context.Context, ticker string) (*contracts.RawMetrics, error) {
	pe, ok := s.values[ticker]
	if !ok {
		return nil, fmt.Errorf("no data for %s", ticker)
	}
	raw := contracts.NewRawMetrics(ticker)
	raw.Set(contracts.MetricPE, contracts.Present(pe))
	raw.Profile = contracts.Profile{LongName: ticker + " Corp", Sector: "Profile Sector", Description: "about " + ticker}
	return raw, nil
}

type recordingStore struct {
	universes int
	metrics   []*contracts.RawMetrics
	err       error
}

func (s *recordingStore) SaveUniverse(ctx context.Context, u *contracts.Universe) error {
	s.universes++
	return s.err
}

func (s *recordingStore) SaveMetrics(ctx context.Context, batch []*contracts.RawMetrics) error {
	s.metrics = append(s.metrics, batch...)
	return s.err
}

func testUniverse() *contracts.Universe {
	return &contracts.Universe{
		Source: "static",
		Issuers: []contracts.Issuer{
			{Ticker: "AAA", Name: "AAA", Sector: ""},
			{Ticker: "BBB", Name: "Bravo Inc.", Sector: "Energy"},
			{Ticker: "CCC", Name: "CCC"},
		},
	}
}

func newTestOrchestrator(t *testing.T, u contracts.UniverseProvider, opts ...Option) *Orchestrator {
	t.Helper()
	engine, err := selection.NewEngine(selection.DefaultConfig(), nil)
	require.NoError(t, err)

	market := &stubMarket{values: map[string]float64{"AAA": 10, "BBB": 30}}
	fetcher := s0_data.NewFetcher(market, 2, logger.NewNop())
	return NewOrchestrator(u, fetcher, engine, "hash123", logger.NewNop(), opts...)
}

func TestOrchestrator_Run(t *testing.T) {
	o := newTestOrchestrator(t, &stubUniverse{universe: testUniverse()})
	fixed := time.Date(2024, 6, 1, 6, 30, 0, 0, time.UTC)
	o.now = func() time.Time { return fixed }

	_, ok := o.Latest()
	assert.False(t, ok, "no snapshot before the first run")

	snap, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "20240601T063000Z", snap.RunID)
	assert.Equal(t, "hash123", snap.ConfigHash)
	assert.Equal(t, "static", snap.UniverseSource)
	assert.Equal(t, 3, snap.Fetch.Requested)
	assert.Equal(t, 1, snap.Fetch.Failed)
	require.Len(t, snap.Result.Rows, 3)

	bbb, ok := selection.Find(snap.Result.Rows, "BBB")
	require.True(t, ok)
	assert.Equal(t, 1, bbb.Rank)
	assert.Equal(t, "Bravo Inc.", bbb.Issuer.Name, "universe name wins")
	assert.Equal(t, "Energy", bbb.Issuer.Sector)

	ccc, _ := selection.Find(snap.Result.Rows, "CCC")
	assert.Equal(t, contracts.NotRanked, ccc.Bucket)

	latest, ok := o.Latest()
	require.True(t, ok)
	assert.Same(t, snap, latest)
}

func TestOrchestrator_Run_UniverseErrorKeepsPrevious(t *testing.T) {
	u := &stubUniverse{universe: testUniverse()}
	o := newTestOrchestrator(t, u)

	first, err := o.Run(context.Background())
	require.NoError(t, err)

	u.err = errors.New("wikipedia unavailable")
	_, err = o.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "universe")

	latest, ok := o.Latest()
	require.True(t, ok)
	assert.Same(t, first, latest)
}

func TestOrchestrator_Run_Persists(t *testing.T) {
	store := &recordingStore{}
	o := newTestOrchestrator(t, &stubUniverse{universe: testUniverse()},
		WithUniverseStore(store), WithMetricStore(store))

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.universes)
	require.Len(t, store.metrics, 2)
	assert.Equal(t, "AAA", store.metrics[0].Ticker)
	assert.Equal(t, "BBB", store.metrics[1].Ticker)
}

func TestOrchestrator_Run_PersistFailureIsNotFatal(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	o := newTestOrchestrator(t, &stubUniverse{universe: testUniverse()},
		WithUniverseStore(store), WithMetricStore(store))

	_, err := o.Run(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, store.metrics, "metrics skipped once the universe save fails")
}

func TestOrchestrator_Run_Concurrent(t *testing.T) {
	u := &stubUniverse{universe: testUniverse(), entered: make(chan struct{}), block: make(chan struct{})}
	o := newTestOrchestrator(t, u)

	done := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background())
		done <- err
	}()

	// first run is inside the universe call and holds the lock
	<-u.entered

	_, err := o.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(u.block)
	assert.NoError(t, <-done)
}

func TestEnrichIssuers(t *testing.T) {
	raw := map[string]*contracts.RawMetrics{
		"AAA": {Ticker: "AAA", Profile: contracts.Profile{LongName: "Alpha Corp", Sector: "Utilities", Description: "Power"}},
		"BBB": {Ticker: "BBB", Profile: contracts.Profile{LongName: "Other Name", Sector: "Other"}},
	}
	issuers := []contracts.Issuer{
		{Ticker: "AAA", Name: "AAA"},
		{Ticker: "BBB", Name: "Bravo", Sector: "Energy"},
		{Ticker: "CCC"},
	}

	got := EnrichIssuers(issuers, raw)

	assert.Equal(t, contracts.Issuer{Ticker: "AAA", Name: "Alpha Corp", Sector: "Utilities", Description: "Power"}, got[0])
	assert.Equal(t, "Bravo", got[1].Name)
	assert.Equal(t, "Energy", got[1].Sector)
	assert.Equal(t, contracts.Issuer{Ticker: "CCC"}, got[2])
	assert.Equal(t, "AAA", issuers[0].Name, "input not mutated")
}
