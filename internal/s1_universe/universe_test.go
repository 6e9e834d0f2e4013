package s1_universe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/logger"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider([]string{"aapl", "MSFT", "brk.b", "AAPL", ""})

	universe, err := p.Universe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, universe.Source)
	assert.Equal(t, []string{"AAPL", "MSFT", "BRK-B"}, universe.Tickers())
	assert.Equal(t, "AAPL", universe.Issuers[0].Name)
}

func TestStaticProvider_Empty(t *testing.T) {
	_, err := NewStaticProvider(nil).Universe(context.Background())
	assert.Error(t, err)
}

func TestRepository_SaveUniverse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	universe := &contracts.Universe{
		Source: SourceWikipedia,
		Issuers: []contracts.Issuer{
			{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
			{Ticker: "XOM", Name: "Exxon Mobil", Sector: "Energy"},
		},
	}

	mock.ExpectBegin()
	for _, is := range universe.Issuers {
		mock.ExpectExec("INSERT INTO issuers").
			WithArgs(is.Ticker, is.Name, is.Sector, is.Description, SourceWikipedia).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec("DELETE FROM issuers").
		WithArgs([]string{"AAPL", "XOM"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	repo := NewRepository(mock)
	require.NoError(t, repo.SaveUniverse(context.Background(), universe))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveUniverse_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO issuers").
		WithArgs("AAPL", "Apple", "", "", "").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	repo := NewRepository(mock)
	err = repo.SaveUniverse(context.Background(), &contracts.Universe{
		Issuers: []contracts.Issuer{{Ticker: "AAPL", Name: "Apple"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert issuer AAPL")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveUniverse_PruneFailsRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO issuers").
		WithArgs("AAPL", "Apple", "", "", SourceWikipedia).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM issuers").
		WithArgs([]string{"AAPL"}).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err = NewRepository(mock).SaveUniverse(context.Background(), &contracts.Universe{
		Source:  SourceWikipedia,
		Issuers: []contracts.Issuer{{Ticker: "AAPL", Name: "Apple"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prune issuers")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveUniverse_EmptyRejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	err = NewRepository(mock).SaveUniverse(context.Background(), &contracts.Universe{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Universe(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT ticker, name, sector, description").
		WillReturnRows(pgxmock.NewRows([]string{"ticker", "name", "sector", "description"}).
			AddRow("AAPL", "Apple Inc.", "Information Technology", "").
			AddRow("XOM", "Exxon Mobil", "Energy", "Oil and gas"))

	universe, err := NewRepository(mock).Universe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, universe.Source)
	assert.Equal(t, []string{"AAPL", "XOM"}, universe.Tickers())
	assert.Equal(t, "Oil and gas", universe.Issuers[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Universe_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT ticker").
		WillReturnRows(pgxmock.NewRows([]string{"ticker", "name", "sector", "description"}))

	_, err = NewRepository(mock).Universe(context.Background())
	assert.Error(t, err)
}

// memoryStore is an in-process CacheStore for tests
type memoryStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *memoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Universe(ctx context.Context) (*contracts.Universe, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &contracts.Universe{
		Source:  SourceStatic,
		Issuers: []contracts.Issuer{{Ticker: "AAPL", Name: "Apple", Sector: "Information Technology"}},
	}, nil
}

func TestCachedProvider(t *testing.T) {
	store := newMemoryStore()
	next := &countingProvider{}
	p := NewCachedProvider(next, store, "universe:static", time.Hour, logger.NewNop())

	first, err := p.Universe(context.Background())
	require.NoError(t, err)
	second, err := p.Universe(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls, "second call served from cache")
	assert.Equal(t, first.Issuers, second.Issuers)
	assert.Equal(t, time.Hour, store.ttls["universe:static"])
}

func TestCachedProvider_UpstreamError(t *testing.T) {
	next := &countingProvider{err: errors.New("wikipedia down")}
	p := NewCachedProvider(next, newMemoryStore(), "k", time.Hour, logger.NewNop())

	_, err := p.Universe(context.Background())
	assert.EqualError(t, err, "wikipedia down")
}
