package s0_data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vantage/backend/internal/contracts"
)

func fp(v float64) *float64 { return &v }

var nullFloat = (*float64)(nil)

func metricRowColumns() []string {
	cols := append([]string{"ticker"}, metricColumns...)
	return append(cols, "long_name", "sector", "industry", "market_cap", "description", "fetched_at")
}

func TestUpsertMetricsSQL(t *testing.T) {
	sql := upsertMetricsSQL()

	assert.Contains(t, sql, "INSERT INTO raw_metrics (ticker, pe, pb, ps, roe, roa, debt_to_equity, price_change, volatility,")
	assert.Contains(t, sql, "$15")
	assert.NotContains(t, sql, "$16")
	assert.Contains(t, sql, "ON CONFLICT (ticker) DO UPDATE SET pe = EXCLUDED.pe")
	assert.NotContains(t, sql, "ticker = EXCLUDED.ticker")
}

func TestMetricRepository_SaveMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fetched := time.Date(2024, 6, 1, 6, 30, 0, 0, time.UTC)
	raw := contracts.NewRawMetrics("AAPL")
	raw.Set(contracts.MetricPE, contracts.Present(28.5))
	raw.Profile = contracts.Profile{LongName: "Apple Inc.", Sector: "Technology"}
	raw.FetchedAt = fetched

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO raw_metrics").
		WithArgs("AAPL",
			fp(28.5), nullFloat, nullFloat, nullFloat, nullFloat, nullFloat, nullFloat, nullFloat,
			"Apple Inc.", "Technology", "", nullFloat, "", fetched).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewMetricRepository(mock)
	require.NoError(t, repo.SaveMetrics(context.Background(), []*contracts.RawMetrics{raw}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricRepository_SaveMetrics_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	require.NoError(t, NewMetricRepository(mock).SaveMetrics(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricRepository_Fetch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fetched := time.Date(2024, 6, 1, 6, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT ticker, pe, pb").
		WithArgs("XOM").
		WillReturnRows(pgxmock.NewRows(metricRowColumns()).AddRow(
			"XOM",
			fp(13.2), fp(2.1), nullFloat, fp(0.18), fp(0.09), fp(20.5), fp(-0.04), fp(0.24),
			"Exxon Mobil Corporation", "Energy", "Oil & Gas Integrated", fp(4.5e11), "Energy company", fetched,
		))

	raw, err := NewMetricRepository(mock).Fetch(context.Background(), "XOM")
	require.NoError(t, err)

	assert.Equal(t, "XOM", raw.Ticker)
	assert.Equal(t, contracts.Present(13.2), raw.Get(contracts.MetricPE))
	assert.False(t, raw.Get(contracts.MetricPS).Valid)
	assert.Equal(t, contracts.Present(-0.04), raw.Get(contracts.MetricPriceChange))
	assert.Equal(t, "Energy", raw.Profile.Sector)
	assert.Equal(t, contracts.Present(4.5e11), raw.Profile.MarketCap)
	assert.Equal(t, fetched, raw.FetchedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricRepository_Fetch_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT ticker").WithArgs("NOPE").WillReturnError(pgx.ErrNoRows)

	_, err = NewMetricRepository(mock).Fetch(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, ErrNoMetrics))
}
