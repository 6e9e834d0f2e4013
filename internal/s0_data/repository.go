package s0_data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/database"
)

// ErrNoMetrics means no stored row exists for a ticker
var ErrNoMetrics = errors.New("no stored metrics")

// metricColumns match contracts.AllMetrics one to one
var metricColumns = func() []string {
	cols := make([]string, len(contracts.AllMetrics))
	for i, m := range contracts.AllMetrics {
		cols[i] = string(m)
	}
	return cols
}()

// MetricRepository persists raw metric snapshots
// ⭐ SSOT: raw_metrics 테이블 접근은 여기서만
type MetricRepository struct {
	db database.Querier
}

// NewMetricRepository creates a new repository
func NewMetricRepository(db database.Querier) *MetricRepository {
	return &MetricRepository{db: db}
}

// SaveMetrics upserts one row per ticker in a single transaction
func (r *MetricRepository) SaveMetrics(ctx context.Context, batch []*contracts.RawMetrics) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := upsertMetricsSQL()
	for _, raw := range batch {
		args := make([]any, 0, len(metricColumns)+7)
		args = append(args, raw.Ticker)
		for _, m := range contracts.AllMetrics {
			args = append(args, raw.Get(m).Ptr())
		}
		p := raw.Profile
		args = append(args, p.LongName, p.Sector, p.Industry, p.MarketCap.Ptr(), p.Description, raw.FetchedAt)

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert metrics %s: %w", raw.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Fetch loads the stored metrics for one ticker (DATA_SOURCE=postgres)
func (r *MetricRepository) Fetch(ctx context.Context, ticker string) (*contracts.RawMetrics, error) {
	query := fmt.Sprintf(`SELECT ticker, %s, long_name, sector, industry, market_cap, description, fetched_at
		FROM raw_metrics WHERE ticker = $1`, strings.Join(metricColumns, ", "))

	raw, err := scanMetrics(r.db.QueryRow(ctx, query, ticker))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoMetrics)
	}
	if err != nil {
		return nil, fmt.Errorf("query metrics %s: %w", ticker, err)
	}
	return raw, nil
}

func scanMetrics(row pgx.Row) (*contracts.RawMetrics, error) {
	var (
		ticker    string
		values    = make([]*float64, len(contracts.AllMetrics))
		marketCap *float64
		raw       = &contracts.RawMetrics{}
	)

	dest := make([]any, 0, len(values)+7)
	dest = append(dest, &ticker)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &raw.Profile.LongName, &raw.Profile.Sector, &raw.Profile.Industry,
		&marketCap, &raw.Profile.Description, &raw.FetchedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	raw.Ticker = ticker
	raw.Values = make(map[contracts.Metric]contracts.Value, len(contracts.AllMetrics))
	for i, m := range contracts.AllMetrics {
		raw.Values[m] = contracts.FromPtr(values[i])
	}
	raw.Profile.MarketCap = contracts.FromPtr(marketCap)
	return raw, nil
}

func upsertMetricsSQL() string {
	cols := append([]string{"ticker"}, metricColumns...)
	cols = append(cols, "long_name", "sector", "industry", "market_cap", "description", "fetched_at")

	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols)-1)
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "ticker" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	return fmt.Sprintf(`INSERT INTO raw_metrics (%s) VALUES (%s)
		ON CONFLICT (ticker) DO UPDATE SET %s`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}
