package s1_universe

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/database"
)

// SourcePostgres identifies universes loaded from the issuers table
const SourcePostgres = "postgres"

// Repository handles issuer persistence
type Repository struct {
	db database.Querier
}

// NewRepository creates a new Repository instance
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// SaveUniverse replaces the stored universe in one transaction.
// Issuers missing from universe are deleted, their raw_metrics rows cascade.
func (r *Repository) SaveUniverse(ctx context.Context, universe *contracts.Universe) error {
	if len(universe.Issuers) == 0 {
		return fmt.Errorf("refusing to save empty universe")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
		INSERT INTO issuers (ticker, name, sector, description, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			description = EXCLUDED.description,
			source = EXCLUDED.source,
			updated_at = NOW()
	`
	for _, is := range universe.Issuers {
		if _, err := tx.Exec(ctx, query, is.Ticker, is.Name, is.Sector, is.Description, universe.Source); err != nil {
			return fmt.Errorf("upsert issuer %s: %w", is.Ticker, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM issuers WHERE NOT (ticker = ANY($1))`, universe.Tickers()); err != nil {
		return fmt.Errorf("prune issuers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Universe loads all stored issuers ordered by ticker
func (r *Repository) Universe(ctx context.Context) (*contracts.Universe, error) {
	query := `
		SELECT ticker, name, sector, description
		FROM issuers
		ORDER BY ticker
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query issuers: %w", err)
	}
	defer rows.Close()

	universe := &contracts.Universe{
		Source:    SourcePostgres,
		FetchedAt: time.Now(),
		Issuers:   make([]contracts.Issuer, 0),
	}
	for rows.Next() {
		var is contracts.Issuer
		if err := rows.Scan(&is.Ticker, &is.Name, &is.Sector, &is.Description); err != nil {
			return nil, fmt.Errorf("scan issuer: %w", err)
		}
		universe.Issuers = append(universe.Issuers, is)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issuers: %w", err)
	}

	if len(universe.Issuers) == 0 {
		return nil, fmt.Errorf("no issuers stored")
	}
	return universe, nil
}
