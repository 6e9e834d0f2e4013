package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/vantage/backend/internal/contracts"
)

func rows() []contracts.RankedRow {
	return []contracts.RankedRow{
		{Issuer: issuer("MSFT", "Information Technology"), Rank: 2},
		{Issuer: issuer("XOM", "Energy"), Rank: 3},
		{Issuer: issuer("AAPL", "Information Technology"), Rank: 1},
		{Issuer: issuer("CVX", "Energy"), Rank: 4},
	}
}

func TestFilterBySector(t *testing.T) {
	tests := []struct {
		name   string
		sector string
		want   []string
	}{
		{"all", AllSectors, []string{"MSFT", "XOM", "AAPL", "CVX"}},
		{"empty means all", "", []string{"MSFT", "XOM", "AAPL", "CVX"}},
		{"energy", "Energy", []string{"XOM", "CVX"}},
		{"unknown", "Utilities", []string{}},
		{"case-sensitive", "energy", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBySector(rows(), tt.sector)
			tickers := make([]string, 0, len(got))
			for _, r := range got {
				tickers = append(tickers, r.Issuer.Ticker)
			}
			assert.Equal(t, tt.want, tickers)
		})
	}
}

func TestSortByRank(t *testing.T) {
	in := rows()
	got := SortByRank(in)

	assert.Equal(t, "AAPL", got[0].Issuer.Ticker)
	assert.Equal(t, "CVX", got[3].Issuer.Ticker)
	assert.Equal(t, "MSFT", in[0].Issuer.Ticker, "input not mutated")
}

func TestSortByTicker(t *testing.T) {
	got := SortByTicker(rows())

	assert.Equal(t, []string{"AAPL", "CVX", "MSFT", "XOM"}, []string{
		got[0].Issuer.Ticker, got[1].Issuer.Ticker, got[2].Issuer.Ticker, got[3].Issuer.Ticker,
	})
}

func TestSectors(t *testing.T) {
	assert.Equal(t, []string{"All", "Energy", "Information Technology"}, Sectors(rows()))
	assert.Equal(t, []string{"All"}, Sectors(nil))
}

func TestFind(t *testing.T) {
	row, ok := Find(rows(), "XOM")
	assert.True(t, ok)
	assert.Equal(t, 3, row.Rank)

	_, ok = Find(rows(), "ZZZ")
	assert.False(t, ok)
}
