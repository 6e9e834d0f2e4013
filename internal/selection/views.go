package selection

import (
	"sort"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// AllSectors is the sector filter value that disables filtering
const AllSectors = "All"

// FilterBySector keeps rows whose sector matches exactly (case-sensitive).
// "All" or "" returns every row. Ranks are left untouched so they still
// reflect the full batch.
func FilterBySector(rows []contracts.RankedRow, sector string) []contracts.RankedRow {
	out := make([]contracts.RankedRow, 0, len(rows))
	for _, row := range rows {
		if sector == "" || sector == AllSectors || row.Issuer.Sector == sector {
			out = append(out, row)
		}
	}
	return out
}

// SortByRank returns a new slice ordered by composite rank
func SortByRank(rows []contracts.RankedRow) []contracts.RankedRow {
	out := append([]contracts.RankedRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return out
}

// SortByTicker returns a new slice ordered by ticker
func SortByTicker(rows []contracts.RankedRow) []contracts.RankedRow {
	out := append([]contracts.RankedRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Issuer.Ticker < out[j].Issuer.Ticker
	})
	return out
}

// Sectors returns the selector options: "All" followed by every sector, sorted
func Sectors(rows []contracts.RankedRow) []string {
	seen := make(map[string]bool)
	sectors := make([]string, 0)
	for _, row := range rows {
		if s := row.Issuer.Sector; s != "" && !seen[s] {
			seen[s] = true
			sectors = append(sectors, s)
		}
	}
	sort.Strings(sectors)
	return append([]string{AllSectors}, sectors...)
}

// Find returns the row for a ticker
func Find(rows []contracts.RankedRow, ticker string) (*contracts.RankedRow, bool) {
	for i := range rows {
		if rows[i].Issuer.Ticker == ticker {
			row := rows[i]
			return &row, true
		}
	}
	return nil, false
}
