package s2_signals

import (
	"sort"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// PriceChange returns the fractional change from the first to the last close.
// Absent with fewer than two bars or a non-positive starting close.
// ⭐ SSOT: price_change 계산은 여기서만
func PriceChange(bars []contracts.PriceBar) contracts.Value {
	closes := orderedCloses(bars)
	if len(closes) < 2 {
		return contracts.Absent()
	}

	first, last := closes[0], closes[len(closes)-1]
	if first <= 0 {
		return contracts.Absent()
	}
	return contracts.Present((last - first) / first)
}

// orderedCloses sorts a copy of the bars by date and drops unusable closes
func orderedCloses(bars []contracts.PriceBar) []float64 {
	sorted := append([]contracts.PriceBar(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	closes := make([]float64, 0, len(sorted))
	for _, b := range sorted {
		if contracts.Present(b.Close).Valid {
			closes = append(closes, b.Close)
		}
	}
	return closes
}
