package s2_signals

import (
	"math"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// TradingDaysPerYear annualizes daily volatility
const TradingDaysPerYear = 252

// Volatility returns annualized volatility: sample standard deviation of
// daily log returns × √252. Needs at least two returns.
// ⭐ SSOT: volatility 계산은 여기서만
func Volatility(bars []contracts.PriceBar) contracts.Value {
	closes := orderedCloses(bars)

	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) < 2 {
		return contracts.Absent()
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return contracts.Present(math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear))
}
