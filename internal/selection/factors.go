package selection

import (
	"github.com/wonny/vantage/backend/internal/contracts"
)

// FactorAggregator combines normalized metrics into the four factor scores
type FactorAggregator struct {
	membership map[contracts.Factor][]contracts.Metric
}

// NewFactorAggregator creates an aggregator for the given factor definitions
func NewFactorAggregator(membership map[contracts.Factor][]contracts.Metric) *FactorAggregator {
	return &FactorAggregator{membership: membership}
}

// Aggregate computes every factor score for one issuer
func (a *FactorAggregator) Aggregate(n contracts.NormalizedMetrics) contracts.FactorScores {
	var scores contracts.FactorScores
	for _, factor := range contracts.AllFactors {
		scores = scores.With(factor, a.Score(factor, n))
	}
	return scores
}

// Score is the unweighted mean over the factor's present metrics.
// All constituents absent → absent.
func (a *FactorAggregator) Score(factor contracts.Factor, n contracts.NormalizedMetrics) contracts.Value {
	sum := 0.0
	count := 0
	for _, m := range a.membership[factor] {
		if v, ok := n.Get(m).Get(); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return contracts.Absent()
	}
	return contracts.Present(sum / float64(count))
}
