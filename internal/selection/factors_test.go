package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/vantage/backend/internal/contracts"
)

func normalized(values map[contracts.Metric]float64, absent ...contracts.Metric) contracts.NormalizedMetrics {
	n := contracts.NormalizedMetrics{Values: map[contracts.Metric]contracts.Value{}}
	for m, v := range values {
		n.Values[m] = contracts.Present(v)
	}
	for _, m := range absent {
		n.Values[m] = contracts.Absent()
	}
	return n
}

func TestFactorAggregator_Score(t *testing.T) {
	agg := NewFactorAggregator(DefaultMembership())

	tests := []struct {
		name   string
		factor contracts.Factor
		in     contracts.NormalizedMetrics
		want   contracts.Value
	}{
		{
			name:   "mean of both value metrics",
			factor: contracts.FactorValue,
			in:     normalized(map[contracts.Metric]float64{contracts.MetricPE: 0.2, contracts.MetricPB: 0.6}),
			want:   contracts.Present(0.4),
		},
		{
			name:   "missing metric excluded, not zero",
			factor: contracts.FactorValue,
			in:     normalized(map[contracts.Metric]float64{contracts.MetricPE: 0.8}, contracts.MetricPB),
			want:   contracts.Present(0.8),
		},
		{
			name:   "all constituents missing",
			factor: contracts.FactorQuality,
			in:     normalized(map[contracts.Metric]float64{contracts.MetricPE: 0.8}, contracts.MetricROE),
			want:   contracts.Absent(),
		},
		{
			name:   "single-metric factor",
			factor: contracts.FactorMomentum,
			in:     normalized(map[contracts.Metric]float64{contracts.MetricPriceChange: 0.25}),
			want:   contracts.Present(0.25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.Score(tt.factor, tt.in)
			assert.Equal(t, tt.want.Valid, got.Valid)
			assert.InDelta(t, tt.want.V, got.V, 1e-12)
		})
	}
}

func TestFactorAggregator_CustomMembership(t *testing.T) {
	membership := DefaultMembership()
	membership[contracts.FactorMomentum] = []contracts.Metric{contracts.MetricPS}
	membership[contracts.FactorVolatility] = []contracts.Metric{contracts.MetricDebtToEquity}
	agg := NewFactorAggregator(membership)

	scores := agg.Aggregate(normalized(map[contracts.Metric]float64{
		contracts.MetricPS:           0.3,
		contracts.MetricDebtToEquity: 0.9,
		contracts.MetricPriceChange:  0.1,
	}))

	assert.InDelta(t, 0.3, scores.Momentum.V, 1e-12)
	assert.InDelta(t, 0.9, scores.Volatility.V, 1e-12)
	assert.False(t, scores.Value.Valid)
	assert.False(t, scores.Quality.Valid)
}
