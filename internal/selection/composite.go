package selection

import (
	"github.com/wonny/vantage/backend/internal/contracts"
)

// CompositeScorer combines factor scores with fixed weights
type CompositeScorer struct {
	weights Weights
}

// NewCompositeScorer creates a scorer. Weights are expected to be validated.
func NewCompositeScorer(weights Weights) *CompositeScorer {
	return &CompositeScorer{weights: weights}
}

// Score returns the weighted combination of the present factors.
// The weight of an absent factor is redistributed proportionally among the
// present ones. Absent when no factor with positive weight is present.
func (s *CompositeScorer) Score(f contracts.FactorScores) contracts.Value {
	total := 0.0
	presentWeight := 0.0
	missingWeight := 0.0

	for _, factor := range contracts.AllFactors {
		w := s.weights.Get(factor)
		v, ok := f.Get(factor).Get()
		if !ok {
			missingWeight += w
			continue
		}
		total += w * v
		presentWeight += w
	}

	if presentWeight <= 0 {
		return contracts.Absent()
	}
	if missingWeight == 0 {
		return contracts.Present(total)
	}
	return contracts.Present(total / presentWeight)
}
