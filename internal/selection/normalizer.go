package selection

import (
	"math"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// DegenerateValue is the normalized value when every present value is identical
const DegenerateValue = 0.5

// Bounds is the min/max over the present values of one metric
type Bounds struct {
	Min   float64
	Max   float64
	Count int
}

// Observe folds one value into the bounds. Absent values are ignored.
func (b *Bounds) Observe(v contracts.Value) {
	x, ok := v.Get()
	if !ok {
		return
	}
	if b.Count == 0 || x < b.Min {
		b.Min = x
	}
	if b.Count == 0 || x > b.Max {
		b.Max = x
	}
	b.Count++
}

// Degenerate reports min == max
func (b Bounds) Degenerate() bool {
	return b.Count > 0 && b.Min == b.Max
}

// Normalizer rescales one metric across the batch with min-max.
// ⭐ SSOT: 정규화 로직은 여기서만
type Normalizer struct{}

// NewNormalizer creates a normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Bounds computes min/max over present values in a single pass
func (n *Normalizer) Bounds(values []contracts.Value) Bounds {
	var b Bounds
	for _, v := range values {
		b.Observe(v)
	}
	return b
}

// Normalize maps each present value to (v-min)/(max-min).
// Absent stays absent, min==max maps to DegenerateValue.
// The result is a new slice aligned with the input.
func (n *Normalizer) Normalize(values []contracts.Value) []contracts.Value {
	b := n.Bounds(values)
	out := make([]contracts.Value, len(values))
	for i, v := range values {
		out[i] = n.Scale(v, b)
	}
	return out
}

// Scale normalizes one value against precomputed bounds
func (n *Normalizer) Scale(v contracts.Value, b Bounds) contracts.Value {
	x, ok := v.Get()
	if !ok || b.Count == 0 {
		return contracts.Absent()
	}
	if b.Degenerate() {
		return contracts.Present(DegenerateValue)
	}

	span := b.Max - b.Min
	if math.IsInf(span, 0) {
		// extreme magnitudes: rescale halves to stay finite
		return contracts.Present((x/2 - b.Min/2) / (b.Max/2 - b.Min/2))
	}
	return contracts.Present((x - b.Min) / span)
}
