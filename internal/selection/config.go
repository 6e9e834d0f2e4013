package selection

import (
	"fmt"
	"math"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// weightEpsilon is the tolerance for the weights-sum-to-one check
const weightEpsilon = 1e-6

// ConfigError is an invalid engine configuration.
// Raised before any computation runs.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// Weights defines factor weights for the composite score
type Weights struct {
	Value      float64 `json:"value"`      // 가치 (기본: 0.3)
	Quality    float64 `json:"quality"`    // 퀄리티 (기본: 0.3)
	Momentum   float64 `json:"momentum"`   // 모멘텀 (기본: 0.3)
	Volatility float64 `json:"volatility"` // 변동성 (기본: 0.1)
}

// Get returns the weight of a factor
func (w Weights) Get(factor contracts.Factor) float64 {
	switch factor {
	case contracts.FactorValue:
		return w.Value
	case contracts.FactorQuality:
		return w.Quality
	case contracts.FactorMomentum:
		return w.Momentum
	case contracts.FactorVolatility:
		return w.Volatility
	default:
		return 0
	}
}

// Sum returns the sum of all weights
func (w Weights) Sum() float64 {
	return w.Value + w.Quality + w.Momentum + w.Volatility
}

// TieBreak selects the key that orders issuers with equal scores
type TieBreak string

const (
	TieBreakTicker TieBreak = "ticker" // issuer identifier ascending
	TieBreakName   TieBreak = "name"   // display name ascending, then identifier
)

// Config holds everything the engine needs for one run
type Config struct {
	Weights    Weights
	Membership map[contracts.Factor][]contracts.Metric
	Buckets    int
	TieBreak   TieBreak
}

// DefaultWeights returns 0.3 / 0.3 / 0.3 / 0.1
func DefaultWeights() Weights {
	return Weights{
		Value:      0.3,
		Quality:    0.3,
		Momentum:   0.3,
		Volatility: 0.1,
	}
}

// DefaultMembership returns the default factor definitions.
//
// Momentum and Volatility use realized price change and annualized volatility.
// The older convention (Momentum = P/S, Volatility = Debt/Equity) is available
// through configuration, see configs/strategy/source_compat.yaml.
func DefaultMembership() map[contracts.Factor][]contracts.Metric {
	return map[contracts.Factor][]contracts.Metric{
		contracts.FactorValue:      {contracts.MetricPE, contracts.MetricPB},
		contracts.FactorQuality:    {contracts.MetricROE, contracts.MetricROA},
		contracts.FactorMomentum:   {contracts.MetricPriceChange},
		contracts.FactorVolatility: {contracts.MetricVolatility},
	}
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		Membership: DefaultMembership(),
		Buckets:    10,
		TieBreak:   TieBreakTicker,
	}
}

// Validate checks weights, factor definitions, bucket count and tie-break key
func (c Config) Validate() error {
	for _, factor := range contracts.AllFactors {
		w := c.Weights.Get(factor)
		if math.IsNaN(w) || w < 0 || w > 1 {
			return &ConfigError{"weights." + string(factor), fmt.Sprintf("must be in [0, 1], got %v", w)}
		}
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightEpsilon {
		return &ConfigError{"weights", fmt.Sprintf("must sum to 1.0, got %.6f", sum)}
	}

	for _, factor := range contracts.AllFactors {
		metrics := c.Membership[factor]
		field := "membership." + string(factor)
		if len(metrics) == 0 {
			return &ConfigError{field, "must list at least one metric"}
		}
		seen := make(map[contracts.Metric]bool, len(metrics))
		for _, m := range metrics {
			if _, err := contracts.ParseMetric(string(m)); err != nil {
				return &ConfigError{field, err.Error()}
			}
			if seen[m] {
				return &ConfigError{field, fmt.Sprintf("duplicate metric %q", m)}
			}
			seen[m] = true
		}
	}
	for factor := range c.Membership {
		if !isKnownFactor(factor) {
			return &ConfigError{"membership", fmt.Sprintf("unknown factor %q", factor)}
		}
	}

	if c.Buckets < 1 {
		return &ConfigError{"buckets", "must be >= 1"}
	}

	if c.TieBreak != TieBreakTicker && c.TieBreak != TieBreakName {
		return &ConfigError{"tie_break", fmt.Sprintf("must be %q or %q", TieBreakTicker, TieBreakName)}
	}

	return nil
}

// ReferencedMetrics returns every metric used by some factor, in canonical order
func (c Config) ReferencedMetrics() []contracts.Metric {
	used := make(map[contracts.Metric]bool)
	for _, metrics := range c.Membership {
		for _, m := range metrics {
			used[m] = true
		}
	}
	out := make([]contracts.Metric, 0, len(used))
	for _, m := range contracts.AllMetrics {
		if used[m] {
			out = append(out, m)
		}
	}
	return out
}

func isKnownFactor(f contracts.Factor) bool {
	for _, known := range contracts.AllFactors {
		if f == known {
			return true
		}
	}
	return false
}
