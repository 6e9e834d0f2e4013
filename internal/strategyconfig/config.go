package strategyconfig

import (
	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/selection"
)

// Config는 랭킹 전략의 전체 설정
// 주의: map 대신 struct 사용 (해시 재현성)
type Config struct {
	Meta    Meta    `yaml:"meta" json:"meta"`
	Ranking Ranking `yaml:"ranking" json:"ranking"`
	Factors Factors `yaml:"factors" json:"factors"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Ranking composite 가중치, 버킷, 동점 처리
type Ranking struct {
	Weights  Weights `yaml:"weights" json:"weights"`
	Buckets  int     `yaml:"buckets" json:"buckets"`
	TieBreak string  `yaml:"tie_break" json:"tie_break"` // "ticker" | "name"
}

// Weights factor weights, must sum to 1.0
type Weights struct {
	Value      float64 `yaml:"value" json:"value"`
	Quality    float64 `yaml:"quality" json:"quality"`
	Momentum   float64 `yaml:"momentum" json:"momentum"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
}

// Factors 팩터별 구성 지표
type Factors struct {
	Value      []string `yaml:"value" json:"value"`
	Quality    []string `yaml:"quality" json:"quality"`
	Momentum   []string `yaml:"momentum" json:"momentum"`
	Volatility []string `yaml:"volatility" json:"volatility"`
}

// Get returns the metric names of a factor
func (f Factors) Get(factor contracts.Factor) []string {
	switch factor {
	case contracts.FactorValue:
		return f.Value
	case contracts.FactorQuality:
		return f.Quality
	case contracts.FactorMomentum:
		return f.Momentum
	case contracts.FactorVolatility:
		return f.Volatility
	default:
		return nil
	}
}

// Default mirrors selection.DefaultConfig
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID:  "default",
			Version:     "1",
			Description: "value / quality / momentum / low-volatility blend",
		},
		Ranking: Ranking{
			Weights:  Weights{Value: 0.3, Quality: 0.3, Momentum: 0.3, Volatility: 0.1},
			Buckets:  10,
			TieBreak: string(selection.TieBreakTicker),
		},
		Factors: Factors{
			Value:      []string{"pe", "pb"},
			Quality:    []string{"roe", "roa"},
			Momentum:   []string{"price_change"},
			Volatility: []string{"volatility"},
		},
	}
}

// ToSelectionConfig converts the file format into the engine configuration.
// Metric names are parsed; unknown names fail.
func (c *Config) ToSelectionConfig() (selection.Config, error) {
	membership := make(map[contracts.Factor][]contracts.Metric, len(contracts.AllFactors))
	for _, factor := range contracts.AllFactors {
		names := c.Factors.Get(factor)
		metrics := make([]contracts.Metric, 0, len(names))
		for _, name := range names {
			m, err := contracts.ParseMetric(name)
			if err != nil {
				return selection.Config{}, ValidationError{"factors." + string(factor), err.Error()}
			}
			metrics = append(metrics, m)
		}
		membership[factor] = metrics
	}

	return selection.Config{
		Weights: selection.Weights{
			Value:      c.Ranking.Weights.Value,
			Quality:    c.Ranking.Weights.Quality,
			Momentum:   c.Ranking.Weights.Momentum,
			Volatility: c.Ranking.Weights.Volatility,
		},
		Membership: membership,
		Buckets:    c.Ranking.Buckets,
		TieBreak:   selection.TieBreak(c.Ranking.TieBreak),
	}, nil
}
