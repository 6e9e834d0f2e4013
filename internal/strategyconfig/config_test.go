package strategyconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/selection"
)

const validYAML = `
meta:
  strategy_id: test
ranking:
  weights: {value: 0.25, quality: 0.25, momentum: 0.25, volatility: 0.25}
  buckets: 5
  tie_break: name
factors:
  value: [pe]
  quality: [roe, roa]
  momentum: [price_change]
  volatility: [volatility]
`

func TestLoad(t *testing.T) {
	cfg, yamlData, err := Load("../../configs/strategy/default.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)
	assert.Equal(t, "default", cfg.Meta.StrategyID)

	sel, err := cfg.ToSelectionConfig()
	require.NoError(t, err)
	assert.Equal(t, selection.DefaultConfig(), sel)

	// 파일과 코드 기본값 → 동일 해시
	h1, err := Hash(cfg)
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)
}

func TestLoad_SourceCompat(t *testing.T) {
	cfg, _, err := Load("../../configs/strategy/source_compat.yaml")
	require.NoError(t, err)

	sel, err := cfg.ToSelectionConfig()
	require.NoError(t, err)
	assert.Equal(t, []contracts.Metric{contracts.MetricPS}, sel.Membership[contracts.FactorMomentum])
	assert.Equal(t, []contracts.Metric{contracts.MetricDebtToEquity}, sel.Membership[contracts.FactorVolatility])
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	sel, err := cfg.ToSelectionConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, sel.Buckets)
	assert.Equal(t, selection.TieBreakName, sel.TieBreak)
	assert.InDelta(t, 1.0, sel.Weights.Sum(), 1e-12)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(validYAML + "extra: 1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"weights sum", func(c *Config) { c.Ranking.Weights.Value = 0.5 }, "ranking.weights"},
		{"negative weight", func(c *Config) {
			c.Ranking.Weights.Value = -0.1
			c.Ranking.Weights.Quality = 0.7
		}, "ranking.weights.value"},
		{"zero buckets", func(c *Config) { c.Ranking.Buckets = 0 }, "ranking.buckets"},
		{"bad tie break", func(c *Config) { c.Ranking.TieBreak = "random" }, "ranking.tie_break"},
		{"empty factor", func(c *Config) { c.Factors.Momentum = nil }, "factors.momentum"},
		{"unknown metric", func(c *Config) { c.Factors.Value = []string{"pe", "ev_ebitda"} }, "factors.value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve), "got %T", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestWarn(t *testing.T) {
	assert.Empty(t, Warn(Default()))

	cfg := Default()
	cfg.Ranking.Weights = Weights{Value: 0.5, Quality: 0.5}
	cfg.Ranking.Buckets = 1

	codes := make([]string, 0)
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []string{"ZERO_WEIGHT", "ZERO_WEIGHT", "SINGLE_BUCKET"}, codes)
}

func TestHash_ChangesWithConfig(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)

	cfg := Default()
	cfg.Ranking.Buckets = 4
	b, err := Hash(cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
