package s2_signals

import (
	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// Builder derives price-based metrics from a close series
// ⭐ SSOT: 가격 기반 지표 생성은 여기서만
type Builder struct {
	logger *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(log *logger.Logger) *Builder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Builder{logger: log}
}

// Apply sets price_change and volatility on raw.
// Metrics that cannot be derived are stored as absent.
func (b *Builder) Apply(raw *contracts.RawMetrics, bars []contracts.PriceBar) {
	change := PriceChange(bars)
	vol := Volatility(bars)

	raw.Set(contracts.MetricPriceChange, change)
	raw.Set(contracts.MetricVolatility, vol)

	b.logger.WithFields(map[string]interface{}{
		"ticker":       raw.Ticker,
		"bars":         len(bars),
		"price_change": change.Ptr(),
		"volatility":   vol.Ptr(),
	}).Debug("Derived price metrics")
}
