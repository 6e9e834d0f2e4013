package contracts

import (
	"fmt"
	"time"
)

// Metric names a raw fundamental or price-derived metric
type Metric string

const (
	MetricPE           Metric = "pe"             // price-to-earnings (trailing)
	MetricPB           Metric = "pb"             // price-to-book
	MetricPS           Metric = "ps"             // price-to-sales (trailing 12m)
	MetricROE          Metric = "roe"            // return on equity
	MetricROA          Metric = "roa"            // return on assets
	MetricDebtToEquity Metric = "debt_to_equity" // debt-to-equity
	MetricPriceChange  Metric = "price_change"   // trailing price change
	MetricVolatility   Metric = "volatility"     // annualized volatility
)

// AllMetrics is the fixed metric set in canonical order
var AllMetrics = []Metric{
	MetricPE,
	MetricPB,
	MetricPS,
	MetricROE,
	MetricROA,
	MetricDebtToEquity,
	MetricPriceChange,
	MetricVolatility,
}

// ParseMetric validates a metric name
func ParseMetric(s string) (Metric, error) {
	for _, m := range AllMetrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// RawMetrics holds one issuer's raw metric values.
// A metric missing from Values is absent.
type RawMetrics struct {
	Ticker    string           `json:"ticker"`
	Values    map[Metric]Value `json:"values"`
	Profile   Profile          `json:"profile"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// NewRawMetrics creates an empty record for a ticker
func NewRawMetrics(ticker string) *RawMetrics {
	return &RawMetrics{
		Ticker: ticker,
		Values: make(map[Metric]Value, len(AllMetrics)),
	}
}

// Get returns the value for a metric (absent when unknown)
func (r *RawMetrics) Get(m Metric) Value {
	if r == nil || r.Values == nil {
		return Absent()
	}
	return r.Values[m]
}

// Set stores a metric value
func (r *RawMetrics) Set(m Metric, v Value) {
	if r.Values == nil {
		r.Values = make(map[Metric]Value, len(AllMetrics))
	}
	r.Values[m] = v
}

// PresentCount returns how many metrics are present
func (r *RawMetrics) PresentCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, v := range r.Values {
		if v.Valid {
			n++
		}
	}
	return n
}

// Profile carries descriptive issuer attributes reported by the market-data provider
type Profile struct {
	LongName    string `json:"long_name,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	MarketCap   Value  `json:"market_cap"`
	Description string `json:"description,omitempty"`
}

// NormalizedMetrics has the same shape as RawMetrics with values rescaled to [0,1]
type NormalizedMetrics struct {
	Ticker string           `json:"ticker"`
	Values map[Metric]Value `json:"values"`
}

// Get returns the normalized value for a metric
func (n NormalizedMetrics) Get(m Metric) Value {
	if n.Values == nil {
		return Absent()
	}
	return n.Values[m]
}
