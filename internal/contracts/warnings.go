package contracts

import "fmt"

// Warning codes
const (
	WarnMetricUnavailableBatch = "METRIC_UNAVAILABLE_BATCH"
	WarnFactorUnavailable      = "FACTOR_UNAVAILABLE"
	WarnCompositeUnavailable   = "COMPOSITE_UNAVAILABLE"
	WarnDuplicateIssuer        = "DUPLICATE_ISSUER"
)

// MissingDataWarning records a non-fatal data gap
type MissingDataWarning struct {
	Code    string `json:"code"`
	Ticker  string `json:"ticker,omitempty"`
	Metric  Metric `json:"metric,omitempty"`
	Factor  Factor `json:"factor,omitempty"`
	Message string `json:"message"`
}

func (w MissingDataWarning) String() string {
	if w.Ticker != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Code, w.Ticker, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}
