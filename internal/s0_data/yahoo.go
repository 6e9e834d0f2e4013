package s0_data

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/internal/s2_signals"
	"github.com/wonny/vantage/backend/pkg/httputil"
	"github.com/wonny/vantage/backend/pkg/logger"
)

const (
	// DefaultYahooBaseURL is the Yahoo Finance query host
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

	// DefaultPriceRange is the chart window used for price metrics
	DefaultPriceRange = "1y"

	quoteSummaryModules = "summaryDetail,defaultKeyStatistics,financialData,assetProfile,price"
)

// YahooClient fetches fundamentals and daily closes from Yahoo Finance
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type YahooClient struct {
	httpClient *httputil.Client
	signals    *s2_signals.Builder
	logger     *logger.Logger
	baseURL    string
	priceRange string
	now        func() time.Time
}

// YahooOption configures the client
type YahooOption func(*YahooClient)

// WithBaseURL sets a custom base URL
func WithBaseURL(baseURL string) YahooOption {
	return func(c *YahooClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithPriceRange sets the chart range (e.g. 6mo, 1y)
func WithPriceRange(r string) YahooOption {
	return func(c *YahooClient) {
		if r != "" {
			c.priceRange = r
		}
	}
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(httpClient *httputil.Client, signals *s2_signals.Builder, log *logger.Logger, opts ...YahooOption) *YahooClient {
	c := &YahooClient{
		httpClient: httpClient,
		signals:    signals,
		logger:     log,
		baseURL:    DefaultYahooBaseURL,
		priceRange: DefaultPriceRange,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns raw metrics for one ticker.
// A quote summary failure is an error (issuer has no data); a chart failure
// only leaves the price metrics absent.
func (c *YahooClient) Fetch(ctx context.Context, ticker string) (*contracts.RawMetrics, error) {
	raw, err := c.QuoteSummary(ctx, ticker)
	if err != nil {
		return nil, err
	}

	bars, err := c.Chart(ctx, ticker)
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("Chart fetch failed, price metrics unavailable")
	}
	c.signals.Apply(raw, bars)

	raw.FetchedAt = c.now()
	return raw, nil
}

// QuoteSummary fetches valuation, profitability and profile fields
func (c *YahooClient) QuoteSummary(ctx context.Context, ticker string) (*contracts.RawMetrics, error) {
	params := url.Values{}
	params.Set("modules", quoteSummaryModules)
	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp quoteSummaryResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("quote summary %s: %w", ticker, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary %s: %s", ticker, resp.QuoteSummary.Error)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote summary %s: empty result", ticker)
	}

	raw := resp.QuoteSummary.Result[0].toRawMetrics(ticker)

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"present": raw.PresentCount(),
	}).Debug("Fetched quote summary")
	return raw, nil
}

// Chart fetches daily closes for the configured range
func (c *YahooClient) Chart(ctx context.Context, ticker string) ([]contracts.PriceBar, error) {
	params := url.Values{}
	params.Set("range", c.priceRange)
	params.Set("interval", "1d")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("chart %s: %w", ticker, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s", ticker, resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart %s: empty result", ticker)
	}

	return resp.Chart.Result[0].bars(), nil
}
