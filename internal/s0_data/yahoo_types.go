package s0_data

import (
	"fmt"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// rawField is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper; {} means missing
type rawField struct {
	Raw *float64 `json:"raw"`
}

func (f rawField) value() contracts.Value {
	return contracts.FromPtr(f.Raw)
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) String() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *yahooError          `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	SummaryDetail struct {
		TrailingPE                   rawField `json:"trailingPE"`
		PriceToSalesTrailing12Months rawField `json:"priceToSalesTrailing12Months"`
		MarketCap                    rawField `json:"marketCap"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		PriceToBook rawField `json:"priceToBook"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		ReturnOnEquity rawField `json:"returnOnEquity"`
		ReturnOnAssets rawField `json:"returnOnAssets"`
		DebtToEquity   rawField `json:"debtToEquity"`
	} `json:"financialData"`
	AssetProfile struct {
		Sector              string `json:"sector"`
		Industry            string `json:"industry"`
		LongBusinessSummary string `json:"longBusinessSummary"`
	} `json:"assetProfile"`
	Price struct {
		LongName  string   `json:"longName"`
		ShortName string   `json:"shortName"`
		MarketCap rawField `json:"marketCap"`
	} `json:"price"`
}

func (r quoteSummaryResult) toRawMetrics(ticker string) *contracts.RawMetrics {
	raw := contracts.NewRawMetrics(ticker)
	raw.Set(contracts.MetricPE, r.SummaryDetail.TrailingPE.value())
	raw.Set(contracts.MetricPB, r.DefaultKeyStatistics.PriceToBook.value())
	raw.Set(contracts.MetricPS, r.SummaryDetail.PriceToSalesTrailing12Months.value())
	raw.Set(contracts.MetricROE, r.FinancialData.ReturnOnEquity.value())
	raw.Set(contracts.MetricROA, r.FinancialData.ReturnOnAssets.value())
	raw.Set(contracts.MetricDebtToEquity, r.FinancialData.DebtToEquity.value())

	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}
	marketCap := r.Price.MarketCap.value()
	if !marketCap.Valid {
		marketCap = r.SummaryDetail.MarketCap.value()
	}

	raw.Profile = contracts.Profile{
		LongName:    name,
		Sector:      r.AssetProfile.Sector,
		Industry:    r.AssetProfile.Industry,
		MarketCap:   marketCap,
		Description: r.AssetProfile.LongBusinessSummary,
	}
	return raw
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// bars pairs timestamps with closes, skipping null closes (halted days)
func (r chartResult) bars() []contracts.PriceBar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	closes := r.Indicators.Quote[0].Close

	out := make([]contracts.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		out = append(out, contracts.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	return out
}
