package s1_universe

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// SourceStatic identifies a configured ticker list
const SourceStatic = "static"

// StaticProvider serves a fixed ticker list (UNIVERSE_TICKERS).
// Names and sectors are filled in later from the market-data profile.
type StaticProvider struct {
	tickers []string
}

// NewStaticProvider creates a provider from tickers, normalized and deduplicated
func NewStaticProvider(tickers []string) *StaticProvider {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = NormalizeTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return &StaticProvider{tickers: out}
}

// Universe returns the configured list
func (p *StaticProvider) Universe(ctx context.Context) (*contracts.Universe, error) {
	if len(p.tickers) == 0 {
		return nil, fmt.Errorf("static universe is empty")
	}

	issuers := make([]contracts.Issuer, len(p.tickers))
	for i, t := range p.tickers {
		issuers[i] = contracts.Issuer{Ticker: t, Name: t}
	}
	return &contracts.Universe{
		Source:    SourceStatic,
		FetchedAt: time.Now(),
		Issuers:   issuers,
	}, nil
}
