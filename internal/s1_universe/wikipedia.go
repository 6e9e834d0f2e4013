package s1_universe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/httputil"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// DefaultWikipediaURL lists the S&P 500 constituents
const DefaultWikipediaURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// SourceWikipedia identifies universes scraped from Wikipedia
const SourceWikipedia = "sp500"

// constituents table headers
const (
	colSymbol   = "Symbol"
	colSecurity = "Security"
	colSector   = "GICS Sector"
)

// WikipediaProvider scrapes the constituents table
// ⭐ SSOT: S&P 500 유니버스 수집은 여기서만
type WikipediaProvider struct {
	client *httputil.Client
	url    string
	logger *logger.Logger
	now    func() time.Time
}

// NewWikipediaProvider creates a provider; empty url uses DefaultWikipediaURL
func NewWikipediaProvider(client *httputil.Client, url string, log *logger.Logger) *WikipediaProvider {
	if url == "" {
		url = DefaultWikipediaURL
	}
	return &WikipediaProvider{
		client: client,
		url:    url,
		logger: log,
		now:    time.Now,
	}
}

// Universe fetches and parses the constituents table
func (p *WikipediaProvider) Universe(ctx context.Context) (*contracts.Universe, error) {
	body, err := p.client.GetBody(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}

	issuers, err := ParseConstituents(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(map[string]interface{}{
		"source": SourceWikipedia,
		"count":  len(issuers),
	}).Info("Fetched universe")

	return &contracts.Universe{
		Source:    SourceWikipedia,
		FetchedAt: p.now(),
		Issuers:   issuers,
	}, nil
}

// ParseConstituents reads table#constituents.
// Columns are located by header text so reordering on the page does not break parsing.
func ParseConstituents(r io.Reader) ([]contracts.Issuer, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	cols := map[string]int{colSymbol: -1, colSecurity: -1, colSector: -1}
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		name := strings.TrimSpace(th.Text())
		if idx, ok := cols[name]; ok && idx < 0 {
			cols[name] = i
		}
	})
	for _, name := range []string{colSymbol, colSecurity, colSector} {
		if cols[name] < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
	}

	issuers := make([]contracts.Issuer, 0, 512)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= maxIndex(cols) {
			return
		}

		ticker := NormalizeTicker(cells.Eq(cols[colSymbol]).Text())
		if ticker == "" {
			return
		}

		issuers = append(issuers, contracts.Issuer{
			Ticker: ticker,
			Name:   strings.TrimSpace(cells.Eq(cols[colSecurity]).Text()),
			Sector: strings.TrimSpace(cells.Eq(cols[colSector]).Text()),
		})
	})

	if len(issuers) == 0 {
		return nil, fmt.Errorf("constituents table has no rows")
	}
	return issuers, nil
}

// NormalizeTicker converts class-share dots to the market-data form (BRK.B → BRK-B)
func NormalizeTicker(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ".", "-")
}

func maxIndex(cols map[string]int) int {
	hi := 0
	for _, idx := range cols {
		if idx > hi {
			hi = idx
		}
	}
	return hi
}
