package contracts

import "time"

// Issuer is one member of the ranking universe.
// Ticker is unique within a batch.
type Issuer struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Description string `json:"description,omitempty"`
}

// Universe is the issuer list supplied by a universe provider
type Universe struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Issuers   []Issuer  `json:"issuers"`
}

// Tickers returns the issuer identifiers in universe order
func (u *Universe) Tickers() []string {
	tickers := make([]string, 0, len(u.Issuers))
	for _, is := range u.Issuers {
		tickers = append(tickers, is.Ticker)
	}
	return tickers
}

// Contains checks if a ticker is in the universe
func (u *Universe) Contains(ticker string) bool {
	for _, is := range u.Issuers {
		if is.Ticker == ticker {
			return true
		}
	}
	return false
}

// Count returns the number of issuers
func (u *Universe) Count() int {
	return len(u.Issuers)
}
