package contracts

import "time"

// NotRanked is the bucket label for issuers without a composite score
const NotRanked = "Not Ranked"

// FactorRanks holds per-factor ordinal ranks (1 = best)
type FactorRanks struct {
	Value      int `json:"value"`
	Quality    int `json:"quality"`
	Momentum   int `json:"momentum"`
	Volatility int `json:"volatility"`
}

// Get returns the rank of a factor
func (r FactorRanks) Get(factor Factor) int {
	switch factor {
	case FactorValue:
		return r.Value
	case FactorQuality:
		return r.Quality
	case FactorMomentum:
		return r.Momentum
	case FactorVolatility:
		return r.Volatility
	default:
		return 0
	}
}

// RankedRow is the terminal output for one issuer.
// ⭐ SSOT: 랭킹 결과 전달 (매 실행마다 전체 재계산)
type RankedRow struct {
	Issuer      Issuer            `json:"issuer"`
	Normalized  NormalizedMetrics `json:"normalized"`
	Factors     FactorScores      `json:"factors"`
	Composite   Value             `json:"composite"`
	Rank        int               `json:"rank"` // 1-based composite rank
	FactorRanks FactorRanks       `json:"factor_ranks"`
	Percentile  Value             `json:"percentile"` // absent when not ranked
	Bucket      string            `json:"bucket"`
}

// IsRanked reports whether the row has a defined composite score
func (r *RankedRow) IsRanked() bool {
	return r.Composite.Valid
}

// IsTopRanked checks if the row is in top N ranks
func (r *RankedRow) IsTopRanked(n int) bool {
	return r.IsRanked() && r.Rank <= n && r.Rank > 0
}

// RankingResult is the full output of one ranking run
type RankingResult struct {
	Rows     []RankedRow          `json:"rows"`
	Warnings []MissingDataWarning `json:"warnings"`
	Coverage map[Metric]int       `json:"coverage"` // present raw values per metric
	RankedAt time.Time            `json:"ranked_at"`
}

// RankedCount returns the number of rows with a composite score
func (r *RankingResult) RankedCount() int {
	n := 0
	for i := range r.Rows {
		if r.Rows[i].IsRanked() {
			n++
		}
	}
	return n
}
