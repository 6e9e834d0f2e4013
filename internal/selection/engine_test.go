package selection

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vantage/backend/internal/contracts"
)

func issuer(ticker, sector string) contracts.Issuer {
	return contracts.Issuer{Ticker: ticker, Name: ticker + " Inc.", Sector: sector}
}

func raw(ticker string, values map[contracts.Metric]float64) *contracts.RawMetrics {
	r := contracts.NewRawMetrics(ticker)
	for m, v := range values {
		r.Set(m, contracts.Present(v))
	}
	return r
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), nil)
	require.NoError(t, err)
	return e
}

func rowByTicker(t *testing.T, rows []contracts.RankedRow, ticker string) contracts.RankedRow {
	t.Helper()
	row, ok := Find(rows, ticker)
	require.True(t, ok, "row %s not found", ticker)
	return *row
}

func TestEngine_EmptyBatch(t *testing.T) {
	result, err := Rank(nil, nil, DefaultConfig())

	require.NoError(t, err)
	assert.NotNil(t, result.Rows)
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.Warnings)
}

func TestEngine_PEOnlyExample(t *testing.T) {
	e := newTestEngine(t)
	issuers := []contracts.Issuer{issuer("AAA", "Tech"), issuer("BBB", "Tech"), issuer("CCC", "Energy")}
	batch := map[string]*contracts.RawMetrics{
		"AAA": raw("AAA", map[contracts.Metric]float64{contracts.MetricPE: 10}),
		"BBB": raw("BBB", map[contracts.Metric]float64{contracts.MetricPE: 20}),
		"CCC": raw("CCC", map[contracts.Metric]float64{contracts.MetricPE: 30}),
	}

	result := e.Rank(issuers, batch)
	require.Len(t, result.Rows, 3)

	// rows keep input order
	assert.Equal(t, "AAA", result.Rows[0].Issuer.Ticker)
	assert.Equal(t, "CCC", result.Rows[2].Issuer.Ticker)

	wantPE := map[string]float64{"AAA": 0, "BBB": 0.5, "CCC": 1}
	for ticker, want := range wantPE {
		row := rowByTicker(t, result.Rows, ticker)
		assert.InDelta(t, want, row.Normalized.Get(contracts.MetricPE).V, 1e-12)
		assert.InDelta(t, want, row.Factors.Value.V, 1e-12, "value factor equals normalized P/E")
		assert.False(t, row.Factors.Quality.Valid)
	}

	ccc := rowByTicker(t, result.Rows, "CCC")
	assert.Equal(t, 1, ccc.FactorRanks.Value)
	assert.Equal(t, 1, ccc.Rank)
	assert.Equal(t, "Top 10%", ccc.Bucket)

	assert.Equal(t, 3, result.Coverage[contracts.MetricPE])
	assert.Equal(t, 0, result.Coverage[contracts.MetricPB])
}

func TestEngine_AllMissingIssuerPlacedLast(t *testing.T) {
	e := newTestEngine(t)
	issuers := []contracts.Issuer{issuer("EMPTY", "Utilities"), issuer("FULL", "Tech"), issuer("HALF", "Tech")}
	batch := map[string]*contracts.RawMetrics{
		"FULL": raw("FULL", map[contracts.Metric]float64{
			contracts.MetricPE: 15, contracts.MetricPB: 2, contracts.MetricROE: 0.2, contracts.MetricROA: 0.1,
			contracts.MetricPriceChange: 0.12, contracts.MetricVolatility: 0.25,
		}),
		"HALF": raw("HALF", map[contracts.Metric]float64{
			contracts.MetricPE: 25, contracts.MetricROE: 0.1,
		}),
		// EMPTY has no raw entry at all
	}

	result := e.Rank(issuers, batch)

	empty := rowByTicker(t, result.Rows, "EMPTY")
	assert.False(t, empty.Composite.Valid)
	assert.Equal(t, 3, empty.Rank)
	assert.Equal(t, contracts.NotRanked, empty.Bucket)
	assert.False(t, empty.Percentile.Valid)
	assert.Equal(t, 3, empty.FactorRanks.Value)

	half := rowByTicker(t, result.Rows, "HALF")
	assert.True(t, half.Composite.Valid, "partial data still gets a score")
	assert.False(t, half.Factors.Momentum.Valid)

	assert.Equal(t, 2, result.RankedCount())

	codes := map[string]int{}
	for _, w := range result.Warnings {
		codes[w.Code]++
	}
	assert.Equal(t, 1, codes[contracts.WarnCompositeUnavailable])
	assert.Positive(t, codes[contracts.WarnFactorUnavailable])
}

func TestEngine_CompositeEqualsWeightedSum(t *testing.T) {
	e := newTestEngine(t)
	issuers := []contracts.Issuer{issuer("A", "X"), issuer("B", "X"), issuer("C", "Y")}
	batch := map[string]*contracts.RawMetrics{}
	for i, is := range issuers {
		f := float64(i + 1)
		batch[is.Ticker] = raw(is.Ticker, map[contracts.Metric]float64{
			contracts.MetricPE: 10 * f, contracts.MetricPB: 4 - f, contracts.MetricROE: 0.05 * f * f,
			contracts.MetricROA: 0.3 / f, contracts.MetricPriceChange: 0.1 * (2 - f), contracts.MetricVolatility: 0.2 + 0.01*f,
		})
	}

	result := e.Rank(issuers, batch)

	for _, row := range result.Rows {
		require.Equal(t, 4, row.Factors.PresentCount())
		want := 0.3*row.Factors.Value.V + 0.3*row.Factors.Quality.V + 0.3*row.Factors.Momentum.V + 0.1*row.Factors.Volatility.V
		assert.InDelta(t, want, row.Composite.V, 1e-9, row.Issuer.Ticker)
	}
}

func TestEngine_FactorMissingForWholeBatch(t *testing.T) {
	e := newTestEngine(t)
	issuers := []contracts.Issuer{issuer("A", "X"), issuer("B", "X")}
	batch := map[string]*contracts.RawMetrics{
		"A": raw("A", map[contracts.Metric]float64{contracts.MetricPE: 1, contracts.MetricROE: 0.3}),
		"B": raw("B", map[contracts.Metric]float64{contracts.MetricPE: 2, contracts.MetricROE: 0.1}),
	}

	result := e.Rank(issuers, batch)

	var batchFactorWarnings []contracts.Factor
	var batchMetricWarnings []contracts.Metric
	for _, w := range result.Warnings {
		if w.Code == contracts.WarnFactorUnavailable && w.Ticker == "" {
			batchFactorWarnings = append(batchFactorWarnings, w.Factor)
		}
		if w.Code == contracts.WarnMetricUnavailableBatch {
			batchMetricWarnings = append(batchMetricWarnings, w.Metric)
		}
	}
	assert.ElementsMatch(t, []contracts.Factor{contracts.FactorMomentum, contracts.FactorVolatility}, batchFactorWarnings)
	assert.ElementsMatch(t, []contracts.Metric{contracts.MetricPB, contracts.MetricROA, contracts.MetricPriceChange, contracts.MetricVolatility}, batchMetricWarnings)

	// ranking proceeds on value + quality: A has ROE 1 vs 0, B has PE 1 vs 0 → tie, ticker wins
	a := rowByTicker(t, result.Rows, "A")
	b := rowByTicker(t, result.Rows, "B")
	assert.InDelta(t, 0.5, a.Composite.V, 1e-12)
	assert.InDelta(t, 0.5, b.Composite.V, 1e-12)
	assert.Equal(t, 1, a.Rank)
	assert.Equal(t, 2, b.Rank)
}

func TestEngine_NonFiniteRawTreatedAsAbsent(t *testing.T) {
	e := newTestEngine(t)
	bad := contracts.NewRawMetrics("NAN")
	bad.Values[contracts.MetricPE] = contracts.Value{V: math.NaN(), Valid: true}
	bad.Values[contracts.MetricPB] = contracts.Value{V: math.Inf(1), Valid: true}

	result := e.Rank(
		[]contracts.Issuer{issuer("NAN", "X"), issuer("OK", "X")},
		map[string]*contracts.RawMetrics{
			"NAN": bad,
			"OK":  raw("OK", map[contracts.Metric]float64{contracts.MetricPE: 12, contracts.MetricPB: 1}),
		},
	)

	nan := rowByTicker(t, result.Rows, "NAN")
	assert.False(t, nan.Normalized.Get(contracts.MetricPE).Valid)
	assert.False(t, nan.Composite.Valid)
	assert.Equal(t, 1, result.Coverage[contracts.MetricPE])
}

func TestEngine_DuplicateTickerKeepsFirst(t *testing.T) {
	e := newTestEngine(t)
	issuers := []contracts.Issuer{issuer("DUP", "First"), issuer("X", "Tech"), issuer("DUP", "Second")}
	batch := map[string]*contracts.RawMetrics{
		"DUP": raw("DUP", map[contracts.Metric]float64{contracts.MetricPE: 3}),
		"X":   raw("X", map[contracts.Metric]float64{contracts.MetricPE: 5}),
	}

	result := e.Rank(issuers, batch)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "First", rowByTicker(t, result.Rows, "DUP").Issuer.Sector)
	assert.Equal(t, contracts.WarnDuplicateIssuer, result.Warnings[0].Code)
}

func randomBatch(seed int64, n int) ([]contracts.Issuer, map[string]*contracts.RawMetrics) {
	rng := rand.New(rand.NewSource(seed))
	sectors := []string{"Energy", "Financials", "Health Care", "Information Technology"}
	issuers := make([]contracts.Issuer, n)
	batch := make(map[string]*contracts.RawMetrics, n)

	for i := 0; i < n; i++ {
		ticker := string(rune('A'+i%26)) + string(rune('A'+i/26))
		issuers[i] = issuer(ticker, sectors[rng.Intn(len(sectors))])
		r := contracts.NewRawMetrics(ticker)
		for _, m := range contracts.AllMetrics {
			if rng.Float64() < 0.8 {
				// coarse grid so ties happen
				r.Set(m, contracts.Present(float64(rng.Intn(8))))
			}
		}
		batch[ticker] = r
	}
	return issuers, batch
}

func TestEngine_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	issuers, batch := randomBatch(7, 60)

	first := e.Rank(issuers, batch)
	second := e.Rank(issuers, batch)

	require.Len(t, second.Rows, len(first.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Rank, second.Rows[i].Rank)
		assert.Equal(t, first.Rows[i].FactorRanks, second.Rows[i].FactorRanks)
		assert.Equal(t, first.Rows[i].Bucket, second.Rows[i].Bucket)
	}
}

func TestEngine_RankProperties(t *testing.T) {
	e := newTestEngine(t)
	labels := e.Labels()
	bucketIdx := map[string]int{}
	for i, l := range labels {
		bucketIdx[l] = i
	}

	for seed := int64(1); seed <= 5; seed++ {
		issuers, batch := randomBatch(seed, 75)
		result := e.Rank(issuers, batch)

		k := result.RankedCount()
		ranks := map[int]bool{}
		for _, row := range result.Rows {
			if row.IsRanked() {
				ranks[row.Rank] = true
			}
		}
		// bijection onto 1..k
		require.Len(t, ranks, k)
		for r := 1; r <= k; r++ {
			assert.True(t, ranks[r], "seed %d missing rank %d", seed, r)
		}

		ranked := SortByRank(result.Rows)[:k]
		assert.Equal(t, labels[len(labels)-1], ranked[0].Bucket, "rank 1 is always top bucket")

		// bucket monotonic in composite score
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Composite.V < ranked[j].Composite.V })
		for i := 1; i < len(ranked); i++ {
			if ranked[i].Composite.V > ranked[i-1].Composite.V {
				assert.GreaterOrEqual(t, bucketIdx[ranked[i].Bucket], bucketIdx[ranked[i-1].Bucket])
			}
		}

		// normalized extremes
		for _, m := range contracts.AllMetrics {
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, row := range result.Rows {
				if v, ok := row.Normalized.Get(m).Get(); ok {
					lo, hi = math.Min(lo, v), math.Max(hi, v)
				}
			}
			if result.Coverage[m] >= 2 && lo != hi {
				assert.Equal(t, 0.0, lo)
				assert.Equal(t, 1.0, hi)
			}
		}
	}
}

func TestEngine_SectorFilterKeepsRanks(t *testing.T) {
	e := newTestEngine(t)
	issuers, batch := randomBatch(11, 40)
	result := e.Rank(issuers, batch)

	filtered := FilterBySector(result.Rows, "Energy")
	for _, row := range filtered {
		assert.Equal(t, "Energy", row.Issuer.Sector)
		full := rowByTicker(t, result.Rows, row.Issuer.Ticker)
		assert.Equal(t, full.Rank, row.Rank)
	}

	assert.Len(t, FilterBySector(result.Rows, AllSectors), len(result.Rows))
	assert.Empty(t, FilterBySector(result.Rows, "energy"), "filter is case-sensitive")
}
