package selection

import (
	"fmt"
	"time"

	"github.com/wonny/vantage/backend/internal/contracts"
	"github.com/wonny/vantage/backend/pkg/logger"
)

// Engine runs the full scoring pipeline over one batch:
// raw → normalized → factor scores → composite → ranks.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	config     Config
	normalizer *Normalizer
	aggregator *FactorAggregator
	scorer     *CompositeScorer
	ranker     *Ranker
	logger     *logger.Logger
	now        func() time.Time
}

// NewEngine validates the configuration and builds the pipeline stages
func NewEngine(cfg Config, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	membership := make(map[contracts.Factor][]contracts.Metric, len(cfg.Membership))
	for f, metrics := range cfg.Membership {
		membership[f] = append([]contracts.Metric(nil), metrics...)
	}
	cfg.Membership = membership

	return &Engine{
		config:     cfg,
		normalizer: NewNormalizer(),
		aggregator: NewFactorAggregator(membership),
		scorer:     NewCompositeScorer(cfg.Weights),
		ranker:     NewRanker(cfg.Buckets, cfg.TieBreak),
		logger:     log,
		now:        time.Now,
	}, nil
}

// Rank is a convenience wrapper: validate cfg, then rank the batch
func Rank(issuers []contracts.Issuer, raw map[string]*contracts.RawMetrics, cfg Config) (*contracts.RankingResult, error) {
	e, err := NewEngine(cfg, nil)
	if err != nil {
		return nil, err
	}
	return e.Rank(issuers, raw), nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Labels returns the percentile bucket labels from worst to best
func (e *Engine) Labels() []string {
	return e.ranker.Labels()
}

// Rank scores and ranks a batch. Rows come back in input order; each row
// carries its ranks so any presentation order can be rebuilt.
// Data gaps never fail the run, they are reported as warnings.
func (e *Engine) Rank(issuers []contracts.Issuer, raw map[string]*contracts.RawMetrics) *contracts.RankingResult {
	result := &contracts.RankingResult{
		Rows:     []contracts.RankedRow{},
		Warnings: []contracts.MissingDataWarning{},
		Coverage: make(map[contracts.Metric]int, len(contracts.AllMetrics)),
		RankedAt: e.now(),
	}

	batch, dupWarnings := dedupe(issuers)
	result.Warnings = append(result.Warnings, dupWarnings...)
	if len(batch) == 0 {
		return result
	}

	// 1. Normalize every metric across the batch
	normalized, coverage := e.normalize(batch, raw)
	result.Coverage = coverage
	for _, m := range e.config.ReferencedMetrics() {
		if coverage[m] == 0 {
			result.Warnings = append(result.Warnings, contracts.MissingDataWarning{
				Code:    contracts.WarnMetricUnavailableBatch,
				Metric:  m,
				Message: fmt.Sprintf("no issuer has a value for %s", m),
			})
		}
	}

	// 2. Factor scores
	factors := make([]contracts.FactorScores, len(batch))
	for i := range batch {
		factors[i] = e.aggregator.Aggregate(normalized[i])
	}
	result.Warnings = append(result.Warnings, factorWarnings(batch, factors)...)

	// 3. Composite scores (weight redistribution for partial data)
	composite := make([]contracts.Value, len(batch))
	for i := range batch {
		composite[i] = e.scorer.Score(factors[i])
		if !composite[i].Valid {
			result.Warnings = append(result.Warnings, contracts.MissingDataWarning{
				Code:    contracts.WarnCompositeUnavailable,
				Ticker:  batch[i].Ticker,
				Message: "no factor score available",
			})
		}
	}

	// 4. Ranks and buckets: composite, then each factor
	compositePlacements := e.ranker.Rank(entries(batch, composite))
	factorRanks := make([]contracts.FactorRanks, len(batch))
	for _, factor := range contracts.AllFactors {
		scores := make([]contracts.Value, len(batch))
		for i := range batch {
			scores[i] = factors[i].Get(factor)
		}
		for i, p := range e.ranker.Rank(entries(batch, scores)) {
			factorRanks[i] = setFactorRank(factorRanks[i], factor, p.Rank)
		}
	}

	// 5. Join
	rows := make([]contracts.RankedRow, len(batch))
	for i, is := range batch {
		rows[i] = contracts.RankedRow{
			Issuer:      is,
			Normalized:  normalized[i],
			Factors:     factors[i],
			Composite:   composite[i],
			Rank:        compositePlacements[i].Rank,
			FactorRanks: factorRanks[i],
			Percentile:  compositePlacements[i].Percentile,
			Bucket:      compositePlacements[i].Bucket,
		}
	}
	result.Rows = rows

	e.logger.WithFields(map[string]interface{}{
		"issuers":  len(rows),
		"ranked":   result.RankedCount(),
		"warnings": len(result.Warnings),
	}).Info("Ranking completed")
	for _, w := range result.Warnings {
		e.logger.WithFields(map[string]interface{}{
			"code":   w.Code,
			"ticker": w.Ticker,
			"metric": w.Metric,
			"factor": w.Factor,
		}).Debug(w.Message)
	}

	return result
}

// normalize builds one column per metric, rescales it and transposes back
func (e *Engine) normalize(batch []contracts.Issuer, raw map[string]*contracts.RawMetrics) ([]contracts.NormalizedMetrics, map[contracts.Metric]int) {
	out := make([]contracts.NormalizedMetrics, len(batch))
	for i, is := range batch {
		out[i] = contracts.NormalizedMetrics{
			Ticker: is.Ticker,
			Values: make(map[contracts.Metric]contracts.Value, len(contracts.AllMetrics)),
		}
	}

	coverage := make(map[contracts.Metric]int, len(contracts.AllMetrics))
	column := make([]contracts.Value, len(batch))
	for _, m := range contracts.AllMetrics {
		for i, is := range batch {
			// re-wrap so NaN/Inf from a careless provider become absent
			v := raw[is.Ticker].Get(m)
			if v.Valid {
				v = contracts.Present(v.V)
			}
			column[i] = v
		}

		scaled := e.normalizer.Normalize(column)
		for i := range batch {
			out[i].Values[m] = scaled[i]
			if scaled[i].Valid {
				coverage[m]++
			}
		}
	}

	return out, coverage
}

// dedupe keeps the first occurrence of each ticker
func dedupe(issuers []contracts.Issuer) ([]contracts.Issuer, []contracts.MissingDataWarning) {
	seen := make(map[string]bool, len(issuers))
	batch := make([]contracts.Issuer, 0, len(issuers))
	var warnings []contracts.MissingDataWarning

	for _, is := range issuers {
		if seen[is.Ticker] {
			warnings = append(warnings, contracts.MissingDataWarning{
				Code:    contracts.WarnDuplicateIssuer,
				Ticker:  is.Ticker,
				Message: "duplicate ticker ignored, first occurrence kept",
			})
			continue
		}
		seen[is.Ticker] = true
		batch = append(batch, is)
	}
	return batch, warnings
}

// factorWarnings reports a factor missing for the whole batch once,
// otherwise once per affected issuer
func factorWarnings(batch []contracts.Issuer, factors []contracts.FactorScores) []contracts.MissingDataWarning {
	var warnings []contracts.MissingDataWarning
	for _, factor := range contracts.AllFactors {
		missing := make([]string, 0)
		for i, is := range batch {
			if !factors[i].Get(factor).Valid {
				missing = append(missing, is.Ticker)
			}
		}

		switch {
		case len(missing) == 0:
		case len(missing) == len(batch):
			warnings = append(warnings, contracts.MissingDataWarning{
				Code:    contracts.WarnFactorUnavailable,
				Factor:  factor,
				Message: fmt.Sprintf("%s unavailable for every issuer, ranking uses remaining factors", factor),
			})
		default:
			for _, ticker := range missing {
				warnings = append(warnings, contracts.MissingDataWarning{
					Code:    contracts.WarnFactorUnavailable,
					Ticker:  ticker,
					Factor:  factor,
					Message: fmt.Sprintf("%s unavailable", factor),
				})
			}
		}
	}
	return warnings
}

func entries(batch []contracts.Issuer, scores []contracts.Value) []Entry {
	out := make([]Entry, len(batch))
	for i, is := range batch {
		out[i] = Entry{Issuer: is, Score: scores[i]}
	}
	return out
}

func setFactorRank(r contracts.FactorRanks, factor contracts.Factor, rank int) contracts.FactorRanks {
	switch factor {
	case contracts.FactorValue:
		r.Value = rank
	case contracts.FactorQuality:
		r.Quality = rank
	case contracts.FactorMomentum:
		r.Momentum = rank
	case contracts.FactorVolatility:
		r.Volatility = rank
	}
	return r
}
