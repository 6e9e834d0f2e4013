package selection

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/wonny/vantage/backend/internal/contracts"
)

// Entry is one issuer's score as seen by the ranker
type Entry struct {
	Issuer contracts.Issuer
	Score  contracts.Value
}

// Placement is the ranker's verdict for one entry
type Placement struct {
	Rank       int             // 1 = best, unranked entries follow the ranked ones
	Percentile contracts.Value // (k-rank+1)/k, absent when not ranked
	Bucket     string
}

// Ranker orders issuers by score and assigns ranks and percentile buckets
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	buckets  int
	labels   []string
	tieBreak TieBreak
}

// NewRanker creates a ranker with the given bucket count and tie-break key
func NewRanker(buckets int, tieBreak TieBreak) *Ranker {
	return &Ranker{
		buckets:  buckets,
		labels:   BucketLabels(buckets),
		tieBreak: tieBreak,
	}
}

// Rank returns placements aligned with entries.
//
// Present scores get ranks 1..k by descending score, ties broken by the
// tie-break key ascending. Absent scores follow as a block in ticker order
// and are bucketed as contracts.NotRanked.
func (r *Ranker) Rank(entries []Entry) []Placement {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := entries[order[a]], entries[order[b]]
		va, okA := ea.Score.Get()
		vb, okB := eb.Score.Get()

		if okA != okB {
			return okA // ranked before unranked
		}
		if !okA {
			return ea.Issuer.Ticker < eb.Issuer.Ticker
		}
		if va != vb {
			return va > vb
		}
		return r.less(ea.Issuer, eb.Issuer)
	})

	ranked := 0
	for _, e := range entries {
		if e.Score.Valid {
			ranked++
		}
	}

	placements := make([]Placement, len(entries))
	for pos, idx := range order {
		rank := pos + 1
		p := Placement{Rank: rank, Bucket: contracts.NotRanked}
		if entries[idx].Score.Valid {
			above := ranked - rank + 1
			p.Percentile = contracts.Present(float64(above) / float64(ranked))
			p.Bucket = r.labels[r.bucketIndex(above, ranked)]
		}
		placements[idx] = p
	}

	return placements
}

// Labels returns the bucket labels from worst to best
func (r *Ranker) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// bucketIndex is floor(buckets * above / ranked) in integer arithmetic.
// A value exactly on an edge lands in the higher bucket, 1.0 in the top one.
func (r *Ranker) bucketIndex(above, ranked int) int {
	idx := r.buckets * above / ranked
	if idx >= r.buckets {
		idx = r.buckets - 1
	}
	return idx
}

func (r *Ranker) less(a, b contracts.Issuer) bool {
	if r.tieBreak == TieBreakName && a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Ticker < b.Ticker
}

// BucketLabels builds n labels from worst to best.
// For n=10: "Bottom 10%" ... "Bottom 50%", "Top 50%" ... "Top 10%".
func BucketLabels(n int) []string {
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			labels[i] = fmt.Sprintf("Bottom %s%%", formatPct(float64(i+1)*100/float64(n)))
		} else {
			labels[i] = fmt.Sprintf("Top %s%%", formatPct(float64(n-i)*100/float64(n)))
		}
	}
	return labels
}

func formatPct(p float64) string {
	return strconv.FormatFloat(math.Round(p*100)/100, 'f', -1, 64)
}
