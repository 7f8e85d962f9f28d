// Package keyness scores how characteristic each word is of a target corpus
// relative to the other corpora it is paired with.
//
// The statistic is a signed G (log-likelihood ratio) over a 2×n contingency
// table whose first row is the word's per-corpus counts and whose second row
// is the per-corpus totals across the whole vocabulary. The sign is flipped
// when the target corpus shows fewer occurrences than expected, so positive
// scores mean overrepresented in the target. Words whose counts are all zero
// score 0 by default, or NaN when configured, and are never an error.
//
// Corpus text is Zipfian, so most vocabulary rows are rare words with tiny
// count tuples that repeat across thousands of words. Rows whose total count
// falls at or below a threshold are memoized on their exact count tuple.
package keyness

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/corpuskit/corpuskey/internal/wordcount"
)

// DefaultCacheThreshold memoizes rows whose counts sum to at most this.
const DefaultCacheThreshold = 20

// Scorer computes signed G scores for the words of a count table.
type Scorer struct {
	// Target names the corpus whose overrepresentation gives positive
	// scores. It must be one of the table's corpora.
	Target string

	// Signed flips the statistic's sign for underrepresented words.
	Signed bool

	// NaNForZero scores all-zero rows as NaN instead of 0.
	NaNForZero bool

	// CacheThreshold bounds the total count of memoized rows. Zero means
	// DefaultCacheThreshold; negative disables the cache.
	CacheThreshold int

	cache  map[string]float64
	hits   int
	misses int
}

// NewScorer returns a signing scorer with the default cache threshold.
func NewScorer(target string) *Scorer {
	return &Scorer{Target: target, Signed: true}
}

// CacheStats reports memo cache hits and misses so far.
func (s *Scorer) CacheStats() (hits, misses int) {
	return s.hits, s.misses
}

// ScoreGroup scores every word of one column group. The returned map has an
// entry for the table's entire vocabulary; words absent from the group have
// all-zero counts there and fall under the zero rule.
func (s *Scorer) ScoreGroup(t *wordcount.Table, group string) (map[string]float64, error) {
	target := -1
	for i, name := range t.Corpora() {
		if name == s.Target {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, fmt.Errorf("target corpus %q is not in the table (corpora: %v)", s.Target, t.Corpora())
	}

	totals := t.ColumnTotals(group)
	scores := make(map[string]float64, len(t.Words()))
	for _, word := range t.Words() {
		scores[word] = s.score(t.RowCounts(word, group), totals, target)
	}
	return scores, nil
}

// ScoreAll scores every column group of the table, bins and derived groups
// alike.
func (s *Scorer) ScoreAll(t *wordcount.Table) (map[string]map[string]float64, error) {
	all := make(map[string]map[string]float64, len(t.Groups()))
	for _, group := range t.Groups() {
		scores, err := s.ScoreGroup(t, group)
		if err != nil {
			return nil, err
		}
		all[group] = scores
	}
	return all, nil
}

// score applies the zero rule, then the memo cache, then the statistic.
func (s *Scorer) score(counts, totals []int, target int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		if s.NaNForZero {
			return math.NaN()
		}
		return 0.0
	}

	threshold := s.CacheThreshold
	if threshold == 0 {
		threshold = DefaultCacheThreshold
	}
	if total > threshold {
		return signedG(counts, totals, target, s.Signed)
	}

	key := cacheKey(counts, totals, target)
	if g, ok := s.cache[key]; ok {
		s.hits++
		return g
	}
	s.misses++
	g := signedG(counts, totals, target, s.Signed)
	if s.cache == nil {
		s.cache = make(map[string]float64)
	}
	s.cache[key] = g
	return g
}

// cacheKey identifies a count row by its exact tuple. Totals are part of the
// key so one scorer can serve several groups.
func cacheKey(counts, totals []int, target int) string {
	return fmt.Sprintf("%v|%v|%d", counts, totals, target)
}

// signedG computes the G statistic of the 2×n table [counts; totals],
// without continuity correction, optionally negated when the target corpus
// count falls below its expected value.
func signedG(counts, totals []int, target int, signed bool) float64 {
	n := len(counts)
	obs := make([]float64, 2*n)
	for i, c := range counts {
		obs[i] = float64(c)
	}
	for i, c := range totals {
		obs[n+i] = float64(c)
	}

	countSum := floats.Sum(obs[:n])
	totalSum := floats.Sum(obs[n:])
	grand := countSum + totalSum

	g := 0.0
	expectedTarget := 0.0
	for j := 0; j < n; j++ {
		colSum := obs[j] + obs[n+j]
		for i, rowSum := range []float64{countSum, totalSum} {
			expected := rowSum * colSum / grand
			if i == 0 && j == target {
				expectedTarget = expected
			}
			if o := obs[i*n+j]; o > 0 {
				g += o * math.Log(o/expected)
			}
		}
	}
	g *= 2

	if signed && obs[target] < expectedTarget {
		g = -g
	}
	return g
}

// PValue converts a signed G score into the chi-squared tail probability of
// its magnitude, with one degree of freedom per non-target corpus. NaN
// scores give NaN.
func PValue(g float64, corpora int) float64 {
	if math.IsNaN(g) {
		return math.NaN()
	}
	dist := distuv.ChiSquared{K: float64(corpora - 1)}
	return dist.Survival(math.Abs(g))
}
