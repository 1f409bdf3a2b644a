// Package score implements BM25 lexical ranking augmented by authority,
// intent, evidence, and origin band multipliers, per spec §4.7.
package score

import (
	"math"
	"strings"

	"github.com/sgx-labs/canon/internal/docindex"
)

const (
	k1 = 1.2
	b  = 0.75
)

// Signals breaks out the components that compose a document's final score,
// matching spec §4.7's "{score, signals{…}}" per-document result.
type Signals struct {
	BM25              float64 `json:"bm25"`
	AuthorityMult     float64 `json:"authority_mult"`
	IntentMult        float64 `json:"intent_mult"`
	EvidenceMult      float64 `json:"evidence_mult"`
	OriginMult        float64 `json:"origin_mult"`
}

// Scored pairs a document with its score and signal breakdown.
type Scored struct {
	Document docindex.Document `json:"document"`
	Score    float64           `json:"score"`
	Signals  Signals           `json:"signals"`
}

var authorityMultiplier = map[docindex.AuthorityBand]float64{
	docindex.BandGoverning:    1.5,
	docindex.BandOperational:  1.2,
	docindex.BandNonGoverning: 1.0,
}

var intentMultiplier = map[docindex.Intent]float64{
	docindex.IntentWorkaround:  0.6,
	docindex.IntentExperiment:  0.7,
	docindex.IntentOperational: 1.0,
	docindex.IntentPattern:     1.3,
	docindex.IntentPromoted:    1.5,
}

var evidenceMultiplier = map[docindex.Evidence]float64{
	docindex.EvidenceNone:   0.8,
	docindex.EvidenceWeak:   0.9,
	docindex.EvidenceMedium: 1.0,
	docindex.EvidenceStrong: 1.2,
}

// corpus caches the per-document term multisets and collection statistics
// needed for BM25, derived once from an Index's documents.
type corpus struct {
	docTerms map[string][]string // doc identity -> term multiset
	docFreq  map[string]int      // term -> number of documents containing it
	avgLen   float64
	n        int
}

func buildCorpus(documents []docindex.Document) *corpus {
	c := &corpus{docTerms: map[string][]string{}, docFreq: map[string]int{}}
	totalLen := 0
	for _, d := range documents {
		terms := documentTerms(d)
		c.docTerms[d.Identity()] = terms
		totalLen += len(terms)
		seen := map[string]bool{}
		for _, t := range terms {
			if !seen[t] {
				c.docFreq[t]++
				seen[t] = true
			}
		}
	}
	c.n = len(documents)
	if c.n > 0 {
		c.avgLen = float64(totalLen) / float64(c.n)
	}
	return c
}

// documentTerms concatenates title, path-with-separators-as-spaces, tags,
// and content preview, then tokenizes the result.
func documentTerms(d docindex.Document) []string {
	pathWords := strings.NewReplacer("/", " ", "-", " ", "_", " ").Replace(d.Path)
	fields := []string{d.Title, pathWords, strings.Join(d.Tags, " "), d.ContentPreview}
	return Tokenize(strings.Join(fields, " "))
}

func idf(n, df int) float64 {
	return math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

// Score ranks documents against query against the BM25 + band-multiplier
// model, returning results sorted by final score with ties broken by
// (higher intent, local-over-baseline, lexicographic path).
func Score(documents []docindex.Document, query string) []Scored {
	c := buildCorpus(documents)
	queryTokens := Tokenize(query)

	results := make([]Scored, 0, len(documents))
	for _, d := range documents {
		terms := c.docTerms[d.Identity()]
		tf := map[string]int{}
		for _, t := range terms {
			tf[t]++
		}

		bm25 := 0.0
		docLen := float64(len(terms))
		for _, qt := range queryTokens {
			df := c.docFreq[qt]
			if df == 0 {
				continue
			}
			termFreq := float64(tf[qt])
			if termFreq == 0 {
				continue
			}
			numerator := termFreq * (k1 + 1)
			denominator := termFreq + k1*(1-b+b*docLen/max1(c.avgLen))
			bm25 += idf(c.n, df) * (numerator / denominator)
		}

		sig := Signals{
			BM25:          bm25,
			AuthorityMult: authorityMultiplier[d.AuthorityBand],
			IntentMult:    intentMultiplier[d.Intent],
			EvidenceMult:  evidenceMultiplier[d.Evidence],
			OriginMult:    originMultiplier(d.Origin),
		}
		final := sig.BM25 * sig.AuthorityMult * sig.IntentMult * sig.EvidenceMult * sig.OriginMult

		results = append(results, Scored{Document: d, Score: final, Signals: sig})
	}

	sortByScoreThenTieBreak(results)
	return results
}

func originMultiplier(o docindex.Origin) float64 {
	if o == docindex.OriginLocal {
		return 1.1
	}
	return 1.0
}

func max1(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

func sortByScoreThenTieBreak(results []Scored) {
	// Stable insertion sort mirrors the teacher's small-result-set sort
	// style in internal/store/ranking.go rather than reaching for a
	// generic comparator abstraction for a handful of tie-break keys.
	for i := 1; i < len(results); i++ {
		j := i
		for j > 0 && less(results[j], results[j-1]) {
			results[j], results[j-1] = results[j-1], results[j]
			j--
		}
	}
}

// less reports whether a should sort before b: higher score first; ties by
// higher intent, then local-over-baseline, then lexicographic path.
func less(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Document.Intent.Rank() != b.Document.Intent.Rank() {
		return a.Document.Intent.Rank() > b.Document.Intent.Rank()
	}
	if (a.Document.Origin == docindex.OriginLocal) != (b.Document.Origin == docindex.OriginLocal) {
		return a.Document.Origin == docindex.OriginLocal
	}
	return a.Document.Path < b.Document.Path
}
