// Package arbitrate enforces intent-veto precedence, detects collisions and
// contradictions, computes a confidence score, and decides the final
// outcome for a scored candidate set, per spec §4.8.
package arbitrate

import (
	"sort"

	"github.com/sgx-labs/canon/internal/dedup"
	"github.com/sgx-labs/canon/internal/docindex"
	"github.com/sgx-labs/canon/internal/score"
)

// Outcome is the closed set of arbitration decisions.
type Outcome string

const (
	OutcomePrefer   Outcome = "prefer"
	OutcomeDefer    Outcome = "defer"
	OutcomeEscalate Outcome = "escalate"
)

// Vetoed records a candidate forcibly demoted by the intent-veto rule.
type Vetoed struct {
	Path       string `json:"path"`
	DemotedBy  string `json:"demoted_by"` // path of the higher-intent candidate it was demoted below
	Rule       string `json:"rule"`
}

// Contradiction is a surfaced conflict between two candidates that the
// arbitration rules could not silently resolve.
type Contradiction struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the full arbitration record exposed in the response envelope.
type Result struct {
	Outcome       Outcome              `json:"outcome"`
	Confidence    float64              `json:"confidence"`
	Candidates    []score.Scored       `json:"candidates"`
	Contradictions []Contradiction     `json:"contradictions"`
	Vetoed        []Vetoed             `json:"vetoed"`
	Warnings      []dedup.Warning      `json:"warnings"`
	Dedup         dedup.Result         `json:"dedup"`
	Advisory      bool                 `json:"advisory"`
}

// Arbitrate consumes a scored list (already ordered by score, highest
// first) along with the dedup record for the same request, and produces
// the full arbitration result.
func Arbitrate(candidates []score.Scored, dedupResult dedup.Result) Result {
	ordered := make([]score.Scored, len(candidates))
	copy(ordered, candidates)

	vetoed, contradictions := applyIntentVeto(ordered)
	ordered = reorderByVeto(ordered, vetoed)

	result := Result{
		Candidates:     ordered,
		Contradictions: contradictions,
		Vetoed:         vetoed,
		Warnings:       dedupResult.Warnings,
		Dedup:          dedupResult,
	}

	if len(dedupResult.URICollisions) > 0 {
		result.Outcome = OutcomeEscalate
		result.Confidence = confidence(ordered, contradictions)
		result.Advisory = true
		return result
	}

	result.Confidence = confidence(ordered, contradictions)

	switch {
	case result.Confidence >= 0.6 && len(contradictions) == 0:
		result.Outcome = OutcomePrefer
	case result.Confidence < 0.6 && len(contradictions) > 0:
		result.Outcome = OutcomeEscalate
	default:
		result.Outcome = OutcomeDefer
	}

	if result.Outcome == OutcomeDefer || result.Confidence < 0.6 {
		result.Advisory = true
	}
	return result
}

// applyIntentVeto finds every pair (H, L) where L currently outranks H,
// intent(L) < intent(H), and L carries no explicit supersedes over H's
// identity, and records L as vetoed. It also flags
// INTENT_PRECEDENCE_VIOLATED whenever such an L scored above H in the
// input order, before demotion. Only candidates that matched the query
// (Score > 0) can act as H.
func applyIntentVeto(ordered []score.Scored) ([]Vetoed, []Contradiction) {
	var vetoed []Vetoed
	var contradictions []Contradiction
	demoted := map[string]bool{}

	for hi := 0; hi < len(ordered); hi++ {
		h := ordered[hi]
		if h.Score <= 0 {
			continue
		}
		for li := 0; li < hi; li++ {
			l := ordered[li]
			if demoted[l.Document.Identity()] {
				continue
			}
			if !l.Document.Intent.Less(h.Document.Intent) {
				continue
			}
			if suppresses(l.Document, h.Document) {
				continue
			}
			vetoed = append(vetoed, Vetoed{
				Path:      l.Document.Path,
				DemotedBy: h.Document.Path,
				Rule:      "INTENT_PRECEDENCE_VETOED",
			})
			contradictions = append(contradictions, Contradiction{
				Code:    "INTENT_PRECEDENCE_VIOLATED",
				Message: l.Document.Path + " outranked " + h.Document.Path + " despite lower intent before arbitration",
			})
			demoted[l.Document.Identity()] = true
		}
	}
	return vetoed, contradictions
}

func suppresses(low, high docindex.Document) bool {
	for _, s := range low.Supersedes {
		if s == high.URI || s == high.Identity() {
			return true
		}
	}
	return false
}

// reorderByVeto moves every vetoed candidate below all non-vetoed
// candidates, preserving the relative order of the non-vetoed ones. The
// vetoed candidates are ordered by intent, highest first, with ties kept
// in their original order.
func reorderByVeto(ordered []score.Scored, vetoed []Vetoed) []score.Scored {
	if len(vetoed) == 0 {
		return ordered
	}
	demotedPaths := map[string]bool{}
	for _, v := range vetoed {
		demotedPaths[v.Path] = true
	}

	var kept, demoted []score.Scored
	for _, c := range ordered {
		if demotedPaths[c.Document.Path] {
			demoted = append(demoted, c)
		} else {
			kept = append(kept, c)
		}
	}
	// Demoted candidates sink to the end, highest intent first; still
	// present so callers (e.g. search with low confidence) can see them,
	// just never outranking the doc that vetoed them, even when that doc
	// was itself vetoed.
	sort.SliceStable(demoted, func(i, j int) bool {
		return demoted[i].Document.Intent.Rank() > demoted[j].Document.Intent.Rank()
	})
	return append(kept, demoted...)
}

// confidence implements spec §4.8's composed confidence formula. k_hits is
// the number of candidates that actually matched the query (Score > 0);
// score.Score returns an entry for every indexed document, so non-matches
// must be filtered out before coverage, margin, or the top-k quality means
// are computed, or a large corpus with few real matches reads as fully
// covered.
func confidence(ordered []score.Scored, contradictions []Contradiction) float64 {
	hits := make([]score.Scored, 0, len(ordered))
	for _, c := range ordered {
		if c.Score > 0 {
			hits = append(hits, c)
		}
	}
	if len(hits) == 0 {
		return 0
	}

	top := hits[0].Score
	margin := 0.0
	if top > 0 {
		second := 0.0
		if len(hits) > 1 {
			second = hits[1].Score
		}
		margin = clamp01((top - second) / top)
	}

	coverage := float64(len(hits)) / 3
	if coverage > 1 {
		coverage = 1
	}

	k := 3
	if len(hits) < k {
		k = len(hits)
	}
	evidenceSum, intentSum := 0.0, 0.0
	for _, c := range hits[:k] {
		evidenceSum += c.Signals.EvidenceMult
		intentSum += c.Signals.IntentMult
	}
	evidenceQuality := evidenceSum / float64(k)
	intentQuality := intentSum / float64(k)

	conflictPenalty := 0.2 * float64(len(contradictions))

	raw := 0.4*margin + 0.2*coverage + 0.2*evidenceQuality + 0.2*intentQuality - conflictPenalty
	return clamp01(raw)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
