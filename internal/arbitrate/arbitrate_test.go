package arbitrate

import (
	"testing"

	"github.com/sgx-labs/canon/internal/dedup"
	"github.com/sgx-labs/canon/internal/docindex"
	"github.com/sgx-labs/canon/internal/score"
)

func TestIntentVetoDemotesLowerIntent(t *testing.T) {
	high := score.Scored{Document: docindex.Document{Path: "canon/policy.md", Intent: docindex.IntentPromoted, URI: "k-scheme://canon/policy"}, Score: 1.0}
	low := score.Scored{Document: docindex.Document{Path: "odd/hack.md", Intent: docindex.IntentWorkaround}, Score: 5.0}

	result := Arbitrate([]score.Scored{low, high}, dedup.Result{})
	if result.Candidates[0].Document.Path != high.Document.Path {
		t.Fatalf("expected high-intent doc ranked first after veto, got %s", result.Candidates[0].Document.Path)
	}
	if len(result.Vetoed) != 1 || result.Vetoed[0].Path != low.Document.Path {
		t.Fatalf("expected low-intent doc recorded as vetoed, got %+v", result.Vetoed)
	}
}

func TestIntentVetoSkippedWhenSupersedes(t *testing.T) {
	high := score.Scored{Document: docindex.Document{Path: "canon/policy.md", Intent: docindex.IntentPromoted, URI: "k-scheme://canon/policy"}, Score: 1.0}
	low := score.Scored{Document: docindex.Document{Path: "odd/hack.md", Intent: docindex.IntentWorkaround, Supersedes: []string{"k-scheme://canon/policy"}}, Score: 5.0}

	result := Arbitrate([]score.Scored{low, high}, dedup.Result{})
	if result.Candidates[0].Document.Path != low.Document.Path {
		t.Fatalf("expected supersedes to block veto, got %s first", result.Candidates[0].Document.Path)
	}
	if len(result.Vetoed) != 0 {
		t.Fatalf("expected no veto when supersedes present, got %+v", result.Vetoed)
	}
}

func TestURICollisionForcesEscalate(t *testing.T) {
	a := score.Scored{Document: docindex.Document{Path: "a.md", Intent: docindex.IntentOperational}, Score: 1.0}
	b := score.Scored{Document: docindex.Document{Path: "b.md", Intent: docindex.IntentOperational}, Score: 0.9}

	dedupResult := dedup.Result{URICollisions: []string{"k-scheme://x"}}
	result := Arbitrate([]score.Scored{a, b}, dedupResult)
	if result.Outcome != OutcomeEscalate {
		t.Fatalf("expected escalate outcome on uri collision, got %s", result.Outcome)
	}
}

func TestConfidenceClampedToUnitInterval(t *testing.T) {
	a := score.Scored{Document: docindex.Document{Path: "a.md", Intent: docindex.IntentPromoted}, Score: 10.0,
		Signals: score.Signals{EvidenceMult: 1.2, IntentMult: 1.5}}
	result := Arbitrate([]score.Scored{a}, dedup.Result{})
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Fatalf("expected confidence in [0,1], got %f", result.Confidence)
	}
}
