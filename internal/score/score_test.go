package score

import (
	"testing"

	"github.com/sgx-labs/canon/internal/docindex"
)

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("The Quick fox is a go")
	for _, tok := range tokens {
		if tok == "the" || tok == "is" || tok == "a" {
			t.Fatalf("expected stop word dropped, found %q in %v", tok, tokens)
		}
	}
}

func TestStemSuffixRules(t *testing.T) {
	cases := map[string]string{
		"policies":   "policy",
		"applied":    "apply",
		"processing": "process",
	}
	for in, want := range cases {
		if got := stem(in); got != want {
			t.Errorf("stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScoreRanksAuthorityAndIntentHigher(t *testing.T) {
	governing := docindex.Document{
		Path: "canon/auth.md", Origin: docindex.OriginLocal,
		Title: "Authentication Policy", AuthorityBand: docindex.BandGoverning,
		Intent: docindex.IntentPromoted, Evidence: docindex.EvidenceStrong,
		ContentPreview: "authentication policy requires token validation",
	}
	workaround := docindex.Document{
		Path: "odd/auth-hack.md", Origin: docindex.OriginLocal,
		Title: "Authentication Workaround", AuthorityBand: docindex.BandNonGoverning,
		Intent: docindex.IntentWorkaround, Evidence: docindex.EvidenceNone,
		ContentPreview: "authentication workaround for local testing",
	}

	results := Score([]docindex.Document{workaround, governing}, "authentication policy")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.Path != governing.Path {
		t.Fatalf("expected governing doc to rank first, got %s", results[0].Document.Path)
	}
}

func TestScoreEmptyQueryYieldsZeroScores(t *testing.T) {
	docs := []docindex.Document{
		{Path: "a.md", Title: "A", Intent: docindex.IntentOperational, Evidence: docindex.EvidenceMedium, AuthorityBand: docindex.BandOperational},
	}
	results := Score(docs, "")
	if results[0].Score != 0 {
		t.Fatalf("expected zero score for empty query, got %f", results[0].Score)
	}
}
