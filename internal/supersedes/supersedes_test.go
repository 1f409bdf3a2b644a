package supersedes

import (
	"testing"

	"github.com/sgx-labs/canon/internal/docindex"
)

func TestApplyDropsSupersededBaseline(t *testing.T) {
	docs := []docindex.Document{
		{Path: "canon/new.md", Origin: docindex.OriginLocal, Supersedes: []string{"k-scheme://canon/old"}},
		{Path: "canon/old.md", Origin: docindex.OriginBaseline, URI: "k-scheme://canon/old"},
		{Path: "canon/unrelated.md", Origin: docindex.OriginBaseline, URI: "k-scheme://canon/unrelated"},
	}
	result := Apply(docs)
	if len(result.Filtered) != 2 {
		t.Fatalf("expected 2 remaining documents, got %d", len(result.Filtered))
	}
	for _, d := range result.Filtered {
		if d.Path == "canon/old.md" {
			t.Fatal("expected superseded baseline doc to be dropped")
		}
	}
	if result.Suppressed["k-scheme://canon/old"] != "canon/new.md" {
		t.Fatalf("expected suppression recorded against declaring path, got %+v", result.Suppressed)
	}
}

func TestApplyNeverAppliesLocalOverLocal(t *testing.T) {
	docs := []docindex.Document{
		{Path: "canon/new.md", Origin: docindex.OriginLocal, Supersedes: []string{"k-scheme://canon/old"}},
		{Path: "canon/old.md", Origin: docindex.OriginLocal, URI: "k-scheme://canon/old"},
	}
	result := Apply(docs)
	if len(result.Filtered) != 2 {
		t.Fatalf("expected both local docs retained, got %d", len(result.Filtered))
	}
	if len(result.Suppressed) != 0 {
		t.Fatalf("expected no suppressions for local-over-local, got %+v", result.Suppressed)
	}
}
