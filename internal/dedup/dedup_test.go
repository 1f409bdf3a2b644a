package dedup

import (
	"testing"

	"github.com/sgx-labs/canon/internal/docindex"
)

func doc(path string, origin docindex.Origin, uri, hash string, intent docindex.Intent) docindex.Document {
	return docindex.Document{Path: path, Origin: origin, URI: uri, ContentHash: hash, Intent: intent}
}

func TestDedupPrefersLocalOverBaseline(t *testing.T) {
	docs := []docindex.Document{
		doc("a.md", docindex.OriginBaseline, "k-scheme://a", "h1", docindex.IntentOperational),
		doc("a.md", docindex.OriginLocal, "k-scheme://a", "h2", docindex.IntentOperational),
	}
	result := Dedup(docs)
	if len(result.Kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(result.Kept))
	}
	if result.Kept[0].Origin != docindex.OriginLocal {
		t.Fatalf("expected local to win, got %s", result.Kept[0].Origin)
	}
	if len(result.CollapsedGroups) != 1 {
		t.Fatalf("expected 1 collapsed group, got %d", len(result.CollapsedGroups))
	}
}

func TestDedupURICollisionSameOrigin(t *testing.T) {
	docs := []docindex.Document{
		doc("a.md", docindex.OriginLocal, "k-scheme://a", "h1", docindex.IntentOperational),
		doc("b.md", docindex.OriginLocal, "k-scheme://a", "h2", docindex.IntentOperational),
	}
	result := Dedup(docs)
	if len(result.Kept) != 2 {
		t.Fatalf("expected both candidates kept on collision, got %d", len(result.Kept))
	}
	if len(result.URICollisions) != 1 {
		t.Fatalf("expected 1 uri collision, got %d", len(result.URICollisions))
	}
	foundWarning := false
	for _, w := range result.Warnings {
		if w.Code == "URI_COLLISION" {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatal("expected URI_COLLISION warning")
	}
}

func TestDedupURIDriftCrossOrigin(t *testing.T) {
	local := doc("a.md", docindex.OriginLocal, "k-scheme://a", "h1", docindex.IntentOperational)
	local.Body = "short"
	base := doc("a.md", docindex.OriginBaseline, "k-scheme://a", "h2", docindex.IntentOperational)
	base.Body = "different body entirely"

	result := Dedup([]docindex.Document{local, base})
	if len(result.Kept) != 1 || result.Kept[0].Origin != docindex.OriginLocal {
		t.Fatalf("expected local kept, got %+v", result.Kept)
	}
	foundDrift := false
	for _, w := range result.Warnings {
		if w.Code == "URI_DRIFT" {
			foundDrift = true
		}
	}
	if !foundDrift {
		t.Fatal("expected URI_DRIFT warning")
	}
}

func TestDedupPathHashIdentityNoUri(t *testing.T) {
	docs := []docindex.Document{
		doc("a.md", docindex.OriginLocal, "", "h1", docindex.IntentOperational),
		doc("a.md", docindex.OriginBaseline, "", "h1", docindex.IntentOperational),
	}
	// Same path, same hash, no uri: identity is path#content_hash for both,
	// so they collapse like any other duplicate pair.
	result := Dedup(docs)
	if len(result.Kept) != 1 {
		t.Fatalf("expected 1 kept, got %d", len(result.Kept))
	}
}

func TestDedupExcessiveDuplicatesWarning(t *testing.T) {
	var docs []docindex.Document
	for i := 0; i < 8; i++ {
		docs = append(docs, doc("same.md", docindex.OriginLocal, "k-scheme://same", "h", docindex.IntentOperational))
		docs = append(docs, doc("same.md", docindex.OriginBaseline, "k-scheme://same", "h", docindex.IntentOperational))
	}
	result := Dedup(docs)
	found := false
	for _, w := range result.Warnings {
		if w.Code == "EXCESSIVE_DUPLICATES" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected EXCESSIVE_DUPLICATES warning")
	}
}
