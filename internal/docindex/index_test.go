package docindex

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildIndexBasic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "canon/auth.md", "---\ntitle: Auth Policy\nintent: promoted\n---\n# Auth Policy\n\nBody text here.\n\n## Details\n\nMore text.\n")
	writeFile(t, root, "docs/howto.md", "# How To\n\nSteps here.\n")

	idx, err := BuildIndex(root, "", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Stats.Total != 2 {
		t.Fatalf("expected 2 documents, got %d", idx.Stats.Total)
	}
	if idx.Version != SchemaVersion {
		t.Fatalf("expected version %s, got %s", SchemaVersion, idx.Version)
	}

	var auth *Document
	for i := range idx.Documents {
		if idx.Documents[i].Path == "canon/auth.md" {
			auth = &idx.Documents[i]
		}
	}
	if auth == nil {
		t.Fatal("expected canon/auth.md in index")
	}
	if auth.Intent != IntentPromoted {
		t.Fatalf("expected promoted intent from frontmatter override, got %s", auth.Intent)
	}
	if auth.AuthorityBand != BandGoverning {
		t.Fatalf("expected governing band, got %s", auth.AuthorityBand)
	}
	if len(auth.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(auth.Headings))
	}
	for i, h := range auth.Headings {
		if h.StartLine > h.EndLine {
			t.Fatalf("heading %d has start_line > end_line: %+v", i, h)
		}
	}
}

func TestBuildIndexNoindexSentinel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "canon/apocrypha/secret.md", "# Secret\n\nShould not be indexed.\n")
	writeFile(t, root, "canon/apocrypha/.noindex", "")
	writeFile(t, root, "canon/visible.md", "# Visible\n\nShould be indexed.\n")

	idx, err := BuildIndex(root, "", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Stats.Total != 1 {
		t.Fatalf("expected 1 indexed document, got %d", idx.Stats.Total)
	}
	if idx.Stats.ExcludedByNoindex != 1 {
		t.Fatalf("expected 1 excluded-by-noindex, got %d", idx.Stats.ExcludedByNoindex)
	}
}

func TestBuildIndexPrivatePrefix(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/_private/notes.md", "# Notes\n\nPrivate.\n")
	writeFile(t, root, "docs/public.md", "# Public\n\nVisible.\n")

	idx, err := BuildIndex(root, "", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if idx.Stats.Total != 1 {
		t.Fatalf("expected 1 indexed document, got %d", idx.Stats.Total)
	}
}

func TestContentHashStableUnderWhitespace(t *testing.T) {
	h1 := contentHash("Hello   world\n\nfoo")
	h2 := contentHash("Hello world foo")
	if h1 != h2 {
		t.Fatalf("expected equal hashes for whitespace-normalized equivalents, got %s != %s", h1, h2)
	}
}

func TestStale(t *testing.T) {
	idx := &Index{Version: SchemaVersion, HasBaseline: true}
	if idx.Stale(true) {
		t.Fatal("expected fresh index to not be stale")
	}
	if !idx.Stale(false) {
		t.Fatal("expected baseline-availability mismatch to mark stale")
	}
	idx.Version = "0.0.1"
	if !idx.Stale(true) {
		t.Fatal("expected version mismatch to mark stale")
	}
}
