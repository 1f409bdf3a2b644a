package docfetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sgx-labs/canon/internal/baseline"
)

func TestGetDocByRefLocal(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "canon"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "canon", "auth.md"), []byte("# Auth\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := New(baseline.New(t.TempDir()))
	doc, err := f.GetDocByRef(context.Background(), "k-scheme://canon/auth", Options{LocalRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	if string(doc.Content) != "# Auth\n" {
		t.Fatalf("unexpected content: %q", doc.Content)
	}
	if doc.ContentHash == "" {
		t.Fatal("expected non-empty content hash")
	}
}

func TestGetDocByRefMissingAppendsMD(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "auth.md"), []byte("# Auth\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := New(baseline.New(t.TempDir()))
	doc, err := f.GetDocByRef(context.Background(), "k-scheme://auth", Options{LocalRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	if string(doc.Content) != "# Auth\n" {
		t.Fatalf("unexpected content: %q", doc.Content)
	}
}

func TestGetDocByRefNotFound(t *testing.T) {
	root := t.TempDir()
	f := New(baseline.New(t.TempDir()))
	_, err := f.GetDocByRef(context.Background(), "k-scheme://missing", Options{LocalRoot: root})
	if err == nil {
		t.Fatal("expected error")
	}
	derr, ok := err.(*Error)
	if !ok || derr.Code != ErrDocNotFound {
		t.Fatalf("expected DOC_NOT_FOUND, got %v", err)
	}
}

func TestGetDocByRefTraversalRejected(t *testing.T) {
	root := t.TempDir()
	f := New(baseline.New(t.TempDir()))
	_, err := f.GetDocByRef(context.Background(), "k-scheme://../../etc/passwd", Options{LocalRoot: root})
	if err == nil {
		t.Fatal("expected error")
	}
	derr, ok := err.(*Error)
	if !ok || derr.Code != ErrInvalidRef {
		t.Fatalf("expected INVALID_REF, got %v", err)
	}
}

func TestGetDocByRefInvalidRef(t *testing.T) {
	root := t.TempDir()
	f := New(baseline.New(t.TempDir()))
	_, err := f.GetDocByRef(context.Background(), "not-a-ref", Options{LocalRoot: root})
	if err == nil {
		t.Fatal("expected error")
	}
	derr, ok := err.(*Error)
	if !ok || derr.Code != ErrInvalidRef {
		t.Fatalf("expected INVALID_REF, got %v", err)
	}
}
