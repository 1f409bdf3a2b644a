// Package docfetch resolves a symbolic ref to file bytes within a specific
// corpus revision (local repo root, or a baseline cache commit directory).
package docfetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sgx-labs/canon/internal/baseline"
	"github.com/sgx-labs/canon/internal/ref"
)

// ErrorCode is the closed set of doc-fetch failures (spec §4.3).
type ErrorCode string

const (
	ErrInvalidRef         ErrorCode = "INVALID_REF"
	ErrCanonTargetUnknown ErrorCode = "CANON_TARGET_UNKNOWN"
	ErrDocNotFound        ErrorCode = "DOC_NOT_FOUND"
	ErrFetchFailed        ErrorCode = "FETCH_FAILED"
)

// Error reports why getDocByRef failed.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Doc is the result of resolving a symbolic ref to bytes.
type Doc struct {
	Content      []byte
	ContentHash  string
	CanonCommit  string // empty for local-scheme refs
}

// Options parameterizes a single fetch.
type Options struct {
	LocalRoot    string
	BaselineURL  string
	BaselineBranch string
}

// Fetcher resolves refs against a local repo root and a baseline cache.
type Fetcher struct {
	Cache *baseline.Cache
}

// New creates a Fetcher backed by the given baseline cache.
func New(cache *baseline.Cache) *Fetcher {
	return &Fetcher{Cache: cache}
}

// GetDocByRef implements spec §4.3's getDocByRef contract.
func (f *Fetcher) GetDocByRef(ctx context.Context, raw string, opts Options) (Doc, error) {
	r, err := ref.Normalize(raw)
	if err != nil {
		rerr, _ := err.(*ref.Error)
		code := ErrInvalidRef
		if rerr != nil && rerr.Code == ref.ErrTraversal {
			code = ErrInvalidRef // TRAVERSAL_BLOCKED surfaces via the ref error itself upstream
		}
		return Doc{}, &Error{Code: code, Msg: err.Error(), Err: err}
	}

	var corpusRoot, commitID string
	switch r.Scheme {
	case ref.SchemeO:
		result, err := f.Cache.Ensure(ctx, opts.BaselineURL, opts.BaselineBranch, baseline.Options{})
		if err != nil {
			code := ErrFetchFailed
			if berr, ok := err.(*baseline.Error); ok && berr.Code == baseline.ErrNoCacheAvailable {
				code = ErrCanonTargetUnknown
			}
			return Doc{}, &Error{Code: code, Msg: "baseline unavailable", Err: err}
		}
		corpusRoot = result.Root
		commitID = result.CommitID
	case ref.SchemeK:
		corpusRoot = opts.LocalRoot
	default:
		return Doc{}, &Error{Code: ErrInvalidRef, Msg: fmt.Sprintf("unhandled scheme %q", r.Scheme)}
	}

	content, err := readWithinRoot(corpusRoot, r.Path)
	if err != nil {
		return Doc{}, err
	}

	sum := sha256.Sum256(content)
	return Doc{
		Content:     content,
		ContentHash: fmt.Sprintf("%x", sum)[:8],
		CanonCommit: commitID,
	}, nil
}

// readWithinRoot joins path under root, re-asserting the traversal guard
// against root's realpath (spec §4.3 step 2/3), then reads the file,
// retrying with a ".md" suffix if the bare path is missing.
func readWithinRoot(root, path string) ([]byte, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &Error{Code: ErrCanonTargetUnknown, Msg: "corpus root does not exist", Err: err}
	}

	candidate := filepath.Join(realRoot, filepath.FromSlash(path))
	if !withinRoot(realRoot, candidate) {
		return nil, &Error{Code: ErrInvalidRef, Msg: "resolved path escapes corpus root"}
	}

	content, err := os.ReadFile(candidate)
	if err == nil {
		return content, nil
	}
	if !os.IsNotExist(err) {
		return nil, &Error{Code: ErrFetchFailed, Msg: "read failed", Err: err}
	}

	withMD := candidate + ".md"
	content, err = os.ReadFile(withMD)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrDocNotFound, Msg: fmt.Sprintf("no document at %q", path)}
		}
		return nil, &Error{Code: ErrFetchFailed, Msg: "read failed", Err: err}
	}
	return content, nil
}

// withinRoot reports whether candidate lies lexically under realRoot. It
// compares paths only; symlinks below realRoot are not resolved.
func withinRoot(realRoot, candidate string) bool {
	rel, err := filepath.Rel(realRoot, candidate)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}
