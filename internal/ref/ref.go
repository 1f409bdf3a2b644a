// Package ref normalizes and validates symbolic document identifiers of the
// form scheme://path, rejecting path traversal and unknown schemes.
package ref

import (
	"fmt"
	"strings"
)

// Scheme identifies which corpus a Ref addresses.
type Scheme string

const (
	// SchemeK addresses the local corpus root ("k" for the caller's own repo).
	SchemeK Scheme = "k-scheme"
	// SchemeO addresses the remote baseline corpus ("o" for the outside canon).
	SchemeO Scheme = "o-scheme"
)

// schemeNames maps the literal prefix text accepted in a raw ref to a Scheme.
var schemeNames = map[string]Scheme{
	"k-scheme": SchemeK,
	"o-scheme": SchemeO,
}

// Ref is a normalized symbolic document identifier.
type Ref struct {
	Scheme Scheme
	Path   string // normalized: no .md suffix, no repeated or trailing slash, no ".." segments
}

// String renders the ref back to scheme://path form.
func (r Ref) String() string {
	return string(r.Scheme) + "://" + r.Path
}

// ErrorCode is the closed set of ref-normalization failures.
type ErrorCode string

const (
	ErrInvalid         ErrorCode = "INVALID_REF"
	ErrTraversal       ErrorCode = "TRAVERSAL_BLOCKED"
)

// Error reports why a raw ref failed normalization.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &Error{Code: ErrInvalid, Msg: fmt.Sprintf(format, args...)}
}

func traversal(raw string) error {
	return &Error{Code: ErrTraversal, Msg: fmt.Sprintf("ref %q contains a traversal segment", raw)}
}

// Normalize parses and canonicalizes a raw symbolic ref. It is deterministic
// and performs no I/O.
//
// Steps, in order: verify scheme://path shape; lowercase the scheme;
// collapse repeated slashes; strip trailing ".md" suffixes and trailing
// slashes until neither remains; reject empty paths; reject ".." segments
// (checked after collapsing, so circuitously-encoded traversal like
// "a//../../b" is still caught).
func Normalize(raw string) (Ref, error) {
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return Ref{}, invalid("ref %q is missing a scheme", raw)
	}
	schemeText := strings.ToLower(raw[:idx])
	path := raw[idx+len("://"):]

	scheme, ok := schemeNames[schemeText]
	if !ok {
		return Ref{}, invalid("ref %q uses an unrecognized scheme %q", raw, schemeText)
	}

	path = collapseSlashes(path)
	for {
		trimmed := strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".md")
		if trimmed == path {
			break
		}
		path = trimmed
	}

	if path == "" {
		return Ref{}, invalid("ref %q has an empty path", raw)
	}
	if hasDotDotSegment(path) {
		return Ref{}, traversal(raw)
	}

	return Ref{Scheme: scheme, Path: path}, nil
}

// collapseSlashes replaces runs of '/' with a single '/'.
func collapseSlashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSlash := false
	for _, r := range s {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// hasDotDotSegment reports whether any "/"-delimited segment of path is "..".
func hasDotDotSegment(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
