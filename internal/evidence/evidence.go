// Package evidence selects the best-matching heading in a document,
// extracts a clean 8-40 word quote from it, and formats a citation, per
// spec §4.9.
package evidence

import (
	"context"
	"regexp"
	"strings"

	"github.com/mdombrov-33/go-promptguard/detector"

	"github.com/sgx-labs/canon/internal/docindex"
	"github.com/sgx-labs/canon/internal/score"
)

const (
	minWords = 8
	maxWords = 40
)

// Evidence is the result of Extract.
type Evidence struct {
	Quote    string `json:"quote"`
	Citation string `json:"citation"`
}

// ErrorCode is the closed set of evidence-extraction failures.
type ErrorCode string

// ErrInsufficientText is returned when a heading's body slice has fewer
// than minWords words available, so no valid 8-40 word quote can be formed.
const ErrInsufficientText ErrorCode = "INSUFFICIENT_TEXT"

// Error reports why Extract failed.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// normativeKeywords anchor where a quote should start: two words before the
// first occurrence of any of these, so the quote captures the requirement's
// lead-in rather than starting mid-clause.
var normativeKeywords = map[string]bool{
	"must": true, "should": true, "shall": true, "requires": true,
}

var emphasisRE = regexp.MustCompile(`[*_` + "`" + `]+`)
var whitespaceRE = regexp.MustCompile(`\s+`)

// guard is the shared prompt-injection detector applied to quotes pulled
// from untrusted baseline content before they are embedded in
// assistant_text, matching the teacher's hooks.injection.go configuration.
var guard = detector.New(
	detector.WithThreshold(0.6),
	detector.WithAllDetectors(),
	detector.WithMaxInputLength(2000),
)

// Extract selects the best heading in doc by matching queryTokens against
// heading text, slices the body to that heading's line range, cleans it,
// and extracts an 8-40 word quote anchored near a normative keyword when
// present.
func Extract(doc docindex.Document, queryTokens []string, maxWords int) (Evidence, error) {
	if maxWords <= 0 {
		maxWords = 25
	}

	h := bestHeading(doc.Headings, queryTokens)
	bodyLines := strings.Split(doc.Body, "\n")
	slice := sliceLines(bodyLines, h)
	cleaned := clean(slice)

	words := strings.Fields(cleaned)
	if len(words) < minWords {
		return Evidence{}, &Error{Code: ErrInsufficientText, Msg: "fewer than 8 words available in selected heading region"}
	}

	start := normativeAnchor(words)
	end := start + maxWords
	if end > len(words) {
		end = len(words)
	}
	if end-start < minWords {
		start = 0
		end = minWords
		if end > len(words) {
			end = len(words)
		}
	}

	quote := strings.Join(words[start:end], " ")
	quote = sanitize(quote)

	return Evidence{
		Quote:    quote,
		Citation: doc.Path + "#" + h.Text,
	}, nil
}

// bestHeading matches query tokens against heading text, tie-breaking to
// the first level-2 heading, else the first heading overall.
func bestHeading(headings []docindex.Heading, queryTokens []string) docindex.Heading {
	if len(headings) == 0 {
		return docindex.Heading{}
	}

	best := -1
	bestScore := -1
	for i, h := range headings {
		matchScore := matchCount(h.Text, queryTokens)
		if matchScore > bestScore {
			bestScore = matchScore
			best = i
		}
	}
	if bestScore > 0 {
		return headings[best]
	}

	for _, h := range headings {
		if h.Level == 2 {
			return h
		}
	}
	return headings[0]
}

func matchCount(headingText string, queryTokens []string) int {
	headingTokens := score.Tokenize(headingText)
	set := map[string]bool{}
	for _, t := range headingTokens {
		set[t] = true
	}
	count := 0
	for _, qt := range queryTokens {
		if set[qt] {
			count++
		}
	}
	return count
}

func sliceLines(bodyLines []string, h docindex.Heading) string {
	start, end := h.StartLine, h.EndLine
	if start < 0 {
		start = 0
	}
	if end >= len(bodyLines) {
		end = len(bodyLines) - 1
	}
	if start > end || start >= len(bodyLines) {
		return ""
	}
	return strings.Join(bodyLines[start:end+1], "\n")
}

func clean(s string) string {
	s = emphasisRE.ReplaceAllString(s, "")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// normativeAnchor returns the start index, two words before the first
// normative keyword, or 0 if none is present.
func normativeAnchor(words []string) int {
	for i, w := range words {
		if normativeKeywords[strings.ToLower(strings.Trim(w, ".,;:"))] {
			anchor := i - 2
			if anchor < 0 {
				anchor = 0
			}
			return anchor
		}
	}
	return 0
}

// sanitize passes untrusted (possibly baseline-origin) text through the
// prompt-injection detector before it is allowed into assistant_text,
// neutralizing it if flagged rather than dropping it outright — the
// arbitration record already carries the full candidate list, so a
// neutralized quote still lets a caller consult the source document
// directly via the citation.
func sanitize(quote string) string {
	if quote == "" {
		return quote
	}
	result := guard.Detect(context.Background(), quote)
	if result.Safe {
		return quote
	}
	return "[quote withheld: flagged as potential prompt injection by source content]"
}
