package evidence

import (
	"strings"
	"testing"

	"github.com/sgx-labs/canon/internal/docindex"
)

func TestExtractBasic(t *testing.T) {
	body := "# Overview\n\nIntro text that is not the target heading at all here.\n\n## Requirements\n\nAll services must authenticate every inbound request using a signed token before processing it further.\n"
	doc := docindex.Document{
		Path: "canon/auth.md",
		Body: body,
		Headings: []docindex.Heading{
			{Level: 1, Text: "Overview", StartLine: 0, EndLine: 3},
			{Level: 2, Text: "Requirements", StartLine: 4, EndLine: 6},
		},
	}

	ev, err := Extract(doc, []string{"authenticate", "requirement"}, 25)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ev.Citation, "Requirements") {
		t.Fatalf("expected citation to reference matched heading, got %s", ev.Citation)
	}
	wordCount := len(strings.Fields(ev.Quote))
	if wordCount < minWords || wordCount > maxWords {
		t.Fatalf("expected 8-40 words, got %d: %q", wordCount, ev.Quote)
	}
}

func TestExtractInsufficientText(t *testing.T) {
	doc := docindex.Document{
		Path: "canon/short.md",
		Body: "# Short\n\nToo brief.\n",
		Headings: []docindex.Heading{
			{Level: 1, Text: "Short", StartLine: 0, EndLine: 2},
		},
	}
	_, err := Extract(doc, []string{"short"}, 25)
	if err == nil {
		t.Fatal("expected error for insufficient text")
	}
	eerr, ok := err.(*Error)
	if !ok || eerr.Code != ErrInsufficientText {
		t.Fatalf("expected INSUFFICIENT_TEXT, got %v", err)
	}
}

func TestBestHeadingTieBreaksToLevel2(t *testing.T) {
	headings := []docindex.Heading{
		{Level: 1, Text: "Intro", StartLine: 0, EndLine: 1},
		{Level: 2, Text: "Details", StartLine: 2, EndLine: 3},
	}
	h := bestHeading(headings, []string{"nomatch"})
	if h.Text != "Details" {
		t.Fatalf("expected level-2 heading tie-break, got %s", h.Text)
	}
}
