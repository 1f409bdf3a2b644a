package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/sgx-labs/canon/internal/arbitrate"
	"github.com/sgx-labs/canon/internal/dedup"
	"github.com/sgx-labs/canon/internal/evidence"
	"github.com/sgx-labs/canon/internal/score"
	"github.com/sgx-labs/canon/internal/supersedes"
)

type searchAction struct{}

func (a *searchAction) Name() string { return "search" }

func (a *searchAction) ValidateInputs(req Request) *ActionError {
	if strings.TrimSpace(req.Input) == "" {
		return &ActionError{Code: KindInputRequired, Message: "search requires non-empty input"}
	}
	return nil
}

// SearchResult is the machine-readable result of the search action.
type SearchResult struct {
	Status         string              `json:"status"` // FOUND | NO_MATCH
	Arbitration    arbitrate.Result    `json:"arbitration"`
	Evidence       []evidence.Evidence `json:"evidence"`
	DocsConsidered int                 `json:"docs_considered"`
}

func (a *searchAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	state, err := d.ensurePipeline(ctx, req.CanonURL)
	if err != nil {
		return nil, nil, err
	}

	deduped := dedup.Dedup(state.index.Documents)
	superseded := supersedes.Apply(deduped.Kept)
	scored := score.Score(superseded.Filtered, req.Input)
	arb := arbitrate.Arbitrate(scored, deduped)

	status := "NO_MATCH"
	var evidences []evidence.Evidence
	if len(arb.Candidates) > 0 && arb.Candidates[0].Score > 0 {
		status = "FOUND"
		queryTokens := score.Tokenize(req.Input)
		top := arb.Candidates
		if len(top) > 3 {
			top = top[:3]
		}
		for _, c := range top {
			ev, err := evidence.Extract(c.Document, queryTokens, 25)
			if err != nil {
				continue
			}
			evidences = append(evidences, ev)
		}
	}

	result := SearchResult{
		Status:         status,
		Arbitration:    arb,
		Evidence:       evidences,
		DocsConsidered: len(state.index.Documents),
	}
	return result, state.warnings, nil
}

func (a *searchAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(SearchResult)
	if !ok {
		return "search completed."
	}
	if r.Status == "NO_MATCH" {
		return fmt.Sprintf("No matching documents found among %d considered.", r.DocsConsidered)
	}
	top := ""
	if len(r.Arbitration.Candidates) > 0 {
		top = r.Arbitration.Candidates[0].Document.Path
	}
	return fmt.Sprintf("Found %d candidates (top: %s), outcome=%s, confidence=%.2f.",
		len(r.Arbitration.Candidates), top, r.Arbitration.Outcome, r.Arbitration.Confidence)
}
