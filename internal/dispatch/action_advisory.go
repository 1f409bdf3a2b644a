package dispatch

import (
	"context"
	"fmt"

	"github.com/sgx-labs/canon/internal/docindex"
)

// The four epistemic advisory actions ride on catalog/search and apply fixed
// phrase-based heuristics over the input; none of them infer user intent
// beyond matching words against fixed closed tables (spec §4.10).

// --- orient: mode detection against a fixed table of working modes -------

type orientAction struct{}

func (a *orientAction) Name() string { return "orient" }
func (a *orientAction) ValidateInputs(req Request) *ActionError { return nil }

var orientModes = []struct {
	mode    string
	phrases []string
}{
	{"debugging", []string{"bug", "broken", "failing", "error", "crash", "doesn't work"}},
	{"building", []string{"implement", "build", "add feature", "create"}},
	{"reviewing", []string{"review", "pr", "pull request", "feedback on"}},
	{"exploring", []string{"how does", "what is", "understand", "explain"}},
}

// OrientResult names the detected working mode plus the start-here menu.
type OrientResult struct {
	Mode    string         `json:"mode"`
	Menu    []CatalogEntry `json:"menu"`
}

func (a *orientAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	state, err := d.ensurePipeline(ctx, req.CanonURL)
	if err != nil {
		return nil, nil, err
	}

	mode := "exploring"
	lower := toLower(req.Input)
	for _, m := range orientModes {
		if containsAny(lower, m.phrases...) {
			mode = m.mode
			break
		}
	}

	var menu []CatalogEntry
	for _, doc := range state.index.Documents {
		if doc.Frontmatter["start_here"] == "true" {
			menu = append(menu, CatalogEntry{Path: doc.Path, Title: doc.Title, Tags: doc.Tags})
		}
	}

	return OrientResult{Mode: mode, Menu: menu}, state.warnings, nil
}

func (a *orientAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(OrientResult)
	if !ok {
		return "orient completed."
	}
	return fmt.Sprintf("Detected mode: %s. %d start-here documents available.", r.Mode, len(r.Menu))
}

// --- challenge: tension surfacing between candidate documents ------------

type challengeAction struct{}

func (a *challengeAction) Name() string { return "challenge" }
func (a *challengeAction) ValidateInputs(req Request) *ActionError { return nil }

// Tension is a pair of documents whose intent bands disagree on a topic the
// caller is searching for.
type Tension struct {
	Higher docindex.Document `json:"higher"`
	Lower  docindex.Document `json:"lower"`
	Reason string            `json:"reason"`
}

// ChallengeResult surfaces tensions found via search for req.Input, among
// the first three arbitrated candidates that matched the query.
type ChallengeResult struct {
	Tensions []Tension `json:"tensions"`
}

func (a *challengeAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	raw, warnings, err := (&searchAction{}).Run(ctx, d, req)
	if err != nil {
		return nil, nil, err
	}
	sr, ok := raw.(SearchResult)
	if !ok || len(sr.Arbitration.Candidates) < 2 {
		return ChallengeResult{}, warnings, nil
	}

	var tensions []Tension
	candidates := sr.Arbitration.Candidates
	n := 0
	for n < len(candidates) && n < 3 && candidates[n].Score > 0 {
		n++
	}
	candidates = candidates[:n]
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			hi, lo := candidates[i].Document, candidates[j].Document
			if hi.Intent.Rank() != lo.Intent.Rank() {
				tensions = append(tensions, Tension{
					Higher: hi,
					Lower:  lo,
					Reason: fmt.Sprintf("%s is intent=%s, %s is intent=%s; they rank both relevant to this query", hi.Path, hi.Intent, lo.Path, lo.Intent),
				})
			}
		}
	}

	return ChallengeResult{Tensions: tensions}, warnings, nil
}

func (a *challengeAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(ChallengeResult)
	if !ok {
		return "challenge completed."
	}
	if len(r.Tensions) == 0 {
		return "No intent tensions found among top candidates."
	}
	return fmt.Sprintf("Found %d intent tensions among top candidates.", len(r.Tensions))
}

// --- gate: prerequisite checks before a caller proceeds -------------------

type gateAction struct{}

func (a *gateAction) Name() string { return "gate" }
func (a *gateAction) ValidateInputs(req Request) *ActionError { return nil }

// GateResult reports which fixed prerequisites are satisfied for a scope.
type GateResult struct {
	Passed     bool     `json:"passed"`
	Satisfied  []string `json:"satisfied"`
	Unsatisfied []string `json:"unsatisfied"`
}

func (a *gateAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	state, err := d.ensurePipeline(ctx, req.CanonURL)
	if err != nil {
		return nil, nil, err
	}

	scoped := docsUnderScope(state.index.Documents, req.Input)

	hasConstraints := false
	hasDoD := false
	for _, doc := range scoped {
		if doc.AuthorityBand == docindex.BandGoverning {
			hasConstraints = true
		}
		if isDefinitionOfDone(doc) {
			hasDoD = true
		}
	}

	var satisfied, unsatisfied []string
	if hasConstraints {
		satisfied = append(satisfied, "governing constraints identified")
	} else {
		unsatisfied = append(unsatisfied, "no governing-band document found for this scope")
	}
	if hasDoD {
		satisfied = append(satisfied, "definition-of-done identified")
	} else {
		unsatisfied = append(unsatisfied, "no definition-of-done document found for this scope")
	}

	return GateResult{Passed: len(unsatisfied) == 0, Satisfied: satisfied, Unsatisfied: unsatisfied}, state.warnings, nil
}

func (a *gateAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(GateResult)
	if !ok {
		return "gate completed."
	}
	if r.Passed {
		return "Gate passed: all fixed prerequisites satisfied."
	}
	return fmt.Sprintf("Gate not passed: %d unsatisfied prerequisite(s).", len(r.Unsatisfied))
}

// --- encode: decision-artifact templates ----------------------------------

type encodeAction struct{}

func (a *encodeAction) Name() string { return "encode" }

func (a *encodeAction) ValidateInputs(req Request) *ActionError {
	if req.Input == "" {
		return &ActionError{Code: KindInputRequired, Message: "encode requires a decision summary to template"}
	}
	return nil
}

// EncodeResult is a filled decision-artifact template, ready to be saved as
// a new operational-band note by the caller.
type EncodeResult struct {
	Template string `json:"template"`
}

const decisionTemplate = `---
title: %q
intent: operational
authority_band: operational
evidence: weak
---

# %s

## Decision

%s

## Rationale



## Alternatives considered


`

func (a *encodeAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	filled := fmt.Sprintf(decisionTemplate, req.Input, req.Input, req.Input)
	return EncodeResult{Template: filled}, nil, nil
}

func (a *encodeAction) RenderAssistantText(result interface{}) string {
	return "Decision template generated; fill in rationale and alternatives before saving."
}
