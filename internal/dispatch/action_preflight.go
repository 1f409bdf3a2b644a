package dispatch

import (
	"context"
	"fmt"

	"github.com/sgx-labs/canon/internal/docindex"
)

type preflightAction struct{}

func (a *preflightAction) Name() string { return "preflight" }

func (a *preflightAction) ValidateInputs(req Request) *ActionError { return nil }

// PreflightResult is a light catalog plus constraints/pitfalls/definition-
// of-done pointer for a user-provided scope.
type PreflightResult struct {
	Menu        CatalogResult          `json:"menu"`
	Constraints []CatalogEntry         `json:"constraints"`
	Pitfalls    []CatalogEntry         `json:"pitfalls"`
	DoD         *CatalogEntry          `json:"definition_of_done,omitempty"`
}

func (a *preflightAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	state, err := d.ensurePipeline(ctx, req.CanonURL)
	if err != nil {
		return nil, nil, err
	}

	scoped := docsUnderScope(state.index.Documents, req.Input)

	menu := CatalogResult{ByTag: map[string][]CatalogEntry{}}
	var constraints, pitfalls []CatalogEntry
	var dod *CatalogEntry

	for _, doc := range scoped {
		entry := CatalogEntry{Path: doc.Path, Title: doc.Title, Tags: doc.Tags}
		for _, tag := range doc.Tags {
			menu.ByTag[tag] = append(menu.ByTag[tag], entry)
		}
		if doc.AuthorityBand == docindex.BandGoverning {
			constraints = append(constraints, entry)
		}
		if doc.AuthorityBand == docindex.BandOperational {
			pitfalls = append(pitfalls, entry)
		}
		if dod == nil && isDefinitionOfDone(doc) {
			e := entry
			dod = &e
		}
	}

	return PreflightResult{Menu: menu, Constraints: constraints, Pitfalls: pitfalls, DoD: dod}, state.warnings, nil
}

func isDefinitionOfDone(doc docindex.Document) bool {
	if containsAny(toLower(doc.Title), "definition of done", "done criteria") {
		return true
	}
	for _, tag := range doc.Tags {
		if toLower(tag) == "definition-of-done" {
			return true
		}
	}
	return false
}

func (a *preflightAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(PreflightResult)
	if !ok {
		return "preflight completed."
	}
	dodNote := "no definition-of-done document identified"
	if r.DoD != nil {
		dodNote = "definition-of-done: " + r.DoD.Path
	}
	return fmt.Sprintf("Preflight: %d constraints, %d pitfalls; %s.", len(r.Constraints), len(r.Pitfalls), dodNote)
}
