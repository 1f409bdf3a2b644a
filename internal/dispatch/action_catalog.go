package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/sgx-labs/canon/internal/docindex"
)

type catalogAction struct{}

func (a *catalogAction) Name() string { return "catalog" }

func (a *catalogAction) ValidateInputs(req Request) *ActionError { return nil }

// CatalogEntry is one menu entry: no body, no quotes, per spec §4.10.
type CatalogEntry struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Tags  []string `json:"tags,omitempty"`
	Order int    `json:"order,omitempty"`
}

// CatalogResult groups documents by start_here flag and tag.
type CatalogResult struct {
	StartHere []CatalogEntry            `json:"start_here"`
	ByTag     map[string][]CatalogEntry `json:"by_tag"`
}

func (a *catalogAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	state, err := d.ensurePipeline(ctx, req.CanonURL)
	if err != nil {
		return nil, nil, err
	}

	result := CatalogResult{ByTag: map[string][]CatalogEntry{}}
	for _, doc := range state.index.Documents {
		entry := CatalogEntry{Path: doc.Path, Title: doc.Title, Tags: doc.Tags}
		if doc.Frontmatter["start_here"] == "true" {
			result.StartHere = append(result.StartHere, entry)
		}
		for _, tag := range doc.Tags {
			result.ByTag[tag] = append(result.ByTag[tag], entry)
		}
	}
	sort.Slice(result.StartHere, func(i, j int) bool { return result.StartHere[i].Path < result.StartHere[j].Path })

	return result, state.warnings, nil
}

func (a *catalogAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(CatalogResult)
	if !ok {
		return "catalog built."
	}
	return fmt.Sprintf("Catalog: %d start-here entries across %d tags.", len(r.StartHere), len(r.ByTag))
}

// docsUnderScope filters documents by scope: a substring match over path
// or an exact (case-insensitive) tag match. An empty scope keeps every
// document. It does not filter by authority band; preflight and gate do
// that on its result.
func docsUnderScope(documents []docindex.Document, scope string) []docindex.Document {
	if scope == "" {
		return documents
	}
	var filtered []docindex.Document
	for _, d := range documents {
		if containsAny(toLower(d.Path), toLower(scope)) {
			filtered = append(filtered, d)
			continue
		}
		for _, tag := range d.Tags {
			if toLower(tag) == toLower(scope) {
				filtered = append(filtered, d)
				break
			}
		}
	}
	return filtered
}
