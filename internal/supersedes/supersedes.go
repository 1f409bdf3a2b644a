// Package supersedes drops baseline documents explicitly overridden by a
// local document's declared supersedes list, per spec §4.6.
package supersedes

import "github.com/sgx-labs/canon/internal/docindex"

// Result is the output of Apply.
type Result struct {
	Filtered    []docindex.Document
	Suppressed  map[string]string // uri -> declaring local path
}

// Apply builds a map from each local document's supersedes entries to its
// own path, then drops any baseline document whose uri appears in that
// map. Local-over-local and baseline-over-baseline supersedes are never
// applied — only a local doc can suppress a baseline doc.
func Apply(documents []docindex.Document) Result {
	suppressedBy := map[string]string{}
	for _, d := range documents {
		if d.Origin != docindex.OriginLocal {
			continue
		}
		for _, superseded := range d.Supersedes {
			suppressedBy[superseded] = d.Path
		}
	}

	result := Result{Suppressed: map[string]string{}}
	for _, d := range documents {
		if d.Origin == docindex.OriginBaseline && d.URI != "" {
			if declaringPath, ok := suppressedBy[d.URI]; ok {
				result.Suppressed[d.URI] = declaringPath
				continue
			}
		}
		result.Filtered = append(result.Filtered, d)
	}
	return result
}
