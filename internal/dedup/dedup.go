// Package dedup collapses duplicate documents across local and baseline
// corpora by identity, per spec §4.5.
package dedup

import (
	"sort"

	"github.com/sgx-labs/canon/internal/docindex"
)

// Severity classifies a warning's urgency.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityHigh Severity = "high"
)

// Warning is an informational or high-severity dedup finding.
type Warning struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Ref identifies one document by its path and origin.
type Ref struct {
	Path   string          `json:"path"`
	Origin docindex.Origin `json:"origin"`
}

// CollapsedGroup records one identity group that collapsed to a single kept
// document.
type CollapsedGroup struct {
	Identity  string `json:"identity"`
	Chosen    Ref    `json:"chosen"`
	Collapsed []Ref  `json:"collapsed"`
}

// Result is the output of Dedup.
type Result struct {
	Kept            []docindex.Document `json:"kept"`
	CollapsedGroups []CollapsedGroup    `json:"collapsed_groups"`
	Warnings        []Warning           `json:"warnings"`
	// URICollisions lists identities where same-uri documents disagree on
	// content_hash; both members remain in Kept and arbitration must force
	// escalate when this is non-empty.
	URICollisions []string `json:"uri_collisions"`
}

// Dedup groups documents by identity (uri if present, else
// path#content_hash) and collapses each multi-member group to one kept
// document, preferring local over baseline, then higher intent, then
// shorter path.
func Dedup(documents []docindex.Document) Result {
	byIdentity := map[string][]docindex.Document{}
	var order []string
	for _, d := range documents {
		id := d.Identity()
		if _, seen := byIdentity[id]; !seen {
			order = append(order, id)
		}
		byIdentity[id] = append(byIdentity[id], d)
	}

	var result Result
	collapsedCount := 0
	candidateCount := len(documents)

	for _, id := range order {
		group := byIdentity[id]
		if len(group) == 1 {
			result.Kept = append(result.Kept, group[0])
			continue
		}

		if uriCollision(group) {
			result.URICollisions = append(result.URICollisions, id)
			result.Warnings = append(result.Warnings, Warning{
				Code:     "URI_COLLISION",
				Severity: SeverityHigh,
				Message:  "documents share a uri but differ in content_hash: " + id,
			})
			result.Kept = append(result.Kept, group...)
			continue
		}

		if drift := uriDrift(group); drift != nil {
			result.Warnings = append(result.Warnings, *drift)
		}

		chosen, rest := choose(group)
		result.Kept = append(result.Kept, chosen)
		collapsedCount += len(rest)

		cg := CollapsedGroup{
			Identity: id,
			Chosen:   Ref{Path: chosen.Path, Origin: chosen.Origin},
		}
		for _, d := range rest {
			cg.Collapsed = append(cg.Collapsed, Ref{Path: d.Path, Origin: d.Origin})
		}
		result.CollapsedGroups = append(result.CollapsedGroups, cg)
	}

	if candidateCount > 0 && float64(collapsedCount)/float64(candidateCount) > 0.25 {
		result.Warnings = append(result.Warnings, Warning{
			Code:     "EXCESSIVE_DUPLICATES",
			Severity: SeverityInfo,
			Message:  "more than 25% of candidates collapsed during dedup",
		})
	}

	return result
}

// uriCollision reports whether two documents of the SAME origin share a uri
// but disagree on content_hash — e.g. two local docs or two baseline docs
// both claiming the same uri. This is genuinely ambiguous: origin
// preference cannot break the tie, so arbitration must escalate. Cross-
// origin disagreement (local vs baseline) is handled separately by
// uriDrift, where the existing local-over-baseline preference already
// resolves which copy is canonical.
func uriCollision(group []docindex.Document) bool {
	if group[0].URI == "" {
		return false
	}
	byOrigin := map[docindex.Origin]string{}
	for _, d := range group {
		if prior, ok := byOrigin[d.Origin]; ok && prior != d.ContentHash {
			return true
		}
		byOrigin[d.Origin] = d.ContentHash
	}
	return false
}

// uriDrift detects the normal-versioning case: a local and baseline doc
// share a uri but differ in content_hash. Kept = local, per the existing
// origin-preference rule in choose(); this just records that the
// divergence happened and how large it is.
func uriDrift(group []docindex.Document) *Warning {
	if group[0].URI == "" {
		return nil
	}
	var local, base *docindex.Document
	for i := range group {
		d := &group[i]
		if d.Origin == docindex.OriginLocal && local == nil {
			local = d
		}
		if d.Origin == docindex.OriginBaseline && base == nil {
			base = d
		}
	}
	if local == nil || base == nil || local.ContentHash == base.ContentHash {
		return nil
	}

	delta := len(local.Body) - len(base.Body)
	if delta < 0 {
		delta = -delta
	}
	magnitude := "small"
	switch {
	case delta > 2000:
		magnitude = "large"
	case delta > 500:
		magnitude = "medium"
	}

	msg := "local and baseline copies of " + local.URI + " have drifted (" + magnitude + ")"
	if local.AuthorityBand == docindex.BandGoverning {
		msg += " — governing document"
	}
	return &Warning{Code: "URI_DRIFT", Severity: SeverityInfo, Message: msg}
}

// choose picks the kept document from a (non-colliding) identity group:
// local over baseline, then higher intent, then shorter path. It returns
// the chosen document and the remaining (collapsed) ones.
func choose(group []docindex.Document) (docindex.Document, []docindex.Document) {
	sorted := make([]docindex.Document, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.Origin == docindex.OriginLocal) != (b.Origin == docindex.OriginLocal) {
			return a.Origin == docindex.OriginLocal
		}
		if a.Intent.Rank() != b.Intent.Rank() {
			return a.Intent.Rank() > b.Intent.Rank()
		}
		return len(a.Path) < len(b.Path)
	})
	return sorted[0], sorted[1:]
}
