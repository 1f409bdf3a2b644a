package dispatch

import (
	"context"
	"fmt"

	"github.com/sgx-labs/canon/internal/baseline"
)

type cleanupAction struct{}

func (a *cleanupAction) Name() string { return "cleanup" }

func (a *cleanupAction) ValidateInputs(req Request) *ActionError { return nil }

// CleanupResult reports storage-hygiene outcomes only; cleanup is never
// required for correctness (spec §4.10).
type CleanupResult struct {
	RepoName      string `json:"repo_name"`
	KeptCommit    string `json:"kept_commit"`
	RemovedCount  int    `json:"removed_count"`
}

func (a *cleanupAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	if d.Cache == nil || d.Config.Baseline.URL == "" {
		return CleanupResult{}, nil, nil
	}

	commitID, ok := d.lastResolvedCommit()
	if !ok {
		result, err := d.Cache.Ensure(ctx, d.Config.Baseline.URL, d.Config.Baseline.Branch, baseline.Options{CheckOnly: true})
		if err != nil {
			return nil, nil, &ActionError{Code: KindFetchFailed, Message: "could not resolve current commit for cleanup: " + err.Error()}
		}
		commitID = result.CommitID
	}

	repoName := baseline.RepoName(d.Config.Baseline.URL)
	removed, err := d.Cache.Cleanup(repoName, commitID)
	if err != nil {
		return nil, nil, &ActionError{Code: KindFetchFailed, Message: "cleanup failed: " + err.Error()}
	}

	return CleanupResult{RepoName: repoName, KeptCommit: commitID, RemovedCount: removed}, nil, nil
}

func (a *cleanupAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(CleanupResult)
	if !ok || r.RepoName == "" {
		return "cleanup had nothing to do: no baseline configured."
	}
	return fmt.Sprintf("Removed %d stale cache directories for %s, kept %s.", r.RemovedCount, r.RepoName, r.KeptCommit)
}
