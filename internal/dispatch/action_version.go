package dispatch

import (
	"context"
	"fmt"
)

type versionAction struct{}

func (a *versionAction) Name() string { return "version" }

func (a *versionAction) ValidateInputs(req Request) *ActionError { return nil }

// VersionResult reports the tool's own version and the index schema version
// this build writes and accepts (docindex.SchemaVersion), plus the resolved
// baseline commit id if one has been memoized this process.
type VersionResult struct {
	ToolVersion    string `json:"tool_version"`
	SchemaVersion  string `json:"schema_version"`
	BaselineURL    string `json:"baseline_url,omitempty"`
	BaselineBranch string `json:"baseline_branch,omitempty"`
	BaselineCommit string `json:"baseline_commit,omitempty"`
}

func (a *versionAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	result := VersionResult{
		ToolVersion:    d.Version,
		SchemaVersion:  d.SchemaVersion,
		BaselineURL:    d.Config.Baseline.URL,
		BaselineBranch: d.Config.Baseline.Branch,
	}
	if commit, ok := d.lastResolvedCommit(); ok {
		result.BaselineCommit = commit
	}
	return result, nil, nil
}

func (a *versionAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(VersionResult)
	if !ok {
		return "version reported."
	}
	commit := "unresolved"
	if r.BaselineCommit != "" {
		commit = r.BaselineCommit
	}
	return fmt.Sprintf("canon %s, schema %s, baseline commit %s.", r.ToolVersion, r.SchemaVersion, commit)
}
