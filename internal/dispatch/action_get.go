package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/sgx-labs/canon/internal/docfetch"
)

type getAction struct{}

func (a *getAction) Name() string { return "get" }

func (a *getAction) ValidateInputs(req Request) *ActionError {
	if strings.TrimSpace(req.Input) == "" {
		return &ActionError{Code: KindInputRequired, Message: "get requires a ref (k-scheme://... or o-scheme://...)"}
	}
	return nil
}

// GetResult is the output of the get action: document bytes, already
// neutralized, plus provenance for the caller to judge trust.
type GetResult struct {
	Ref         string `json:"ref"`
	Content     string `json:"content"`
	ContentHash string `json:"content_hash"`
	CanonCommit string `json:"baseline_commit,omitempty"`
}

func (a *getAction) Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error) {
	doc, err := d.Fetcher.GetDocByRef(ctx, req.Input, docfetch.Options{
		LocalRoot:      d.Config.Corpus.Path,
		BaselineURL:    d.Config.Baseline.URL,
		BaselineBranch: d.Config.Baseline.Branch,
	})
	if err != nil {
		return nil, nil, mapDocfetchError(err)
	}

	return GetResult{
		Ref:         req.Input,
		Content:     neutralizeTags(string(doc.Content)),
		ContentHash: doc.ContentHash,
		CanonCommit: doc.CanonCommit,
	}, nil, nil
}

func (a *getAction) RenderAssistantText(result interface{}) string {
	r, ok := result.(GetResult)
	if !ok {
		return "get completed."
	}
	return fmt.Sprintf("Retrieved %s (content_hash=%s).", r.Ref, r.ContentHash)
}

// mapDocfetchError translates a docfetch.Error into the dispatch closed
// error set (spec §7); ref.Error traversal failures arrive pre-wrapped as
// docfetch's ErrInvalidRef since docfetch normalizes the ref itself.
func mapDocfetchError(err error) *ActionError {
	derr, ok := err.(*docfetch.Error)
	if !ok {
		return &ActionError{Code: KindFetchFailed, Message: err.Error()}
	}
	switch derr.Code {
	case docfetch.ErrInvalidRef:
		if strings.Contains(derr.Msg, "escapes corpus root") || strings.Contains(derr.Msg, "traversal") {
			return &ActionError{Code: KindTraversalBlocked, Message: derr.Msg}
		}
		return &ActionError{Code: KindInvalidRef, Message: derr.Msg}
	case docfetch.ErrCanonTargetUnknown:
		return &ActionError{Code: KindCanonTargetUnknown, Message: derr.Msg}
	case docfetch.ErrDocNotFound:
		return &ActionError{Code: KindDocNotFound, Message: derr.Msg}
	default:
		return &ActionError{Code: KindFetchFailed, Message: derr.Error()}
	}
}
