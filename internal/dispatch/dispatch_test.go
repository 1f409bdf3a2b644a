package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sgx-labs/canon/internal/baseline"
	"github.com/sgx-labs/canon/internal/config"
)

func writeTestDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	corpus := t.TempDir()
	state := t.TempDir()
	cacheDir := t.TempDir()

	writeTestDoc(t, corpus, "canon/retry-policy.md", `---
uri: canon://retry-policy
title: Retry Policy
tags: [retry, networking]
start_here: true
---

# Retry Policy

## Rule

Clients must retry transient network failures with exponential backoff.
`)
	writeTestDoc(t, corpus, "canon/definition-of-done.md", `---
title: Definition of Done
tags: [definition-of-done]
---

# Definition of Done

Work is done when tests pass and the PR is reviewed.
`)

	cfg := &config.Config{}
	cfg.Corpus.Path = corpus
	cfg.Corpus.IncludePrefixes = []string{"canon", "odd", "docs", "writings"}
	cfg.State.Dir = state

	cache := baseline.New(cacheDir)
	return New(cfg, cache, state, "test-version")
}

func TestDispatchSearchFound(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Action: "search", Input: "retry backoff network"})

	if env.Action != "search" {
		t.Fatalf("action = %q", env.Action)
	}
	result, ok := env.Result.(SearchResult)
	if !ok {
		t.Fatalf("result type = %T", env.Result)
	}
	if result.Status != "FOUND" {
		t.Fatalf("status = %q, want FOUND", result.Status)
	}
	if result.DocsConsidered != 2 {
		t.Fatalf("docs_considered = %d, want 2", result.DocsConsidered)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Action: "frobnicate"})

	errResult, ok := env.Result.(errorResult)
	if !ok {
		t.Fatalf("result type = %T, want errorResult", env.Result)
	}
	if errResult.Error.Code != KindUnknownAction {
		t.Fatalf("code = %q, want %q", errResult.Error.Code, KindUnknownAction)
	}
}

func TestDispatchSearchRequiresInput(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Action: "search"})

	errResult, ok := env.Result.(errorResult)
	if !ok {
		t.Fatalf("result type = %T, want errorResult", env.Result)
	}
	if errResult.Error.Code != KindInputRequired {
		t.Fatalf("code = %q, want %q", errResult.Error.Code, KindInputRequired)
	}
}

func TestDispatchCatalogGroupsStartHere(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Action: "catalog"})

	result, ok := env.Result.(CatalogResult)
	if !ok {
		t.Fatalf("result type = %T", env.Result)
	}
	if len(result.StartHere) != 1 {
		t.Fatalf("start_here entries = %d, want 1", len(result.StartHere))
	}
}

func TestDispatchGateChecksDefinitionOfDone(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Action: "gate", Input: ""})

	result, ok := env.Result.(GateResult)
	if !ok {
		t.Fatalf("result type = %T", env.Result)
	}
	if !result.Passed {
		t.Fatalf("gate not passed: %v", result.Unsatisfied)
	}
}

func TestDispatchVersionReportsSchema(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Action: "version"})

	result, ok := env.Result.(VersionResult)
	if !ok {
		t.Fatalf("result type = %T", env.Result)
	}
	if result.ToolVersion != "test-version" {
		t.Fatalf("tool_version = %q", result.ToolVersion)
	}
	if result.SchemaVersion == "" {
		t.Fatal("schema_version empty")
	}
}

func TestDispatchPhraseRoutingDefaultsToSearch(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Input: "retry backoff network"})

	if env.Action != "search" {
		t.Fatalf("routed action = %q, want search", env.Action)
	}
}

func TestDispatchEncodeRequiresInput(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), Request{Action: "encode"})

	errResult, ok := env.Result.(errorResult)
	if !ok {
		t.Fatalf("result type = %T, want errorResult", env.Result)
	}
	if errResult.Error.Code != KindInputRequired {
		t.Fatalf("code = %q, want %q", errResult.Error.Code, KindInputRequired)
	}
}
