// Package dispatch maps a closed set of action names to pipelines and
// assembles the uniform response envelope, per spec §4.10.
package dispatch

import (
	"context"
	"time"

	"github.com/sgx-labs/canon/internal/baseline"
	"github.com/sgx-labs/canon/internal/config"
	"github.com/sgx-labs/canon/internal/docfetch"
	"github.com/sgx-labs/canon/internal/docindex"
	"github.com/sgx-labs/canon/internal/ledger"
)

// ClosedActions is the fixed set of action names the dispatcher accepts.
var ClosedActions = map[string]bool{
	"search": true, "catalog": true, "preflight": true, "validate": true,
	"orient": true, "challenge": true, "gate": true, "encode": true,
	"get": true, "version": true, "cleanup": true,
}

// action is the registry-entry contract every action implements, replacing
// a switch/case over action names (Design Notes).
type action interface {
	Name() string
	ValidateInputs(req Request) *ActionError
	Run(ctx context.Context, d *Dispatcher, req Request) (interface{}, []string, error)
	RenderAssistantText(result interface{}) string
}

// cacheEntry is one slot of the in-process BM25/index cache keyed by
// (local_root, baseline_commit), per spec §5's Shared Resources (ii).
type cacheEntry struct {
	key   string
	index *docindex.Index
}

// Dispatcher owns every piece of state a request needs: config, the
// baseline cache, the injectable state directory, and the in-process index
// cache. It is constructed once per process (or per test harness state
// directory) and is safe to reuse across requests.
type Dispatcher struct {
	Config       *config.Config
	Cache        *baseline.Cache
	Fetcher      *docfetch.Fetcher
	StateDir     string
	LedgerPath   string
	Version      string
	SchemaVersion string

	indexCache cacheEntry
	registry   map[string]action
}

// New constructs a Dispatcher and registers every closed action.
func New(cfg *config.Config, cache *baseline.Cache, stateDir, version string) *Dispatcher {
	d := &Dispatcher{
		Config:        cfg,
		Cache:         cache,
		Fetcher:       docfetch.New(cache),
		StateDir:      stateDir,
		LedgerPath:    stateDir + "/ops.jsonl",
		Version:       version,
		SchemaVersion: docindex.SchemaVersion,
	}
	d.registry = map[string]action{
		"search":    &searchAction{},
		"catalog":   &catalogAction{},
		"preflight": &preflightAction{},
		"validate":  &validateAction{},
		"get":       &getAction{},
		"version":   &versionAction{},
		"cleanup":   &cleanupAction{},
		"orient":    &orientAction{},
		"challenge": &challengeAction{},
		"gate":      &gateAction{},
		"encode":    &encodeAction{},
	}
	return d
}

// Dispatch routes a request to its action (explicit action name first,
// then an ordered phrase-matcher fallback over req.Input), runs it, and
// assembles the uniform envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Envelope {
	start := time.Now()

	name := req.Action
	if name == "" {
		name = routeByPhrase(req.Input)
	}

	if !ClosedActions[name] {
		return errorEnvelope(req.Action, &ActionError{
			Code:    KindUnknownAction,
			Message: "action \"" + req.Action + "\" is not in the closed action set",
		}, start)
	}

	act := d.registry[name]
	if aerr := act.ValidateInputs(req); aerr != nil {
		return errorEnvelope(name, aerr, start)
	}

	result, warnings, err := act.Run(ctx, d, req)
	if err != nil {
		if aerr, ok := err.(*ActionError); ok {
			return errorEnvelope(name, aerr, start)
		}
		return errorEnvelope(name, &ActionError{Code: KindFetchFailed, Message: err.Error()}, start)
	}

	env := Envelope{
		Action:        name,
		Result:        result,
		AssistantText: act.RenderAssistantText(result),
		Debug: Debug{
			DurationMS:  time.Since(start).Milliseconds(),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Warnings:    warnings,
		},
	}
	if commit, ok := d.lastResolvedCommit(); ok {
		env.Debug.BaselineCommit = commit
	}

	_ = ledger.WriteLastRun(d.StateDir, env)
	_ = ledger.Append(d.LedgerPath, ledger.Entry{
		ID:      name + "-" + env.Debug.GeneratedAt,
		Action:  name,
		Summary: env.AssistantText,
	})

	return env
}

func (d *Dispatcher) lastResolvedCommit() (string, bool) {
	if d.Cache == nil {
		return "", false
	}
	return d.Cache.Memoized(d.Config.Baseline.URL, d.Config.Baseline.Branch)
}

// routeByPhrase implements the ordered phrase-matcher fallback: preflight
// intent, catalog intent, explain intent, strong completion claim,
// question, default to search. No action name outside this fixed table is
// ever inferred from prose.
func routeByPhrase(input string) string {
	lower := toLower(input)
	switch {
	case containsAny(lower, "before i start", "preflight", "what do i need to know before"):
		return "preflight"
	case containsAny(lower, "what's available", "list docs", "show me everything", "catalog"):
		return "catalog"
	case containsAny(lower, "explain", "why did", "what happened last"):
		return "catalog"
	case containsAny(lower, "done", "shipped", "i finished", "finished implementing"):
		return "validate"
	default:
		return "search"
	}
}
