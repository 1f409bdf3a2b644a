package main

import (
	"fmt"

	"github.com/sgx-labs/canon/internal/baseline"
	"github.com/sgx-labs/canon/internal/config"
	"github.com/sgx-labs/canon/internal/dispatch"
)

// newDispatcher loads config for the given corpus root and builds a
// dispatcher backed by it. Every action subcommand shares this path so a
// CLI invocation and an MCP tool call see identical behavior.
func newDispatcher() (*dispatch.Dispatcher, error) {
	cfg, err := config.Load(corpusRoot)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cache := baseline.New(cfg.Baseline.CacheRoot)
	return dispatch.New(cfg, cache, cfg.State.Dir, Version), nil
}
