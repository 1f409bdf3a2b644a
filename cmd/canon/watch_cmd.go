package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/canon/internal/baseline"
	"github.com/sgx-labs/canon/internal/config"
	"github.com/sgx-labs/canon/internal/dispatch"
	"github.com/sgx-labs/canon/internal/watch"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the local corpus and invalidate the index cache on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(corpusRoot)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cache := baseline.New(cfg.Baseline.CacheRoot)
			d := dispatch.New(cfg, cache, cfg.State.Dir, Version)
			return watch.Watch(d, cfg)
		},
	}
}
