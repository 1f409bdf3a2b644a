package dispatch

import (
	"context"
	"path/filepath"

	"github.com/sgx-labs/canon/internal/baseline"
	"github.com/sgx-labs/canon/internal/docindex"
)

// pipelineState is the shared result of the ensure-baseline + ensure-index
// steps every retrieval action (search, catalog, preflight) starts with.
type pipelineState struct {
	index    *docindex.Index
	commit   string
	warnings []string
}

// InvalidateIndex drops the in-process BM25 index cache so the next
// dispatch rebuilds it from disk. Used by internal/watch on local corpus
// changes (spec §5's cache key is (local_root, baseline_commit); a local
// edit changes neither, so the watcher must invalidate explicitly).
func (d *Dispatcher) InvalidateIndex() {
	d.indexCache = cacheEntry{}
}

// ensurePipeline resolves the baseline (falling back to local-only on
// failure, per spec §7's local-recovery policy for FETCH_FAILED) and loads
// or rebuilds the in-process index cache keyed by (local_root,
// baseline_commit).
func (d *Dispatcher) ensurePipeline(ctx context.Context, canonURL string) (*pipelineState, error) {
	url := canonURL
	if url == "" {
		url = d.Config.Baseline.URL
	}
	branch := d.Config.Baseline.Branch

	var baselineRoot, commit string
	var warnings []string

	if url != "" {
		result, err := d.Cache.Ensure(ctx, url, branch, baseline.Options{})
		if err != nil {
			warnings = append(warnings, "baseline unavailable, proceeding with local corpus only: "+err.Error())
		} else {
			baselineRoot = result.Root
			commit = result.CommitID
		}
	}

	cacheKey := d.Config.Corpus.Path + "@" + commit
	if d.indexCache.index != nil && d.indexCache.key == cacheKey && !d.indexCache.index.Stale(baselineRoot != "") {
		return &pipelineState{index: d.indexCache.index, commit: commit, warnings: warnings}, nil
	}

	indexPath := d.indexFilePath(url, commit)
	if indexPath != "" {
		if idx, err := docindex.LoadIndex(indexPath); err == nil {
			idx.HasBaseline = true // this path is only ever written for a resolved baseline commit
			if !idx.Stale(true) {
				d.indexCache = cacheEntry{key: cacheKey, index: idx}
				return &pipelineState{index: idx, commit: commit, warnings: warnings}, nil
			}
		}
	}

	idx, err := docindex.BuildIndex(d.Config.Corpus.Path, baselineRoot, docindex.Options{
		IncludePrefixes: d.Config.Corpus.IncludePrefixes,
		PrivatePrefix:   d.Config.Corpus.PrivatePrefix,
	})
	if err != nil {
		return nil, err
	}
	d.indexCache = cacheEntry{key: cacheKey, index: idx}

	if indexPath != "" {
		if err := idx.Save(indexPath); err != nil {
			warnings = append(warnings, "failed to persist index cache: "+err.Error())
		}
	}

	return &pipelineState{index: idx, commit: commit, warnings: warnings}, nil
}

// indexFilePath returns the on-disk persisted-index path for (url, commit):
// "<cache_root>/indexes/<repo_name>-<commit_id>.json". It returns "" when
// there is no resolved baseline commit to key the file by — a pure local
// corpus has no stable repo_name/commit_id pair, so it falls back to the
// in-process cache only.
func (d *Dispatcher) indexFilePath(url, commit string) string {
	if url == "" || commit == "" || d.Config.Baseline.CacheRoot == "" {
		return ""
	}
	repoName := baseline.RepoName(url)
	return filepath.Join(d.Config.Baseline.CacheRoot, "indexes", repoName+"-"+commit+".json")
}
