// Package baseline implements the content-addressed cache for remote
// baseline corpora: a repo URL + branch resolves to an exact commit id, and
// content under that commit id is immutable and addressed by that id alone.
package baseline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// ErrorCode is the closed set of baseline-cache failures.
type ErrorCode string

const (
	ErrNoVCS           ErrorCode = "NO_VCS"
	ErrInvalidBaseline ErrorCode = "INVALID_BASELINE"
	ErrFetchFailed     ErrorCode = "FETCH_FAILED"
	ErrNoCacheAvailable ErrorCode = "NO_CACHE_AVAILABLE"
)

// Error reports a baseline-cache failure with its closed-set code.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// completionMarker is the file whose presence under a commit directory
// means "this materialization finished"; its absence (even if the
// directory exists) means the directory is incomplete and must not be
// treated as valid cached content.
const completionMarker = ".canon-complete"

// refsTimeout bounds the lightweight refs-only remote query (§5 Timeouts).
const refsTimeout = 10 * time.Second

// Options tunes a single Ensure call.
type Options struct {
	// CheckOnly, if true, resolves the current commit id and reports
	// whether it differs from what is cached, without materializing
	// anything.
	CheckOnly bool
}

// Result is the outcome of Ensure.
type Result struct {
	Root     string // filesystem path to the materialized commit directory
	CommitID string
	Changed  bool // only meaningful when Options.CheckOnly was set
}

// Cache is a content-addressed store of baseline corpora, rooted at Dir.
// Cache is safe for concurrent use: the session memo and completion-marker
// protocol both tolerate concurrent Ensure calls for the same (url, branch).
type Cache struct {
	Dir string

	mu   sync.Mutex
	memo map[memoKey]string // (url, branch) -> last-resolved commit id, this process only
}

type memoKey struct {
	url    string
	branch string
}

// New creates a Cache rooted at dir. dir is created lazily on first use.
func New(dir string) *Cache {
	return &Cache{Dir: dir, memo: make(map[memoKey]string)}
}

// Ensure resolves (url, branch) to its current commit id and guarantees
// that id's content is available under Cache.Dir, following the algorithm
// in spec §4.2: resolve, check exact-identity cache, fetch-and-store, and
// fall back to the most recently modified cached commit on network failure.
func (c *Cache) Ensure(ctx context.Context, url, branch string, opts Options) (Result, error) {
	if isLocalPath(url) {
		return c.ensureLocal(url, opts)
	}
	return c.ensureRemote(ctx, url, branch, opts)
}

func (c *Cache) ensureRemote(ctx context.Context, url, branch string, opts Options) (Result, error) {
	repoName := deriveRepoName(url)
	repoDir := filepath.Join(c.Dir, repoName)

	commitID, resolveErr := c.resolveCommit(ctx, url, branch)
	if resolveErr == nil {
		c.memoize(url, branch, commitID)

		if opts.CheckOnly {
			cached, _ := c.mostRecentCommitDir(repoDir, branch)
			return Result{CommitID: commitID, Changed: cached != commitID}, nil
		}

		commitDir := filepath.Join(repoDir, commitID)
		if isComplete(commitDir) {
			return Result{Root: commitDir, CommitID: commitID}, nil
		}

		if err := c.materialize(url, branch, commitDir); err != nil {
			if fallback, ok := c.offlineFallback(repoDir, branch); ok {
				return fallback, nil
			}
			return Result{}, &Error{Code: ErrFetchFailed, Msg: "shallow fetch failed", Err: err}
		}
		return Result{Root: commitDir, CommitID: commitID}, nil
	}

	// Step 1 failed: no network, or remote unreachable. Offline fallback.
	if fallback, ok := c.offlineFallback(repoDir, branch); ok {
		return fallback, nil
	}
	return Result{}, &Error{Code: ErrNoCacheAvailable, Msg: "commit could not be resolved and no cached copy exists", Err: resolveErr}
}

// resolveCommit performs the lightweight refs-only query: a remote ls-remote
// style call that fetches only ref advertisements, not objects.
func (c *Cache) resolveCommit(ctx context.Context, url, branch string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, refsTimeout)
	defer cancel()

	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(cctx, &git.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("list remote refs: %w", err)
	}

	want := plumbing.NewBranchReferenceName(branch)
	for _, r := range refs {
		if r.Name() == want {
			return r.Hash().String(), nil
		}
	}
	return "", fmt.Errorf("branch %q not found on remote", branch)
}

// materialize performs the shallow fetch-and-store step: a depth-1 clone of
// branch into a freshly created directory, finished by writing the
// completion marker. Fresh materializations are additive — an existing
// commit directory is never overwritten.
func (c *Cache) materialize(url, branch, commitDir string) error {
	if isComplete(commitDir) {
		return nil
	}

	// Exclusive-create semantics: MkdirAll is not exclusive, so clone into a
	// private scratch directory first and rename into place. A concurrent
	// request racing to populate the same commit directory will lose the
	// rename race harmlessly (directory already exists with a marker).
	scratch := commitDir + ".tmp-" + randomSuffix()
	if err := os.MkdirAll(filepath.Dir(commitDir), 0o755); err != nil {
		return fmt.Errorf("create cache root: %w", err)
	}

	_, err := git.PlainClone(scratch, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         1,
		Tags:          git.NoTags,
	})
	if err != nil {
		os.RemoveAll(scratch)
		return fmt.Errorf("clone %s@%s: %w", url, branch, err)
	}

	if err := os.WriteFile(filepath.Join(scratch, completionMarker), []byte("ok\n"), 0o644); err != nil {
		os.RemoveAll(scratch)
		return fmt.Errorf("write completion marker: %w", err)
	}

	if err := os.Rename(scratch, commitDir); err != nil {
		// Lost the race to a concurrent materializer; that's fine as long
		// as the winner's directory is complete.
		os.RemoveAll(scratch)
		if isComplete(commitDir) {
			return nil
		}
		return fmt.Errorf("finalize commit directory: %w", err)
	}
	return nil
}

// offlineFallback scans existing commit directories under repoDir and
// returns the most recently modified one that carries a completion marker.
func (c *Cache) offlineFallback(repoDir, branch string) (Result, bool) {
	commitID, ok := c.mostRecentCommitDirAny(repoDir)
	if !ok {
		return Result{}, false
	}
	return Result{Root: filepath.Join(repoDir, commitID), CommitID: commitID}, true
}

// mostRecentCommitDir returns the currently cached commit id for repoDir, if
// any (used by checkOnly to compute Changed). branch is accepted for
// interface symmetry; the cache layout does not partition by branch beyond
// the repo directory, since spec.md ties the cache key to commit id alone.
func (c *Cache) mostRecentCommitDir(repoDir, branch string) (string, bool) {
	return c.mostRecentCommitDirAny(repoDir)
}

func (c *Cache) mostRecentCommitDirAny(repoDir string) (string, bool) {
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		return "", false
	}
	var bestName string
	var bestTime time.Time
	for _, e := range entries {
		if !e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") || strings.Contains(e.Name(), ".tmp-") {
			continue
		}
		dir := filepath.Join(repoDir, e.Name())
		if !isComplete(dir) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if bestName == "" || info.ModTime().After(bestTime) {
			bestName = e.Name()
			bestTime = info.ModTime()
		}
	}
	if bestName == "" {
		return "", false
	}
	return bestName, true
}

// ensureLocal handles non-URL baselines: a path on disk, optionally itself a
// git checkout. Local paths bypass fetch entirely.
func (c *Cache) ensureLocal(path string, opts Options) (Result, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Result{}, &Error{Code: ErrInvalidBaseline, Msg: fmt.Sprintf("%q is not a URL or a local directory", path)}
	}

	commitID := "local"
	if repo, err := git.PlainOpen(path); err == nil {
		if head, err := repo.Head(); err == nil {
			commitID = head.Hash().String()
		}
	}

	if opts.CheckOnly {
		return Result{CommitID: commitID, Changed: false}, nil
	}
	return Result{Root: path, CommitID: commitID}, nil
}

func (c *Cache) memoize(url, branch, commitID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo[memoKey{url: url, branch: branch}] = commitID
}

// Memoized returns the process-local last-resolved commit id for (url,
// branch), if any. The memo key includes both url and branch so that
// swapping the baseline URL mid-process without changing the branch never
// returns a stale commit id for the new URL (Design Notes (a)).
func (c *Cache) Memoized(url, branch string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.memo[memoKey{url: url, branch: branch}]
	return id, ok
}

// Cleanup removes every directory under Dir/repoName that does not match
// currentCommitID; other repos' cache directories are not touched.
// Storage hygiene only; never required for correctness (spec §4.10
// cleanup action).
func (c *Cache) Cleanup(repoName, currentCommitID string) (int, error) {
	repoDir := filepath.Join(c.Dir, repoName)
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || e.Name() == currentCommitID {
			continue
		}
		if err := os.RemoveAll(filepath.Join(repoDir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func isComplete(commitDir string) bool {
	_, err := os.Stat(filepath.Join(commitDir, completionMarker))
	return err == nil
}

// isLocalPath reports whether a baseline identifier is a filesystem path
// rather than a git remote URL.
func isLocalPath(s string) bool {
	if strings.Contains(s, "://") {
		return false
	}
	// scp-like syntax: git@host:path
	if strings.Contains(s, "@") && strings.Contains(s, ":") {
		return false
	}
	return true
}

// RepoName exposes deriveRepoName for callers (e.g. the cleanup action) that
// need to locate a repo's cache directory without re-resolving a commit.
func RepoName(url string) string { return deriveRepoName(url) }

// deriveRepoName extracts a filesystem-safe repo name from a URL, e.g.
// https://example.com/org/governance.git -> "governance".
func deriveRepoName(url string) string {
	trimmed := strings.TrimSuffix(url, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	idx := strings.LastIndexAny(trimmed, "/:")
	name := trimmed
	if idx >= 0 {
		name = trimmed[idx+1:]
	}
	if name == "" {
		name = "baseline"
	}
	return name
}

var suffixCounter uint64
var suffixMu sync.Mutex

// randomSuffix returns a unique-enough suffix for scratch directories. It
// need not be cryptographically random, only distinct across concurrent
// materializations in this process.
func randomSuffix() string {
	suffixMu.Lock()
	defer suffixMu.Unlock()
	suffixCounter++
	return fmt.Sprintf("%d-%d", os.Getpid(), suffixCounter)
}
