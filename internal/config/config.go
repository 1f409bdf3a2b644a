// Package config provides configuration for the canon binary.
// Loads from: CLI flags > env vars > .canon/config.toml > built-in defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all canon configuration, loaded from TOML + env + flags.
type Config struct {
	Corpus   CorpusConfig   `toml:"corpus"`
	Baseline BaselineConfig `toml:"baseline"`
	State    StateConfig    `toml:"state"`
	Schema   SchemaConfig   `toml:"schema"`
	Debug    DebugConfig    `toml:"debug"`
}

// CorpusConfig describes the local corpus root and indexing rules.
type CorpusConfig struct {
	Path            string   `toml:"path"`
	IncludePrefixes []string `toml:"include_prefixes"`
	SkipDirs        []string `toml:"skip_dirs"`
	PrivatePrefix   string   `toml:"private_prefix"`
}

// BaselineConfig describes the default remote baseline corpus.
type BaselineConfig struct {
	URL       string `toml:"url"`
	Branch    string `toml:"branch"`
	CacheRoot string `toml:"cache_root"`
}

// StateConfig describes where per-process/session state is written.
type StateConfig struct {
	Dir string `toml:"dir"`
}

// SchemaConfig holds the configured index schema version. It is loaded but
// not read anywhere; the version in effect is docindex.SchemaVersion.
type SchemaConfig struct {
	IndexVersion string `toml:"index_version"`
}

// DebugConfig holds the diagnostic verbosity flag (set by TOML or
// CANON_DEBUG). No code reads it, so it changes no behavior.
type DebugConfig struct {
	Verbose bool `toml:"verbose"`
}

// defaultSkipDirs mirrors the teacher's walk-skip set; augmented with
// canon's own state directory.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".canon":       true,
}

func defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Corpus: CorpusConfig{
			Path:            ".",
			IncludePrefixes: []string{"canon", "odd", "docs", "writings"},
			PrivatePrefix:   "_private",
		},
		Baseline: BaselineConfig{
			Branch:    "main",
			CacheRoot: filepath.Join(home, ".canon", "cache"),
		},
		State: StateConfig{
			Dir: filepath.Join(home, ".canon", "state"),
		},
		Schema: SchemaConfig{
			IndexVersion: "1.0.0",
		},
	}
}

// configPath returns the per-corpus TOML config file path.
func configPath(corpusRoot string) string {
	return filepath.Join(corpusRoot, ".canon", "config.toml")
}

// Load merges defaults, a TOML file under corpusRoot/.canon/config.toml (if
// present), and CANON_* environment overrides, exactly in that precedence
// order — CLI flags, applied by the caller afterward, win over all of it.
func Load(corpusRoot string) (*Config, error) {
	cfg := defaults()
	if corpusRoot != "" {
		cfg.Corpus.Path = corpusRoot
	}

	path := configPath(cfg.Corpus.Path)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv overlays the four environment knobs spec §6 names (baseline
// URL, baseline branch, state-dir, debug verbosity), plus the cache-root
// knob this repo adds for completeness, following the teacher's
// os.Getenv-per-field style.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CANON_BASELINE_URL"); v != "" {
		cfg.Baseline.URL = v
	}
	if v := os.Getenv("CANON_BASELINE_BRANCH"); v != "" {
		cfg.Baseline.Branch = v
	}
	if v := os.Getenv("CANON_STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("CANON_CACHE_ROOT"); v != "" {
		cfg.Baseline.CacheRoot = v
	}
	if os.Getenv("CANON_DEBUG") != "" {
		cfg.Debug.Verbose = true
	}
}

// SkipDirs returns the effective skip-dir set: the fixed defaults plus any
// corpus-configured additions.
func (c *Config) SkipDirs() map[string]bool {
	dirs := make(map[string]bool, len(defaultSkipDirs)+len(c.Corpus.SkipDirs))
	for d := range defaultSkipDirs {
		dirs[d] = true
	}
	for _, d := range c.Corpus.SkipDirs {
		dirs[d] = true
	}
	return dirs
}
