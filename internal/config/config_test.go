package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Baseline.Branch != "main" {
		t.Fatalf("expected default branch main, got %s", cfg.Baseline.Branch)
	}
	if len(cfg.Corpus.IncludePrefixes) != 4 {
		t.Fatalf("expected 4 default include prefixes, got %d", len(cfg.Corpus.IncludePrefixes))
	}
}

func TestLoadReadsTOMLFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".canon"), 0o755); err != nil {
		t.Fatal(err)
	}
	toml := "[baseline]\nurl = \"https://example.com/gov.git\"\nbranch = \"release\"\n"
	if err := os.WriteFile(filepath.Join(root, ".canon", "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Baseline.URL != "https://example.com/gov.git" {
		t.Fatalf("expected TOML url to be loaded, got %s", cfg.Baseline.URL)
	}
	if cfg.Baseline.Branch != "release" {
		t.Fatalf("expected TOML branch to override default, got %s", cfg.Baseline.Branch)
	}
}

func TestEnvOverridesTOML(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".canon"), 0o755); err != nil {
		t.Fatal(err)
	}
	toml := "[baseline]\nbranch = \"toml-branch\"\n"
	if err := os.WriteFile(filepath.Join(root, ".canon", "config.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CANON_BASELINE_BRANCH", "env-branch")

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Baseline.Branch != "env-branch" {
		t.Fatalf("expected env var to override TOML, got %s", cfg.Baseline.Branch)
	}
}

func TestSkipDirsIncludesDefaultsAndExtras(t *testing.T) {
	cfg := &Config{Corpus: CorpusConfig{SkipDirs: []string{"extra"}}}
	dirs := cfg.SkipDirs()
	if !dirs[".git"] || !dirs["extra"] {
		t.Fatalf("expected defaults + extras present, got %+v", dirs)
	}
}
