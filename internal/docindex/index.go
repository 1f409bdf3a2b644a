// Package docindex walks local and baseline corpora, parses markdown
// documents, and assembles them into the Index consumed by the scorer.
package docindex

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// SchemaVersion is bumped whenever the on-disk index format changes
// incompatibly. A loaded index whose Version differs triggers a rebuild
// (spec §4.4 "Version and staleness").
const SchemaVersion = "1.0.0"

// defaultIncludePrefixes are the top-level directories walked for markdown.
var defaultIncludePrefixes = []string{"canon", "odd", "docs", "writings"}

// skipDirs mirrors the teacher's config.SkipDirs set: directories a walk
// never descends into.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".canon":       true, // the index's own output/state directory
}

// noindexSentinel is the hierarchical opt-out filename (spec §4.4).
const noindexSentinel = ".noindex"

// Options configures a single BuildIndex call.
type Options struct {
	IncludePrefixes []string // default defaultIncludePrefixes when empty
	PrivatePrefix   string   // default "_private"; matched files are excluded like .noindex
}

func (o Options) includePrefixes() []string {
	if len(o.IncludePrefixes) > 0 {
		return o.IncludePrefixes
	}
	return defaultIncludePrefixes
}

func (o Options) privatePrefix() string {
	if o.PrivatePrefix != "" {
		return o.PrivatePrefix
	}
	return "_private"
}

// Stats summarizes one index build, mirroring the teacher's Stats struct
// shape (field names adapted to this domain).
type Stats struct {
	Total             int            `json:"total"`
	Local             int            `json:"local"`
	Baseline          int            `json:"baseline"`
	ExcludedByNoindex int            `json:"excluded_by_noindex"`
	ByAuthority       map[string]int `json:"by_authority"`
}

// Index is the complete output of a build: every surviving document plus
// the stats describing how it was assembled. The derived BM25 structures
// (term->doc-frequency, per-doc term multisets, average length) are built
// lazily by internal/score from Documents, not stored here — §3 calls them
// "derived" from the index, not part of its persisted shape.
type Index struct {
	Version     string     `json:"version"`
	Generated   time.Time  `json:"generated"`
	Stats       Stats      `json:"stats"`
	Documents   []Document `json:"documents"`
	HasBaseline bool       `json:"-"`
}

var headingRE = regexp.MustCompile(`^(#{1,6})\s+(.*\S)\s*$`)

// BuildIndex walks localRoot (and baselineRoot, if non-empty) and produces
// a fresh Index. It never consults or writes any on-disk cached index;
// that staleness/load-or-build decision belongs to the caller (the action
// dispatcher), per spec §4.4's "Version and staleness" note.
func BuildIndex(localRoot, baselineRoot string, opts Options) (*Index, error) {
	idx := &Index{
		Version:   SchemaVersion,
		Generated: time.Now().UTC(),
		Stats:     Stats{ByAuthority: map[string]int{}},
	}
	idx.HasBaseline = baselineRoot != ""

	if localRoot != "" {
		docs, excluded, err := walkCorpus(localRoot, OriginLocal, opts)
		if err != nil {
			return nil, fmt.Errorf("walk local corpus: %w", err)
		}
		idx.Documents = append(idx.Documents, docs...)
		idx.Stats.Local = len(docs)
		idx.Stats.ExcludedByNoindex += excluded
	}

	if baselineRoot != "" {
		docs, excluded, err := walkCorpus(baselineRoot, OriginBaseline, opts)
		if err != nil {
			return nil, fmt.Errorf("walk baseline corpus: %w", err)
		}
		idx.Documents = append(idx.Documents, docs...)
		idx.Stats.Baseline = len(docs)
		idx.Stats.ExcludedByNoindex += excluded
	}

	idx.Stats.Total = len(idx.Documents)
	for _, d := range idx.Documents {
		idx.Stats.ByAuthority[string(d.AuthorityBand)]++
	}

	return idx, nil
}

// Save writes idx as JSON to path, matching spec §6's index file format
// (top-level version/generated/stats/documents). The caller decides path
// and when to call this; BuildIndex itself never touches disk.
func (idx *Index) Save(path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadIndex reads a previously persisted index from path. Callers must
// still check Stale before trusting the result.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &idx, nil
}

// Stale reports whether a previously built index must be discarded: its
// schema version differs from the current code's, or its recorded
// baseline-origin presence no longer matches baselineAvailable.
func (idx *Index) Stale(baselineAvailable bool) bool {
	if idx == nil {
		return true
	}
	return idx.Version != SchemaVersion || idx.HasBaseline != baselineAvailable
}

// walkCorpus discovers markdown files under root's include-prefix
// directories, honoring the hierarchical .noindex sentinel and the private
// prefix, and parses each surviving file into a Document.
func walkCorpus(root string, origin Origin, opts Options) ([]Document, int, error) {
	var noindexDirs []string // directories (or ancestors) carrying a sentinel
	excluded := 0
	var docs []Document

	for _, prefix := range opts.includePrefixes() {
		start := filepath.Join(root, prefix)
		info, err := os.Stat(start)
		if err != nil || !info.IsDir() {
			continue
		}

		err = filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				name := d.Name()
				if skipDirs[name] {
					return filepath.SkipDir
				}
				if _, statErr := os.Stat(filepath.Join(path, noindexSentinel)); statErr == nil {
					noindexDirs = append(noindexDirs, path)
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".md") {
				return nil
			}
			if underAny(path, noindexDirs) {
				excluded++
				return nil
			}
			rel := relativePath(path, root)
			if isPrivate(relativePath(path, start), opts.privatePrefix()) {
				excluded++
				return nil
			}

			doc, err := parseDocument(root, rel, path, origin)
			if err != nil {
				return nil
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, excluded, err
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, excluded, nil
}

// underAny reports whether path is inside (or equal to) any directory in dirs.
func underAny(path string, dirs []string) bool {
	for _, d := range dirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func isPrivate(relPath, privatePrefix string) bool {
	if privatePrefix == "" {
		return false
	}
	return relPath == privatePrefix || strings.HasPrefix(relPath, privatePrefix+"/")
}

func relativePath(filePath, root string) string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return filePath
	}
	return filepath.ToSlash(rel)
}

// parseDocument reads path, splits frontmatter, extracts headings, and
// classifies authority/intent from frontmatter override or directory.
func parseDocument(root, relPath, absPath string, origin Origin) (Document, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return Document{}, err
	}
	note := parseNote(string(raw))

	title := note.Meta.Title
	if title == "" {
		title = deriveTitleFromHeadings(note.Body)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(relPath), ".md")
	}

	topDir := strings.SplitN(relPath, "/", 2)[0]

	band := AuthorityBand(note.Meta.AuthorityBand)
	if band == "" {
		band = inferAuthorityBand(topDir)
	}

	intent := Intent(note.Meta.Intent)
	if intent == "" {
		intent = inferIntent(topDir, relPath)
	}

	evidence := Evidence(note.Meta.Evidence)
	if evidence == "" {
		evidence = EvidenceNone
	}

	headings := extractHeadings(note.Body)
	hash := contentHash(note.Body)
	preview := note.Body
	if len(preview) > 500 {
		preview = preview[:500]
	}

	fm := map[string]string{}
	if note.Meta.Scope != "" {
		fm["scope"] = note.Meta.Scope
	}
	if note.Meta.ScopeKey != "" {
		fm["scope_key"] = note.Meta.ScopeKey
	}
	if note.Meta.StartHereLabel != "" {
		fm["start_here_label"] = note.Meta.StartHereLabel
	}
	if note.Meta.StartHere {
		fm["start_here"] = "true"
	}
	if note.Meta.Subtitle != "" {
		fm["subtitle"] = note.Meta.Subtitle
	}

	return Document{
		Path:           relPath,
		Origin:         origin,
		URI:            note.Meta.URI,
		Title:          title,
		Tags:           note.Meta.Tags,
		AuthorityBand:  band,
		Intent:         intent,
		Evidence:       evidence,
		Supersedes:     note.Meta.Supersedes,
		ContentHash:    hash,
		Headings:       headings,
		ContentPreview: preview,
		Frontmatter:    fm,
		Body:           note.Body,
		CorpusRoot:     root,
	}, nil
}

func deriveTitleFromHeadings(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if m := headingRE.FindStringSubmatch(line); m != nil {
			return m[2]
		}
	}
	return ""
}

func inferAuthorityBand(topDir string) AuthorityBand {
	switch topDir {
	case "canon", "odd", "writings":
		return BandGoverning
	case "docs":
		return BandOperational
	default:
		return BandNonGoverning
	}
}

func inferIntent(topDir, relPath string) Intent {
	switch topDir {
	case "canon", "writings":
		return IntentPromoted
	case "odd":
		return IntentPattern
	}
	lower := strings.ToLower(relPath)
	if strings.Contains(lower, "workaround") {
		return IntentWorkaround
	}
	if strings.Contains(lower, "experiment") {
		return IntentExperiment
	}
	return IntentOperational
}

// extractHeadings scans body for leading "#" lines and assigns each one a
// start/end line range that partitions the body (spec Invariant 2: every
// heading's start_line <= end_line, ranges partition the body).
func extractHeadings(body string) []Heading {
	lines := strings.Split(body, "\n")
	var headings []Heading
	for i, line := range lines {
		m := headingRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		headings = append(headings, Heading{
			Level:     len(m[1]),
			Text:      m[2],
			StartLine: i,
		})
	}
	for i := range headings {
		if i+1 < len(headings) {
			headings[i].EndLine = headings[i+1].StartLine - 1
		} else {
			headings[i].EndLine = len(lines) - 1
		}
	}
	return headings
}

// contentHash is the 8-hex prefix of a SHA-256 over the body with
// whitespace normalized (all runs of whitespace collapsed to a single
// space, leading/trailing trimmed).
func contentHash(body string) string {
	normalized := collapseWhitespace(strings.TrimSpace(body))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", sum)[:8]
}

var whitespaceRunRE = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespaceRunRE.ReplaceAllString(s, " ")
}
