package docindex

import (
	"strings"

	"github.com/adrg/frontmatter"
)

// noteMeta holds the frontmatter keys recognized by spec §6's frontmatter
// contract. Unrecognized keys are preserved in the document's raw
// Frontmatter map via rawMeta, not dropped silently.
type noteMeta struct {
	URI             string   `yaml:"uri"`
	Title           string   `yaml:"title"`
	Subtitle        string   `yaml:"subtitle"`
	Tags            []string `yaml:"tags"`
	Supersedes      []string `yaml:"supersedes"`
	AuthorityBand   string   `yaml:"authority_band"`
	Intent          string   `yaml:"intent"`
	Evidence        string   `yaml:"evidence"`
	StartHere       bool     `yaml:"start_here"`
	StartHereOrder  int      `yaml:"start_here_order"`
	StartHereLabel  string   `yaml:"start_here_label"`
	Scope           string   `yaml:"scope"`
	ScopeKey        string   `yaml:"scope_key"`
}

// parsedNote is a document split into its frontmatter block and body.
type parsedNote struct {
	Meta noteMeta
	Body string
}

// parseNote splits frontmatter from body, exactly as the teacher's
// indexer.ParseNote does: on parse failure, the whole content becomes the
// body and meta is left zero-valued, so an indexing run never aborts on a
// single malformed file.
func parseNote(content string) parsedNote {
	var meta noteMeta
	body, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil {
		return parsedNote{Body: content}
	}
	return parsedNote{Meta: meta, Body: string(body)}
}
