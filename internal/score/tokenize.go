package score

import (
	"regexp"
	"strings"
)

// splitRe tears a string into candidate tokens on anything that isn't a
// letter or digit: whitespace, dashes, underscores, slashes, punctuation.
var splitRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// stopWords is the fixed closed list dropped before scoring.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "but": true, "nor": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "being": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "by": true, "for": true,
	"with": true, "about": true, "against": true, "between": true, "into": true, "through": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "as": true, "if": true, "then": true, "than": true,
	"do": true, "does": true, "did": true, "not": true, "no": true,
	"can": true, "could": true, "will": true, "would": true, "should": true, "shall": true,
	"has": true, "have": true, "had": true,
}

// Tokenize lowercases s, strips punctuation, splits on non-alphanumeric
// runs, drops stop words and tokens shorter than 2 characters, and stems
// what remains with a fixed rule-based suffix stripper.
func Tokenize(s string) []string {
	raw := splitRe.FindAllString(strings.ToLower(s), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) < 2 {
			continue
		}
		if stopWords[t] {
			continue
		}
		tokens = append(tokens, stem(t))
	}
	return tokens
}

// stem applies a fixed, rule-based suffix stripper: ies->y, ied->y,
// consonant+ed->consonant, then strip {ing, tion, ment, ness, able, ible},
// then a trailing plain "s".
func stem(t string) string {
	switch {
	case strings.HasSuffix(t, "ies") && len(t) > 4:
		return t[:len(t)-3] + "y"
	case strings.HasSuffix(t, "ied") && len(t) > 4:
		return t[:len(t)-3] + "y"
	case strings.HasSuffix(t, "ed") && len(t) > 4 && isConsonant(rune(t[len(t)-3])):
		return t[:len(t)-2]
	}

	for _, suffix := range []string{"tion", "ment", "ness", "able", "ible", "ing"} {
		if strings.HasSuffix(t, suffix) && len(t)-len(suffix) >= 3 {
			return t[:len(t)-len(suffix)]
		}
	}

	if strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss") && len(t) > 3 {
		return t[:len(t)-1]
	}
	return t
}

func isConsonant(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	default:
		return r >= 'a' && r <= 'z'
	}
}
