package dispatch

import "strings"

// neutralizeTags defangs XML-like tags and known LLM-specific instruction-
// override patterns in document bodies before they reach assistant_text,
// mirroring the teacher's neutralizeTags in internal/mcp/server.go. Baseline
// corpus content is fetched from a third-party git host and is therefore
// untrusted the same way the teacher's vault notes are.
func neutralizeTags(text string) string {
	tags := []string{
		"canon-context", "baseline-context", "system-reminder",
		"system", "instructions", "tool_result", "tool_use", "important",
	}

	type literalPattern struct {
		pattern     string
		replacement string
	}
	llmPatterns := []literalPattern{
		{"[inst]", "[[inst]]"},
		{"[/inst]", "[[/inst]]"},
		{"<<sys>>", "[[sys]]"},
		{"<</sys>>", "[[/sys]]"},
		{"<![cdata[", "[CDATA["},
		{"]]>", "]]&gt;"},
	}

	lower := strings.ToLower(text)
	var result strings.Builder
	result.Grow(len(text))
	i := 0
	for i < len(text) {
		matched := false

		for _, lp := range llmPatterns {
			if i+len(lp.pattern) <= len(text) && lower[i:i+len(lp.pattern)] == lp.pattern {
				result.WriteString(lp.replacement)
				i += len(lp.pattern)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		for _, tag := range tags {
			closeTag := "</" + tag + ">"
			openTag := "<" + tag + ">"
			openTagAttr := "<" + tag + " "
			selfClose := "<" + tag + "/>"
			switch {
			case i+len(closeTag) <= len(text) && lower[i:i+len(closeTag)] == closeTag:
				result.WriteString("[/" + tag + "]")
				i += len(closeTag)
				matched = true
			case i+len(selfClose) <= len(text) && lower[i:i+len(selfClose)] == selfClose:
				result.WriteString("[" + tag + "/]")
				i += len(selfClose)
				matched = true
			case i+len(openTag) <= len(text) && lower[i:i+len(openTag)] == openTag:
				result.WriteString("[" + tag + "]")
				i += len(openTag)
				matched = true
			case i+len(openTagAttr) <= len(text) && lower[i:i+len(openTagAttr)] == openTagAttr:
				result.WriteString("[" + tag + " ")
				i += len(openTagAttr)
				matched = true
			}
			if matched {
				break
			}
		}
		if !matched {
			result.WriteByte(text[i])
			i++
		}
	}
	return result.String()
}
