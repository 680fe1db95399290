package normalize

import "strings"

// StripFence removes a markdown code fence when text (ignoring surrounding
// whitespace) starts with opener and ends with a closing fence. The match is
// prefix/suffix only; fences elsewhere are left alone. The returned payload
// is trimmed. When no fence matches, text is returned unchanged.
func StripFence(text, opener string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len(opener)+len(closingFence) {
		return text, false
	}
	if !strings.HasPrefix(trimmed, opener) || !strings.HasSuffix(trimmed, closingFence) {
		return text, false
	}
	inner := trimmed[len(opener) : len(trimmed)-len(closingFence)]
	return strings.TrimSpace(inner), true
}

// BraceSpan returns the greedy span from the first '{' to the last '}'.
// It returns "" when no such span exists. Multiple independent objects or
// braces inside string literals can yield a span that does not parse.
func BraceSpan(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return ""
	}
	return text[start : end+1]
}
