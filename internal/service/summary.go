package service

import "strings"

// summaryTargetChars bounds the heuristic document summary
const summaryTargetChars = 200

// Summarize produces a short extractive summary: the first ~200 characters
// of whitespace-normalized text, cut at the last sentence terminator inside
// that window when one exists, otherwise hard-truncated with an ellipsis.
func Summarize(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	if clean == "" {
		return ""
	}
	runes := []rune(clean)
	if len(runes) <= summaryTargetChars {
		return clean
	}

	// Truncate on a rune boundary so multi-byte text stays valid UTF-8.
	window := runes[:summaryTargetChars]
	if cut := lastTerminator(window); cut > 0 {
		return string(window[:cut])
	}
	return strings.TrimSpace(string(window)) + "..."
}

// lastTerminator returns the rune offset just past the last sentence
// terminator in s, or 0 when s contains none.
func lastTerminator(s []rune) int {
	cut := 0
	for i, r := range s {
		if isSentenceTerminator(r) {
			cut = i + 1
		}
	}
	return cut
}
