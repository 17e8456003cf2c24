package search

import "github.com/poiesic/pagefind/core"

const ellipsis = "..."

// matchSnippet returns the text around span, contextChars characters on
// each side, with ellipses where the window is cut.
func matchSnippet(runes []rune, span core.ExactMatchSpan, contextChars int) string {
	start := max(0, span.Position-contextChars)
	end := min(len(runes), span.Position+span.Length+contextChars)

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(runes) {
		snippet += ellipsis
	}
	return snippet
}

// previewSnippet returns the first previewChars characters of the page.
func previewSnippet(runes []rune, previewChars int) string {
	if len(runes) <= previewChars {
		return string(runes)
	}
	return string(runes[:previewChars]) + ellipsis
}

func snippetFor(runes []rune, spans []core.ExactMatchSpan, contextChars, previewChars int) string {
	if len(spans) > 0 {
		return matchSnippet(runes, spans[0], contextChars)
	}
	return previewSnippet(runes, previewChars)
}
