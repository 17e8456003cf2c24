package openai

import "strings"

// cleanTranscription strips the wrapping some vision models add around their
// answer and maps the no-text marker to the empty string.
func cleanTranscription(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (which may carry a language tag) and the closing fence.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	if strings.EqualFold(s, noTextMarker) {
		return ""
	}
	return s
}
