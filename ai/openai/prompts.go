package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/pagefind/ai"
)

// noTextMarker is what the model is told to answer for a page without text.
const noTextMarker = "NO_TEXT"

const transcriptionPromptTemplate = `You are an OCR engine. Transcribe all text visible in the page image exactly as written.

Rules:
- Output ONLY the transcribed text. Do not include any preamble, explanation, or commentary.
- Preserve the original script and spelling. Do not translate or transliterate.
- Keep reading order: top to bottom, left to right for each column.
- Separate paragraphs with a blank line. Do not add markdown formatting.
- The page is expected to contain text in: %s.
- If the page contains no legible text, answer exactly %s.`

// buildTranscriptionPrompt creates the system prompt for the given language codes.
func buildTranscriptionPrompt(languages []string) string {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	names := make([]string, 0, len(languages))
	for _, code := range languages {
		names = append(names, ai.LanguageName(code))
	}
	return fmt.Sprintf(transcriptionPromptTemplate, strings.Join(names, ", "), noTextMarker)
}
