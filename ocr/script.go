package ocr

import "unicode"

// DefaultLanguage is always part of a detected language set.
const DefaultLanguage = "eng"

// scriptShare is the fraction of letters a script must exceed to be reported.
const scriptShare = 0.10

// scriptLanguages maps the Indic scripts we recognise to the language code
// the recogniser expects for them, in reporting order.
var scriptLanguages = []struct {
	script *unicode.RangeTable
	code   string
}{
	{unicode.Devanagari, "hin"},
	{unicode.Gujarati, "guj"},
	{unicode.Bengali, "ben"},
	{unicode.Gurmukhi, "pan"},
	{unicode.Oriya, "ori"},
	{unicode.Tamil, "tam"},
	{unicode.Telugu, "tel"},
	{unicode.Kannada, "kan"},
	{unicode.Malayalam, "mal"},
}

// DetectScripts returns the language codes whose script covers more than
// 10% of the letters in text. Combining vowel signs count as letters.
// The result always starts with "eng".
func DetectScripts(text string) []string {
	counts := make([]int, len(scriptLanguages))
	total := 0
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			continue
		}
		total++
		for i, sl := range scriptLanguages {
			if unicode.Is(sl.script, r) {
				counts[i]++
				break
			}
		}
	}

	langs := []string{DefaultLanguage}
	if total == 0 {
		return langs
	}
	for i, sl := range scriptLanguages {
		if float64(counts[i])/float64(total) > scriptShare {
			langs = append(langs, sl.code)
		}
	}
	return langs
}
