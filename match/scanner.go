package match

import (
	"unicode"

	"github.com/poiesic/pagefind/core"
	"golang.org/x/text/unicode/norm"
)

// isZeroWidth reports whether r is one of the invisible joiners that OCR and
// script-shaping pipelines inject inside otherwise contiguous text.
func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', // zero-width space
		'\u200C', // zero-width non-joiner
		'\u200D', // zero-width joiner
		'\uFEFF': // byte-order mark / zero-width no-break space
		return true
	}
	return false
}

// fold maps r to the smallest rune of its simple case-folding orbit, so that
// two runes are case-insensitively equal iff their folds are equal.
func fold(r rune) rune {
	smallest := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < smallest {
			smallest = f
		}
	}
	return smallest
}

// unit is one normalised, folded rune of the haystack together with the
// character span of the original segment it came from.
type unit struct {
	r     rune
	start int  // segment start, in characters of the original text
	end   int  // segment end (exclusive)
	first bool // first rune of its segment
	zw    bool
}

// Pattern is a compiled query. It is immutable and safe for concurrent use.
type Pattern struct {
	query []rune
}

// Compile prepares query for repeated scanning.
// Zero-width characters in the query are ignored; the rest is NFC-normalised
// and case-folded. A query with no remaining characters never matches.
func Compile(query string) *Pattern {
	normalized := norm.NFC.String(query)
	runes := make([]rune, 0, len(normalized))
	for _, r := range normalized {
		if isZeroWidth(r) {
			continue
		}
		runes = append(runes, fold(r))
	}
	return &Pattern{query: runes}
}

// Empty reports whether the pattern can never match.
func (p *Pattern) Empty() bool {
	return len(p.query) == 0
}

// FindAll returns every non-overlapping occurrence of the pattern in text,
// in position order. Any number of zero-width characters may sit between two
// consecutive query characters. Spans are expressed in characters of the
// original text. A match starts and ends on segment boundaries, so a base
// character never matches without its combining marks.
func (p *Pattern) FindAll(text string) []core.ExactMatchSpan {
	if p.Empty() || text == "" {
		return nil
	}

	runes := []rune(text)
	units := segment(runes)

	var spans []core.ExactMatchSpan
	for i := 0; i < len(units); {
		u := units[i]
		if u.zw || !u.first || u.r != p.query[0] {
			i++
			continue
		}

		j, k := i, 0
		for j < len(units) && k < len(p.query) {
			if units[j].zw && k > 0 {
				j++
				continue
			}
			if units[j].r != p.query[k] {
				break
			}
			j++
			k++
		}
		// A match covers whole segments: "e" never matches "é", whether the
		// accent is precomposed or a combining mark.
		if k < len(p.query) || (j < len(units) && !units[j].first) {
			i++
			continue
		}

		start, end := u.start, units[j-1].end
		spans = append(spans, core.ExactMatchSpan{
			Position:    start,
			Length:      end - start,
			MatchedText: string(runes[start:end]),
		})

		// Resume after the last segment touched by the match.
		i = j
		for i < len(units) && units[i].start < end {
			i++
		}
	}
	return spans
}

// Count returns the number of non-overlapping occurrences in text.
func (p *Pattern) Count(text string) int {
	return len(p.FindAll(text))
}

// segment splits runes into base-plus-combining-marks segments, normalises
// each one to NFC and flattens the result into folded units.
func segment(runes []rune) []unit {
	units := make([]unit, 0, len(runes))
	for s := 0; s < len(runes); {
		e := s + 1
		for e < len(runes) && unicode.Is(unicode.M, runes[e]) {
			e++
		}
		idx := 0
		for _, r := range norm.NFC.String(string(runes[s:e])) {
			units = append(units, unit{
				r:     fold(r),
				start: s,
				end:   e,
				first: idx == 0,
				zw:    isZeroWidth(r),
			})
			idx++
		}
		s = e
	}
	return units
}

// Scan finds all occurrences of query in text. An empty query yields no spans.
func Scan(text, query string) []core.ExactMatchSpan {
	return Compile(query).FindAll(text)
}

// Contains reports whether query occurs in text at least once.
func Contains(text, query string) bool {
	return len(Scan(text, query)) > 0
}
