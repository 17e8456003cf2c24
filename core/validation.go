// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidatePage validates a Page according to domain rules.
//
// Validation rules:
//   - Number must be 1 or greater
//   - Confidence must be within [0,1]
//   - Source must be SourceDirect or SourceOCR
//
// NOT validated:
//   - Text (empty pages are filtered by the extractor, not rejected)
func ValidatePage(page *Page) error {
	if page == nil {
		return fmt.Errorf("%w: page is nil", ErrInvalidPage)
	}

	if page.Number < 1 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidPage, ErrInvalidPageNumber, page.Number)
	}

	if page.Confidence < 0 || page.Confidence > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidPage, ErrInvalidConfidence, page.Confidence)
	}

	if page.Source != SourceDirect && page.Source != SourceOCR {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidPage, ErrInvalidSource, page.Source)
	}

	return nil
}

// ValidateSpan checks that a span lies inside text and that MatchedText is
// exactly the characters it covers.
func ValidateSpan(span ExactMatchSpan, text string) error {
	if span.Length < 1 || span.Position < 0 {
		return fmt.Errorf("%w: position %d length %d", ErrInvalidSpan, span.Position, span.Length)
	}
	runes := []rune(text)
	end := span.Position + span.Length
	if end > len(runes) {
		return fmt.Errorf("%w: end %d beyond text length %d", ErrInvalidSpan, end, len(runes))
	}
	if string(runes[span.Position:end]) != span.MatchedText {
		return fmt.Errorf("%w: matched text differs from page text", ErrInvalidSpan)
	}
	return nil
}

// IsBlank reports whether text has no visible content.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// CharCount returns the number of characters (code points) in text.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}
