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

import "errors"

// Processing error kinds. Collaborator failures are translated into one of
// these at the package boundary that first observes them.
var (
	// ErrDocumentUnreadable indicates the document could not be opened or parsed.
	// It is fatal for the request and no partial result is returned.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrEmbeddingUnavailable indicates the embedding provider failed or timed out.
	// Ranking recovers from it by switching to exact-match-only mode.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrOCRFailure indicates OCR failed for a single page.
	// The page is dropped; the rest of the document is still processed.
	ErrOCRFailure = errors.New("ocr failure")
)

// Domain validation errors
var (
	// ErrInvalidPage indicates a Page failed validation.
	ErrInvalidPage = errors.New("invalid page")

	// ErrInvalidPageNumber indicates a page number below 1.
	ErrInvalidPageNumber = errors.New("page number must be positive")

	// ErrInvalidConfidence indicates a confidence outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// ErrInvalidSource indicates an unknown Source value.
	ErrInvalidSource = errors.New("invalid page source")

	// ErrInvalidSpan indicates an ExactMatchSpan that does not fit its page.
	ErrInvalidSpan = errors.New("invalid match span")
)
