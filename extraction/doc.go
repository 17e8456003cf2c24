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


// Package extraction decides, per document, which text extraction strategy
// produced usable text.
//
// The Selector runs a small state machine for each document:
//
//	classify ──scanned──▶ detect languages ──▶ OCR ─────────────▶ done (ocr)
//	    │
//	    └──has text──▶ direct extraction ──▶ validate ──ok──▶ done (direct_text)
//	                                            │
//	                                            └──too little text──▶ OCR ──▶ done (ocr_fallback)
//
// Validation rejects a direct extraction when it yields no pages or when the
// average page holds fewer than MinAverageChars characters. Short documents
// with a genuine text layer therefore also go through OCR; that is a known
// false positive of the heuristic.
//
// If the fallback OCR produces nothing while the direct pass had some text,
// the direct pages are kept and the method is still ocr_fallback.
//
// Pages leaving the selector are trimmed, non-blank, unique by page number
// and sorted ascending.
//
// # Errors
//
// The only fatal outcome is core.ErrDocumentUnreadable. OCR failures on
// individual pages, or on every page, leave the result empty rather than
// failing it. Collaborator errors
// are reported with %v so their concrete types do not reach callers.
// Metadata and cache failures are logged and otherwise ignored.
package extraction
