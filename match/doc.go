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


// Package match implements unicode-safe exact substring search.
//
// Matching is case-insensitive, NFC-normalising and tolerant of zero-width
// characters (U+200B, U+200C, U+200D, U+FEFF) appearing between any two
// consecutive query characters in the searched text. Spans are reported in
// characters of the original, unmodified text so that callers can slice it
// directly:
//
//	spans := match.Scan("A\u200BB\u200CC", "abc")
//	// spans[0] == core.ExactMatchSpan{Position: 0, Length: 5, MatchedText: "A\u200BB\u200CC"}
//
// A query that is empty, or made only of zero-width characters, matches
// nothing and is never an error.
package match
