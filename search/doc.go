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


// Package search ranks the pages of one document against a query.
//
// The Searcher has two modes:
//
// Hybrid mode embeds every page and the query in a single batched call,
// drops pages whose cosine similarity does not exceed the relevance floor,
// and orders the survivors with exact matches first, then by similarity.
//
// Exact-match mode scores pages by match density only:
//
//	score = matchCount / pageLength * 1000
//
// and keeps pages with at least one match, ordered by match count then score.
// It runs when the caller asks for it or when embeddings are unavailable,
// so a failing embedding service degrades ranking instead of failing it.
//
// Both modes run the exact-match scan (package match) concurrently with the
// embedding call, build snippets around the first match, and return at most
// MaxResults results. Sorting is stable, so equal keys keep page order.
package search
