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


// Package storage provides the storage abstraction layer for pagefind.
//
// Two concerns live here:
//
//   - DocumentStore: read-only access to the documents being searched
//   - ExtractionCache: extracted page text keyed by document content ID
//
// The cache is not a search index. It stores what the extraction selector
// produced so repeated searches over one document skip PDF parsing and OCR;
// embeddings are always computed per request.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	store, err := fs.NewStore("/srv/documents")    // storage.DocumentStore
//	cache, err := badger.NewExtractionCache(path)  // storage.ExtractionCache
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	cache, err := badger.NewMemoryCache()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// # Serialization
//
// Cached results are encoded with mus-go. The encoding starts with a format
// version so incompatible entries are rejected rather than misread.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
