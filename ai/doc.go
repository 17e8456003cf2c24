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


// Package ai provides abstractions for the model services pagefind relies on.
//
// This package defines interfaces for text embeddings and page transcription
// (OCR through a vision model). Ranking and extraction depend on these
// abstractions rather than on concrete providers.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Transcriber: Recognises the text on a page image
//   - AIProvider: Aggregates AI services for convenient initialization
//
// Gateway wraps any Embedder with a timeout, bounded retries and reply
// validation. Callers that hold a Gateway only ever see one failure kind,
// core.ErrEmbeddingUnavailable, and never receive placeholder vectors.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types. Test utility constructors (mock.NewMockEmbedder,
// mock.NewMockTranscriber) return CONCRETE types so tests can inject
// behaviour and inspect call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	gateway, err := ai.NewGateway(provider.Embedder(), ai.WithTimeout(config.EmbeddingTimeout))
//	vectors, err := gateway.EmbedTexts(ctx, []string{"page one", "page two", "query"})
//	if errors.Is(err, core.ErrEmbeddingUnavailable) {
//	    // fall back to exact matching
//	}
package ai
