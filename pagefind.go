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


// Package pagefind locates query text inside a PDF and ranks its pages.
//
// A Finder serves the PDFs of one directory. Each request works on a single
// document: its text is extracted (directly or by OCR), then its pages are
// ranked against the query by embedding similarity and exact matches.
//
//	finder, err := pagefind.Open("/srv/documents")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer finder.Close()
//
//	results, err := finder.Search(ctx, "report.pdf", "annual budget", search.SearchOptions{})
package pagefind

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/pagefind/ai"
	"github.com/poiesic/pagefind/ai/openai"
	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/extraction"
	"github.com/poiesic/pagefind/ocr"
	"github.com/poiesic/pagefind/pdfdoc"
	"github.com/poiesic/pagefind/search"
	"github.com/poiesic/pagefind/storage"
	"github.com/poiesic/pagefind/storage/badger"
	"github.com/poiesic/pagefind/storage/fs"
)

// Finder wires a document store to the extraction and search pipeline.
type Finder struct {
	store    storage.DocumentStore
	cache    storage.ExtractionCache
	provider ai.AIProvider
	library  *pdfdoc.Library
	engine   *ocr.Engine
	selector *extraction.Selector
	searcher *search.Searcher
	logger   *slog.Logger
}

// DocumentInfo describes a stored document without extracting its text.
type DocumentInfo struct {
	Name     string        `json:"name"`
	ID       core.ID       `json:"id"`
	Scanned  bool          `json:"scanned"`
	Metadata core.Metadata `json:"metadata"`
}

// Option configures a Finder.
type Option func(*finderOptions)

type finderOptions struct {
	aiConfig       *ai.Config
	provider       ai.AIProvider
	cacheDir       string
	memoryCache    bool
	poolSize       int
	progress       io.Writer
	extractionOpts []extraction.Option
	searchOpts     []search.Option
	logger         *slog.Logger
}

// WithAIConfig sets the embedding and vision service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *finderOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider supplies a ready AI provider instead of building one from
// the AI config. The Finder closes it on Close.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *finderOptions) {
		o.provider = provider
	}
}

// WithCacheDir stores extraction results in a badger database under dir.
func WithCacheDir(dir string) Option {
	return func(o *finderOptions) {
		o.cacheDir = dir
	}
}

// WithMemoryCache keeps extraction results in memory for the Finder's lifetime.
func WithMemoryCache() Option {
	return func(o *finderOptions) {
		o.memoryCache = true
	}
}

// WithPoolSize sets the number of pages transcribed concurrently.
func WithPoolSize(size int) Option {
	return func(o *finderOptions) {
		o.poolSize = size
	}
}

// WithProgress reports OCR progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *finderOptions) {
		o.progress = w
	}
}

// WithExtractionOptions passes options to the extraction selector.
func WithExtractionOptions(opts ...extraction.Option) Option {
	return func(o *finderOptions) {
		o.extractionOpts = append(o.extractionOpts, opts...)
	}
}

// WithSearchOptions passes options to the searcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *finderOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *finderOptions) {
		o.logger = logger
	}
}

// Open creates a Finder serving the PDFs in dir.
func Open(dir string, opts ...Option) (*Finder, error) {
	options := &finderOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	store, err := fs.NewStore(dir, fs.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	f := &Finder{store: store, logger: logger}
	if err := f.build(options); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (f *Finder) build(options *finderOptions) error {
	var err error

	switch {
	case options.cacheDir != "":
		f.cache, err = badger.NewExtractionCache(options.cacheDir)
	case options.memoryCache:
		f.cache, err = badger.NewMemoryCache()
	}
	if err != nil {
		return err
	}

	f.provider = options.provider
	if f.provider == nil {
		if f.provider, err = openai.NewProvider(options.aiConfig); err != nil {
			return err
		}
	}

	if f.library, err = pdfdoc.New(pdfdoc.WithLogger(f.logger)); err != nil {
		return err
	}

	engineOpts := []ocr.Option{ocr.WithLogger(f.logger)}
	if options.poolSize > 0 {
		engineOpts = append(engineOpts, ocr.WithPoolSize(options.poolSize))
	}
	if options.progress != nil {
		engineOpts = append(engineOpts, ocr.WithProgress(options.progress))
	}
	if f.engine, err = ocr.NewEngine(f.library, f.provider.Transcriber(), engineOpts...); err != nil {
		return err
	}

	selectorOpts := []extraction.Option{extraction.WithLogger(f.logger)}
	if f.cache != nil {
		selectorOpts = append(selectorOpts, extraction.WithCache(f.cache))
	}
	selectorOpts = append(selectorOpts, options.extractionOpts...)
	if f.selector, err = extraction.NewSelector(f.library, f.engine, selectorOpts...); err != nil {
		return err
	}

	timeout := ai.DefaultEmbeddingTimeout
	if options.aiConfig != nil && options.aiConfig.EmbeddingTimeout > 0 {
		timeout = options.aiConfig.EmbeddingTimeout
	}
	gateway, err := ai.NewGateway(f.provider.Embedder(),
		ai.WithTimeout(timeout),
		ai.WithGatewayLogger(f.logger))
	if err != nil {
		return err
	}

	searchOpts := append([]search.Option{search.WithLogger(f.logger)}, options.searchOpts...)
	f.searcher, err = search.NewSearcher(gateway, searchOpts...)
	return err
}

// List returns the names of the documents the Finder serves.
func (f *Finder) List(ctx context.Context) ([]string, error) {
	return f.store.List(ctx)
}

// Info returns a document's metadata and whether it looks scanned.
func (f *Finder) Info(ctx context.Context, name string) (*DocumentInfo, error) {
	doc, err := f.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	scanned, err := f.engine.IsScanned(ctx, doc)
	if err != nil {
		return nil, err
	}
	meta, err := f.library.Metadata(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &DocumentInfo{
		Name:     doc.Name,
		ID:       doc.ID,
		Scanned:  scanned,
		Metadata: meta,
	}, nil
}

// Process extracts the text of a document.
func (f *Finder) Process(ctx context.Context, name string) (*core.DocumentExtractionResult, error) {
	doc, err := f.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return f.selector.Extract(ctx, doc)
}

// Search extracts a document and ranks its pages against query.
//
// Besides context errors, only storage.ErrNotFound, storage.ErrInvalidName
// and core.ErrDocumentUnreadable reach the caller. A document with no text
// yields an empty result set carrying a message.
func (f *Finder) Search(ctx context.Context, name, query string, opts search.SearchOptions) (*core.ResultSet, error) {
	result, err := f.Process(ctx, name)
	if err != nil {
		return nil, err
	}
	return f.searcher.Search(ctx, result.Pages, query, opts)
}

// Close releases the OCR pool, the AI provider and the cache.
func (f *Finder) Close() error {
	var errs []error

	if f.engine != nil {
		f.engine.Release()
	}

	// Close AI provider first
	if f.provider != nil {
		if err := f.provider.Close(); err != nil {
			f.logger.Error("error closing AI provider", "err", err)
		}
	}

	if f.cache != nil {
		if err := f.cache.Close(); err != nil {
			f.logger.Error("error closing extraction cache", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
