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


package ocr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pagefind/ai"
	"github.com/poiesic/pagefind/core"
)

const (
	// sampleCharsPerPage caps the text taken from each sampled page.
	sampleCharsPerPage = 1000

	defaultSamplePages = 2
)

// PageSource is the document access the Engine needs.
type PageSource interface {
	// HasTextLayer reports whether the document carries usable embedded text.
	HasTextLayer(ctx context.Context, doc core.Document) (bool, error)

	// SampleText returns the direct text of at most the first n pages.
	SampleText(ctx context.Context, doc core.Document, n int) ([]string, error)

	// PageImages returns one raster per page, ordered by page number.
	PageImages(ctx context.Context, doc core.Document) ([]ai.PageImage, error)
}

// Engine classifies documents, detects their languages and transcribes
// their pages concurrently on a bounded worker pool.
type Engine struct {
	source      PageSource
	transcriber ai.Transcriber
	pool        *ants.Pool
	samplePages int
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets the number of pages transcribed at once.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if e.pool != nil {
			e.pool.Release()
		}
		e.pool = pool
		return nil
	}
}

// WithSamplePages sets how many leading pages feed language detection.
func WithSamplePages(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("sample pages must be positive, got %d", n)
		}
		e.samplePages = n
		return nil
	}
}

// WithProgress reports per-page transcription progress to w.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) error {
		e.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an OCR engine. Call Release when done.
func NewEngine(source PageSource, transcriber ai.Transcriber, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if transcriber == nil {
		return nil, ErrTranscriberRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		source:      source,
		transcriber: transcriber,
		pool:        pool,
		samplePages: defaultSamplePages,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.Release()
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "ocr")
	return e, nil
}

// Release frees the worker pool. The engine must not be used afterwards.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// PoolSize returns the number of concurrent transcriptions.
func (e *Engine) PoolSize() int {
	return e.pool.Cap()
}

// IsScanned reports whether doc lacks a usable text layer.
func (e *Engine) IsScanned(ctx context.Context, doc core.Document) (bool, error) {
	hasText, err := e.source.HasTextLayer(ctx, doc)
	if err != nil {
		return false, err
	}
	e.logger.Debug("classified document", "doc", doc.Name, "scanned", !hasText)
	return !hasText, nil
}

// DetectLanguages guesses the languages of doc from a small sample: the
// direct text of the first pages, or an English transcription of the first
// page image when there is no direct text. The result always contains "eng".
func (e *Engine) DetectLanguages(ctx context.Context, doc core.Document) ([]string, error) {
	texts, err := e.source.SampleText(ctx, doc, e.samplePages)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, text := range texts {
		runes := []rune(text)
		if len(runes) > sampleCharsPerPage {
			runes = runes[:sampleCharsPerPage]
		}
		sb.WriteString(string(runes))
		sb.WriteByte('\n')
	}
	sample := sb.String()

	if core.IsBlank(sample) {
		sample = e.sampleFirstImage(ctx, doc)
	}

	langs := DetectScripts(sample)
	e.logger.Debug("detected languages", "doc", doc.Name, "languages", langs)
	return langs, nil
}

func (e *Engine) sampleFirstImage(ctx context.Context, doc core.Document) string {
	images, err := e.source.PageImages(ctx, doc)
	if err != nil || len(images) == 0 {
		e.logger.Debug("no page image to sample", "doc", doc.Name, "err", err)
		return ""
	}
	t, err := e.transcriber.Transcribe(ctx, images[0], []string{DefaultLanguage})
	if err != nil {
		e.logger.Warn("language sample transcription failed", "doc", doc.Name, "err", err)
		return ""
	}
	return t.Text
}

type pageResult struct {
	page core.Page
	err  error
}

// ExtractViaOCR transcribes every page image of doc in parallel and returns
// the non-empty pages in ascending page order. A page whose transcription
// fails is logged and dropped; if every page fails the result is empty.
func (e *Engine) ExtractViaOCR(ctx context.Context, doc core.Document, languages []string) ([]core.Page, error) {
	images, err := e.source.PageImages(ctx, doc)
	if err != nil {
		return nil, err
	}
	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}

	var tracker *ProgressTracker
	if e.progress != nil {
		tracker = NewProgressTracker(e.progress, "OCR "+doc.Name, len(images), 1)
		tracker.Start()
	}

	// Scatter: each worker owns one slot, so results need no locking.
	results := make([]pageResult, len(images))
	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = e.transcribePage(ctx, img, languages)
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			results[i] = pageResult{err: fmt.Errorf("%w: page %d: %v", core.ErrOCRFailure, img.PageNumber, err)}
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Gather.
	pages := make([]core.Page, 0, len(results))
	failures := 0
	for _, res := range results {
		if res.err != nil {
			failures++
			e.logger.Warn("dropping page", "doc", doc.Name, "err", res.err)
			continue
		}
		if core.IsBlank(res.page.Text) {
			continue
		}
		pages = append(pages, res.page)
	}
	slices.SortStableFunc(pages, func(a, b core.Page) int { return a.Number - b.Number })

	if failures > 0 && failures == len(results) {
		e.logger.Error("ocr failed on every page", "doc", doc.Name, "pages", len(results))
	}
	e.logger.Info("ocr complete", "doc", doc.Name, "pages", len(pages), "failed", failures, "languages", languages)
	return pages, nil
}

// transcribePage transcribes one page. A blank transcription under a wider
// language set is retried with DefaultLanguage alone.
func (e *Engine) transcribePage(ctx context.Context, img ai.PageImage, languages []string) pageResult {
	t, err := e.transcriber.Transcribe(ctx, img, languages)
	if err != nil {
		return pageResult{err: fmt.Errorf("%w: page %d: %v", core.ErrOCRFailure, img.PageNumber, err)}
	}
	if core.IsBlank(t.Text) && !slices.Equal(languages, []string{DefaultLanguage}) && ctx.Err() == nil {
		e.logger.Debug("blank page, retrying with default language",
			"page", img.PageNumber,
			"languages", languages)
		if t, err = e.transcriber.Transcribe(ctx, img, []string{DefaultLanguage}); err != nil {
			return pageResult{err: fmt.Errorf("%w: page %d: %v", core.ErrOCRFailure, img.PageNumber, err)}
		}
	}
	return pageResult{page: core.Page{
		Number:     img.PageNumber,
		Text:       strings.TrimSpace(t.Text),
		Confidence: min(max(t.Confidence, 0), 1),
		Source:     core.SourceOCR,
	}}
}
