package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/storage"
)

// DefaultMinAverageChars is the average page length below which direct
// extraction is considered to have failed.
const DefaultMinAverageChars = 50

// defaultLanguages is used when language detection fails.
var defaultLanguages = []string{"eng"}

// Selector chooses between direct text extraction and OCR for a document.
// It is safe for concurrent use; each call to Extract is independent.
type Selector struct {
	library         DocumentLibrary
	ocr             OCR
	cache           storage.ExtractionCache
	minAverageChars int
	logger          *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector) error

// WithMinAverageChars sets the acceptance threshold for direct extraction.
// Default is DefaultMinAverageChars.
func WithMinAverageChars(n int) Option {
	return func(s *Selector) error {
		if n < 0 {
			return fmt.Errorf("min average chars must be non-negative, got %d", n)
		}
		s.minAverageChars = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCache stores extraction results by document ID and reuses them.
func WithCache(cache storage.ExtractionCache) Option {
	return func(s *Selector) error {
		s.cache = cache
		return nil
	}
}

// NewSelector creates a Selector over the given collaborators.
func NewSelector(library DocumentLibrary, ocr OCR, opts ...Option) (*Selector, error) {
	if library == nil {
		return nil, ErrLibraryRequired
	}
	if ocr == nil {
		return nil, ErrOCRRequired
	}

	s := &Selector{
		library:         library,
		ocr:             ocr,
		minAverageChars: DefaultMinAverageChars,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "extraction")
	return s, nil
}

// Extract produces the pages of doc using the best available strategy.
// An empty Pages slice means no strategy found any text; it is not an error.
func (s *Selector) Extract(ctx context.Context, doc core.Document) (*core.DocumentExtractionResult, error) {
	if cached := s.lookup(ctx, doc); cached != nil {
		return cached, nil
	}

	scanned, err := s.ocr.IsScanned(ctx, doc)
	if err != nil {
		return nil, unreadable(ctx, doc, err)
	}

	var result *core.DocumentExtractionResult
	if scanned {
		result, err = s.extractScanned(ctx, doc)
	} else {
		result, err = s.extractText(ctx, doc)
	}
	if err != nil {
		return nil, err
	}

	result.ID = doc.ID
	result.Metadata = s.metadata(ctx, doc)
	s.logger.Info("extracted document",
		"doc", doc.Name,
		"method", result.Method,
		"pages", len(result.Pages),
		"languages", result.DetectedLanguages)

	s.store(ctx, result)
	return result, nil
}

func (s *Selector) extractScanned(ctx context.Context, doc core.Document) (*core.DocumentExtractionResult, error) {
	languages := s.detectLanguages(ctx, doc)
	pages, err := s.runOCR(ctx, doc, languages)
	if err != nil {
		return nil, err
	}
	return &core.DocumentExtractionResult{
		Pages:             pages,
		Method:            core.MethodOCR,
		DetectedLanguages: languages,
	}, nil
}

func (s *Selector) extractText(ctx context.Context, doc core.Document) (*core.DocumentExtractionResult, error) {
	raw, err := s.library.ExtractDirect(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// A broken text layer is handled like an empty one.
		s.logger.Warn("direct extraction failed", "doc", doc.Name, "err", err)
		raw = nil
	}
	direct := s.normalize(doc, raw)

	if s.acceptable(direct) {
		return &core.DocumentExtractionResult{
			Pages:             direct,
			Method:            core.MethodDirectText,
			DetectedLanguages: []string{},
		}, nil
	}

	s.logger.Info("direct extraction rejected, falling back to ocr",
		"doc", doc.Name,
		"pages", len(direct),
		"average_chars", averageChars(direct),
		"min_average_chars", s.minAverageChars)

	languages := s.detectLanguages(ctx, doc)
	ocrPages, err := s.runOCR(ctx, doc, languages)
	if err != nil {
		if ctx.Err() != nil || len(direct) == 0 {
			return nil, err
		}
		s.logger.Warn("fallback ocr could not read document, keeping direct text", "doc", doc.Name, "err", err)
	}

	// Direct text survives an empty OCR pass; the method still records the fallback.
	pages := ocrPages
	if len(pages) == 0 && len(direct) > 0 {
		s.logger.Info("fallback ocr found no text, keeping direct text", "doc", doc.Name)
		pages = direct
	}

	return &core.DocumentExtractionResult{
		Pages:             pages,
		Method:            core.MethodOCRFallback,
		DetectedLanguages: languages,
	}, nil
}

// runOCR returns the normalised OCR pages of doc. Only context errors and
// core.ErrDocumentUnreadable are returned; any other OCR failure is logged
// and yields no pages.
func (s *Selector) runOCR(ctx context.Context, doc core.Document, languages []string) ([]core.Page, error) {
	pages, err := s.ocr.ExtractViaOCR(ctx, doc, languages)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, core.ErrDocumentUnreadable) {
			return nil, unreadable(ctx, doc, err)
		}
		s.logger.Warn("ocr failed, no text recovered", "doc", doc.Name, "err", err)
		return []core.Page{}, nil
	}
	return s.normalize(doc, pages), nil
}

// acceptable reports whether direct pages carry enough text to skip OCR.
func (s *Selector) acceptable(pages []core.Page) bool {
	if len(pages) == 0 {
		return false
	}
	return averageChars(pages) >= float64(s.minAverageChars)
}

func averageChars(pages []core.Page) float64 {
	if len(pages) == 0 {
		return 0
	}
	total := 0
	for _, p := range pages {
		total += core.CharCount(p.Text)
	}
	return float64(total) / float64(len(pages))
}

func (s *Selector) detectLanguages(ctx context.Context, doc core.Document) []string {
	languages, err := s.ocr.DetectLanguages(ctx, doc)
	if err != nil || len(languages) == 0 {
		if err != nil {
			s.logger.Warn("language detection failed, using default", "doc", doc.Name, "err", err)
		}
		return slices.Clone(defaultLanguages)
	}
	return languages
}

// normalize trims pages, drops blank and invalid ones, sorts by page number
// and keeps the first page seen for each number.
func (s *Selector) normalize(doc core.Document, pages []core.Page) []core.Page {
	out := make([]core.Page, 0, len(pages))
	for _, p := range pages {
		p.Text = strings.TrimSpace(p.Text)
		if p.Text == "" {
			continue
		}
		if err := core.ValidatePage(&p); err != nil {
			s.logger.Warn("dropping invalid page", "doc", doc.Name, "page", p.Number, "err", err)
			continue
		}
		out = append(out, p)
	}

	slices.SortStableFunc(out, func(a, b core.Page) int { return a.Number - b.Number })
	return slices.CompactFunc(out, func(a, b core.Page) bool {
		if a.Number == b.Number {
			s.logger.Warn("dropping duplicate page", "doc", doc.Name, "page", b.Number)
			return true
		}
		return false
	})
}

func (s *Selector) metadata(ctx context.Context, doc core.Document) core.Metadata {
	meta, err := s.library.Metadata(ctx, doc)
	if err != nil {
		s.logger.Warn("reading metadata failed", "doc", doc.Name, "err", err)
		return core.Metadata{}
	}
	return meta
}

func (s *Selector) lookup(ctx context.Context, doc core.Document) *core.DocumentExtractionResult {
	if s.cache == nil {
		return nil
	}
	result, err := s.cache.Get(ctx, doc.ID)
	if err != nil {
		s.logger.Warn("cache lookup failed", "doc", doc.Name, "err", err)
		return nil
	}
	if result != nil {
		s.logger.Debug("using cached extraction", "doc", doc.Name, "id", doc.ID)
	}
	return result
}

func (s *Selector) store(ctx context.Context, result *core.DocumentExtractionResult) {
	if s.cache == nil || len(result.Pages) == 0 {
		return
	}
	if err := s.cache.Put(ctx, result); err != nil {
		s.logger.Warn("cache store failed", "id", result.ID, "err", err)
	}
}

// unreadable translates a collaborator error into core.ErrDocumentUnreadable.
// Context errors pass through untouched.
func unreadable(ctx context.Context, doc core.Document, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", core.ErrDocumentUnreadable, doc.Name, err)
}
