package extraction

import (
	"context"

	"github.com/poiesic/pagefind/core"
)

// DocumentLibrary reads the embedded text layer of a document.
type DocumentLibrary interface {
	// ExtractDirect returns one page per physical page, in any order.
	// Pages may be blank; the selector drops them.
	ExtractDirect(ctx context.Context, doc core.Document) ([]core.Page, error)

	// Metadata returns page count, file size and document info fields.
	Metadata(ctx context.Context, doc core.Document) (core.Metadata, error)
}

// OCR recognises text from page images.
type OCR interface {
	// IsScanned reports whether the document has no usable text layer.
	IsScanned(ctx context.Context, doc core.Document) (bool, error)

	// DetectLanguages guesses recognition languages from a small sample.
	DetectLanguages(ctx context.Context, doc core.Document) ([]string, error)

	// ExtractViaOCR transcribes every page. Failed pages are omitted.
	ExtractViaOCR(ctx context.Context, doc core.Document, languages []string) ([]core.Page, error)
}
