package pdfdoc

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/pagefind/core"
)

// ExtractDirect reads the embedded text layer of every page.
// Pages that cannot be decoded are skipped; pages with no text are returned
// with empty Text so that page numbers stay physical.
func (l *Library) ExtractDirect(ctx context.Context, doc core.Document) ([]core.Page, error) {
	return l.readPages(ctx, doc, 0)
}

// SampleText returns the direct text of at most the first n pages.
func (l *Library) SampleText(ctx context.Context, doc core.Document, n int) ([]string, error) {
	pages, err := l.readPages(ctx, doc, n)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		texts = append(texts, p.Text)
	}
	return texts, nil
}

// HasTextLayer reports whether any of the first probe pages declares fonts
// and carries more than the probe minimum of characters.
func (l *Library) HasTextLayer(ctx context.Context, doc core.Document) (found bool, err error) {
	err = l.withReader(doc, func(r *pdf.Reader) error {
		n := min(r.NumPage(), l.probePages)
		fonts := make(map[string]*pdf.Font)
		for i := 1; i <= n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := r.Page(i)
			if p.V.IsNull() {
				continue
			}
			names := p.Fonts()
			if len(names) == 0 {
				l.logger.Debug("page declares no fonts", "doc", doc.Name, "page", i)
				continue
			}
			text, err := plainText(p, names, fonts)
			if err != nil {
				l.logger.Debug("probe page unreadable", "doc", doc.Name, "page", i, "err", err)
				continue
			}
			if core.CharCount(strings.TrimSpace(text)) > l.probeMinChars {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// readPages extracts up to limit pages (all pages when limit <= 0).
func (l *Library) readPages(ctx context.Context, doc core.Document, limit int) (pages []core.Page, err error) {
	err = l.withReader(doc, func(r *pdf.Reader) error {
		n := r.NumPage()
		if limit > 0 && limit < n {
			n = limit
		}

		// Fonts are cached across pages so charmaps are parsed once.
		fonts := make(map[string]*pdf.Font)
		pages = make([]core.Page, 0, n)
		for i := 1; i <= n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := r.Page(i)
			if p.V.IsNull() {
				l.logger.Warn("skipping invalid page", "doc", doc.Name, "page", i)
				continue
			}
			text, err := plainText(p, p.Fonts(), fonts)
			if err != nil {
				l.logger.Warn("skipping undecodable page", "doc", doc.Name, "page", i, "err", err)
				continue
			}
			pages = append(pages, core.Page{
				Number:     i,
				Text:       strings.TrimSpace(text),
				Confidence: 1.0,
				Source:     core.SourceDirect,
			})
		}
		l.logger.Debug("extracted text layer", "doc", doc.Name, "pages", len(pages), "total", r.NumPage())
		return nil
	})
	return pages, err
}

// withReader opens doc and hands the reader to fn. Open failures and parser
// panics are reported as core.ErrDocumentUnreadable.
func (l *Library) withReader(doc core.Document, fn func(r *pdf.Reader) error) (err error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrDocumentUnreadable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrDocumentUnreadable, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			l.logger.Error("pdf parser panicked", "doc", doc.Name, "panic", rec)
			err = fmt.Errorf("%w: malformed pdf: %v", core.ErrDocumentUnreadable, rec)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrDocumentUnreadable, err)
	}
	return fn(r)
}

func plainText(p pdf.Page, names []string, fonts map[string]*pdf.Font) (string, error) {
	for _, name := range names {
		if _, ok := fonts[name]; !ok {
			font := p.Font(name)
			fonts[name] = &font
		}
	}
	return p.GetPlainText(fonts)
}
