package pdfdoc

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/poiesic/pagefind/core"
)

// Metadata returns the page count, file size and Info dictionary fields.
// pdfcpu is tried first; files it refuses to validate fall back to the
// trailer as seen by the text-layer parser.
func (l *Library) Metadata(ctx context.Context, doc core.Document) (core.Metadata, error) {
	info, err := os.Stat(doc.Path)
	if err != nil {
		return core.Metadata{}, fmt.Errorf("%w: %v", core.ErrDocumentUnreadable, err)
	}
	meta := core.Metadata{FileSizeBytes: info.Size()}

	if err := ctx.Err(); err != nil {
		return meta, err
	}

	perr := l.readPdfcpuMetadata(doc, &meta)
	if perr == nil {
		return meta, nil
	}
	l.logger.Debug("pdfcpu could not read document, using trailer", "doc", doc.Name, "err", perr)

	err = l.withReader(doc, func(r *pdf.Reader) error {
		meta.PageCount = r.NumPage()
		dict := r.Trailer().Key("Info")
		meta.Title = dict.Key("Title").Text()
		meta.Author = dict.Key("Author").Text()
		meta.Subject = dict.Key("Subject").Text()
		meta.Creator = dict.Key("Creator").Text()
		return nil
	})
	return meta, err
}

func (l *Library) readPdfcpuMetadata(doc core.Document, meta *core.Metadata) error {
	f, err := os.Open(doc.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	pctx, err := api.ReadValidateAndOptimize(f, pdfcpuConfig())
	if err != nil {
		return err
	}

	meta.PageCount = pctx.PageCount
	meta.Title = pctx.XRefTable.Title
	meta.Author = pctx.XRefTable.Author
	meta.Subject = pctx.XRefTable.Subject
	meta.Creator = pctx.XRefTable.Creator
	return nil
}
