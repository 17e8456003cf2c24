package pdfdoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/poiesic/pagefind/ai"
	"github.com/poiesic/pagefind/core"
)

var mimeTypes = map[string]string{
	"png": "image/png",
	"jpg": "image/jpeg",
	"tif": "image/tiff",
	"jpx": "image/jp2",
}

// PageImages returns one raster per page that embeds images, ordered by page
// number. Scanned documents embed the scan as an image XObject; when a page
// holds several, the largest stands in for the page.
func (l *Library) PageImages(ctx context.Context, doc core.Document) ([]ai.PageImage, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDocumentUnreadable, err)
	}
	defer f.Close()

	raw, err := api.ExtractImagesRaw(f, nil, pdfcpuConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDocumentUnreadable, err)
	}

	byPage := make(map[int]ai.PageImage)
	for _, images := range raw {
		for _, img := range images {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := io.ReadAll(img)
			if err != nil {
				l.logger.Warn("skipping unreadable image", "doc", doc.Name, "page", img.PageNr, "err", err)
				continue
			}
			if len(data) == 0 || len(data) <= len(byPage[img.PageNr].Data) {
				continue
			}
			mimeType, ok := mimeTypes[img.FileType]
			if !ok {
				mimeType = "image/" + img.FileType
			}
			byPage[img.PageNr] = ai.PageImage{PageNumber: img.PageNr, Data: data, MimeType: mimeType}
		}
	}

	out := make([]ai.PageImage, 0, len(byPage))
	for _, img := range byPage {
		out = append(out, img)
	}
	slices.SortFunc(out, func(a, b ai.PageImage) int { return a.PageNumber - b.PageNumber })

	l.logger.Debug("extracted page images", "doc", doc.Name, "pages", len(out))
	return out, nil
}
