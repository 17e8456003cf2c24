// Package pdfdoc reads text, metadata and page images from PDF files.
//
// Library satisfies both the document-library contract used by the
// extraction selector (ExtractDirect, Metadata) and the page source used by
// the OCR engine (HasTextLayer, SampleText, PageImages).
//
// Every failure to open or parse a file is reported as
// core.ErrDocumentUnreadable with the parser's message flattened in.
package pdfdoc
