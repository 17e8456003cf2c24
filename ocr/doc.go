// Package ocr recognises the text of scanned documents.
//
// Engine implements the OCR collaborator of the extraction selector:
//
//   - IsScanned: a document is scanned when none of its first pages carries a
//     usable text layer
//   - DetectLanguages: script detection over a small text sample, mapping
//     Indic scripts to tesseract-style codes; "eng" is always included
//   - ExtractViaOCR: page images are transcribed concurrently on an ants
//     worker pool and reassembled in ascending page order
//
// Page images come from a PageSource (pdfdoc.Library in production) and are
// transcribed by an ai.Transcriber. A page whose transcription fails is
// dropped with a warning; the rest of the document is still returned.
package ocr
