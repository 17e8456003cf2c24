package extraction

import "errors"

var (
	// ErrLibraryRequired is returned when no DocumentLibrary is provided.
	ErrLibraryRequired = errors.New("document library required")

	// ErrOCRRequired is returned when no OCR collaborator is provided.
	ErrOCRRequired = errors.New("ocr collaborator required")
)
