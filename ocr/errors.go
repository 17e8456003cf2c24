package ocr

import "errors"

var (
	// ErrSourceRequired is returned when an Engine is built without a page source.
	ErrSourceRequired = errors.New("page source is required")

	// ErrTranscriberRequired is returned when an Engine is built without a transcriber.
	ErrTranscriberRequired = errors.New("transcriber is required")
)
