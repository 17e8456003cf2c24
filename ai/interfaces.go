package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in one call.
	// The returned slice has the same length and order as the input texts.
	// Implementations must never substitute placeholder vectors for a failed call.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Transcriber recognises the text on a rendered page image.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe returns the text visible on image. languages lists
	// tesseract-style language codes ("eng", "guj", ...) expected on the page;
	// implementations may use them as a hint.
	// An image with no legible text yields an empty Transcription, not an error.
	Transcribe(ctx context.Context, image PageImage, languages []string) (Transcription, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Transcriber instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Transcriber returns the page transcription (OCR) service.
	// The returned Transcriber is safe for concurrent use.
	Transcriber() Transcriber

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
