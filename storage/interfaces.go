package storage

import (
	"context"

	"github.com/poiesic/pagefind/core"
)

// DocumentStore resolves document names to files.
// Implementations are read-only and safe for concurrent use.
type DocumentStore interface {
	// Open resolves name to a document handle, computing its content ID.
	// Returns ErrNotFound if no such document exists and ErrInvalidName if
	// name cannot refer to a document in the store.
	Open(ctx context.Context, name string) (core.Document, error)

	// List returns the names of all documents in the store, sorted.
	List(ctx context.Context) ([]string, error)
}

// ExtractionCache remembers extraction results by document content ID so a
// document is extracted (and possibly OCR'd) once, however often it is
// searched. It holds page text only, never vectors.
// Implementations must be thread-safe and support concurrent access.
type ExtractionCache interface {
	// Get returns the cached result for id, or nil and no error on a miss.
	Get(ctx context.Context, id core.ID) (*core.DocumentExtractionResult, error)

	// Put stores result under result.ID, replacing any previous entry.
	Put(ctx context.Context, result *core.DocumentExtractionResult) error

	// Delete removes the entry for id. Deleting a missing entry is not an error.
	Delete(ctx context.Context, id core.ID) error

	// Close closes the storage backend and releases resources.
	Close() error
}
