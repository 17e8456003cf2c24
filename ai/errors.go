package ai

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbedderRequired is returned when a Gateway is built without an Embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrVectorCountMismatch indicates the provider returned a different
	// number of vectors than texts it was given.
	ErrVectorCountMismatch = errors.New("embedding count does not match input count")

	// ErrEmptyVector indicates the provider returned a zero-length vector.
	ErrEmptyVector = errors.New("embedding vector is empty")

	// ErrDimensionMismatch indicates vectors of different lengths in one reply.
	ErrDimensionMismatch = errors.New("embedding dimensions differ")
)
