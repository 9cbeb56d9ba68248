package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a malformed record.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbedderUnavailable signals that the embedding model could not be loaded.
	ErrEmbedderUnavailable = errors.New("embedding model unavailable")
	// ErrStorageUnavailable signals that the candidate or match storage cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
