package types

import (
	"errors"
	"fmt"
)

// ExtractionErrorKind classifies extractor failures
type ExtractionErrorKind string

const (
	ExtractUnsupported ExtractionErrorKind = "unsupported"
	ExtractCorrupted   ExtractionErrorKind = "corrupted"
	ExtractTooLarge    ExtractionErrorKind = "too_large"
	ExtractIOError     ExtractionErrorKind = "io_error"
)

// ExtractionError is returned when text extraction fails for a file
type ExtractionError struct {
	Kind ExtractionErrorKind
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Path, e.Kind)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NewExtractionError builds an extraction error for a path
func NewExtractionError(kind ExtractionErrorKind, path string, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Path: path, Err: err}
}

// EmbeddingErrorKind classifies embedder failures
type EmbeddingErrorKind string

const (
	EmbedRateLimited  EmbeddingErrorKind = "rate_limited"
	EmbedInvalidInput EmbeddingErrorKind = "invalid_input"
	EmbedServiceError EmbeddingErrorKind = "service_error"
)

// EmbeddingError is returned when vectorizing text fails
type EmbeddingError struct {
	Kind EmbeddingErrorKind
	Err  error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embed: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("embed: %s", e.Kind)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// NewEmbeddingError wraps an underlying provider error with a kind
func NewEmbeddingError(kind EmbeddingErrorKind, err error) *EmbeddingError {
	return &EmbeddingError{Kind: kind, Err: err}
}

// IsRateLimited reports whether err is an embedding rate-limit error
func IsRateLimited(err error) bool {
	var ee *EmbeddingError
	return errors.As(err, &ee) && ee.Kind == EmbedRateLimited
}

// StoreError is returned by vector-store operations. Transient errors are
// worth retrying (connection refused, deadline exceeded); permanent ones are
// not (bad request, dimension mismatch).
type StoreError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsTransientStoreError reports whether err is a store error worth retrying
func IsTransientStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Transient
}
