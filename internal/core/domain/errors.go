package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable indicates a backing service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

// FetchError indicates the source could not be retrieved.
// No document exists yet when this is returned.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError indicates text could not be extracted from the raw document.
type ParseError struct {
	ContentType string
	Err         error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.ContentType, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmbeddingError indicates embedding acquisition failed after all retries.
// It carries the last underlying cause.
type EmbeddingError struct {
	Attempts int
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// PipelineError wraps a fatal ingestion stage failure.
// The document has been marked failed when this is returned.
type PipelineError struct {
	DocumentID string
	Stage      DocumentStatus
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("ingestion of document %s failed at stage %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// GenerationFormatError indicates the generation model returned output that
// could not be parsed into the structured answer format. Fatal for the single
// query, never retried.
type GenerationFormatError struct {
	Err error
}

func (e *GenerationFormatError) Error() string {
	return fmt.Sprintf("generation output not parseable: %v", e.Err)
}

func (e *GenerationFormatError) Unwrap() error { return e.Err }
