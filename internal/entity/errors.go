package entity

import "errors"

// Domain errors
var (
	// Validation errors
	ErrInvalidQuery    = errors.New("query must be a non-empty string")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrUploadTooLarge  = errors.New("upload too large")

	// File errors
	ErrNoFiles          = errors.New("no files uploaded")
	ErrTooManyFiles     = errors.New("too many files")
	ErrInvalidExtension = errors.New("unsupported extension")

	// Extraction errors
	ErrExtraction = errors.New("text extraction failed")

	// Configuration errors
	ErrInvalidChunkSize        = errors.New("chunk size must be a positive integer")
	ErrGenerationNotConfigured = errors.New("RAG chat not configured")
)

// IsValidationError reports whether err is caused by invalid caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidQuery) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrNoFiles) ||
		errors.Is(err, ErrTooManyFiles) ||
		errors.Is(err, ErrUploadTooLarge)
}
