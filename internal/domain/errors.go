package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
	ErrCodeEmptyFile       = "EMPTY_FILE"
	ErrCodeUnsupportedType = "UNSUPPORTED_TYPE"
	ErrCodeNoTextExtracted = "NO_TEXT_EXTRACTED"
	ErrCodeNoChunks        = "NO_CHUNKS"
	ErrCodeExtraction      = "EXTRACTION_ERROR"
	ErrCodeEmbedding       = "EMBEDDING_ERROR"
	ErrCodeMalformedVector = "MALFORMED_VECTOR"
	ErrCodeStorage         = "STORAGE_ERROR"
	ErrCodeProcessing      = "PROCESSING_FAILED"
)

// Validation errors
var (
	ErrEmptyText            = NewDomainError(ErrCodeValidation, "text is empty or blank")
	ErrEmptyFile            = NewDomainError(ErrCodeEmptyFile, "uploaded file is empty")
	ErrInvalidStatus        = NewDomainError(ErrCodeValidation, "invalid processing status")
	ErrVectorLengthMismatch = NewDomainError(ErrCodeValidation, "vectors have different lengths")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "chunk not found")
	ErrUserNotFound     = NewDomainError(ErrCodeNotFound, "user not found")
)

// Pipeline errors
var (
	ErrUnsupportedType = NewDomainError(ErrCodeUnsupportedType, "unsupported content type")
	ErrNoTextExtracted = NewDomainError(ErrCodeNoTextExtracted, "no text could be extracted from document")
	ErrNoChunks        = NewDomainError(ErrCodeNoChunks, "chunking produced no chunks")
	ErrNoExtractedText = NewDomainError(ErrCodeNoTextExtracted, "document has no extracted text to rechunk")
)

// Authentication errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorized, "invalid email or password")
	ErrInvalidToken       = NewDomainError(ErrCodeUnauthorized, "invalid or expired token")
	ErrUserAlreadyExists  = NewDomainError(ErrCodeAlreadyExists, "user already exists")
)
