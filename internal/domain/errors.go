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
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"

	ErrCodeIngestion        = "INGESTION_ERROR"
	ErrCodeRetrieval        = "RETRIEVAL_ERROR"
	ErrCodeGeneration       = "GENERATION_ERROR"
	ErrCodeEmbedding        = "EMBEDDING_ERROR"
	ErrCodeScope            = "SCOPE_ERROR"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query text cannot be empty")
	ErrInvalidNoteSource    = NewDomainError(ErrCodeValidation, "invalid note source type")
	ErrInvalidDocumentType  = NewDomainError(ErrCodeValidation, "invalid document type")
	ErrEmbeddingDimension   = NewDomainError(ErrCodeValidation, "embedding has wrong dimensions")
)

// Not found errors
var (
	ErrNotebookNotFound = NewDomainError(ErrCodeNotFound, "notebook not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrChatTurnNotFound = NewDomainError(ErrCodeNotFound, "chat message not found")
	ErrNoteNotFound     = NewDomainError(ErrCodeNotFound, "note not found")
)

// NewIngestionError wraps a chunking or embedding failure that occurred during ingestion.
func NewIngestionError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIngestion, "document ingestion failed", err)
}

// NewRetrievalError wraps an embedding or vector-store failure during a query.
// Queries fail closed: no grounding is fabricated on retrieval failure.
func NewRetrievalError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeRetrieval, "context retrieval failed", err)
}

// NewGenerationError wraps an LLM failure; no chat turn is persisted on this error.
func NewGenerationError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeGeneration, "response generation failed", err)
}

// NewEmbeddingError wraps an embedding provider failure.
func NewEmbeddingError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbedding, "embedding generation failed", err)
}

// NewScopeError reports document ids that are unknown or not owned by the notebook.
func NewScopeError(message string) *DomainError {
	return NewDomainError(ErrCodeScope, message)
}

// NewStoreUnavailableError wraps a vector store outage. Not retried here; the
// caller decides.
func NewStoreUnavailableError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStoreUnavailable, "vector store unavailable", err)
}
