package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEntry indicates a unique constraint violation. It is
	// consumed internally by the send path's resolve-or-create loop and
	// must never reach an API caller from that path.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyMessage indicates a message with neither content nor attachments
	ErrEmptyMessage = errors.New("message must carry content or attachments")

	// ErrSelfAddressed indicates sender and recipient are the same participant
	ErrSelfAddressed = errors.New("sender and recipient must differ")

	// ErrParticipantNotFound indicates the participant was not found
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrConversationNotFound indicates the conversation was not found
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrMessageNotFound indicates the message was not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrAttachmentNotFound indicates the attachment was not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrNotParticipant indicates the viewer does not belong to the conversation
	ErrNotParticipant = errors.New("viewer is not a participant of this conversation")

	// ErrPairMismatch indicates a supplied conversation does not match the
	// sender/recipient pair of the message
	ErrPairMismatch = errors.New("conversation does not belong to this participant pair")

	// ErrConcurrency indicates the conversation create/find retry loop was
	// exhausted. Transient; callers may retry the whole send.
	ErrConcurrency = errors.New("concurrent conversation creation conflict, retry")

	// ErrUploadFailed indicates the attachment store rejected an upload.
	// The whole send aborts; no ledger row is created.
	ErrUploadFailed = errors.New("attachment upload failed")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates forbidden access
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicateEntry = "DUPLICATE_ENTRY"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeConcurrency    = "CONCURRENCY_CONFLICT"
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeNotParticipant = "NOT_A_PARTICIPANT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeInternalError  = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrParticipantNotFound) ||
		errors.Is(err, ErrConversationNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrAttachmentNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsInvalidInput checks if the error is a validation error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrSelfAddressed) ||
		errors.Is(err, ErrPairMismatch)
}

// IsUploadFailed checks if the error is an attachment upload failure
func IsUploadFailed(err error) bool {
	return errors.Is(err, ErrUploadFailed)
}

// IsConcurrency checks if the error is a transient concurrency conflict
func IsConcurrency(err error) bool {
	return errors.Is(err, ErrConcurrency)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsInvalidInput(err):
		return CodeInvalidInput
	case IsDuplicateEntry(err):
		return CodeDuplicateEntry
	case IsConcurrency(err):
		return CodeConcurrency
	case IsUploadFailed(err):
		return CodeUploadFailed
	case errors.Is(err, ErrNotParticipant):
		return CodeNotParticipant
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeInternalError
	}
}
