package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a marklet error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrInvalidToken   ErrorCode = "INVALID_TOKEN"   // 400
	ErrImport         ErrorCode = "IMPORT"          // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrValidation     ErrorCode = "VALIDATION"      // 422
	ErrStorageCorrupt ErrorCode = "STORAGE_CORRUPT" // 500
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// MarkletError represents a structured error with code, status, and details.
type MarkletError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MarkletError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for malformed surface input.
func NewInvalidRequest(msg string) *MarkletError {
	return &MarkletError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidToken creates a 400 error for a share token that cannot be
// decoded. The reason says which decoding stage rejected it.
func NewInvalidToken(reason string) *MarkletError {
	return &MarkletError{
		Code:    ErrInvalidToken,
		Status:  400,
		Message: fmt.Sprintf("invalid share token: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// NewImport creates a 400 error for an import payload that is rejected
// wholesale. Per-item problems never produce this; they are defaulted.
func NewImport(msg string) *MarkletError {
	return &MarkletError{
		Code:    ErrImport,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a bookmarklet cannot be found.
func NewNotFound(id string) *MarkletError {
	return &MarkletError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("bookmarklet not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewValidation creates a 422 error for a blank required field.
func NewValidation(field string) *MarkletError {
	return &MarkletError{
		Code:    ErrValidation,
		Status:  422,
		Message: fmt.Sprintf("%s is required", field),
		Details: map[string]any{"field": field},
	}
}

// NewStorageCorrupt creates a 500 error for an unreadable persisted
// collection. Callers pair it with an empty store so startup degrades
// instead of failing.
func NewStorageCorrupt(err error) *MarkletError {
	msg := "stored collection is unreadable"
	if err != nil {
		msg = fmt.Sprintf("stored collection is unreadable: %v", err)
	}
	return &MarkletError{
		Code:    ErrStorageCorrupt,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors. The
// message stays generic; the cause lands in Details for logging.
func NewInternal(err error) *MarkletError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &MarkletError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is a MarkletError with the given code.
// Wrapped errors are unwrapped.
func Is(err error, code ErrorCode) bool {
	var mErr *MarkletError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}
