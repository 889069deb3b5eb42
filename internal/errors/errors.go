package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a shotcap error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrStoreCorrupt   ErrorCode = "STORE_CORRUPT"   // 422
	ErrInvalidItem    ErrorCode = "INVALID_ITEM"    // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// CaptureError represents a structured error with code, status, and details.
type CaptureError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CaptureError {
	return &CaptureError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *CaptureError {
	return &CaptureError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewStoreCorrupt creates a 422 error when the backing store cannot be parsed.
func NewStoreCorrupt(path string, err error) *CaptureError {
	msg := fmt.Sprintf("capture store %s is not a valid JSON array", path)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &CaptureError{
		Code:    ErrStoreCorrupt,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewInvalidItem creates a 422 error when a capture violates the record invariants.
func NewInvalidItem(fields []string) *CaptureError {
	return &CaptureError{
		Code:    ErrInvalidItem,
		Status:  422,
		Message: fmt.Sprintf("capture has invalid fields: %v", fields),
		Details: map[string]any{"fields": fields},
	}
}

// NewCancelled creates an error for an operation stopped by context cancellation.
func NewCancelled(op string) *CaptureError {
	return &CaptureError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The underlying error is kept in Details for logging, not in Message.
func NewInternal(err error) *CaptureError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &CaptureError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is a CaptureError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *CaptureError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// As returns the CaptureError in err's chain, wrapping anything else as INTERNAL.
func As(err error) *CaptureError {
	var cErr *CaptureError
	if stderrors.As(err, &cErr) {
		return cErr
	}
	return NewInternal(err)
}
