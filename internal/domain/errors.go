package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed request value.
	ErrValidation = errors.New("validation failed")
	// ErrBackend signals a non-success response or transport failure from the search backend.
	ErrBackend = errors.New("search backend error")
	// ErrOperationFailed signals a failed search orchestration.
	ErrOperationFailed = errors.New("search operation failed")

	// ErrUnauthorized signals missing or invalid credentials.
	ErrUnauthorized = errors.New("could not validate credentials")
	// ErrForbidden signals a role that is not allowed to perform the action.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrUserNotFound signals an unknown identity subject.
	ErrUserNotFound = errors.New("user not found")
	// ErrGenerationFailed signals a text-generation provider failure.
	ErrGenerationFailed = errors.New("text generation failed")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a request field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// BackendError carries the backend status code and raw body.
// Status is 0 when the request never produced a response (dial error, timeout).
type BackendError struct {
	Status int
	Body   string
	Err    error
}

func (e *BackendError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrBackend.Error(), e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", ErrBackend.Error(), e.Status, e.Body)
	default:
		return fmt.Sprintf("%s: status %d", ErrBackend.Error(), e.Status)
	}
}

// Is makes errors.Is(err, ErrBackend) hold for every BackendError.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }

func (e *BackendError) Unwrap() error { return e.Err }

// OperationError is the single failure signal of a search operation.
// It wraps the root cause so callers can still inspect it with errors.As.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Is makes errors.Is(err, ErrOperationFailed) hold for every OperationError.
func (e *OperationError) Is(target error) bool { return target == ErrOperationFailed }

func (e *OperationError) Unwrap() error { return e.Err }

// NewOperationError wraps cause as a failed operation.
func NewOperationError(op string, cause error) error {
	return &OperationError{Op: op, Err: cause}
}

// GenerationError carries the provider status of a failed text generation.
// Status is 0 when no response was received.
type GenerationError struct {
	Status int
	Detail string
}

func (e *GenerationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", ErrGenerationFailed.Error(), e.Detail)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrGenerationFailed.Error(), e.Status, e.Detail)
}

func (e *GenerationError) Unwrap() error { return ErrGenerationFailed }
