package batchocr

import (
	"errors"
	"fmt"
)

// Common batch processing errors
var (
	// ErrRetriesExhausted is returned when every attempt failed with a quota error.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrNonRetryable is returned for a failure that is not a quota error.
	ErrNonRetryable = errors.New("non-retryable batch error")

	// ErrNoDocuments is returned when a request has neither documents nor an input prefix.
	ErrNoDocuments = errors.New("request has no input documents")

	// ErrTooManyPages is returned by preflight when a PDF exceeds the configured page limit.
	ErrTooManyPages = errors.New("PDF has more pages than the configured limit")

	// ErrOperationFailed is returned when the long-running operation completes with an error.
	ErrOperationFailed = errors.New("batch operation failed")
)

// BatchError wraps errors with the operation and unit that failed.
type BatchError struct {
	// Op is the operation that failed (e.g., "Submit", "Flatten").
	Op string

	// Label is the canonical label of the unit being processed.
	Label string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	msg := fmt.Sprintf("batchocr: %s failed", e.Op)
	if e.Label != "" {
		msg = fmt.Sprintf("batchocr: %s %s failed", e.Op, e.Label)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %v", msg, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *BatchError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *BatchError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewBatchError creates a new BatchError.
func NewBatchError(op, label string, err error, details string) *BatchError {
	return &BatchError{
		Op:      op,
		Label:   label,
		Err:     err,
		Details: details,
	}
}

// WrapBatchError wraps an error as a BatchError if it isn't already one.
func WrapBatchError(op, label string, err error, details string) error {
	if err == nil {
		return nil
	}

	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		return err
	}

	return NewBatchError(op, label, err, details)
}
