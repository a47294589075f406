// Package services orchestrates external requests into store calls:
// validation, genre reconciliation, response shaping. Storage-level
// failures are converted here into the tagged failure taxonomy; nothing
// below this layer leaks to controllers untyped.
package services

import (
	"fmt"

	"libroteca/internal/validate"
)

// NotFoundError signals that a referenced record does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ValidationError carries the field-level messages from the validation
// collaborator.
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Message
}

// ConflictError signals that the target state already holds or a
// required precondition failed.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// UnauthorizedError signals a missing, invalid or revoked credential.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// StorageError signals a failure of the underlying medium. The wrapped
// cause is kept for diagnostics and never surfaced verbatim past the
// controller.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(err error) error {
	return &StorageError{Err: err}
}
