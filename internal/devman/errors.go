package devman

import (
	"errors"
	"fmt"
)

// RuntimeError represents a failure detected while managing device
// lifecycles.
//
// Runtime errors include:
//   - Resource conflict: a pin or port is already owned by another device
//   - Init failure: a driver's Initialize returned an error
//   - Device not found: a category/name lookup missed
//   - Release failure: a driver's Release returned an error
//
// RuntimeError carries structured fields so callers can log the
// conflicting parties without parsing messages.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Device is the name of the device the operation was for.
	Device string

	// Owner is the current resource owner (conflict errors only).
	Owner string

	// Resource describes the contested resource, e.g. "GPIO pin 5"
	// (conflict errors only).
	Resource string

	// Err is the underlying driver error, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeResourceConflict indicates a pin or port is already owned.
	ErrCodeResourceConflict RuntimeErrorCode = "RESOURCE_CONFLICT"

	// ErrCodeInitFailed indicates a driver's Initialize returned an error.
	ErrCodeInitFailed RuntimeErrorCode = "DEVICE_INIT_FAILED"

	// ErrCodeNotFound indicates a device lookup missed.
	ErrCodeNotFound RuntimeErrorCode = "DEVICE_NOT_FOUND"

	// ErrCodeReleaseFailed indicates a driver's Release returned an error.
	ErrCodeReleaseFailed RuntimeErrorCode = "DEVICE_RELEASE_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("%s: %s (device=%s)", e.Code, e.Message, e.Device)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying driver error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsConflictError returns true if the error is a resource conflict.
// Uses errors.As to handle wrapped errors.
func IsConflictError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeResourceConflict
	}
	return false
}

// IsInitError returns true if the error is a device init failure.
func IsInitError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInitFailed
	}
	return false
}

// IsNotFoundError returns true if the error is a missed device lookup.
func IsNotFoundError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNotFound
	}
	return false
}

// NewConflictError creates a RuntimeError for a contested resource.
// resource is a human description such as "GPIO pin 5"; requester is
// the device that lost, owner the device holding the resource.
func NewConflictError(resource, requester, owner string) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeResourceConflict,
		Message:  fmt.Sprintf("%s is already in use by '%s'", resource, owner),
		Device:   requester,
		Owner:    owner,
		Resource: resource,
	}
}

// NewInitError creates a RuntimeError for a failed Initialize call.
func NewInitError(device string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInitFailed,
		Message: fmt.Sprintf("initialization failed: %v", err),
		Device:  device,
		Err:     err,
	}
}

// NewNotFoundError creates a RuntimeError for a missed lookup.
func NewNotFoundError(category, name string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("no device '%s' in category '%s'", name, category),
		Device:  name,
	}
}

// NewReleaseError creates a RuntimeError for a failed Release call.
// Release errors are logged, never propagated.
func NewReleaseError(device string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeReleaseFailed,
		Message: fmt.Sprintf("release failed: %v", err),
		Device:  device,
		Err:     err,
	}
}
