package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrDuplicateURL indicates a content row already exists for a URL.
	// Pipelines treat this as a normal "not newly stored" outcome, not a
	// failure to surface to callers.
	ErrDuplicateURL = errors.New("content url already exists")

	// ErrSiteNotFound indicates a site name absent from the loaded
	// site-configuration map.
	ErrSiteNotFound = errors.New("site not found")

	// ErrJobAlreadyRunning indicates a manual trigger arrived while the
	// job's scheduled run was still in flight.
	ErrJobAlreadyRunning = errors.New("job already running")

	// ErrSchedulerUnavailable indicates a manual trigger arrived before
	// the scheduler was started.
	ErrSchedulerUnavailable = errors.New("scheduler not started")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
