package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is used when a Redis key does not exist.
	RedisNotFoundMessage = "redis key not found"
	// PostgresErrorMessage describes database failures in the schema store.
	PostgresErrorMessage = "database operation failed"
	// SchemaNotFoundMessage is used when a building schema does not exist.
	SchemaNotFoundMessage = "building schema not found"
	// VersionConflictMessage is used when the caller's version is stale.
	VersionConflictMessage = "version conflict"
	// InvalidPatchMessage is used when schema changes cannot be applied.
	InvalidPatchMessage = "invalid schema changes"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NotFound reports a missing building schema.
func NotFound(buildingSchemaID string) *AppError {
	return New(fmt.Errorf("building schema %q", buildingSchemaID), http.StatusNotFound, SchemaNotFoundMessage)
}

// VersionConflict reports that expected is no longer the latest version.
func VersionConflict(expected, actual int) *AppError {
	return New(fmt.Errorf("expected latest version %d, found %d", expected, actual), http.StatusConflict, VersionConflictMessage)
}

// InvalidPatch reports schema changes that could not be applied.
func InvalidPatch(err error) *AppError {
	return New(err, http.StatusUnprocessableEntity, InvalidPatchMessage)
}

// StatusOf returns the status carried by an AppError in err's chain, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether target matches the wrapped error, or is an AppError
// with the same status and message.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok && t.Status == e.Status && t.Message == e.Message {
		return true
	}
	return errors.Is(e.Err, target)
}
