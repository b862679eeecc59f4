package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrAuthRequired indicates a mutation was attempted without a session
	ErrAuthRequired = errors.New("sign in required")

	// ErrMovieNotFound indicates the requested movie does not exist
	ErrMovieNotFound = errors.New("movie not found")

	// ErrCancelled indicates the user declined a confirmation prompt
	ErrCancelled = errors.New("cancelled by user")

	// ErrStoreUnavailable indicates the document store is unreachable
	ErrStoreUnavailable = errors.New("document store is unreachable")

	// ErrAuthFailed indicates the saved credentials are no longer valid
	ErrAuthFailed = errors.New("authentication token is invalid")
)

// ValidationError reports a missing required field. It is raised before any
// remote call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
