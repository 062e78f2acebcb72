package errors

import (
	"errors"
	"fmt"
)

// Common error types for the affiliate portal client
var (
	// Session errors
	ErrAuthentication = errors.New("authentication required")
	ErrAuthorization  = errors.New("permission denied")
	ErrSessionChanged = errors.New("session changed during request")

	// Transport errors
	ErrAPI     = errors.New("api error")
	ErrNetwork = errors.New("network error")
	ErrDecode  = errors.New("invalid response body")

	// Input errors
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
