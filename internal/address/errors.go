package address

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCEP is returned when a lookup is asked for anything other
	// than eight digits.
	ErrInvalidCEP = errors.New("cep must have exactly 8 digits")

	// ErrDirectoryUnavailable wraps transport failures and non-2xx answers.
	ErrDirectoryUnavailable = errors.New("postal code directory unavailable")
)

// StatusError is returned when the directory answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("postal code directory returned status %d", e.StatusCode)
}

// Unwrap lets callers match any status failure with ErrDirectoryUnavailable.
func (e *StatusError) Unwrap() error {
	return ErrDirectoryUnavailable
}
