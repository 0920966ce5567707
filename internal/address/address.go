package address

import (
	"context"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// Directory resolves a postal code to the street-level address it covers.
// Implementations talk to external services like ViaCEP; MockDirectory and
// the generated mocks.MockDirectory serve tests.
type Directory interface {
	// Lookup resolves an eight-digit CEP (unmasked). A code the directory
	// does not know is not an error: the result comes back with NotFound set.
	Lookup(ctx context.Context, code string) (*LookupResult, error)
}

// LookupResult is a directory answer for one postal code.
type LookupResult struct {
	Street   string `json:"street"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
	NotFound bool   `json:"not_found"`
}

//go:generate mockgen -destination=mocks/directory.go -package=mocks github.com/dukerupert/coffee-delivery/internal/address Directory

// Validator checks a submitted shipping address.
type Validator interface {
	// Validate returns field-level problems in the result. The error return
	// is reserved for failures of the validator itself.
	Validate(ctx context.Context, addr domain.AddressForm) (*ValidationResult, error)
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a specific validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AddError records a field problem and marks the result invalid.
func (r *ValidationResult) AddError(field, message string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// Err converts an invalid result into a domain.ValidationError. Returns nil
// when the result is valid.
func (r *ValidationResult) Err(op string) error {
	if r == nil || r.IsValid {
		return nil
	}
	var err error
	for _, fe := range r.Errors {
		err = domain.AddFieldError(err, op, fe.Field, fe.Message)
	}
	return err
}
