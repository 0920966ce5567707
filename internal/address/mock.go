package address

import (
	"context"
	"sync"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// MockDirectory is a test implementation of Directory.
type MockDirectory struct {
	LookupFunc func(ctx context.Context, code string) (*LookupResult, error)

	mu    sync.Mutex
	calls []string
}

// NewMockDirectory creates a mock directory that knows no codes.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{}
}

// Lookup delegates to LookupFunc, or reports the code as not found.
func (m *MockDirectory) Lookup(ctx context.Context, code string) (*LookupResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, code)
	m.mu.Unlock()

	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, code)
	}
	return &LookupResult{NotFound: true}, nil
}

// Calls returns the codes looked up so far.
func (m *MockDirectory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockValidator is a test implementation of Validator.
type MockValidator struct {
	ValidateFunc func(ctx context.Context, addr domain.AddressForm) (*ValidationResult, error)
}

// NewMockValidator creates a mock validator that accepts every address.
func NewMockValidator() *MockValidator {
	return &MockValidator{}
}

// Validate delegates to the configured function or returns a valid result.
func (m *MockValidator) Validate(ctx context.Context, addr domain.AddressForm) (*ValidationResult, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, addr)
	}
	return &ValidationResult{IsValid: true}, nil
}
