package address_test

import (
	"context"
	"testing"

	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() domain.AddressForm {
	return domain.AddressForm{
		CEP:      "01310-930",
		Street:   "Av. Paulista",
		Number:   1578,
		District: "Bela Vista",
		City:     "São Paulo",
		State:    "SP",
	}
}

func TestBasicValidator_Valid(t *testing.T) {
	v := address.NewBasicValidator()

	result, err := v.Validate(context.Background(), validAddress())

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err("order.place"))
}

func TestBasicValidator_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *domain.AddressForm)
		field  string
	}{
		{"partial cep", func(a *domain.AddressForm) { a.CEP = "0131" }, "cep"},
		{"unmasked cep", func(a *domain.AddressForm) { a.CEP = "01310930" }, "cep"},
		{"missing street", func(a *domain.AddressForm) { a.Street = "  " }, "street"},
		{"zero number", func(a *domain.AddressForm) { a.Number = 0 }, "number"},
		{"missing district", func(a *domain.AddressForm) { a.District = "" }, "district"},
		{"missing city", func(a *domain.AddressForm) { a.City = "" }, "city"},
		{"unknown state", func(a *domain.AddressForm) { a.State = "XX" }, "state"},
	}

	v := address.NewBasicValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := validAddress()
			tt.mutate(&addr)

			result, err := v.Validate(context.Background(), addr)

			require.NoError(t, err)
			assert.False(t, result.IsValid)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tt.field, result.Errors[0].Field)

			fields := domain.GetValidationFields(result.Err("order.place"))
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestBasicValidator_LowercaseStateAccepted(t *testing.T) {
	addr := validAddress()
	addr.State = "sp"

	result, err := address.NewBasicValidator().Validate(context.Background(), addr)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestBasicValidator_ComplementOptional(t *testing.T) {
	addr := validAddress()
	addr.Complement = ""

	result, err := address.NewBasicValidator().Validate(context.Background(), addr)

	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidationResult_Err(t *testing.T) {
	var nilResult *address.ValidationResult
	assert.NoError(t, nilResult.Err("order.place"))
	assert.NoError(t, (&address.ValidationResult{IsValid: true}).Err("order.place"))

	result := &address.ValidationResult{IsValid: true}
	result.AddError("street", "Street is required")
	result.AddError("number", "Number must be at least 1")

	err := result.Err("order.place")
	require.Error(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, "order.place", domain.ErrorOp(err))
	assert.Equal(t, map[string]string{
		"street": "Street is required",
		"number": "Number must be at least 1",
	}, domain.GetValidationFields(err))
}
