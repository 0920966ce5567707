package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDial = errors.New("dial tcp viacep.com.br:443: i/o timeout")

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "malformed cep",
			err:  Invalid("cep.lookup", "CEP must have exactly 8 digits"),
			want: "cep.lookup: CEP must have exactly 8 digits",
		},
		{
			name: "directory down",
			err:  Unavailable(errDial, "cep.lookup", "Postal code lookup is unavailable"),
			want: "cep.lookup: Postal code lookup is unavailable: " + errDial.Error(),
		},
		{
			name: "no op",
			err:  Errorf(ETOOLARGE, "", "Request body too large"),
			want: "Request body too large",
		},
		{
			name: "cause without op",
			err:  Internal(errDial, "", "failed to save order"),
			want: "failed to save order: " + errDial.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Unavailable(errDial, "cep.lookup", "Postal code lookup is unavailable"))

	assert.ErrorIs(t, err, errDial)
	assert.Equal(t, EUNAVAILABLE, ErrorCode(err))
	assert.Equal(t, "cep.lookup", ErrorOp(err))
}

func TestErrorClassification(t *testing.T) {
	placeErr := AddFieldError(nil, "order.place", "number", "Number must be at least 1")

	tests := []struct {
		name    string
		err     error
		code    string
		status  int
		message string
		op      string
	}{
		{
			name:    "unknown order",
			err:     NotFound("order.get", "order", "4f1c"),
			code:    ENOTFOUND,
			status:  http.StatusNotFound,
			message: "order not found: 4f1c",
			op:      "order.get",
		},
		{
			name:    "duplicate order",
			err:     Conflict("order.create", "order already exists"),
			code:    ECONFLICT,
			status:  http.StatusConflict,
			message: "order already exists",
			op:      "order.create",
		},
		{
			name:    "directory down",
			err:     Unavailable(errDial, "cep.lookup", "Postal code lookup is unavailable"),
			code:    EUNAVAILABLE,
			status:  http.StatusServiceUnavailable,
			message: "Postal code lookup is unavailable",
			op:      "cep.lookup",
		},
		{
			name:    "body too large",
			err:     Errorf(ETOOLARGE, "", "Request body too large"),
			code:    ETOOLARGE,
			status:  http.StatusRequestEntityTooLarge,
			message: "Request body too large",
		},
		{
			name:    "rate limited",
			err:     Errorf(ERATELIMIT, "ratelimit.allow", "Too many requests"),
			code:    ERATELIMIT,
			status:  http.StatusTooManyRequests,
			message: "Too many requests",
			op:      "ratelimit.allow",
		},
		{
			name:    "csrf mismatch",
			err:     Errorf(EFORBIDDEN, "csrf.verify", "The form expired"),
			code:    EFORBIDDEN,
			status:  http.StatusForbidden,
			message: "The form expired",
			op:      "csrf.verify",
		},
		{
			name:    "internal hides its message",
			err:     Internal(errDial, "order.place", "failed to save order at 10.0.0.5"),
			code:    EINTERNAL,
			status:  http.StatusInternalServerError,
			message: internalMessage,
			op:      "order.place",
		},
		{
			name:    "field errors",
			err:     placeErr,
			code:    EINVALID,
			status:  http.StatusBadRequest,
			message: "Please correct the highlighted fields",
			op:      "order.place",
		},
		{
			name:    "plain error",
			err:     errDial,
			code:    EINTERNAL,
			status:  http.StatusInternalServerError,
			message: internalMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorCode(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(ErrorCode(tt.err)))
			assert.Equal(t, tt.message, ErrorMessage(tt.err))
			assert.Equal(t, tt.op, ErrorOp(tt.err))
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.Empty(t, ErrorCode(nil))
		assert.Empty(t, ErrorMessage(nil))
		assert.Empty(t, ErrorOp(nil))
	})

	t.Run("unknown code", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, HTTPStatus("bogus"))
	})
}

func TestAddFieldError(t *testing.T) {
	t.Run("accumulates on one error", func(t *testing.T) {
		err := AddFieldError(nil, "order.place", "street", "Street is required")
		err = AddFieldError(err, "order.place", "number", "Number must be at least 1")
		err = AddFieldError(err, "order.place", "payment_method", "Choose a payment method")

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, map[string]string{
			"street":         "Street is required",
			"number":         "Number must be at least 1",
			"payment_method": "Choose a payment method",
		}, ve.Fields)
		assert.Equal(t, "order.place: invalid number, payment_method, street", err.Error())
	})

	t.Run("single field keeps its message", func(t *testing.T) {
		err := AddFieldError(nil, "order.place", "state", "Use a two-letter UF")
		assert.Equal(t, "order.place: invalid state: Use a two-letter UF", err.Error())
	})

	t.Run("later message replaces earlier", func(t *testing.T) {
		err := AddFieldError(nil, "order.place", "number", "Number is required")
		err = AddFieldError(err, "order.place", "number", "Number must be at least 1")
		assert.Equal(t, map[string]string{"number": "Number must be at least 1"}, GetValidationFields(err))
	})

	t.Run("keeps the first op", func(t *testing.T) {
		err := AddFieldError(nil, "address.validate", "city", "City is required")
		err = AddFieldError(err, "order.place", "payment_method", "Choose a payment method")
		assert.Equal(t, "address.validate", ErrorOp(err))
	})

	t.Run("non-validation error starts over", func(t *testing.T) {
		err := AddFieldError(errDial, "order.place", "cep", "CEP is required")
		assert.Equal(t, map[string]string{"cep": "CEP is required"}, GetValidationFields(err))
		assert.NotErrorIs(t, err, errDial)
	})
}

func TestValidationHelpers(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", AddFieldError(nil, "order.place", "number", "Number must be at least 1"))

	assert.True(t, IsValidationError(wrapped))
	assert.Equal(t, map[string]string{"number": "Number must be at least 1"}, GetValidationFields(wrapped))

	assert.False(t, IsValidationError(Invalid("cart.add", "Quantity must be between 1 and 99")))
	assert.Nil(t, GetValidationFields(errDial))
	assert.False(t, IsValidationError(nil))
}
