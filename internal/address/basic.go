package address

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/coffee-delivery/internal/cep"
	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// states lists the 27 Brazilian federative units.
var states = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true, "DF": true,
	"ES": true, "GO": true, "MA": true, "MT": true, "MS": true, "MG": true, "PA": true,
	"PB": true, "PR": true, "PE": true, "PI": true, "RJ": true, "RN": true, "RS": true,
	"RO": true, "RR": true, "SC": true, "SP": true, "SE": true, "TO": true,
}

// IsState reports whether uf is a Brazilian state code (case-sensitive).
func IsState(uf string) bool {
	return states[uf]
}

// BasicValidator performs format validation without external API calls:
// required fields, a complete masked CEP, a known UF and a street number of
// at least 1.
type BasicValidator struct {
	validate *validator.Validate
}

// NewBasicValidator creates a new basic address validator.
func NewBasicValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) == cep.MaskedLength && cep.Mask(cep.Digits(s)) == s
	})
	_ = v.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
		return IsState(fl.Field().String())
	})

	return &BasicValidator{validate: v}
}

// Validate checks addr against the struct rules on domain.AddressForm.
func (v *BasicValidator) Validate(ctx context.Context, addr domain.AddressForm) (*ValidationResult, error) {
	addr.Street = strings.TrimSpace(addr.Street)
	addr.District = strings.TrimSpace(addr.District)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.ToUpper(strings.TrimSpace(addr.State))

	result := &ValidationResult{IsValid: true}

	err := v.validate.StructCtx(ctx, addr)
	if err == nil {
		return result, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("address validation failed: %w", err)
	}

	for _, fe := range verrs {
		result.AddError(fe.Field(), fieldMessage(fe))
	}
	return result, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "cep":
		return "CEP must be in format 00000-000"
	case "uf":
		return "State must be a valid 2-letter UF"
	}
	return "Invalid value"
}
