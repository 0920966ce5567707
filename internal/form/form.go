// Package form holds server-side form state: registered fields with their
// input constraints, current values and the field that should take focus
// on the next render.
package form

import (
	"strconv"
	"strings"
	"sync"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// Field names a form input.
type Field string

// Address form fields.
const (
	FieldCEP        Field = "cep"
	FieldStreet     Field = "street"
	FieldNumber     Field = "number"
	FieldComplement Field = "complement"
	FieldDistrict   Field = "district"
	FieldCity       Field = "city"
	FieldState      Field = "state"
)

// DerivedFields are filled in from a postal-code lookup.
var DerivedFields = []Field{FieldStreet, FieldDistrict, FieldCity, FieldState}

// IsDerived reports whether field is one of DerivedFields.
func IsDerived(field Field) bool {
	for _, f := range DerivedFields {
		if f == field {
			return true
		}
	}
	return false
}

// Rules are the constraints rendered onto an input.
type Rules struct {
	Required    bool
	Numeric     bool
	Min         int // only meaningful when Numeric
	MaxLength   int
	Placeholder string
}

// Form is the form-state contract the address controller drives.
type Form interface {
	// Watch returns the current value of field.
	Watch(field Field) string

	// SetValue replaces the value of field.
	SetValue(field Field, value string)

	// SetFocus marks field to receive focus on the next render.
	SetFocus(field Field)
}

// State is an in-memory Form. It is safe for concurrent use.
type State struct {
	mu     sync.RWMutex
	order  []Field
	rules  map[Field]Rules
	values map[Field]string
	focus  Field
}

var _ Form = (*State)(nil)

// New creates an empty form with no registered fields.
func New() *State {
	return &State{
		rules:  make(map[Field]Rules),
		values: make(map[Field]string),
	}
}

// NewAddressForm creates the checkout shipping-address form.
func NewAddressForm() *State {
	s := New()
	s.Register(FieldCEP, Rules{Required: true, MaxLength: 9, Placeholder: "CEP"})
	s.Register(FieldStreet, Rules{Required: true, MaxLength: 200, Placeholder: "Rua"})
	s.Register(FieldNumber, Rules{Required: true, Numeric: true, Min: 1, Placeholder: "Número"})
	s.Register(FieldComplement, Rules{MaxLength: 100, Placeholder: "Complemento"})
	s.Register(FieldDistrict, Rules{Required: true, MaxLength: 100, Placeholder: "Bairro"})
	s.Register(FieldCity, Rules{Required: true, MaxLength: 100, Placeholder: "Cidade"})
	s.Register(FieldState, Rules{Required: true, MaxLength: 2, Placeholder: "UF"})
	return s
}

// Register declares field with its constraints. Registering a field twice
// replaces its rules and keeps its value.
func (s *State) Register(field Field, rules Rules) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[field]; !ok {
		s.order = append(s.order, field)
	}
	s.rules[field] = rules
}

// Fields returns the registered fields in registration order.
func (s *State) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Field(nil), s.order...)
}

// Rules returns the constraints for field.
func (s *State) Rules(field Field) Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules[field]
}

// Watch returns the current value of field, or "" when it has none.
func (s *State) Watch(field Field) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[field]
}

// SetValue stores value for field as is; it does not check registration.
func (s *State) SetValue(field Field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[field] = value
}

// SetFocus marks field for focus, replacing any earlier mark.
func (s *State) SetFocus(field Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = field
}

// Focus returns the field marked for focus, if any.
func (s *State) Focus() Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

// TakeFocus returns the field marked for focus and clears the mark. Focus
// is a one-shot instruction to the page, not persistent state.
func (s *State) TakeFocus() Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.focus
	s.focus = ""
	return f
}

// Values returns a copy of every field value.
func (s *State) Values() map[Field]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Field]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Fill copies submitted values for registered fields, skipping skip.
// Unregistered keys are ignored.
func (s *State) Fill(values map[Field]string, skip ...Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
outer:
	for field, v := range values {
		for _, sk := range skip {
			if field == sk {
				continue outer
			}
		}
		if _, ok := s.rules[field]; ok {
			s.values[field] = strings.TrimSpace(v)
		}
	}
}

// Address converts the form into a domain.AddressForm. A number that does
// not parse becomes 0.
func (s *State) Address() domain.AddressForm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := strconv.Atoi(strings.TrimSpace(s.values[FieldNumber]))
	if err != nil {
		n = 0
	}
	return domain.AddressForm{
		CEP:        s.values[FieldCEP],
		Street:     s.values[FieldStreet],
		Number:     n,
		Complement: s.values[FieldComplement],
		District:   s.values[FieldDistrict],
		City:       s.values[FieldCity],
		State:      strings.ToUpper(s.values[FieldState]),
	}
}
