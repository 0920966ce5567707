package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAddressForm_RegistersFields(t *testing.T) {
	s := NewAddressForm()

	assert.Equal(t, []Field{
		FieldCEP, FieldStreet, FieldNumber, FieldComplement, FieldDistrict, FieldCity, FieldState,
	}, s.Fields())
	assert.True(t, s.Rules(FieldStreet).Required)
	assert.False(t, s.Rules(FieldComplement).Required)
	assert.Equal(t, 1, s.Rules(FieldNumber).Min)
}

func TestState_Register_KeepsValue(t *testing.T) {
	s := New()
	s.Register(FieldCity, Rules{})
	s.SetValue(FieldCity, "Recife")
	s.Register(FieldCity, Rules{Required: true})

	assert.Equal(t, "Recife", s.Watch(FieldCity))
	assert.Len(t, s.Fields(), 1)
}

func TestState_TakeFocus(t *testing.T) {
	s := NewAddressForm()
	s.SetFocus(FieldNumber)

	assert.Equal(t, FieldNumber, s.Focus())
	assert.Equal(t, FieldNumber, s.TakeFocus())
	assert.Equal(t, Field(""), s.TakeFocus())
}

func TestState_Fill(t *testing.T) {
	s := NewAddressForm()
	s.SetValue(FieldCEP, "01310-930")

	s.Fill(map[Field]string{
		FieldCEP:    "99999-999",
		FieldNumber: " 42 ",
		"unknown":   "x",
	}, FieldCEP)

	assert.Equal(t, "01310-930", s.Watch(FieldCEP))
	assert.Equal(t, "42", s.Watch(FieldNumber))
	_, ok := s.Values()["unknown"]
	assert.False(t, ok)
}

func TestState_Address(t *testing.T) {
	s := NewAddressForm()
	s.SetValue(FieldCEP, "01310-930")
	s.SetValue(FieldStreet, "Av. Paulista")
	s.SetValue(FieldNumber, "1578")
	s.SetValue(FieldDistrict, "Bela Vista")
	s.SetValue(FieldCity, "São Paulo")
	s.SetValue(FieldState, "sp")

	a := s.Address()

	assert.Equal(t, 1578, a.Number)
	assert.Equal(t, "SP", a.State)
	assert.Equal(t, "Av. Paulista", a.Street)

	s.SetValue(FieldNumber, "abc")
	assert.Equal(t, 0, s.Address().Number)
}

func TestIsDerived(t *testing.T) {
	for _, f := range []Field{FieldStreet, FieldDistrict, FieldCity, FieldState} {
		assert.True(t, IsDerived(f), f)
	}
	for _, f := range []Field{FieldCEP, FieldNumber, FieldComplement, Field("payment_method")} {
		assert.False(t, IsDerived(f), f)
	}
}
