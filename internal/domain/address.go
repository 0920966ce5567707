package domain

import "strconv"

// AddressForm is the shipping address collected on the checkout page.
//
// CEP holds the display value of the postal-code field: the raw digits while
// the code is incomplete, NNNNN-NNN once all eight digits are present.
// Number is zero until the customer types one in.
type AddressForm struct {
	CEP        string `json:"cep" validate:"required,cep"`
	Street     string `json:"street" validate:"required,max=200"`
	Number     int    `json:"number" validate:"min=1"`
	Complement string `json:"complement" validate:"max=100"`
	District   string `json:"district" validate:"required,max=100"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,uf"`
}

// SingleLine formats the address for summaries.
func (a AddressForm) SingleLine() string {
	line := a.Street
	if a.Number > 0 {
		line += ", " + strconv.Itoa(a.Number)
	}
	if a.Complement != "" {
		line += " - " + a.Complement
	}
	return line
}

// Locality formats district, city and state ("Bela Vista - São Paulo, SP").
func (a AddressForm) Locality() string {
	out := a.District
	if a.City != "" {
		if out != "" {
			out += " - "
		}
		out += a.City
	}
	if a.State != "" {
		out += ", " + a.State
	}
	return out
}
