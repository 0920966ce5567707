// Package cep handles Brazilian postal codes (CEP): eight digits, displayed
// as NNNNN-NNN.
package cep

import "strings"

const (
	// Length is the number of digits in a complete CEP.
	Length = 8

	// MaskedLength is the length of a complete CEP once masked.
	MaskedLength = Length + 1
)

// Digits strips every non-digit character from raw.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Mask formats a complete code as NNNNN-NNN. Anything that is not exactly
// eight digits is returned unchanged.
func Mask(digits string) string {
	if !IsComplete(digits) {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}

// IsComplete reports whether digits is exactly eight ASCII digits.
func IsComplete(digits string) bool {
	if len(digits) != Length {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// Normalize extracts the digits of raw and reports whether they form a
// complete code. Used where a whole code is expected at once (API paths,
// CLI arguments), as opposed to keystroke input.
func Normalize(raw string) (string, bool) {
	d := Digits(raw)
	return d, IsComplete(d)
}

// Input is the outcome of applying one keystroke event to the field.
type Input struct {
	// Digits is the unmasked value after the event.
	Digits string

	// Display is what the field shows: masked when complete.
	Display string

	// Rejected is set when the event carried more than eight digits. The
	// field keeps its previous value.
	Rejected bool
}

// Apply interprets raw as the new content of the postal-code field.
func Apply(raw string) Input {
	d := Digits(raw)
	if len(d) > Length {
		return Input{Rejected: true}
	}
	return Input{Digits: d, Display: Mask(d)}
}
