package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error codes. HTTPStatus turns each into a response status; anything
// unrecognised is treated as EINTERNAL.
const (
	EINVALID     = "invalid"     // 400: malformed CEP, bad quantity
	EFORBIDDEN   = "forbidden"   // 403: CSRF token mismatch
	ENOTFOUND    = "not_found"   // 404: unknown order, product or CEP
	ECONFLICT    = "conflict"    // 409: order id already stored
	ETOOLARGE    = "too_large"   // 413: request body over the limit
	ERATELIMIT   = "rate_limit"  // 429: too many CEP lookups
	EINTERNAL    = "internal"    // 500: details are logged, never shown
	EUNAVAILABLE = "unavailable" // 503: ViaCEP or the delivery quote is down
)

var statusByCode = map[string]int{
	EINVALID:     http.StatusBadRequest,
	EFORBIDDEN:   http.StatusForbidden,
	ENOTFOUND:    http.StatusNotFound,
	ECONFLICT:    http.StatusConflict,
	ETOOLARGE:    http.StatusRequestEntityTooLarge,
	ERATELIMIT:   http.StatusTooManyRequests,
	EINTERNAL:    http.StatusInternalServerError,
	EUNAVAILABLE: http.StatusServiceUnavailable,
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// internalMessage replaces the message of every internal error shown to a
// customer.
const internalMessage = "An internal error occurred. Please try again later."

// Error is an application error. Code selects the response status, Message
// is safe to show to the customer and Op names the operation that failed
// (e.g. "cep.lookup", "order.place") for the logs.
type Error struct {
	Code    string
	Message string
	Op      string
	Err     error
}

// Error renders "op: message: cause", leaving out the parts that are empty.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of err. A ValidationError is EINVALID; any
// other error that is not an *Error is EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if IsValidationError(err) {
		return EINVALID
	}
	return EINTERNAL
}

// ErrorMessage returns the customer-facing message of err. Internal and
// unrecognised errors get a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}
	if IsValidationError(err) {
		return "Please correct the highlighted fields"
	}
	return internalMessage
}

// ErrorOp returns the operation recorded on err, if any.
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Op
	}
	return ""
}

// Errorf creates an error with a formatted message.
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports bad input that is not tied to a form field.
func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// NotFound reports a missing resource, e.g. NotFound("order.get", "order", id).
func NotFound(op, resource, identifier string) error {
	return &Error{Code: ENOTFOUND, Op: op, Message: fmt.Sprintf("%s not found: %s", resource, identifier)}
}

// Conflict reports a write that collides with stored state.
func Conflict(op, message string) error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

// Unavailable wraps the failure of an upstream dependency. Unlike Internal,
// message reaches the customer.
func Unavailable(err error, op, message string) error {
	return &Error{Code: EUNAVAILABLE, Op: op, Message: message, Err: err}
}

// Internal wraps an unexpected failure. err and message are logged only.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// ValidationError collects field-level problems with a submitted form. The
// keys of Fields are form field names ("street", "number", "payment_method").
type ValidationError struct {
	Fields map[string]string
	Op     string
}

// Error names the failing fields in sorted order, so log lines are stable.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msg := "invalid " + strings.Join(names, ", ")
	if len(names) == 1 {
		msg += ": " + e.Fields[names[0]]
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// AddFieldError records message for field on err and returns it. When err is
// not already a ValidationError a new one is created for op. A later message
// for the same field replaces the earlier one.
func AddFieldError(err error, op, field, message string) error {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		ve = &ValidationError{Fields: make(map[string]string), Op: op}
	}
	if ve.Op == "" {
		ve.Op = op
	}
	if ve.Fields == nil {
		ve.Fields = make(map[string]string)
	}
	ve.Fields[field] = message
	return ve
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field errors of err, or nil when err is
// not a ValidationError.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
