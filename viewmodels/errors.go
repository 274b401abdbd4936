package viewmodels

import (
	"strings"
)

// FieldError is a single validation failure for a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects validation failures in the order they were found.
// A non-empty FieldErrors is an error.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Has reports whether at least one error was recorded for field.
func (e FieldErrors) Has(field string) bool {
	return e.For(field) != ""
}

// For returns the first message recorded for field, or "".
func (e FieldErrors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Map flattens the errors to field -> first message, the shape the JSON API returns.
func (e FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// Err returns nil when there are no errors so callers can write `if err := f.Validate().Err()`.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func required(display string) string {
	return "The " + display + " field is required."
}

func maxLength(display string, n int) string {
	return "The field " + display + " must be a string with a maximum length of " + itoa(n) + "."
}
