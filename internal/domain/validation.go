package domain

import "strings"

// FieldError describes a single invalid field. An empty Field applies to the whole record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError holds every field error found in one input.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a ValidationError with a single field error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Empty reports whether no field error was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}

	return strings.Join(msgs, "; ")
}

// ByField groups the messages by field name, joining several messages for one field.
func (e *ValidationError) ByField() map[string]string {
	m := make(map[string]string, len(e.Fields))

	for _, f := range e.Fields {
		if prev, ok := m[f.Field]; ok {
			m[f.Field] = prev + "; " + f.Message
			continue
		}

		m[f.Field] = f.Message
	}

	return m
}
