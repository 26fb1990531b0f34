package model

import "strings"

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateNote checks a Note for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the note is valid.
func ValidateNote(n *Note) error {
	var ve ValidationError

	// Title: required and at most 500 characters.
	title := strings.TrimSpace(n.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	// Body: at most 64 KiB.
	if len(n.Body) > 64*1024 {
		ve.Errors = append(ve.Errors, FieldError{Field: "body", Message: "must be 65536 bytes or fewer"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
