package model

import (
	"strings"
	"testing"
)

// validNote returns a Note that passes all validation rules.
func validNote() Note {
	return Note{
		Title: "Grocery list",
		Body:  "milk, eggs",
	}
}

// fieldErrors extracts a *ValidationError from err or fails the test.
func fieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve.Errors
}

// hasFieldError reports whether the error list contains an error for the given field.
func hasFieldError(errs []FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_TitleRequired(t *testing.T) {
	n := validNote()
	n.Title = ""
	errs := fieldErrors(t, ValidateNote(&n))
	if !hasFieldError(errs, "title") {
		t.Error("expected error on field 'title' for empty title")
	}
}

func TestValidate_TitleWhitespaceOnly(t *testing.T) {
	n := validNote()
	n.Title = "   \t\n  "
	errs := fieldErrors(t, ValidateNote(&n))
	if !hasFieldError(errs, "title") {
		t.Error("expected error on field 'title' for whitespace-only title")
	}
}

func TestValidate_TitleTooLong(t *testing.T) {
	n := validNote()
	n.Title = strings.Repeat("a", 501)
	errs := fieldErrors(t, ValidateNote(&n))
	if !hasFieldError(errs, "title") {
		t.Error("expected error on field 'title' for title exceeding 500 chars")
	}
}

func TestValidate_TitleExactly500(t *testing.T) {
	n := validNote()
	n.Title = strings.Repeat("a", 500)
	if err := ValidateNote(&n); err != nil {
		t.Errorf("title with exactly 500 chars should be valid, got: %v", err)
	}
}

func TestValidate_TitleMultibyteCountedInRunes(t *testing.T) {
	n := validNote()
	n.Title = strings.Repeat("ü", 500)
	if err := ValidateNote(&n); err != nil {
		t.Errorf("500-rune multibyte title should be valid, got: %v", err)
	}
}

func TestValidate_BodyTooLarge(t *testing.T) {
	n := validNote()
	n.Body = strings.Repeat("a", 64*1024+1)
	errs := fieldErrors(t, ValidateNote(&n))
	if !hasFieldError(errs, "body") {
		t.Error("expected error on field 'body' for oversized body")
	}
}

func TestValidate_BodyAtLimit(t *testing.T) {
	n := validNote()
	n.Body = strings.Repeat("a", 64*1024)
	if err := ValidateNote(&n); err != nil {
		t.Errorf("body at the 64 KiB limit should be valid, got: %v", err)
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	n := Note{Title: "", Body: strings.Repeat("a", 64*1024+1)}
	errs := fieldErrors(t, ValidateNote(&n))
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(errs), errs)
	}
}
