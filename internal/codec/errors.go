// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codec converts publication Records to and from their two textual
// encodings: the condensed single-line form and the standard BibTeX-like
// block form. Both directions are lossless for any valid Record.
package codec

import "fmt"

// FormatErrorKind identifies the parse failure class.
type FormatErrorKind string

const (
	// MalformedCondensed: a condensed line whose field count or field
	// content does not match the schema.
	MalformedCondensed FormatErrorKind = "malformed_condensed"

	// UnescapedDelimiter: an invalid escape sequence in a condensed field.
	UnescapedDelimiter FormatErrorKind = "unescaped_delimiter"

	// UnterminatedEntry: a standard-format block whose closing brace is missing.
	UnterminatedEntry FormatErrorKind = "unterminated_entry"

	// MalformedStandard: a standard-format block that closes but carries a
	// field value the schema cannot read (e.g. a non-numeric year).
	MalformedStandard FormatErrorKind = "malformed_standard"

	// MissingRequiredField: a standard-format block without a title field.
	MissingRequiredField FormatErrorKind = "missing_required_field"

	// InvalidRecord: the decoded fields violate a Record invariant. The
	// wrapped error is the validation error from pkg/types.
	InvalidRecord FormatErrorKind = "invalid_record"
)

// FormatError is a codec-level decode failure. Input preserves the raw text
// that failed so callers can report which entry of a batch was bad.
type FormatError struct {
	Kind  FormatErrorKind
	Input string
	Msg   string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// formatErr builds a FormatError preserving the offending input.
func formatErr(kind FormatErrorKind, input, msg string) *FormatError {
	return &FormatError{Kind: kind, Input: input, Msg: msg}
}

// validationErr wraps a Record validation failure with the raw input.
func validationErr(input string, err error) *FormatError {
	return &FormatError{Kind: InvalidRecord, Input: input, Msg: "decoded record is invalid", Err: err}
}
