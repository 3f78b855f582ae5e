package scenario

import (
	"errors"
	"fmt"
)

// Sentinel errors for scenario decoding.
var (
	// ErrMalformed indicates the scenario file could not be parsed at all.
	ErrMalformed = errors.New("malformed scenario")
	// ErrMissingField indicates a required key is absent from a record.
	ErrMissingField = errors.New("required field missing")
	// ErrInvalidValue indicates a key whose value has the wrong type or range.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnknownType indicates a definition with an unrecognised type.
	ErrUnknownType = errors.New("unknown record type")
	// ErrUnknownAction indicates a command with an unrecognised action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnclassified indicates a record with neither a type nor an action.
	ErrUnclassified = errors.New("record has neither type nor action")
)

// ErrorCategory classifies a record error for programmatic handling.
type ErrorCategory string

const (
	// CatMissingField indicates a required key is absent.
	CatMissingField ErrorCategory = "missing_field"
	// CatInvalidValue indicates a key with a bad value.
	CatInvalidValue ErrorCategory = "invalid_value"
	// CatUnknownKind indicates an unrecognised type or action.
	CatUnknownKind ErrorCategory = "unknown_kind"
	// CatUnknownReference indicates an ID that no definition provides.
	CatUnknownReference ErrorCategory = "unknown_reference"
)

// RecordError records a problem with one input record.
type RecordError struct {
	Category ErrorCategory
	Index    int    // 1-based position in the input
	Field    string // offending key, if any
	Record   string // compact rendering of the record
	Err      error
}

// Error returns a human-readable string naming the record and the key.
func (e *RecordError) Error() string {
	msg := fmt.Sprintf("record %d", e.Index)
	if e.Field != "" {
		msg += fmt.Sprintf(": key %q", e.Field)
	}
	msg += ": " + e.Err.Error()
	if e.Record != "" {
		msg += " in " + e.Record
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *RecordError) Unwrap() error {
	return e.Err
}

func missingField(r Record, key string) *RecordError {
	return &RecordError{Category: CatMissingField, Index: r.Index, Field: key, Record: r.String(), Err: ErrMissingField}
}

func invalidValue(r Record, key string, err error) *RecordError {
	return &RecordError{Category: CatInvalidValue, Index: r.Index, Field: key, Record: r.String(), Err: err}
}
