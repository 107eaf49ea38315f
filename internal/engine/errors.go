package engine

import (
	"errors"
	"fmt"
)

// RecordError is a failure scoped to one input record.
//
// Record errors never abort a batch: the record is skipped, logged, and
// omitted from the results.
type RecordError struct {
	// Index is the record's position in the input.
	Index int

	// Code identifies the error category.
	Code RecordErrorCode

	// Version is the variant tag the record declared.
	Version string

	// Err is the underlying cause, if any.
	Err error
}

// RecordErrorCode categorizes record errors.
type RecordErrorCode string

const (
	// ErrCodeMalformedComponents indicates components could not be decoded
	// into a dictionary.
	ErrCodeMalformedComponents RecordErrorCode = "MALFORMED_COMPONENTS"

	// ErrCodeUnsupportedVariant indicates a version tag outside the known variants.
	ErrCodeUnsupportedVariant RecordErrorCode = "UNSUPPORTED_VARIANT"
)

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: record %d (version=%q): %v", e.Code, e.Index, e.Version, e.Err)
	}
	return fmt.Sprintf("%s: record %d (version=%q)", e.Code, e.Index, e.Version)
}

// Unwrap returns the underlying cause.
func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsMalformedComponents returns true if the error is a malformed-components record error.
// Uses errors.As to handle wrapped errors.
func IsMalformedComponents(err error) bool {
	var re *RecordError
	if errors.As(err, &re) {
		return re.Code == ErrCodeMalformedComponents
	}
	return false
}

// IsUnsupportedVariant returns true if the error is an unsupported-variant record error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedVariant(err error) bool {
	var re *RecordError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnsupportedVariant
	}
	return false
}

// NewMalformedError creates a RecordError for undecodable components.
func NewMalformedError(index int, version string, cause error) *RecordError {
	return &RecordError{
		Code:    ErrCodeMalformedComponents,
		Index:   index,
		Version: version,
		Err:     cause,
	}
}

// NewUnsupportedVariantError creates a RecordError for an unknown version tag.
func NewUnsupportedVariantError(index int, version string) *RecordError {
	return &RecordError{
		Code:    ErrCodeUnsupportedVariant,
		Index:   index,
		Version: version,
	}
}
