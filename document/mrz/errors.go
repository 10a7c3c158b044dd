package mrz

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMrz             = errors.New("empty MRZ string")
	ErrUnrecognizedMrzShape = errors.New("no '<' or 'P', 'I', 'A', 'C', 'V' detected")
	ErrInvalidLineCount     = errors.New("wrong number of lines")
	ErrTruncatedRecord      = errors.New("MRZ text shorter than its format requires")
	ErrInvalidCheckDigits   = errors.New("invalid check digits")
)

// ParseError carries the MRZ text that failed and, when known, the range
// that triggered the failure.
type ParseError struct {
	Err   error
	Mrz   string
	Range *Range
}

func (e *ParseError) Error() string {
	if e.Range != nil {
		return fmt.Sprintf("invalid MRZ at %s: %v", e.Range, e.Err)
	}
	return fmt.Sprintf("invalid MRZ: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(err error, mrz string, r *Range) *ParseError {
	return &ParseError{Err: err, Mrz: mrz, Range: r}
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrEmptyMrz, "empty_mrz"},
	{ErrUnrecognizedMrzShape, "unrecognized_mrz_shape"},
	{ErrInvalidLineCount, "invalid_line_count"},
	{ErrTruncatedRecord, "truncated_record"},
	{ErrInvalidCheckDigits, "invalid_check_digits"},
}

// KindOf returns the stable name of the error kind wrapped in err,
// or an empty string when err is nil or not an MRZ error.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

// IsStructural reports whether err is one of the input-shape errors
// raised before a record could be extracted.
func IsStructural(err error) bool {
	switch KindOf(err) {
	case "empty_mrz", "unrecognized_mrz_shape", "invalid_line_count", "truncated_record":
		return true
	}
	return false
}
