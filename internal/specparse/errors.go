package specparse

import "fmt"

// FormatError reports a spec line that could not be parsed. It aborts the whole parse.
type FormatError struct {
	LineNo int
	Line   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid spec line %d %q: %s: %v", e.LineNo, e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid spec line %d %q: %s", e.LineNo, e.Line, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ConversionError reports a numeric header field that is not a number
type ConversionError struct {
	Field string
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *ConversionError) Unwrap() error { return e.Err }
