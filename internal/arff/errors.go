package arff

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the parser, writer and dataset helpers.
var (
	ErrNoAttributes        = errors.New("dataset has no attributes")
	ErrUnknownAttribute    = errors.New("unknown attribute")
	ErrUnsupportedType     = errors.New("unsupported attribute type")
	ErrMissingDataSection  = errors.New("missing @data section")
	ErrIncompatibleSchemas = errors.New("incompatible ARFF schemas")
)

// ParseError reports a malformed line in an ARFF document.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("arff: line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("arff: line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
