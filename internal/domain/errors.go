package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedBoundaryType is wrapped by a ParseError when a normal-flow
// segment carries an IBTYPE outside the known set.
var ErrUnsupportedBoundaryType = errors.New("unsupported boundary type")

// FormatError reports a file that is missing, unreadable, or structurally
// incompatible with the request.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("format error: %v", e.Err)
	}
	return fmt.Sprintf("format error: %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// TruncatedInputError reports end of input before a declared count was met.
// Line is the number of the last line successfully read.
type TruncatedInputError struct {
	Path    string
	Section string
	Line    int
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("truncated input: %s: unexpected end of input after line %d while reading %s",
		displayPath(e.Path), e.Line, e.Section)
}

// ParseError reports a record that could not be converted to the expected
// values.
type ParseError struct {
	Path    string
	Section string
	Line    int
	Token   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error: %s:%d: %s: %v", displayPath(e.Path), e.Line, e.Section, e.Err)
	}
	return fmt.Sprintf("parse error: %s:%d: %s: token %q: %v", displayPath(e.Path), e.Line, e.Section, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func displayPath(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}
