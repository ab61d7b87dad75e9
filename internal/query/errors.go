package query

import (
	"errors"
	"fmt"
	"strings"
)

// SyntaxError is a fatal parse-time error: the token stream is malformed.
// It carries the byte offset of the failure and the token kinds that would
// have been accepted there. Nothing is evaluated after a SyntaxError.
type SyntaxError struct {
	Query    string   // the full query text, for rendering context
	Offset   int      // byte offset of the offending position
	Message  string   // short description ("unexpected operator", ...)
	Expected []string // acceptable tokens at Offset
}

func (e *SyntaxError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("syntax error at offset %d: %s, expected %s",
		e.Offset, e.Message, joinExpected(e.Expected))
}

// NewSyntaxError creates a SyntaxError for the given position.
func NewSyntaxError(queryText string, offset int, message string, expected ...string) *SyntaxError {
	return &SyntaxError{
		Query:    queryText,
		Offset:   offset,
		Message:  message,
		Expected: expected,
	}
}

// IsSyntaxError checks if an error is a SyntaxError.
func IsSyntaxError(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr)
}

func joinExpected(expected []string) string {
	switch len(expected) {
	case 1:
		return expected[0]
	case 2:
		return expected[0] + " or " + expected[1]
	default:
		return "one of " + strings.Join(expected, ", ")
	}
}
