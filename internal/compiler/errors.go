package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// TypeErrorCode categorizes compile-time failures.
type TypeErrorCode string

const (
	// ErrCodeUnknownSelector reports a selector spelling with no alias entry.
	ErrCodeUnknownSelector TypeErrorCode = "UNKNOWN_SELECTOR"

	// ErrCodeUnknownOperator reports an operator no type family recognizes.
	ErrCodeUnknownOperator TypeErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeIncompatibleOperator reports a real operator applied to the
	// wrong selector family.
	ErrCodeIncompatibleOperator TypeErrorCode = "INCOMPATIBLE_OPERATOR"

	// ErrCodeInvalidValue reports a literal the selector's family cannot
	// parse.
	ErrCodeInvalidValue TypeErrorCode = "INVALID_VALUE"

	// ErrCodeUnknownAlias reports a bare word that is neither a file-type
	// shorthand nor a structured selector.
	ErrCodeUnknownAlias TypeErrorCode = "UNKNOWN_ALIAS"

	// ErrCodeInvalidPath reports a malformed structured selector path.
	ErrCodeInvalidPath TypeErrorCode = "INVALID_PATH"
)

// TypeError is a fatal compile-time error: the query parsed, but a selector,
// operator, or value does not type-check. Like SyntaxError it aborts the run
// before any entity is evaluated. Suggestions carries nearest valid
// spellings when the failure looks like a typo.
type TypeError struct {
	Code        TypeErrorCode
	Query       string // the full query text, for rendering context
	Offset      int    // byte offset of the offending token
	Selector    string // as written
	Operator    string // as written, for operator errors
	Detail      string // code-specific description
	Suggestions []string
}

func (e *TypeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type error at offset %d: ", e.Offset)

	switch e.Code {
	case ErrCodeUnknownSelector:
		fmt.Fprintf(&sb, "unknown selector %q", e.Selector)
	case ErrCodeUnknownOperator:
		fmt.Fprintf(&sb, "unknown operator %q", e.Operator)
	case ErrCodeIncompatibleOperator:
		fmt.Fprintf(&sb, "operator %q is not compatible with selector %q", e.Operator, e.Selector)
	case ErrCodeInvalidValue:
		fmt.Fprintf(&sb, "invalid value for %q", e.Selector)
	case ErrCodeUnknownAlias:
		fmt.Fprintf(&sb, "unknown alias %q", e.Selector)
	case ErrCodeInvalidPath:
		fmt.Fprintf(&sb, "invalid %s path", e.Selector)
	}

	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&sb, " (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return sb.String()
}

// IsTypeError checks if an error is a TypeError.
func IsTypeError(err error) bool {
	var typeErr *TypeError
	return errors.As(err, &typeErr)
}

func unknownSelector(queryText string, offset int, selector string) *TypeError {
	return &TypeError{
		Code:        ErrCodeUnknownSelector,
		Query:       queryText,
		Offset:      offset,
		Selector:    selector,
		Detail:      "valid selectors: " + strings.Join(canonicalSelectors, ", "),
		Suggestions: suggest(selector, selectorSpellings),
	}
}

func unknownOperator(queryText string, offset int, operator string) *TypeError {
	return &TypeError{
		Code:     ErrCodeUnknownOperator,
		Query:    queryText,
		Offset:   offset,
		Operator: operator,
		Detail:   "valid operators include ==, !=, >, <, contains, matches, in",
	}
}

func incompatibleOperator(queryText string, offset int, selector, operator string) *TypeError {
	return &TypeError{
		Code:     ErrCodeIncompatibleOperator,
		Query:    queryText,
		Offset:   offset,
		Selector: selector,
		Operator: operator,
	}
}

func invalidValue(queryText string, offset int, selector, detail string, suggestions ...string) *TypeError {
	return &TypeError{
		Code:        ErrCodeInvalidValue,
		Query:       queryText,
		Offset:      offset,
		Selector:    selector,
		Detail:      detail,
		Suggestions: suggestions,
	}
}

func unknownAlias(queryText string, offset int, word string) *TypeError {
	return &TypeError{
		Code:        ErrCodeUnknownAlias,
		Query:       queryText,
		Offset:      offset,
		Selector:    word,
		Detail:      "a bare word must be a file type (" + strings.Join(fileTypeVocabulary, ", ") + ") or a structured selector like yaml:.server.port",
		Suggestions: suggest(word, fileTypeVocabulary),
	}
}

func invalidPath(queryText string, offset int, selector, detail string) *TypeError {
	return &TypeError{
		Code:     ErrCodeInvalidPath,
		Query:    queryText,
		Offset:   offset,
		Selector: selector,
		Detail:   detail,
	}
}
