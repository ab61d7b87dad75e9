package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/query"
)

const (
	codeSyntaxError = "SYNTAX_ERROR"
	codeInternal    = "INTERNAL"
)

// diagnostic is the JSON details payload for a rejected query.
type diagnostic struct {
	Offset      int      `json:"offset"`
	Selector    string   `json:"selector,omitempty"`
	Operator    string   `json:"operator,omitempty"`
	Expected    []string `json:"expected,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// renderQueryError prints a compile diagnostic in the configured format
// and returns the command-error exit. Text mode shows the query with a
// caret at the offending byte offset.
func renderQueryError(formatter *OutputFormatter, queryText string, err error) error {
	var syntaxErr *query.SyntaxError
	if errors.As(err, &syntaxErr) {
		if formatter.Format == "json" {
			_ = formatter.Error(codeSyntaxError, syntaxErr.Error(), diagnostic{
				Offset:   syntaxErr.Offset,
				Expected: syntaxErr.Expected,
			})
		} else {
			printCaret(formatter, queryText, syntaxErr.Offset, syntaxErr.Error())
		}
		return WrapExitError(ExitCommandError, "query rejected", err)
	}

	var typeErr *compiler.TypeError
	if errors.As(err, &typeErr) {
		if formatter.Format == "json" {
			_ = formatter.Error(string(typeErr.Code), typeErr.Error(), diagnostic{
				Offset:      typeErr.Offset,
				Selector:    typeErr.Selector,
				Operator:    typeErr.Operator,
				Suggestions: typeErr.Suggestions,
			})
		} else {
			printCaret(formatter, queryText, typeErr.Offset, typeErr.Error())
		}
		return WrapExitError(ExitCommandError, "query rejected", err)
	}

	_ = formatter.Error(codeInternal, err.Error(), nil)
	return WrapExitError(ExitCommandError, "query rejected", err)
}

func printCaret(formatter *OutputFormatter, queryText string, offset int, message string) {
	w := formatter.GetErrWriter()
	fmt.Fprintln(w, message)
	fmt.Fprintf(w, "  %s\n", queryText)
	if offset < 0 {
		offset = 0
	}
	if offset > len(queryText) {
		offset = len(queryText)
	}
	fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", offset))
}
