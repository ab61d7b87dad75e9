package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes a query string. Offsets are byte offsets into the
// original input so diagnostics can point at the exact spot.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer for the input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Lex tokenizes the entire input, ending with a TokEOF token.
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// structuredPrefixes are the format prefixes that switch the word scanner
// into path mode, where brackets belong to the selector ("yaml:.items[*]")
// instead of opening a set.
var structuredPrefixes = []string{"yaml:", "json:", "toml:"}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Offset: l.pos}, nil
	}

	start := l.pos
	ch, _ := l.rune(l.pos)

	switch ch {
	case '(':
		l.pos++
		return Token{Kind: TokLParen, Text: "(", Offset: start}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen, Text: ")", Offset: start}, nil
	case '&':
		l.pos++
		if l.byteAt(l.pos) == '&' {
			l.pos++
		}
		return Token{Kind: TokAnd, Text: l.input[start:l.pos], Offset: start}, nil
	case '|':
		l.pos++
		if l.byteAt(l.pos) == '|' {
			l.pos++
		}
		return Token{Kind: TokOr, Text: l.input[start:l.pos], Offset: start}, nil
	case '"', '\'':
		return l.scanString(byte(ch))
	case '[':
		return l.scanSet()
	}

	// '!' is NOT unless it starts '!='.
	if ch == '!' && l.byteAt(l.pos+1) != '=' {
		l.pos++
		return Token{Kind: TokNot, Text: "!", Offset: start}, nil
	}

	if isOperatorByte(byte(ch)) {
		return l.scanOperator()
	}

	if isWordRune(ch) {
		return l.scanWord()
	}

	return Token{}, NewSyntaxError(l.input, start, "unexpected character", "selector", "value")
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch, size := l.rune(l.pos)
		if !unicode.IsSpace(ch) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) rune(pos int) (rune, int) {
	return utf8.DecodeRuneInString(l.input[pos:])
}

// byteAt returns the byte at pos, or 0 past the end.
func (l *Lexer) byteAt(pos int) byte {
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

func isOperatorByte(b byte) bool {
	switch b {
	case '=', '!', '<', '>', '~':
		return true
	}
	return false
}

// isWordRune reports whether r can appear in a bare word. Everything that is
// not whitespace, grouping, quoting, or an operator character qualifies, so
// values like "-7d", "lib.rs", and "a/b" need no quoting. Commas are word
// runes so that unbracketed sets ("in rs,js,ts") stay one token.
func isWordRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '(', ')', '[', ']', '"', '\'', '&', '|':
		return false
	case '=', '!', '<', '>', '~':
		return false
	}
	return true
}

// isPathRune extends isWordRune for structured selector paths, where bracket
// segments and wildcards are part of the word.
func isPathRune(r rune) bool {
	return isWordRune(r) || r == '[' || r == ']' || r == '*'
}

func (l *Lexer) scanOperator() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isOperatorByte(l.input[l.pos]) {
		l.pos++
	}
	return Token{Kind: TokOp, Text: l.input[start:l.pos], Offset: start}, nil
}

func (l *Lexer) scanWord() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) {
		ch, size := l.rune(l.pos)
		if !isWordRune(ch) {
			break
		}
		l.pos += size

		// A word that has just become "yaml:" (or json:/toml:) continues
		// as a structured path, brackets included. Format spellings are
		// case-insensitive like every other selector.
		for _, prefix := range structuredPrefixes {
			if l.pos-start == len(prefix) && strings.EqualFold(l.input[start:l.pos], prefix) {
				return l.scanStructuredPath(start)
			}
		}
	}

	text := l.input[start:l.pos]
	switch strings.ToLower(text) {
	case "and":
		return Token{Kind: TokAnd, Text: text, Offset: start}, nil
	case "or":
		return Token{Kind: TokOr, Text: text, Offset: start}, nil
	case "not":
		return Token{Kind: TokNot, Text: text, Offset: start}, nil
	}
	return Token{Kind: TokWord, Text: text, Offset: start}, nil
}

func (l *Lexer) scanStructuredPath(start int) (Token, error) {
	for l.pos < len(l.input) {
		ch, size := l.rune(l.pos)
		if !isPathRune(ch) {
			break
		}
		l.pos += size
	}
	return Token{Kind: TokWord, Text: l.input[start:l.pos], Offset: start}, nil
}

func (l *Lexer) scanString(quote byte) (Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder

	for l.pos < len(l.input) {
		ch, size := l.rune(l.pos)
		if byte(ch) == quote && size == 1 {
			l.pos++
			return Token{Kind: TokString, Text: sb.String(), Offset: start}, nil
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			escStart := l.pos
			l.pos++
			esc, escSize := l.rune(l.pos)
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '"', '\'':
				sb.WriteRune(esc)
			default:
				return Token{}, NewSyntaxError(l.input, escStart,
					fmt.Sprintf("invalid escape sequence '\\%c'", esc),
					`'\n'`, `'\t'`, `'\\'`, `'\"'`, `'\''`)
			}
			l.pos += escSize
			continue
		}
		sb.WriteRune(ch)
		l.pos += size
	}

	return Token{}, NewSyntaxError(l.input, start, "unterminated string", "closing quote")
}

// scanSet consumes a bracketed set, keeping the interior raw. Quoted items
// may contain commas and brackets; those are respected but not interpreted
// here (set items are split during compilation).
func (l *Lexer) scanSet() (Token, error) {
	start := l.pos
	l.pos++ // '['

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case ']':
			inner := l.input[start+1 : l.pos]
			l.pos++
			return Token{Kind: TokSet, Text: inner, Offset: start}, nil
		case '"', '\'':
			if err := l.skipQuoted(ch); err != nil {
				return Token{}, err
			}
		default:
			l.pos++
		}
	}

	return Token{}, NewSyntaxError(l.input, start, "unterminated set", "']'")
}

func (l *Lexer) skipQuoted(quote byte) error {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos += 2
		case quote:
			l.pos++
			return nil
		default:
			l.pos++
		}
	}
	return NewSyntaxError(l.input, start, "unterminated string", "closing quote")
}
