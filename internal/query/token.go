package query

// TokenKind is the type of a lexical token.
type TokenKind int

const (
	TokWord TokenKind = iota // bare word: selector, operator alias, or unquoted value
	TokString                // quoted value, quotes and escapes already resolved
	TokSet                   // bracketed set; Text holds the raw interior
	TokOp                    // symbolic operator: ==, !=, ~=, <, >=, ...
	TokAnd
	TokOr
	TokNot
	TokLParen
	TokRParen
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokWord:
		return "word"
	case TokString:
		return "string"
	case TokSet:
		return "set"
	case TokOp:
		return "operator"
	case TokAnd:
		return "'&&'"
	case TokOr:
		return "'||'"
	case TokNot:
		return "'!'"
	case TokLParen:
		return "'('"
	case TokRParen:
		return "')'"
	case TokEOF:
		return "end of query"
	default:
		return "unknown"
	}
}

// Token is one lexical token with its byte offset in the query string.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}
