package query

import "strings"

// wordOperators are the alphabetic operator spellings. They are recognized
// positionally: a word in operator position is checked against this set,
// so the same spelling can still appear as a bare value elsewhere (quoted
// if ambiguous).
var wordOperators = map[string]bool{
	"eq": true, "ne": true, "neq": true,
	"gt": true, "gte": true, "ge": true,
	"lt": true, "lte": true, "le": true,
	"contains": true, "has": true, "includes": true,
	"in": true, "matches": true, "regex": true,
	"before": true, "after": true, "on": true,
	"glob": true,
}

// Parse turns query text into a raw expression tree.
//
// Precedence, loosest to tightest: OR, AND, NOT; parentheses group.
// The first error aborts parsing; there is no recovery.
func Parse(input string) (Expr, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{input: input, tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.match(TokEOF) {
		return nil, p.errorAtCurrent("'&&'", "'||'", "end of query")
	}
	return expr, nil
}

type parser struct {
	input  string
	tokens []Token
	pos    int
}

func (p *parser) current() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}

func (p *parser) errorAtCurrent(expected ...string) error {
	tok := p.current()
	return NewSyntaxError(p.input, tok.Offset, "unexpected "+tok.Kind.String(), expected...)
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	if !p.match(TokOr) {
		return left, nil
	}

	exprs := []Expr{left}
	for p.match(TokOr) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, right)
	}
	return Or{Exprs: exprs}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	if !p.match(TokAnd) {
		return left, nil
	}

	exprs := []Expr{left}
	for p.match(TokAnd) {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, right)
	}
	return And{Exprs: exprs}, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.match(TokNot) {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	if p.match(TokLParen) {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(TokRParen) {
			return nil, p.errorAtCurrent("')'")
		}
		p.advance()
		return expr, nil
	}

	return p.parsePredicate()
}

func (p *parser) parsePredicate() (Expr, error) {
	if !p.match(TokWord) {
		return nil, p.errorAtCurrent("selector", "'('", "'!'")
	}

	sel := p.current()
	p.advance()

	pred := Pred{Selector: sel.Text, SelOffset: sel.Offset}

	op, ok := p.operatorToken()
	if !ok {
		// Bare single-word predicate; the compiler decides what it means.
		return pred, nil
	}
	pred.Operator = op.Text
	pred.OpOffset = op.Offset
	p.advance()

	val := p.current()
	switch val.Kind {
	case TokWord:
		pred.Value = Value{Kind: ValueWord, Text: val.Text}
	case TokString:
		pred.Value = Value{Kind: ValueString, Text: val.Text}
	case TokSet:
		pred.Value = Value{Kind: ValueSet, Text: val.Text}
	default:
		return nil, p.errorAtCurrent("value")
	}
	pred.ValOffset = val.Offset
	p.advance()

	return pred, nil
}

// operatorToken reports whether the current token is in operator position:
// either a symbolic operator or a word from the operator vocabulary.
func (p *parser) operatorToken() (Token, bool) {
	tok := p.current()
	if tok.Kind == TokOp {
		return tok, true
	}
	if tok.Kind == TokWord && wordOperators[strings.ToLower(tok.Text)] {
		return tok, true
	}
	return Token{}, false
}
