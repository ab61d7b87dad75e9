// Package compiler turns raw query trees into typed expression trees. This
// is the second of the two parse phases: alias spellings resolve through
// static tables, operators are checked against the selector's type family,
// and every literal (byte counts, timestamps, regexes, globs, enum values,
// sets, structured paths) parses into its typed form here, before any entity
// is evaluated. Structured predicates pick up a synthetic precondition on
// extension and size so the cheaper phases gate document parsing.
package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sift/internal/expr"
	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/query"
	"github.com/roach88/sift/internal/resolve"
)

// Config adjusts compilation limits.
type Config struct {
	// MaxDocumentBytes is the structured-document size ceiling, baked into
	// the synthetic size precondition of every structured predicate. Zero
	// or negative means resolve.DefaultMaxDocumentBytes. Evaluation must
	// use the same ceiling for decoding.
	MaxDocumentBytes int64
}

// Compile parses and type-checks a query with default limits.
func Compile(queryText string) (expr.Expr, error) {
	return CompileWithConfig(queryText, Config{})
}

// CompileWithConfig parses queryText and lowers it to a typed expression
// tree. Errors are *query.SyntaxError from the raw parse or *TypeError from
// this phase; the first error aborts.
func CompileWithConfig(queryText string, cfg Config) (expr.Expr, error) {
	raw, err := query.Parse(queryText)
	if err != nil {
		return nil, err
	}

	maxDoc := cfg.MaxDocumentBytes
	if maxDoc <= 0 {
		maxDoc = resolve.DefaultMaxDocumentBytes
	}
	c := &checker{
		query:       queryText,
		now:         time.Now(),
		maxDocBytes: maxDoc,
	}
	return c.compileExpr(raw)
}

// checker carries the compile-wide state: the query text for diagnostics,
// the reference instant every relative time in the query is anchored to, and
// the document ceiling.
type checker struct {
	query       string
	now         time.Time
	maxDocBytes int64
}

func (c *checker) compileExpr(raw query.Expr) (expr.Expr, error) {
	switch node := raw.(type) {
	case query.And:
		operands, err := c.compileOperands(node.Exprs)
		if err != nil {
			return nil, err
		}
		return expr.And{Exprs: operands}, nil
	case query.Or:
		operands, err := c.compileOperands(node.Exprs)
		if err != nil {
			return nil, err
		}
		return expr.Or{Exprs: operands}, nil
	case query.Not:
		inner, err := c.compileExpr(node.Inner)
		if err != nil {
			return nil, err
		}
		return expr.Not{Inner: inner}, nil
	case query.Pred:
		return c.compilePred(node)
	default:
		return nil, fmt.Errorf("unsupported raw node %T", raw)
	}
}

func (c *checker) compileOperands(raw []query.Expr) ([]expr.Expr, error) {
	operands := make([]expr.Expr, len(raw))
	for i, op := range raw {
		compiled, err := c.compileExpr(op)
		if err != nil {
			return nil, err
		}
		operands[i] = compiled
	}
	return operands, nil
}

func (c *checker) compilePred(p query.Pred) (expr.Expr, error) {
	if format, pathText, ok := splitStructuredSelector(p.Selector); ok {
		return c.compileStructured(p, format, pathText)
	}
	if p.Operator == "" {
		return c.compileBareWord(p)
	}

	sel, ok := lookupSelector(p.Selector)
	if !ok {
		return nil, unknownSelector(c.query, p.SelOffset, p.Selector)
	}

	switch sel.family() {
	case famNumeric:
		return c.compileNumeric(p, sel)
	case famTemporal:
		return c.compileTemporal(p, sel)
	case famEnum:
		return c.compileEnum(p)
	case famContent:
		return c.compileContent(p)
	default:
		return c.compileString(p, sel)
	}
}

// compileBareWord resolves a single-word predicate: a file-type alias is
// shorthand for `type == <word>`. Anything else (structured selectors were
// peeled off earlier) is an unknown alias.
func (c *checker) compileBareWord(p query.Pred) (expr.Expr, error) {
	if t, ok := predicate.ParseFileType(p.Selector); ok {
		return expr.Leaf{Pred: &predicate.MetadataPredicate{
			Field: predicate.FieldType,
			Type:  predicate.TypeEquals(t),
		}}, nil
	}
	return nil, unknownAlias(c.query, p.SelOffset, p.Selector)
}

func (c *checker) compileString(p query.Pred, sel selectorID) (expr.Expr, error) {
	op, ok := parseStringOperator(p.Operator)
	if !ok {
		return nil, c.operatorError(p)
	}

	var (
		match *predicate.StringMatcher
		err   error
	)
	switch op {
	case opEquals:
		text, terr := c.scalarValue(p, "string")
		if terr != nil {
			return nil, terr
		}
		match = predicate.Equals(text)
	case opNotEquals:
		text, terr := c.scalarValue(p, "string")
		if terr != nil {
			return nil, terr
		}
		match = predicate.NotEquals(text)
	case opContains:
		text, terr := c.scalarValue(p, "string")
		if terr != nil {
			return nil, terr
		}
		match = predicate.Contains(text)
	case opIn:
		items, terr := c.setValue(p)
		if terr != nil {
			return nil, terr
		}
		match = predicate.In(items)
	case opMatches:
		text, terr := c.scalarValue(p, "regex")
		if terr != nil {
			return nil, terr
		}
		match, err = predicate.Regex(text)
		if err != nil {
			return nil, invalidValue(c.query, p.ValOffset, p.Selector, err.Error())
		}
	case opGlob:
		text, terr := c.scalarValue(p, "glob pattern")
		if terr != nil {
			return nil, terr
		}
		match, err = predicate.Glob(text)
		if err != nil {
			return nil, invalidValue(c.query, p.ValOffset, p.Selector, err.Error())
		}
	}

	return expr.Leaf{Pred: &predicate.NamePredicate{
		Field: nameFieldFor(sel),
		Match: match,
	}}, nil
}

func (c *checker) compileNumeric(p query.Pred, sel selectorID) (expr.Expr, error) {
	op, ok := parseCompareOperator(p.Operator)
	if !ok {
		return nil, c.operatorError(p)
	}

	text, terr := c.scalarValue(p, "numeric")
	if terr != nil {
		return nil, terr
	}

	var (
		value uint64
		err   error
	)
	if sel == selSize {
		value, err = parseSizeValue(text)
	} else {
		value, err = strconv.ParseUint(text, 10, 64)
		if err != nil {
			err = fmt.Errorf("%q is not a whole number", text)
		}
	}
	if err != nil {
		return nil, invalidValue(c.query, p.ValOffset, p.Selector, err.Error())
	}

	matcher := &predicate.NumberMatcher{Op: op, Value: value}
	if sel == selDepth {
		return expr.Leaf{Pred: &predicate.NamePredicate{
			Field: predicate.FieldDepth,
			Depth: matcher,
		}}, nil
	}
	return expr.Leaf{Pred: &predicate.MetadataPredicate{
		Field: predicate.FieldSize,
		Size:  matcher,
	}}, nil
}

func (c *checker) compileTemporal(p query.Pred, sel selectorID) (expr.Expr, error) {
	op, ok := parseTemporalOperator(p.Operator)
	if !ok {
		return nil, c.operatorError(p)
	}

	text, terr := c.scalarValue(p, "time")
	if terr != nil {
		return nil, terr
	}
	when, err := parseTimeValue(text, c.now)
	if err != nil {
		return nil, invalidValue(c.query, p.ValOffset, p.Selector, err.Error())
	}

	var field predicate.MetadataField
	switch sel {
	case selCreated:
		field = predicate.FieldCreated
	case selAccessed:
		field = predicate.FieldAccessed
	default:
		field = predicate.FieldModified
	}
	return expr.Leaf{Pred: &predicate.MetadataPredicate{
		Field: field,
		Time:  &predicate.TimeMatcher{Op: op, When: when},
	}}, nil
}

func (c *checker) compileEnum(p query.Pred) (expr.Expr, error) {
	op, ok := parseEnumOperator(p.Operator)
	if !ok {
		return nil, c.operatorError(p)
	}

	var matcher *predicate.TypeMatcher
	switch op {
	case enumIn:
		items, terr := c.setValue(p)
		if terr != nil {
			return nil, terr
		}
		types := make([]predicate.FileType, 0, len(items))
		for _, item := range items {
			t, terr := c.fileTypeValue(p, item)
			if terr != nil {
				return nil, terr
			}
			types = append(types, t)
		}
		matcher = predicate.TypeIn(types)
	default:
		text, terr := c.scalarValue(p, "file type")
		if terr != nil {
			return nil, terr
		}
		t, terr := c.fileTypeValue(p, text)
		if terr != nil {
			return nil, terr
		}
		if op == enumNotEquals {
			matcher = predicate.TypeNotEquals(t)
		} else {
			matcher = predicate.TypeEquals(t)
		}
	}

	return expr.Leaf{Pred: &predicate.MetadataPredicate{
		Field: predicate.FieldType,
		Type:  matcher,
	}}, nil
}

func (c *checker) fileTypeValue(p query.Pred, text string) (predicate.FileType, *TypeError) {
	t, ok := predicate.ParseFileType(text)
	if !ok {
		detail := fmt.Sprintf("unknown file type %q (valid types: %s)",
			text, strings.Join(fileTypeVocabulary, ", "))
		return 0, invalidValue(c.query, p.ValOffset, p.Selector, detail,
			suggest(text, fileTypeVocabulary)...)
	}
	return t, nil
}

func (c *checker) compileContent(p query.Pred) (expr.Expr, error) {
	op, ok := parseStringOperator(p.Operator)
	if !ok {
		return nil, c.operatorError(p)
	}

	var (
		pred *predicate.ContentPredicate
		err  error
	)
	switch op {
	case opEquals:
		text, terr := c.scalarValue(p, "string")
		if terr != nil {
			return nil, terr
		}
		pred = predicate.NewContentEquals(text)
	case opContains:
		text, terr := c.scalarValue(p, "string")
		if terr != nil {
			return nil, terr
		}
		pred = predicate.NewContentContains(text)
	case opMatches:
		text, terr := c.scalarValue(p, "regex")
		if terr != nil {
			return nil, terr
		}
		pred, err = predicate.NewContentRegex(text)
	default:
		// in, !=, and glob have no streaming rendition.
		return nil, incompatibleOperator(c.query, p.OpOffset, p.Selector, p.Operator)
	}
	if err != nil {
		return nil, invalidValue(c.query, p.ValOffset, p.Selector, err.Error())
	}

	return expr.Leaf{Pred: pred}, nil
}

// compileStructured lowers a yaml:/json:/toml: predicate and wraps it in its
// synthetic precondition. The comparison family binds first, against a
// literal parsed by the format's own parser; the remaining string family
// matches candidate renditions. Glob has no structured rendition.
func (c *checker) compileStructured(p query.Pred, format resolve.Format, pathText string) (expr.Expr, error) {
	steps, err := resolve.ParsePath(pathText)
	if err != nil {
		return nil, invalidPath(c.query, p.SelOffset, format.String(), err.Error())
	}

	pred := &predicate.StructuredPredicate{
		Format:   format,
		Path:     steps,
		PathText: pathText,
	}

	if p.Operator == "" {
		pred.Exists = true
		return c.guardStructured(pred), nil
	}

	if op, ok := parseCompareOperator(p.Operator); ok {
		text, terr := c.scalarValue(p, format.String())
		if terr != nil {
			return nil, terr
		}
		value := resolve.ParseLiteral(format, text)
		if isOrderingOp(op) && !predicate.Orderable(value) {
			detail := fmt.Sprintf("operator %q needs a numeric or date value, got %q", p.Operator, text)
			return nil, invalidValue(c.query, p.ValOffset, p.Selector, detail)
		}
		pred.Compare = &predicate.StructuredCompare{Op: op, Value: value, Raw: text}
		return c.guardStructured(pred), nil
	}

	op, ok := parseStringOperator(p.Operator)
	if !ok || op == opGlob {
		return nil, c.operatorError(p)
	}
	var match *predicate.StringMatcher
	switch op {
	case opContains:
		text, terr := c.scalarValue(p, "string")
		if terr != nil {
			return nil, terr
		}
		match = predicate.Contains(text)
	case opIn:
		items, terr := c.setValue(p)
		if terr != nil {
			return nil, terr
		}
		match = predicate.In(items)
	case opMatches:
		text, terr := c.scalarValue(p, "regex")
		if terr != nil {
			return nil, terr
		}
		match, err = predicate.Regex(text)
		if err != nil {
			return nil, invalidValue(c.query, p.ValOffset, p.Selector, err.Error())
		}
	}
	pred.Match = match
	return c.guardStructured(pred), nil
}

// guardStructured wraps pred as
//
//	ext in [<format extensions>] && size < <ceiling> && <pred>
//
// so the name and metadata phases rule out entities that cannot hold a
// parseable document before anything is read.
func (c *checker) guardStructured(pred *predicate.StructuredPredicate) expr.Expr {
	ext := &predicate.NamePredicate{
		Field: predicate.FieldExt,
		Match: predicate.In(pred.Format.Extensions()),
	}
	size := &predicate.MetadataPredicate{
		Field: predicate.FieldSize,
		Size:  &predicate.NumberMatcher{Op: predicate.CompareLt, Value: uint64(c.maxDocBytes)},
	}
	return expr.And{Exprs: []expr.Expr{
		expr.Leaf{Pred: ext},
		expr.Leaf{Pred: size},
		expr.Leaf{Pred: pred},
	}}
}

// operatorError distinguishes an operator no family recognizes from a real
// operator applied to the wrong selector.
func (c *checker) operatorError(p query.Pred) *TypeError {
	if knownOperator(p.Operator) {
		return incompatibleOperator(c.query, p.OpOffset, p.Selector, p.Operator)
	}
	return unknownOperator(c.query, p.OpOffset, p.Operator)
}

// scalarValue returns the value text for single-value operators, rejecting
// bracketed sets. want names the expected form for the error message.
func (c *checker) scalarValue(p query.Pred, want string) (string, *TypeError) {
	if p.Value.Kind == query.ValueSet {
		detail := fmt.Sprintf("expected a %s value, found a set", want)
		return "", invalidValue(c.query, p.ValOffset, p.Selector, detail)
	}
	return p.Value.Text, nil
}

// setValue splits the value into set items. Bracketed sets, bare comma
// lists, and quoted scalars that contain commas all produce the same items.
func (c *checker) setValue(p query.Pred) ([]string, *TypeError) {
	items, err := parseSetItems(p.Value.Text)
	if err != nil {
		return nil, invalidValue(c.query, p.ValOffset, p.Selector, err.Error())
	}
	if len(items) == 0 {
		return nil, invalidValue(c.query, p.ValOffset, p.Selector, "set has no items")
	}
	return items, nil
}

// splitStructuredSelector peels a yaml:/json:/toml: prefix off a selector,
// case-insensitively, returning the format and the path text after the
// colon.
func splitStructuredSelector(selector string) (resolve.Format, string, bool) {
	prefix, path, ok := strings.Cut(selector, ":")
	if !ok {
		return 0, "", false
	}
	switch strings.ToLower(prefix) {
	case "yaml":
		return resolve.FormatYAML, path, true
	case "json":
		return resolve.FormatJSON, path, true
	case "toml":
		return resolve.FormatTOML, path, true
	}
	return 0, "", false
}

func nameFieldFor(sel selectorID) predicate.NameField {
	switch sel {
	case selStem:
		return predicate.FieldStem
	case selExt:
		return predicate.FieldExt
	case selPath:
		return predicate.FieldPath
	case selDir:
		return predicate.FieldDir
	default:
		return predicate.FieldName
	}
}

func isOrderingOp(op predicate.CompareOp) bool {
	switch op {
	case predicate.CompareGt, predicate.CompareGe, predicate.CompareLt, predicate.CompareLe:
		return true
	}
	return false
}
