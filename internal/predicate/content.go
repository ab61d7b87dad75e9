package predicate

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"
)

// ContentKind selects the compiled form of a content predicate.
type ContentKind int

const (
	ContentContains ContentKind = iota // literal substring scan
	ContentEquals                      // whole-content equality
	ContentRegex                       // unanchored regex
)

// ContentPredicate searches an entity's bytes as a stream: chunks are
// scanned as they arrive, the scan stops at the first match, and the content
// is never fully materialized. Content is searchable only while it decodes
// as valid UTF-8; the first undecodable byte ends the scan, so binary files
// simply fail to match instead of erroring.
type ContentPredicate struct {
	Kind    ContentKind
	Literal string         // ContentContains, ContentEquals
	Regex   *regexp.Regexp // ContentRegex
	Source  string         // pattern as written, for display
}

func (p *ContentPredicate) Phase() Phase    { return PhaseContent }
func (p *ContentPredicate) predicateNode() {}

// NewContentContains matches entities whose content has literal as a
// substring.
func NewContentContains(literal string) *ContentPredicate {
	return &ContentPredicate{Kind: ContentContains, Literal: literal, Source: literal}
}

// NewContentEquals matches entities whose entire content equals literal.
func NewContentEquals(literal string) *ContentPredicate {
	return &ContentPredicate{Kind: ContentEquals, Literal: literal, Source: literal}
}

// NewContentRegex matches entities whose content contains a match for
// pattern. Patterns are unanchored and case-sensitive unless the pattern
// itself says otherwise.
func NewContentRegex(pattern string) (*ContentPredicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid content regex %q: %w", pattern, err)
	}
	return &ContentPredicate{Kind: ContentRegex, Regex: re, Source: pattern}, nil
}

func (p *ContentPredicate) String() string {
	switch p.Kind {
	case ContentContains:
		return fmt.Sprintf("content contains %q", p.Source)
	case ContentEquals:
		return fmt.Sprintf("content == %q", p.Source)
	case ContentRegex:
		return fmt.Sprintf("content ~= %q", p.Source)
	default:
		return "content ?"
	}
}

// Eval streams r through the compiled matcher. Read errors end the scan; a
// match already found still counts, anything after the error cannot.
func (p *ContentPredicate) Eval(r io.Reader) bool {
	switch p.Kind {
	case ContentContains:
		return streamContains(r, p.Literal)
	case ContentEquals:
		return streamEquals(r, p.Literal)
	default:
		return p.Regex.MatchReader(&textRuneReader{r: bufio.NewReader(r)})
	}
}

var errBinaryContent = errors.New("content is not valid text")

// textRuneReader decodes UTF-8 from the underlying reader and turns the
// first invalid byte into an error, which the regexp engine treats as end of
// input. bufio reports invalid bytes as RuneError with size 1; a literal
// U+FFFD in valid text decodes with its real size and passes through.
type textRuneReader struct {
	r *bufio.Reader
}

func (t *textRuneReader) ReadRune() (rune, int, error) {
	ch, size, err := t.r.ReadRune()
	if err != nil {
		return ch, size, err
	}
	if ch == utf8.RuneError && size == 1 {
		return 0, 0, errBinaryContent
	}
	return ch, size, nil
}

const contentChunkSize = 64 * 1024

// streamContains scans for a literal substring chunk by chunk. A validator
// gates the scan to the valid-text prefix of the stream, and a tail of
// len(literal)-1 validated bytes carries over so matches spanning chunk
// boundaries are still seen.
func streamContains(r io.Reader, literal string) bool {
	if literal == "" {
		return true
	}

	lit := []byte(literal)
	overlap := len(lit) - 1
	var validator utf8Validator
	var tail []byte
	buf := make([]byte, contentChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			validated, ok := validator.feed(buf[:n])
			window := validated
			if len(tail) > 0 {
				window = append(tail, validated...)
			}
			if bytes.Contains(window, lit) {
				return true
			}
			if !ok {
				return false
			}
			if keep := len(window) - overlap; keep > 0 {
				window = window[keep:]
			}
			tail = append(tail[:0], window...)
		}
		if err != nil {
			return false
		}
	}
}

// streamEquals compares the stream against a literal positionally, failing
// fast on the first diverging byte and on content longer than the literal.
// Equality needs the content to END as valid text, so an undecodable byte
// sequence or a rune truncated at EOF is a mismatch even when the bytes
// before it equal the literal.
func streamEquals(r io.Reader, literal string) bool {
	lit := []byte(literal)
	var validator utf8Validator
	offset := 0
	buf := make([]byte, contentChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			validated, ok := validator.feed(buf[:n])
			if offset+len(validated) > len(lit) {
				return false
			}
			if !bytes.Equal(validated, lit[offset:offset+len(validated)]) {
				return false
			}
			offset += len(validated)
			if !ok {
				return false
			}
		}
		if err != nil {
			return offset == len(lit) && len(validator.partial) == 0
		}
	}
}

// utf8Validator splits a byte stream into its longest valid-UTF-8 prefix.
// Bytes that may be the start of a rune straddling a chunk boundary are held
// back until the next feed decides them.
type utf8Validator struct {
	partial []byte
	invalid bool
}

// feed returns the newly validated bytes and whether the stream is still
// valid text. After the first invalid sequence every call returns nil, false.
func (v *utf8Validator) feed(chunk []byte) ([]byte, bool) {
	if v.invalid {
		return nil, false
	}

	data := chunk
	if len(v.partial) > 0 {
		data = append(v.partial, chunk...)
		v.partial = nil
	}

	i := 0
	for i < len(data) {
		if data[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			if incompleteRune(data[i:]) {
				v.partial = append([]byte(nil), data[i:]...)
				return data[:i], true
			}
			v.invalid = true
			return data[:i], false
		}
		i += size
	}
	return data, true
}

// incompleteRune reports whether b is a proper prefix of some UTF-8
// encoding, meaning more bytes could still complete it.
func incompleteRune(b []byte) bool {
	var need int
	switch {
	case b[0]&0xE0 == 0xC0:
		need = 2
	case b[0]&0xF0 == 0xE0:
		need = 3
	case b[0]&0xF8 == 0xF0:
		need = 4
	default:
		return false
	}
	if len(b) >= need {
		return false
	}
	for _, c := range b[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}
