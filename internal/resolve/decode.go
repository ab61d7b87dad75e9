package resolve

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a structured document format.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// Extensions returns the file extensions recognized for the format, without
// the leading dot.
func (f Format) Extensions() []string {
	switch f {
	case FormatYAML:
		return []string{"yaml", "yml"}
	case FormatJSON:
		return []string{"json"}
	case FormatTOML:
		return []string{"toml"}
	default:
		return nil
	}
}

// DefaultMaxDocumentBytes caps how much of an entity Decode is willing to
// read and parse. Oversized documents are skipped, not errors.
const DefaultMaxDocumentBytes = 1 << 20

// ErrDocumentTooLarge reports a document larger than the configured ceiling.
var ErrDocumentTooLarge = errors.New("document exceeds size ceiling")

// Decode reads at most limit bytes from r and parses them as format. A YAML
// stream may hold multiple documents; each is returned separately. limit <= 0
// selects DefaultMaxDocumentBytes.
func Decode(r io.Reader, format Format, limit int64) ([]any, error) {
	if limit <= 0 {
		limit = DefaultMaxDocumentBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrDocumentTooLarge
	}

	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return []any{doc}, nil
	case FormatTOML:
		var doc any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return []any{doc}, nil
	default:
		return nil, fmt.Errorf("unknown document format %d", format)
	}
}

func decodeYAML(data []byte) ([]any, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var docs []any

	for {
		var doc any
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// ParseLiteral interprets a query literal through the format's own parser, so
// "8080" compares as a number, "true" as a boolean, and quoting is purely for
// shell escaping. Input that the format cannot parse stays a plain string.
func ParseLiteral(format Format, text string) any {
	switch format {
	case FormatYAML:
		var v any
		if text == "" || yaml.Unmarshal([]byte(text), &v) != nil {
			return text
		}
		if v == nil && text != "null" && text != "~" {
			return text
		}
		return v

	case FormatJSON:
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return text
		}
		return v

	case FormatTOML:
		// A synthetic document lets the TOML parser handle every value
		// form. Values that break the synthetic line (say, text containing
		// "=") get one more chance as a complete document.
		var table map[string]any
		if err := toml.Unmarshal([]byte("_v = "+text), &table); err == nil {
			if v, ok := table["_v"]; ok {
				return v
			}
		}
		var doc map[string]any
		if err := toml.Unmarshal([]byte(text), &doc); err == nil {
			return doc
		}
		return text

	default:
		return text
	}
}
