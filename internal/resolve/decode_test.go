package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_YAML(t *testing.T) {
	docs, err := Decode(strings.NewReader("server:\n  port: 8080\n"), FormatYAML, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	values := Navigate(docs[0], mustPath(t, ".server.port"))
	require.Len(t, values, 1)
	assert.Equal(t, 8080, values[0])
}

func TestDecode_YAMLMultiDocument(t *testing.T) {
	input := "name: first\n---\nname: second\n---\nname: third\n"
	docs, err := Decode(strings.NewReader(input), FormatYAML, 0)
	require.NoError(t, err)
	require.Len(t, docs, 3, "each document in the stream should decode separately")

	values := Navigate(docs[2], mustPath(t, ".name"))
	require.Len(t, values, 1)
	assert.Equal(t, "third", values[0])
}

func TestDecode_JSON(t *testing.T) {
	input := `{"dependencies": [{"name": "serde", "version": "1.0"}]}`
	docs, err := Decode(strings.NewReader(input), FormatJSON, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	values := Navigate(docs[0], mustPath(t, ".dependencies[0].version"))
	require.Len(t, values, 1)
	assert.Equal(t, "1.0", values[0])
}

func TestDecode_TOML(t *testing.T) {
	input := "[server]\nports = [8001, 8002]\n"
	docs, err := Decode(strings.NewReader(input), FormatTOML, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	values := Navigate(docs[0], mustPath(t, ".server.ports[*]"))
	assert.Equal(t, []any{int64(8001), int64(8002)}, values)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"), FormatJSON, 0)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("a: [unclosed"), FormatYAML, 0)
	assert.Error(t, err)
}

func TestDecode_SizeCeiling(t *testing.T) {
	input := `{"key": "` + strings.Repeat("x", 100) + `"}`

	_, err := Decode(strings.NewReader(input), FormatJSON, 16)
	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	docs, err := Decode(strings.NewReader(input), FormatJSON, int64(len(input)))
	require.NoError(t, err)
	assert.Len(t, docs, 1, "a document exactly at the ceiling still parses")
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		format Format
		text   string
		want   any
	}{
		{FormatYAML, "8080", 8080},
		{FormatYAML, "2.5", 2.5},
		{FormatYAML, "true", true},
		{FormatYAML, "hello", "hello"},
		{FormatYAML, "", ""},
		{FormatJSON, "8080", float64(8080)},
		{FormatJSON, "true", true},
		{FormatJSON, `"quoted"`, "quoted"},
		{FormatJSON, "bareword", "bareword"},
		{FormatTOML, "8080", int64(8080)},
		{FormatTOML, "true", true},
		{FormatTOML, "2.5", 2.5},
		{FormatTOML, "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String()+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLiteral(tt.format, tt.text))
		})
	}
}

func TestFormatExtensions(t *testing.T) {
	assert.Equal(t, []string{"yaml", "yml"}, FormatYAML.Extensions())
	assert.Equal(t, []string{"json"}, FormatJSON.Extensions())
	assert.Equal(t, []string{"toml"}, FormatTOML.Extensions())
}
