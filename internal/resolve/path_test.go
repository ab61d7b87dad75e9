package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		input string
		want  []Step
	}{
		{".name", []Step{{Kind: StepKey, Key: "name"}}},
		{".spec.replicas", []Step{
			{Kind: StepKey, Key: "spec"},
			{Kind: StepKey, Key: "replicas"},
		}},
		{".a.b.c.d", []Step{
			{Kind: StepKey, Key: "a"},
			{Kind: StepKey, Key: "b"},
			{Kind: StepKey, Key: "c"},
			{Kind: StepKey, Key: "d"},
		}},
		{"[0]", []Step{{Kind: StepIndex, Index: 0}}},
		{"[0].name", []Step{
			{Kind: StepIndex, Index: 0},
			{Kind: StepKey, Key: "name"},
		}},
		{".items[0]", []Step{
			{Kind: StepKey, Key: "items"},
			{Kind: StepIndex, Index: 0},
		}},
		{"[*]", []Step{{Kind: StepWildcard}}},
		{".items[*].id", []Step{
			{Kind: StepKey, Key: "items"},
			{Kind: StepWildcard},
			{Kind: StepKey, Key: "id"},
		}},
		{"[0][1][2]", []Step{
			{Kind: StepIndex, Index: 0},
			{Kind: StepIndex, Index: 1},
			{Kind: StepIndex, Index: 2},
		}},
		{".spec.containers[0].image", []Step{
			{Kind: StepKey, Key: "spec"},
			{Kind: StepKey, Key: "containers"},
			{Kind: StepIndex, Index: 0},
			{Kind: StepKey, Key: "image"},
		}},
		{".my_field", []Step{{Kind: StepKey, Key: "my_field"}}},
		{".camelCase", []Step{{Kind: StepKey, Key: "camelCase"}}},
		{"[999]", []Step{{Kind: StepIndex, Index: 999}}},
		{"..database", []Step{{Kind: StepRecursiveKey, Key: "database"}}},
		{"..database.host", []Step{
			{Kind: StepRecursiveKey, Key: "database"},
			{Kind: StepKey, Key: "host"},
		}},
		{".items[*]..id", []Step{
			{Kind: StepKey, Key: "items"},
			{Kind: StepWildcard},
			{Kind: StepRecursiveKey, Key: "id"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			steps, err := ParsePath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, steps)
		})
	}
}

func TestParsePath_Errors(t *testing.T) {
	inputs := []string{
		"",            // empty
		"name",        // missing leading dot
		"[0",          // missing closing bracket
		".items[0",    // missing closing bracket after key
		"[]",          // empty brackets
		"[*",          // unterminated wildcard
		".field-name", // hyphen is not an identifier character
		"...field",    // recursive descent is exactly two dots
		".my field",   // space in key
		".",           // dot with no field name
		"[a]",         // non-numeric index
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePath(input)
			assert.Error(t, err, "path %q should not parse", input)
		})
	}
}

func TestStepString(t *testing.T) {
	steps, err := ParsePath(".spec.containers[0]..image[*]")
	require.NoError(t, err)

	var rendered string
	for _, s := range steps {
		rendered += s.String()
	}
	assert.Equal(t, ".spec.containers[0]..image[*]", rendered)
}
