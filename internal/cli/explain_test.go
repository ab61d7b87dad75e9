package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execExplain(t *testing.T, rootOpts *RootOptions, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()
	stdout = &bytes.Buffer{}
	stderr = &bytes.Buffer{}
	cmd := NewExplainCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return stdout, stderr, cmd.Execute()
}

func TestExplainMixedQuery(t *testing.T) {
	stdout, _, err := execExplain(t, &RootOptions{Format: "text"},
		`(ext == rs || ext == go) && size > 1kb && !content contains "deprecated"`)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "explain_mixed", stdout.Bytes())
}

func TestExplainShowsStructuredPreconditions(t *testing.T) {
	stdout, _, err := execExplain(t, &RootOptions{Format: "text"},
		"yaml:.server.port == 8080")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "explain_structured", stdout.Bytes())
}

func TestExplainJSON(t *testing.T) {
	stdout, _, err := execExplain(t, &RootOptions{Format: "json"},
		"yaml:.server.port == 8080")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "yaml:.server.port == 8080", data["query"])
	phases := data["phases"].(map[string]any)
	assert.Equal(t, float64(1), phases["name"], "the extension guard")
	assert.Equal(t, float64(1), phases["metadata"], "the size guard")
	assert.Equal(t, float64(1), phases["structured"])
	assert.Equal(t, float64(0), phases["content"])
	assert.Contains(t, data["tree"], "[structured]")
}

func TestExplainCustomCeiling(t *testing.T) {
	stdout, _, err := execExplain(t, &RootOptions{Format: "text"},
		"yaml:.a == 1", "--max-document-bytes", "4096")
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "size < 4096", "the precondition uses the flag's ceiling")
}

func TestExplainRejectedQuery(t *testing.T) {
	_, stderr, err := execExplain(t, &RootOptions{Format: "text"}, "size within 10")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr.String(), "syntax error")
}
