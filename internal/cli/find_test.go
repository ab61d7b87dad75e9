package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execFind(t *testing.T, rootOpts *RootOptions, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()
	stdout = &bytes.Buffer{}
	stderr = &bytes.Buffer{}
	cmd := NewFindCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return stdout, stderr, cmd.Execute()
}

func TestFindTextOutput(t *testing.T) {
	stdout, _, err := execFind(t, &RootOptions{Format: "text"},
		"ext == rs", "testdata/tree", "--workers", "1")
	require.NoError(t, err)

	assert.Equal(t, "testdata/tree/a.rs\ntestdata/tree/sub/b.rs\n", stdout.String(),
		"one path per line in walk order")
}

func TestFindJSONOutput(t *testing.T) {
	stdout, _, err := execFind(t, &RootOptions{Format: "json"},
		"ext == rs", "testdata/tree", "--workers", "1")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "find_json", stdout.Bytes())
}

func TestFindNoMatches(t *testing.T) {
	stdout, stderr, err := execFind(t, &RootOptions{Format: "text"},
		"ext == zig", "testdata/tree")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err), "clean run without matches exits 1")
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "no matches")
}

func TestFindNoMatchesJSONStillReports(t *testing.T) {
	stdout, _, err := execFind(t, &RootOptions{Format: "json"},
		"ext == zig", "testdata/tree")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status, "the run itself succeeded")
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(0), data["matched"])
	assert.Equal(t, []any{}, data["matches"], "present and empty, not null")
}

func TestFindRejectedQuery(t *testing.T) {
	stdout, stderr, err := execFind(t, &RootOptions{Format: "text"},
		`nmae == "x"`, "testdata/tree")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), `unknown selector "nmae"`)
	assert.Contains(t, stderr.String(), "did you mean name?")
}

func TestFindMaxResults(t *testing.T) {
	stdout, _, err := execFind(t, &RootOptions{Format: "text"},
		"ext == rs", "testdata/tree", "--workers", "1", "--max-results", "1")
	require.NoError(t, err)

	assert.Equal(t, "testdata/tree/a.rs\n", stdout.String(), "output capped at one")
}

func TestFindExcludeFlag(t *testing.T) {
	stdout, _, err := execFind(t, &RootOptions{Format: "text"},
		"ext == rs", "testdata/tree", "--workers", "1", "--exclude", "**/sub")
	require.NoError(t, err)

	assert.Equal(t, "testdata/tree/a.rs\n", stdout.String(), "sub/ pruned whole")
}

func TestFindStructuredQuery(t *testing.T) {
	stdout, _, err := execFind(t, &RootOptions{Format: "text"},
		"yaml:.server.port == 8080", "testdata/tree", "--workers", "1")
	require.NoError(t, err)

	assert.Equal(t, "testdata/tree/cfg.yaml\n", stdout.String())
}

func TestFindContentQuery(t *testing.T) {
	stdout, _, err := execFind(t, &RootOptions{Format: "text"},
		`content contains "TODO"`, "testdata/tree", "--workers", "1")
	require.NoError(t, err)

	assert.Equal(t, "testdata/tree/notes.md\n", stdout.String())
}

func TestFindConfigFileExcludes(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sift.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("exclude:\n  - \"**/sub\"\nworkers: 1\n"), 0o644))

	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "find", "ext == rs", "testdata/tree"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "testdata/tree/a.rs\n", stdout.String(), "file excludes apply")
}

func TestFindFlagOverridesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sift.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("exclude:\n  - \"**/sub\"\n"), 0o644))

	stdout := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "find", "ext == rs", "testdata/tree",
		"--workers", "1", "--exclude", "**/nothing"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "testdata/tree/a.rs\ntestdata/tree/sub/b.rs\n", stdout.String(),
		"a set flag wins over the file value")
}
