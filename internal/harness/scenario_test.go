package harness

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes scenario YAML to a temp file and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "phase_gating.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "phase_gating", scenario.Name)
	assert.Equal(t, `ext == "rs" && size > 1024`, scenario.Query)
	require.Len(t, scenario.Entities, 3)
	assert.Equal(t, "/src/lib.rs", scenario.Entities[0].Path)
	assert.Equal(t, uint64(2000), scenario.Entities[0].Size)
	assert.Equal(t, ExpectMatch, scenario.Entities[0].Expect)
	assert.Equal(t, "metadata", scenario.Entities[0].MaxPhase)
	assert.Equal(t, "name", scenario.Entities[2].MaxPhase)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "entities misspelled"
query: 'size > 0'
entitites:
  - path: /a
    expect: match
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingExpect(t *testing.T) {
	path := writeScenario(t, `
name: missing_expect
description: "entity without a claimed verdict"
query: 'size > 0'
entities:
  - path: /a
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entities[0]: expect is required")
}

func TestLoadScenario_UnknownMaxPhase(t *testing.T) {
	path := writeScenario(t, `
name: bad_phase
description: "phase name outside the vocabulary"
query: 'size > 0'
entities:
  - path: /a
    expect: match
    max_phase: stat
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown max_phase "stat"`)
}

func TestLoadScenario_BadModifiedAgo(t *testing.T) {
	path := writeScenario(t, `
name: bad_duration
description: "unparseable duration"
query: 'size > 0'
entities:
  - path: /a
    expect: match
    modified_ago: yesterday
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid modified_ago")
}

func TestLoadScenario_ExpectErrorForbidsEntities(t *testing.T) {
	path := writeScenario(t, `
name: conflicting
description: "a rejected query cannot also evaluate entities"
query: 'type == dirq'
expect_error: 'unknown file type'
entities:
  - path: /a
    expect: match
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entities must be empty")
}

func TestLoadScenario_RequiresEntities(t *testing.T) {
	path := writeScenario(t, `
name: empty
description: "nothing to evaluate"
query: 'size > 0'
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entities list is required")
}

func TestEntitySpec_BuildDefaults(t *testing.T) {
	entity, err := EntitySpec{Path: "/a.rs", Expect: ExpectMatch}.build()
	require.NoError(t, err)

	md, err := entity.Metadata()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), md.Size)
	assert.True(t, md.Mode.IsRegular())
	assert.Equal(t, 0, entity.Depth())
}

func TestEntitySpec_BuildContentSetsSize(t *testing.T) {
	entity, err := EntitySpec{Path: "/a.rs", Content: "hello", Expect: ExpectMatch}.build()
	require.NoError(t, err)

	md, err := entity.Metadata()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), md.Size)
}

func TestEntitySpec_BuildSizeOverridesContent(t *testing.T) {
	entity, err := EntitySpec{Path: "/a.rs", Content: "hello", Size: 4096, Expect: ExpectMatch}.build()
	require.NoError(t, err)

	md, err := entity.Metadata()
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), md.Size)
}

func TestEntitySpec_BuildDirectory(t *testing.T) {
	entity, err := EntitySpec{Path: "/src", Type: "dir", Expect: ExpectNoMatch}.build()
	require.NoError(t, err)

	md, err := entity.Metadata()
	require.NoError(t, err)
	assert.Equal(t, fs.ModeDir, md.Mode&fs.ModeDir)
}

func TestParsePhase(t *testing.T) {
	for _, name := range []string{"name", "metadata", "structured", "content"} {
		phase, ok := parsePhase(name)
		require.True(t, ok, name)
		assert.Equal(t, name, phase.String())
	}

	_, ok := parsePhase("stat")
	assert.False(t, ok)
}
