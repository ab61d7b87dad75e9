package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// ReportSnapshot is the serialized form of a scenario run, compared against
// golden files.
type ReportSnapshot struct {
	Scenario  string       `json:"scenario"`
	Query     string       `json:"query"`
	Canonical string       `json:"canonical,omitempty"`
	Pass      bool         `json:"pass"`
	Checks    []CheckEvent `json:"checks"`
	Errors    []string     `json:"errors,omitempty"`
}

// RunWithGolden executes a scenario and compares the check report against a
// golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails; a report mismatch fails the
// test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := ReportSnapshot{
		Scenario:  scenario.Name,
		Query:     scenario.Query,
		Canonical: result.Canonical,
		Pass:      result.Pass,
		Checks:    result.Checks,
		Errors:    result.Errors,
	}

	// Canonical queries contain && and comparison operators, so the default
	// HTML escaping would garble the fixture.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snapshot); err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, buf.Bytes())

	return nil
}
