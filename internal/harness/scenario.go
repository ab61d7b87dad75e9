package harness

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/testutil"
)

// Scenario defines a conformance test scenario: one query evaluated against
// a set of canned entities, with expected verdicts and accessor ceilings.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden comparisons use it as
	// the fixture name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Query is the query under test.
	Query string `yaml:"query"`

	// MaxDocumentBytes overrides the structured decode ceiling. Zero means
	// the default ceiling.
	MaxDocumentBytes int64 `yaml:"max_document_bytes,omitempty"`

	// ExpectError, when set, asserts that compiling Query fails with an
	// error containing this substring. Entities must be empty; nothing is
	// ever evaluated.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Entities lists the snapshots to evaluate, in order.
	Entities []EntitySpec `yaml:"entities,omitempty"`
}

// EntitySpec describes one in-memory entity and the claims made about it.
type EntitySpec struct {
	// Path is the entity's path as the name phase sees it.
	Path string `yaml:"path"`

	// Depth is the number of components below the walk root. Default: 0.
	Depth int `yaml:"depth,omitempty"`

	// Type is the file type name (file, dir, symlink, ...). Default: file.
	Type string `yaml:"type,omitempty"`

	// Size is the entity size in bytes. When omitted and Content is set,
	// the size is the content length.
	Size uint64 `yaml:"size,omitempty"`

	// Content is the entity's byte content, for content and structured
	// predicates.
	Content string `yaml:"content,omitempty"`

	// ModifiedAgo sets the modification time to this long before the run,
	// as a Go duration string ("48h").
	ModifiedAgo string `yaml:"modified_ago,omitempty"`

	// Expect is the claimed verdict: "match" or "no_match".
	Expect string `yaml:"expect"`

	// MaxPhase, when set, names the costliest phase allowed to touch this
	// entity; accessors belonging to later phases must never run.
	MaxPhase string `yaml:"max_phase,omitempty"`
}

// Expected verdict constants.
const (
	ExpectMatch   = "match"
	ExpectNoMatch = "no_match"
)

// LoadScenario reads and parses a scenario YAML file. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos), or
// is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Query == "" {
		return fmt.Errorf("query is required")
	}

	if s.ExpectError != "" {
		if len(s.Entities) != 0 {
			return fmt.Errorf("entities must be empty when expect_error is set (a rejected query evaluates nothing)")
		}
		return nil
	}

	if len(s.Entities) == 0 {
		return fmt.Errorf("entities list is required and must be non-empty")
	}

	for i, e := range s.Entities {
		if err := validateEntity(i, &e); err != nil {
			return err
		}
	}

	return nil
}

// validateEntity validates a single entity spec.
func validateEntity(index int, e *EntitySpec) error {
	if e.Path == "" {
		return fmt.Errorf("entities[%d]: path is required", index)
	}

	if e.Type != "" {
		if _, ok := predicate.ParseFileType(e.Type); !ok {
			return fmt.Errorf("entities[%d]: unknown entity type %q", index, e.Type)
		}
	}

	if e.ModifiedAgo != "" {
		if _, err := time.ParseDuration(e.ModifiedAgo); err != nil {
			return fmt.Errorf("entities[%d]: invalid modified_ago: %v", index, err)
		}
	}

	switch e.Expect {
	case ExpectMatch, ExpectNoMatch:
	case "":
		return fmt.Errorf("entities[%d]: expect is required (%q or %q)", index, ExpectMatch, ExpectNoMatch)
	default:
		return fmt.Errorf("entities[%d]: unknown expect %q (want %q or %q)", index, e.Expect, ExpectMatch, ExpectNoMatch)
	}

	if e.MaxPhase != "" {
		if _, ok := parsePhase(e.MaxPhase); !ok {
			return fmt.Errorf("entities[%d]: unknown max_phase %q (want name, metadata, structured, or content)", index, e.MaxPhase)
		}
	}

	return nil
}

// build materializes a fresh snapshot of the entity. Every caller gets its
// own accessor counters, so verdict evaluation, re-evaluation, and the
// reference fold never observe each other's I/O.
func (e EntitySpec) build() (*testutil.Entity, error) {
	md := predicate.Metadata{}

	if e.Type != "" {
		ft, ok := predicate.ParseFileType(e.Type)
		if !ok {
			return nil, fmt.Errorf("unknown entity type %q", e.Type)
		}
		md.Mode = modeFor(ft)
	}

	if e.Content != "" {
		md.Size = uint64(len(e.Content))
	}
	if e.Size > 0 {
		md.Size = e.Size
	}

	if e.ModifiedAgo != "" {
		ago, err := time.ParseDuration(e.ModifiedAgo)
		if err != nil {
			return nil, fmt.Errorf("invalid modified_ago: %v", err)
		}
		md.ModTime = time.Now().Add(-ago)
	}

	opts := []testutil.EntityOption{testutil.WithDepth(e.Depth)}
	if e.Content != "" {
		opts = append(opts, testutil.WithContent(e.Content))
	}
	opts = append(opts, testutil.WithMetadata(md))

	return testutil.NewEntity(e.Path, opts...), nil
}

// modeFor maps a file type to the mode bits a stat would report.
func modeFor(t predicate.FileType) fs.FileMode {
	switch t {
	case predicate.TypeDir:
		return fs.ModeDir
	case predicate.TypeSymlink:
		return fs.ModeSymlink
	case predicate.TypeSocket:
		return fs.ModeSocket
	case predicate.TypeFifo:
		return fs.ModeNamedPipe
	case predicate.TypeBlockDevice:
		return fs.ModeDevice
	case predicate.TypeCharDevice:
		return fs.ModeDevice | fs.ModeCharDevice
	default:
		return 0
	}
}

// parsePhase resolves a phase name from a scenario file.
func parsePhase(s string) (predicate.Phase, bool) {
	switch s {
	case "name":
		return predicate.PhaseName, true
	case "metadata":
		return predicate.PhaseMetadata, true
	case "structured":
		return predicate.PhaseStructured, true
	case "content":
		return predicate.PhaseContent, true
	default:
		return 0, false
	}
}
