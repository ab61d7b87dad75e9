package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/engine"
	"github.com/roach88/sift/internal/expr"
	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/testutil"
)

// Harness runs one compiled scenario. It holds the shared evaluator; all
// per-entity state lives in the snapshots built per check.
type Harness struct {
	tree        expr.Expr
	eval        *engine.Evaluator
	maxDocBytes int64
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the query (or validate the expected compile error)
//  2. Evaluate each entity snapshot and check its claimed verdict
//  3. Check the entity's phase ceiling against the accessor counters
//  4. Check every evaluation principle against the run
//
// The returned error covers harness failures (unbuildable entities, an
// unexpected compile error); check failures land in the result instead.
func Run(scenario *Scenario) (*Result, error) {
	result := NewResult()

	tree, err := compiler.CompileWithConfig(scenario.Query, compiler.Config{
		MaxDocumentBytes: scenario.MaxDocumentBytes,
	})

	if scenario.ExpectError != "" {
		checkCompileError(result, scenario, err)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}
	result.Canonical = tree.String()

	h := &Harness{
		tree:        tree,
		eval:        engine.New(tree, engine.WithMaxDocumentBytes(scenario.MaxDocumentBytes)),
		maxDocBytes: scenario.MaxDocumentBytes,
	}

	ctx := context.Background()
	for i, spec := range scenario.Entities {
		if err := h.checkEntity(ctx, result, spec); err != nil {
			return nil, fmt.Errorf("entities[%d]: %w", i, err)
		}
	}

	return result, nil
}

// checkCompileError validates a scenario that expects the query itself to
// be rejected.
func checkCompileError(result *Result, scenario *Scenario, err error) {
	switch {
	case err == nil:
		result.record("", CheckCompileError,
			fmt.Sprintf("query compiled but an error containing %q was expected", scenario.ExpectError),
			false)
	case !strings.Contains(err.Error(), scenario.ExpectError):
		result.record("", CheckCompileError,
			fmt.Sprintf("error %q does not contain %q", err.Error(), scenario.ExpectError),
			false)
	default:
		result.record("", CheckCompileError,
			fmt.Sprintf("query rejected: %v", err),
			true)
	}
}

// checkEntity evaluates one entity spec and records its checks.
func (h *Harness) checkEntity(ctx context.Context, result *Result, spec EntitySpec) error {
	entity, err := spec.build()
	if err != nil {
		return err
	}

	verdict, err := h.eval.Evaluate(ctx, entity)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", spec.Path, err)
	}

	want := spec.Expect == ExpectMatch
	result.record(spec.Path, CheckVerdict,
		fmt.Sprintf("expected %s, evaluated %s", spec.Expect, verdictWord(verdict)),
		verdict == want)

	counters := entity.Counters()
	if spec.MaxPhase != "" {
		phase, _ := parsePhase(spec.MaxPhase)
		if msg := ceilingViolation(phase, counters); msg != "" {
			result.record(spec.Path, CheckPhaseCeiling, msg, false)
		} else {
			result.record(spec.Path, CheckPhaseCeiling,
				fmt.Sprintf("no accessor ran past the %s phase", spec.MaxPhase),
				true)
		}
	}

	pc := &PrincipleContext{
		Tree:             h.tree,
		MaxDocumentBytes: h.maxDocBytes,
		Spec:             spec,
		Verdict:          verdict,
		Counters:         counters,
	}
	for _, p := range Principles() {
		if err := p.Check(pc); err != nil {
			result.record(spec.Path, p.Name, err.Error(), false)
		} else {
			result.record(spec.Path, p.Name, p.Description, true)
		}
	}

	return nil
}

func verdictWord(matched bool) string {
	if matched {
		return ExpectMatch
	}
	return ExpectNoMatch
}

// ceilingViolation reports accessor calls past the allowed phase. Metadata
// belongs to the metadata phase, document decodes to the structured phase,
// and content opens to the content phase.
func ceilingViolation(max predicate.Phase, c testutil.Counters) string {
	switch max {
	case predicate.PhaseName:
		if c.Metadata > 0 || c.Documents > 0 || c.Content > 0 {
			return fmt.Sprintf("accessors ran past the name phase (stat=%d decode=%d content=%d)",
				c.Metadata, c.Documents, c.Content)
		}
	case predicate.PhaseMetadata:
		if c.Documents > 0 || c.Content > 0 {
			return fmt.Sprintf("accessors ran past the metadata phase (decode=%d content=%d)",
				c.Documents, c.Content)
		}
	case predicate.PhaseStructured:
		if c.Content > 0 {
			return fmt.Sprintf("content opened %d times past the structured phase", c.Content)
		}
	}
	return ""
}
