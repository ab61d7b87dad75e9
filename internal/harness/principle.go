package harness

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/roach88/sift/internal/engine"
	"github.com/roach88/sift/internal/expr"
	"github.com/roach88/sift/internal/predicate"
	"github.com/roach88/sift/internal/resolve"
	"github.com/roach88/sift/internal/testutil"
)

// PrincipleContext is one completed evaluation as the principles see it:
// the compiled tree, the entity spec (so a principle can build fresh
// snapshots), the verdict, and the accessor counters the evaluation left
// behind.
type PrincipleContext struct {
	Tree             expr.Expr
	MaxDocumentBytes int64
	Spec             EntitySpec
	Verdict          bool
	Counters         testutil.Counters
}

// Principle is one cross-cutting invariant of the evaluator. Check returns
// nil when the principle holds for the given run.
type Principle struct {
	Name        string
	Description string
	Check       func(*PrincipleContext) error
}

// Principles returns the invariants checked on every scenario entity.
func Principles() []Principle {
	return []Principle{
		{
			Name:        "short_circuit_equivalence",
			Description: "phase-ordered evaluation agrees with evaluating every leaf",
			Check:       checkEquivalence,
		},
		{
			Name:        "idempotence",
			Description: "re-evaluation of an unchanged snapshot returns the same verdict",
			Check:       checkIdempotence,
		},
		{
			Name:        "content_laziness",
			Description: "a tree without content predicates opens no content",
			Check:       checkContentLaziness,
		},
		{
			Name:        "single_stat",
			Description: "metadata is read at most once per evaluation",
			Check:       checkSingleStat,
		},
		{
			Name:        "single_decode",
			Description: "documents are decoded at most once per evaluation",
			Check:       checkSingleDecode,
		},
	}
}

// checkEquivalence compares the phase-ordered verdict against a naive fold
// over a fresh snapshot that evaluates every leaf with no short circuit.
func checkEquivalence(pc *PrincipleContext) error {
	fresh, err := pc.Spec.build()
	if err != nil {
		return fmt.Errorf("rebuild snapshot: %v", err)
	}
	ref := referenceVerdict(fresh, pc.Tree, pc.MaxDocumentBytes)
	if ref != pc.Verdict {
		return fmt.Errorf("phase evaluation returned %v but the full fold returns %v", pc.Verdict, ref)
	}
	return nil
}

// checkIdempotence evaluates a fresh snapshot of the same entity a second
// time and expects the same verdict.
func checkIdempotence(pc *PrincipleContext) error {
	fresh, err := pc.Spec.build()
	if err != nil {
		return fmt.Errorf("rebuild snapshot: %v", err)
	}
	ev := engine.New(pc.Tree, engine.WithMaxDocumentBytes(pc.MaxDocumentBytes))
	again, err := ev.Evaluate(context.Background(), fresh)
	if err != nil {
		return fmt.Errorf("re-evaluate: %v", err)
	}
	if again != pc.Verdict {
		return fmt.Errorf("first evaluation returned %v, second returned %v", pc.Verdict, again)
	}
	return nil
}

func checkContentLaziness(pc *PrincipleContext) error {
	hasContent := false
	expr.Leaves(pc.Tree, func(p predicate.Predicate) {
		if p.Phase() == predicate.PhaseContent {
			hasContent = true
		}
	})
	if !hasContent && pc.Counters.Content > 0 {
		return fmt.Errorf("content opened %d times by a tree without content predicates", pc.Counters.Content)
	}
	return nil
}

func checkSingleStat(pc *PrincipleContext) error {
	if pc.Counters.Metadata > 1 {
		return fmt.Errorf("metadata read %d times in one evaluation", pc.Counters.Metadata)
	}
	return nil
}

func checkSingleDecode(pc *PrincipleContext) error {
	if pc.Counters.Documents > 1 {
		return fmt.Errorf("documents decoded %d times in one evaluation", pc.Counters.Documents)
	}
	return nil
}

// referenceVerdict is the equivalence oracle: a naive fold that evaluates
// every leaf through the entity's accessors with no phases, no memoization,
// and no short circuit. Accessor failures resolve the leaf to false, the
// same policy the evaluator applies.
func referenceVerdict(entity engine.Entity, tree expr.Expr, maxDocBytes int64) bool {
	if maxDocBytes <= 0 {
		maxDocBytes = resolve.DefaultMaxDocumentBytes
	}
	return foldAll(entity, tree, maxDocBytes)
}

func foldAll(entity engine.Entity, e expr.Expr, limit int64) bool {
	switch n := e.(type) {
	case expr.Known:
		return bool(n)
	case expr.Leaf:
		return evalLeaf(entity, n.Pred, limit)
	case expr.Not:
		return !foldAll(entity, n.Inner, limit)
	case expr.And:
		verdict := true
		for _, op := range n.Exprs {
			if !foldAll(entity, op, limit) {
				verdict = false
			}
		}
		return verdict
	case expr.Or:
		verdict := false
		for _, op := range n.Exprs {
			if foldAll(entity, op, limit) {
				verdict = true
			}
		}
		return verdict
	default:
		return false
	}
}

func evalLeaf(entity engine.Entity, p predicate.Predicate, limit int64) bool {
	switch pred := p.(type) {
	case *predicate.NamePredicate:
		return pred.Eval(entity.Path(), entity.Depth())
	case *predicate.MetadataPredicate:
		md, err := entity.Metadata()
		if err != nil {
			return false
		}
		return pred.Eval(md)
	case *predicate.StructuredPredicate:
		docs, err := entity.Documents(pred.Format, limit)
		if err != nil {
			return false
		}
		return pred.Eval(docs)
	case *predicate.ContentPredicate:
		md, err := entity.Metadata()
		if err != nil || predicate.FileTypeFromMode(md.Mode) != predicate.TypeFile {
			return false
		}
		rc, err := entity.Content()
		if err != nil {
			return false
		}
		defer rc.Close()
		return pred.Eval(rc)
	default:
		return false
	}
}

// ValidationResult summarizes a directory of scenario runs.
type ValidationResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	TotalChecks    int               `json:"total_checks"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure represents one failed scenario.
type ScenarioFailure struct {
	Scenario string `json:"scenario"`
	Path     string `json:"path"`
	Error    string `json:"error"`
}

// ValidateDir loads and runs every *.yaml scenario under dir and returns a
// summary. Load and execution failures count as scenario failures rather
// than aborting the sweep.
func ValidateDir(dir string) (*ValidationResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	result := &ValidationResult{}
	for _, path := range paths {
		result.TotalScenarios++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Scenario: filepath.Base(path),
				Path:     path,
				Error:    fmt.Sprintf("failed to load scenario: %v", err),
			})
			continue
		}

		run, err := Run(scenario)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Path:     path,
				Error:    fmt.Sprintf("scenario execution failed: %v", err),
			})
			continue
		}

		result.TotalChecks += len(run.Checks)
		if !run.Pass {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Path:     path,
				Error:    fmt.Sprintf("checks failed: %v", run.Errors),
			})
			continue
		}

		result.Passed++
	}

	return result, nil
}
