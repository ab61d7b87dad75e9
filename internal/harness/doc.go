// Package harness provides conformance testing for the query evaluator.
//
// The harness loads scenario files, evaluates their entities against the
// scenario's query, and validates evaluation principles as executable
// contract checks.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	query: 'ext == "rs" && size > 1024'
//	entities:
//	  - path: /src/lib.rs
//	    size: 2000
//	    expect: match
//	    max_phase: metadata
//	  - path: /src/small.rs
//	    size: 500
//	    expect: no_match
//
// Each entity describes an in-memory snapshot (testutil.Entity): path,
// depth, file type, size, content bytes, and a modification time expressed
// as a duration before the run. "expect" states the verdict; the optional
// "max_phase" names the costliest phase allowed to touch the entity, so a
// scenario can prove that cheap phases spared the expensive accessors.
//
// A scenario may instead expect the query itself to be rejected:
//
//	name: rejected_query
//	description: "misspelled file types never reach an entity"
//	query: 'type == dirq'
//	expect_error: 'unknown file type "dirq"'
//
// # Principles
//
// Beyond the per-entity verdict and phase ceiling, every run checks the
// evaluator's cross-cutting principles on every entity:
//
//   - short_circuit_equivalence: the phase-ordered verdict equals a naive
//     fold that evaluates every leaf
//   - idempotence: re-evaluating an unchanged snapshot gives the same verdict
//   - content_laziness: a tree without content predicates opens no content
//   - single_stat: metadata is read at most once per evaluation
//   - single_decode: documents are decoded at most once per evaluation
//
// # Deterministic Testing
//
// Entities are canned in-memory snapshots, so runs are reproducible and
// suitable for golden comparison: RunWithGolden serializes the full check
// report and compares it against testdata/golden/{name}.golden.
package harness
