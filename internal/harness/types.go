package harness

// CheckEvent is one validated claim from a scenario run. Entity is empty
// for scenario-level checks such as expected compile errors.
type CheckEvent struct {
	Entity string `json:"entity,omitempty"`
	Check  string `json:"check"`
	Detail string `json:"detail"`
	Pass   bool   `json:"pass"`
}

// Check name constants. Principle checks use the principle's own name.
const (
	CheckVerdict      = "verdict"
	CheckPhaseCeiling = "phase_ceiling"
	CheckCompileError = "compile_error"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall success: every check held.
	Pass bool `json:"pass"`

	// Canonical is the compiled query rendered back to source form.
	// Empty when the scenario expects a compile error.
	Canonical string `json:"canonical,omitempty"`

	// Checks records every claim validated, in evaluation order.
	Checks []CheckEvent `json:"checks"`

	// Errors describes the failed checks. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate checks into.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Checks: []CheckEvent{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// record appends a check event; a failed check also fails the result.
func (r *Result) record(entity, check, detail string, pass bool) {
	r.Checks = append(r.Checks, CheckEvent{
		Entity: entity,
		Check:  check,
		Detail: detail,
		Pass:   pass,
	})
	if !pass {
		if entity == "" {
			r.AddError(check + ": " + detail)
			return
		}
		r.AddError(entity + ": " + check + ": " + detail)
	}
}
