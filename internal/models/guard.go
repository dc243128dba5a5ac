package models

import "fmt"

// GuardStatus is the outcome of one guard rule
type GuardStatus string

const (
	GuardPass    GuardStatus = "pass"
	GuardWarning GuardStatus = "warning"
	GuardAction  GuardStatus = "action"
)

// Valid reports whether s is one of the three reachable states
func (s GuardStatus) Valid() bool {
	return s == GuardPass || s == GuardWarning || s == GuardAction
}

// Label is the display text for the status
func (s GuardStatus) Label() string {
	switch s {
	case GuardPass:
		return "Ready"
	case GuardWarning:
		return "Needs review"
	case GuardAction:
		return "Missing"
	default:
		return string(s)
	}
}

// MatterState is the input every guard predicate reads
type MatterState struct {
	Fields   FieldMap
	Inserted ClauseSet
}

// GuardPredicate maps matter state to a status. It must be pure and total.
type GuardPredicate func(MatterState) GuardStatus

// GuardRule is a declarative readiness check
type GuardRule struct {
	ID     string
	Label  string
	Detail string
	Check  GuardPredicate
}

// GuardResult is one evaluated rule
type GuardResult struct {
	ID     string      `json:"id"`
	Label  string      `json:"label"`
	Detail string      `json:"detail"`
	Status GuardStatus `json:"status"`
}

// ReadinessResult aggregates every rule evaluation
type ReadinessResult struct {
	Completed  int           `json:"completed"`
	Total      int           `json:"total"`
	Percentage int           `json:"percentage"`
	Checks     []GuardResult `json:"checks"`
}

// Summary renders the "n/m guardrails satisfied" line
func (r ReadinessResult) Summary() string {
	return fmt.Sprintf("%d/%d guardrails satisfied", r.Completed, r.Total)
}

// Outstanding returns the checks that did not pass, in order
func (r ReadinessResult) Outstanding() []GuardResult {
	var out []GuardResult
	for _, c := range r.Checks {
		if c.Status != GuardPass {
			out = append(out, c)
		}
	}
	return out
}
