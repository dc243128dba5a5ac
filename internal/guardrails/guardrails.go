// Package guardrails scores matter readiness from declarative rules.
//
// Rules are registered once through NewRuleSet, which exercises every predicate
// and rejects rules that are not total. Evaluate keeps no state between calls:
// each call recomputes every rule against the current fields and inserted
// clauses, so the readiness shown always matches the matter.
package guardrails

import (
	"fmt"

	"github.com/dpshade/contract-desk/internal/models"
)

// Rule ids of the default table
const (
	RulePartyIdentification = "party-identification"
	RuleTerm                = "term"
	RulePurpose             = "purpose"
	RuleLiabilityCap        = "liability-cap"
)

// LiabilityCapClauseID is the clause that satisfies the liability guardrail
const LiabilityCapClauseID = "liability-cap"

// DefaultRules returns the firm's readiness checks in presentation order
func DefaultRules() []models.GuardRule {
	return []models.GuardRule{
		{
			ID:     RulePartyIdentification,
			Label:  "Legal entities captured",
			Detail: "Record exact legal names and signatories for enforcement-ready execution.",
			Check: func(s models.MatterState) models.GuardStatus {
				if s.Fields.Has(models.FieldFirstParty) && s.Fields.Has(models.FieldSecondParty) && s.Fields.Has(models.FieldClientName) {
					return models.GuardPass
				}
				return models.GuardAction
			},
		},
		{
			ID:     RuleTerm,
			Label:  "Term structured",
			Detail: "Anchor initial term and renewal cadence before the draft leaves the firm.",
			Check:  requireField(models.FieldTermDuration, models.GuardWarning),
		},
		{
			ID:     RulePurpose,
			Label:  "Purpose documented",
			Detail: "Clarity on scope informs confidentiality, IP ownership, and insurance thresholds.",
			Check:  requireField(models.FieldBusinessPurpose, models.GuardWarning),
		},
		{
			ID:     RuleLiabilityCap,
			Label:  "Liability guardrail",
			Detail: "Drop in the firm-standard limitation of liability clause prior to partner review.",
			Check:  requireClause(LiabilityCapClauseID, models.GuardAction),
		},
	}
}

func requireField(key models.FieldKey, otherwise models.GuardStatus) models.GuardPredicate {
	return func(s models.MatterState) models.GuardStatus {
		if s.Fields.Has(key) {
			return models.GuardPass
		}
		return otherwise
	}
}

func requireClause(id string, otherwise models.GuardStatus) models.GuardPredicate {
	return func(s models.MatterState) models.GuardStatus {
		if s.Inserted.Has(id) {
			return models.GuardPass
		}
		return otherwise
	}
}

// RuleSet is a validated, immutable rule table
type RuleSet struct {
	rules []models.GuardRule
}

// NewRuleSet validates rules and freezes their order
func NewRuleSet(rules ...models.GuardRule) (*RuleSet, error) {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d has no id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true
		if r.Check == nil {
			return nil, fmt.Errorf("rule %q has no predicate", r.ID)
		}
		for _, state := range sampleStates() {
			if err := checkRule(r, state); err != nil {
				return nil, err
			}
		}
	}
	return &RuleSet{rules: append([]models.GuardRule(nil), rules...)}, nil
}

// MustRuleSet is NewRuleSet for static tables; it panics on an invalid rule
func MustRuleSet(rules ...models.GuardRule) *RuleSet {
	rs, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Rules returns a copy of the registered rules
func (rs *RuleSet) Rules() []models.GuardRule {
	return append([]models.GuardRule(nil), rs.rules...)
}

// Len is the number of registered rules
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Evaluate scores state against the registered rules
func (rs *RuleSet) Evaluate(state models.MatterState) models.ReadinessResult {
	return Evaluate(state, rs.rules)
}

// Evaluate runs every rule against state, preserving declaration order.
// A predicate that panics is an invariant violation and is not recovered.
func Evaluate(state models.MatterState, rules []models.GuardRule) models.ReadinessResult {
	result := models.ReadinessResult{
		Total:  len(rules),
		Checks: make([]models.GuardResult, 0, len(rules)),
	}
	for _, r := range rules {
		status := r.Check(state)
		if status == models.GuardPass {
			result.Completed++
		}
		result.Checks = append(result.Checks, models.GuardResult{
			ID:     r.ID,
			Label:  r.Label,
			Detail: r.Detail,
			Status: status,
		})
	}
	result.Percentage = Percentage(result.Completed, result.Total)
	return result
}

// Percentage is round-half-up of 100*completed/total, or 0 when total is 0
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// sampleStates exercises predicates with empty and fully populated matters
func sampleStates() []models.MatterState {
	full := models.FieldMap{}
	for _, key := range models.FieldKeys {
		_ = full.Set(key, "x")
	}
	return []models.MatterState{
		{},
		{Fields: full, Inserted: models.NewClauseSet(LiabilityCapClauseID)},
	}
}

func checkRule(r models.GuardRule, state models.MatterState) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rule %q predicate panicked: %v", r.ID, p)
		}
	}()
	if status := r.Check(state); !status.Valid() {
		return fmt.Errorf("rule %q returned unknown status %q", r.ID, status)
	}
	return nil
}
