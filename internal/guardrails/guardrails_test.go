package guardrails

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/contract-desk/internal/models"
)

func statuses(r models.ReadinessResult) map[string]models.GuardStatus {
	out := make(map[string]models.GuardStatus, len(r.Checks))
	for _, c := range r.Checks {
		out[c.ID] = c.Status
	}
	return out
}

func TestDefaultRulesEmptyMatter(t *testing.T) {
	rs := MustRuleSet(DefaultRules()...)
	got := rs.Evaluate(models.MatterState{})

	assert.Equal(t, 0, got.Completed)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 0, got.Percentage)
	assert.Equal(t, map[string]models.GuardStatus{
		RulePartyIdentification: models.GuardAction,
		RuleTerm:                models.GuardWarning,
		RulePurpose:             models.GuardWarning,
		RuleLiabilityCap:        models.GuardAction,
	}, statuses(got))

	ids := make([]string, len(got.Checks))
	for i, c := range got.Checks {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{RulePartyIdentification, RuleTerm, RulePurpose, RuleLiabilityCap}, ids)
}

func TestPartyRuleTransitions(t *testing.T) {
	rs := MustRuleSet(DefaultRules()...)
	state := models.MatterState{Fields: models.FieldMap{FirstParty: "CloudFathom", SecondParty: "NorthBridge"}}

	before := rs.Evaluate(state)
	assert.Equal(t, models.GuardAction, statuses(before)[RulePartyIdentification])
	assert.Equal(t, 0, before.Percentage)

	state.Fields.ClientName = "NorthBridge Capital"
	after := rs.Evaluate(state)
	assert.Equal(t, models.GuardPass, statuses(after)[RulePartyIdentification])
	assert.Equal(t, 25, after.Percentage)
	assert.Equal(t, "1/4 guardrails satisfied", after.Summary())

	state.Fields.ClientName = ""
	assert.Equal(t, models.GuardAction, statuses(rs.Evaluate(state))[RulePartyIdentification], "clearing a field regresses the rule")
}

func TestLiabilityRuleFollowsInsertedSet(t *testing.T) {
	rs := MustRuleSet(DefaultRules()...)
	state := models.MatterState{
		Fields: models.FieldMap{
			ClientName: "c", FirstParty: "a", SecondParty: "b",
			TermDuration: "24 months", BusinessPurpose: "analytics",
		},
	}
	assert.Equal(t, 75, rs.Evaluate(state).Percentage)
	assert.Len(t, rs.Evaluate(state).Outstanding(), 1)

	state.Inserted = models.NewClauseSet(LiabilityCapClauseID)
	full := rs.Evaluate(state)
	assert.Equal(t, 100, full.Percentage)
	assert.Equal(t, full.Total, full.Completed)
	assert.Empty(t, full.Outstanding())
}

func TestEvaluateIsPure(t *testing.T) {
	rs := MustRuleSet(DefaultRules()...)
	state := models.MatterState{Fields: models.FieldMap{TermDuration: "1 year"}}
	first := rs.Evaluate(state)
	second := rs.Evaluate(state)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("evaluations differ:\n%s", diff)
	}
}

func TestEvaluateNoRules(t *testing.T) {
	got := Evaluate(models.MatterState{}, nil)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Percentage)
	assert.Empty(t, got.Checks)
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 4, 25},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{5, 8, 63}, // 62.5 rounds up
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percentage(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

func TestNewRuleSetRejectsBadRules(t *testing.T) {
	ok := func(models.MatterState) models.GuardStatus { return models.GuardPass }

	_, err := NewRuleSet(models.GuardRule{ID: "", Check: ok})
	assert.ErrorContains(t, err, "no id")

	_, err = NewRuleSet(models.GuardRule{ID: "a", Check: ok}, models.GuardRule{ID: "a", Check: ok})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRuleSet(models.GuardRule{ID: "nil"})
	assert.ErrorContains(t, err, "no predicate")

	_, err = NewRuleSet(models.GuardRule{ID: "panics", Check: func(s models.MatterState) models.GuardStatus {
		if s.Fields.ClientName == "" {
			panic("client name required")
		}
		return models.GuardPass
	}})
	assert.ErrorContains(t, err, "panicked")

	_, err = NewRuleSet(models.GuardRule{ID: "unknown", Check: func(models.MatterState) models.GuardStatus { return "missing" }})
	assert.ErrorContains(t, err, "unknown status")

	rs, err := NewRuleSet(DefaultRules()...)
	require.NoError(t, err)
	assert.Equal(t, 4, rs.Len())
}
