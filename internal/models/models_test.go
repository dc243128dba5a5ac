package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMapAccessors(t *testing.T) {
	var f FieldMap
	require.NoError(t, f.Set(FieldClientName, "NorthBridge Capital"))
	assert.Equal(t, "NorthBridge Capital", f.ClientName)
	assert.True(t, f.Has(FieldClientName))
	assert.False(t, f.Has(FieldIndustry))
	assert.Error(t, f.Set(FieldKey("nope"), "x"))

	require.NoError(t, f.Set(FieldIndustry, "   "))
	assert.False(t, f.Has(FieldIndustry), "whitespace counts as blank")

	for _, key := range FieldKeys {
		parsed, ok := ParseFieldKey(string(key))
		assert.True(t, ok)
		assert.Equal(t, key, parsed)
	}
}

func TestFieldMapMerge(t *testing.T) {
	base := FieldMap{ClientName: "Old", Industry: "Tech", RiskProfile: "standard"}
	merged := base.Merge(FieldMap{ClientName: "New", TermDuration: "1 year"})

	assert.Equal(t, "New", merged.ClientName)
	assert.Equal(t, "Tech", merged.Industry)
	assert.Equal(t, "1 year", merged.TermDuration)
	assert.Equal(t, "Old", base.ClientName, "merge must not modify the receiver")
}

func TestFieldMapFromMap(t *testing.T) {
	f, err := FieldMapFromMap(map[string]string{"firstParty": "A", "secondParty": "B"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"firstParty": "A", "secondParty": "B"}, f.ToMap())

	_, err = FieldMapFromMap(map[string]string{"party": "A"})
	assert.Error(t, err)
}

func TestDocumentHighlights(t *testing.T) {
	doc := Document{Blocks: []Block{
		{Kind: BlockHeading, Text: "TERMS"},
		{Kind: BlockParagraph, Text: "Liability is unlimited."},
	}}
	text := doc.PlainText()
	assert.Equal(t, "TERMS\n\nLiability is unlimited.", text)
	assert.Equal(t, []int{0, 7}, doc.BlockOffsets())

	require.NoError(t, doc.AddHighlight(HighlightSpan{Start: 20, End: 29, Level: RiskCritical}))
	require.NoError(t, doc.AddHighlight(HighlightSpan{Start: 0, End: 5, Level: RiskLow}))
	assert.Equal(t, 0, doc.Highlights[0].Start, "spans are kept sorted")

	assert.Error(t, doc.AddHighlight(HighlightSpan{Start: 25, End: 27, Level: RiskHigh}), "overlap")
	assert.Error(t, doc.AddHighlight(HighlightSpan{Start: 5, End: 500, Level: RiskHigh}), "out of range")
	assert.Error(t, doc.AddHighlight(HighlightSpan{Start: 7, End: 9, Level: RiskLevel("severe")}), "bad level")
	assert.Error(t, doc.AddHighlight(HighlightSpan{Start: 9, End: 9, Level: RiskHigh}), "empty")

	clone := doc.Clone()
	clone.Highlights[0].Level = RiskHigh
	assert.Equal(t, RiskLow, doc.Highlights[0].Level, "clone is independent")
}

func TestClauseSet(t *testing.T) {
	var empty ClauseSet
	assert.False(t, empty.Has("liability-cap"))

	s := empty.With("liability-cap")
	assert.True(t, s.Has("liability-cap"))
	assert.Nil(t, empty)
	assert.Equal(t, []string{"data-security", "liability-cap"}, s.With("data-security").IDs())
}

func TestNextStep(t *testing.T) {
	_, ok := NextStep(nil)
	assert.False(t, ok)

	steps := []PlaybookStep{
		{ID: "intake", Status: StepComplete},
		{ID: "guardrails", Status: StepPending},
		{ID: "partner-review", Status: StepInProgress},
	}
	step, ok := NextStep(steps)
	require.True(t, ok)
	assert.Equal(t, "partner-review", step.ID)

	steps[2].Status = StepComplete
	step, _ = NextStep(steps)
	assert.Equal(t, "guardrails", step.ID)

	steps[1].Status = StepComplete
	step, _ = NextStep(steps)
	assert.Equal(t, "intake", step.ID)
}

func TestRiskProfileLabel(t *testing.T) {
	p := RiskProfile{Value: "growth", Label: "Growth · Faster close, higher flexibility"}
	assert.Equal(t, "Growth", p.Headline())
	assert.Equal(t, "Faster close, higher flexibility", p.Narrative())

	plain := RiskProfile{Label: "Custom"}
	assert.Equal(t, "Custom", plain.Headline())
	assert.Empty(t, plain.Narrative())
}

func TestUpload(t *testing.T) {
	u := Upload{Filename: "msa.pdf", SizeBytes: 2048, MimeType: MimeTypeForPath("msa.PDF")}
	assert.True(t, u.Accepted())
	assert.Equal(t, "2.00 KB", u.SizeKB())

	assert.Equal(t, MimeDOCX, MimeTypeForPath("draft.docx"))
	assert.False(t, Upload{MimeType: "text/plain"}.Accepted())
}

func TestGuardStatusLabels(t *testing.T) {
	assert.Equal(t, "Ready", GuardPass.Label())
	assert.Equal(t, "Needs review", GuardWarning.Label())
	assert.Equal(t, "Missing", GuardAction.Label())
	assert.False(t, GuardStatus("missing").Valid())
	assert.Equal(t, "Critical Risk", RiskCritical.BadgeLabel())
}

func TestRiskAnalysisValidate(t *testing.T) {
	a := RiskAnalysis{OverallRisk: RiskMedium, Score: 65, Issues: []RiskIssue{{ID: "1", Severity: RiskHigh}}}
	require.NoError(t, a.Validate())

	clone := a.Clone()
	clone.Issues[0].Title = "changed"
	assert.Empty(t, a.Issues[0].Title)

	a.Score = 101
	assert.Error(t, a.Validate())
}

func TestSummaryTruncatesByRune(t *testing.T) {
	c := Clause{
		Title:     "Data Residency",
		RiskLevel: RiskHigh,
		Triggers:  []string{strings.Repeat("résidence ", 15)},
	}
	summary := c.Summary()
	assert.True(t, utf8.ValidString(summary))
	assert.Equal(t, 100, utf8.RuneCountInString(summary))
	assert.True(t, strings.HasSuffix(summary, "..."))

	short := Clause{Title: "Cap", RiskLevel: RiskLow, Triggers: []string{"cap"}}
	assert.False(t, strings.HasSuffix(short.Summary(), "..."))
}
