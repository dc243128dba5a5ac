package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/contract-desk/internal/models"
)

func fixedEngine() *Engine {
	return NewEngine(WithClock(func() time.Time {
		return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	}))
}

func TestInterpolateSingleParagraph(t *testing.T) {
	doc := fixedEngine().Interpolate("Party: [First Party Name]", models.FieldMap{FirstParty: "Acme"}, models.FieldMap{})

	want := []models.Block{{Kind: models.BlockParagraph, Text: "Party: Acme"}}
	if diff := cmp.Diff(want, doc.Blocks); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpolateHeadingThenParagraph(t *testing.T) {
	doc := fixedEngine().Interpolate("SCOPE OF SERVICES\n\nThe provider shall deliver the services.", models.FieldMap{}, models.FieldMap{})

	want := []models.Block{
		{Kind: models.BlockHeading, Text: "SCOPE OF SERVICES"},
		{Kind: models.BlockParagraph, Text: "The provider shall deliver the services."},
	}
	if diff := cmp.Diff(want, doc.Blocks); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpolateResolution(t *testing.T) {
	tmpl := "[DATE] [First Party Name] and [Second Party Name] in [industry] for [business purpose] over [Term Duration] under [Jurisdiction]. [First Party Name] signs."

	t.Run("fields win over defaults", func(t *testing.T) {
		fields := models.FieldMap{FirstParty: "Acme", SecondParty: "Beta", Industry: "fintech", TermDuration: "24 months"}
		out := fixedEngine().Substitute(tmpl, fields, DefaultFallbacks())
		assert.Equal(t, "3/5/2024 Acme and Beta in fintech for professional services over 24 months under [Jurisdiction]. Acme signs.", out)
	})

	t.Run("blank field and no default stays verbatim", func(t *testing.T) {
		out := fixedEngine().Substitute(tmpl, models.FieldMap{}, models.FieldMap{})
		assert.Contains(t, out, "[First Party Name]")
		assert.Contains(t, out, "[Second Party Name]")
		assert.Equal(t, 2, strings.Count(out, "[First Party Name]"))
		assert.NotContains(t, out, "[DATE]")
	})

	t.Run("no resolved token survives", func(t *testing.T) {
		fields := models.FieldMap{FirstParty: "A", SecondParty: "B", GoverningLaw: "New York"}
		defaults := DefaultFallbacks()
		out := fixedEngine().Substitute(tmpl, fields, defaults)
		for _, p := range Placeholders {
			if fields.Get(p.Key) != "" || defaults.Get(p.Key) != "" {
				assert.NotContains(t, out, p.Token)
			}
		}
		assert.Empty(t, UnresolvedTokens(out))
	})
}

func TestSplitBlocksIsStable(t *testing.T) {
	text := "TITLE\n\n\n\n  first paragraph  \n\nSECOND HEADING\n\nline one\nline two\n\n   \n\n"
	first := SplitBlocks(text)
	require.Len(t, first, 4)

	again := SplitBlocks(models.Document{Blocks: first}.PlainText())
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("re-splitting changed blocks (-first +again):\n%s", diff)
	}
}

func TestClassifyLengthBoundary(t *testing.T) {
	assert.Equal(t, models.BlockHeading, Classify(strings.Repeat("A", 99)))
	assert.Equal(t, models.BlockParagraph, Classify(strings.Repeat("A", 100)))
	assert.Equal(t, models.BlockParagraph, Classify("Mixed Case"))
	assert.Equal(t, models.BlockHeading, Classify("1. SCOPE"))
}

func TestInterpolateEmptyTemplate(t *testing.T) {
	assert.Empty(t, fixedEngine().Interpolate("  \n\n ", models.FieldMap{}, models.FieldMap{}).Blocks)
}

func TestInsertClause(t *testing.T) {
	clause := models.Clause{ID: "liability-cap", Title: "Liability Cap", StandardText: "Capped at fees."}

	t.Run("empty document", func(t *testing.T) {
		doc, outcome := InsertClause(models.Document{}, clause)
		assert.Equal(t, InsertNoDocument, outcome)
		assert.True(t, doc.IsEmpty())
	})

	t.Run("applied without mutating input", func(t *testing.T) {
		base := models.Document{Blocks: []models.Block{{Kind: models.BlockHeading, Text: "AGREEMENT"}}}
		out, outcome := InsertClause(base, clause)
		require.Equal(t, InsertApplied, outcome)
		assert.Len(t, base.Blocks, 1)
		assert.Equal(t, []models.Block{
			{Kind: models.BlockHeading, Text: "AGREEMENT"},
			{Kind: models.BlockHeading, Text: "LIABILITY CAP"},
			{Kind: models.BlockParagraph, Text: "Capped at fees."},
		}, out.Blocks)
	})

	t.Run("idempotent", func(t *testing.T) {
		base := models.Document{Blocks: []models.Block{{Kind: models.BlockParagraph, Text: "Body."}}}
		once, _ := InsertClause(base, clause)
		twice, outcome := InsertClause(once, clause)
		assert.Equal(t, InsertDuplicate, outcome)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("second insert changed document:\n%s", diff)
		}
	})
}

func TestContractFilename(t *testing.T) {
	assert.Equal(t, "contract_draft.html", ContractFilename(""))
	assert.Equal(t, "NorthBridge_Capital_contract.html", ContractFilename("NorthBridge Capital"))
	assert.Equal(t, "A_B_contract.html", ContractFilename("A \t B"))
}

func TestExportHTML(t *testing.T) {
	doc := models.Document{Blocks: []models.Block{
		{Kind: models.BlockHeading, Text: "TERMS"},
		{Kind: models.BlockParagraph, Text: "Fees < cap & more"},
	}}

	out, err := ExportHTML(doc, "")
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Contract</title>")
	assert.Contains(t, out, "font-family: 'Times New Roman', Times, serif;")
	assert.Contains(t, out, "<h2>TERMS</h2><p>Fees &lt; cap &amp; more</p>")

	out, err = ExportHTML(doc, "Helios & Co")
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Helios &amp; Co</title>")
}

func TestHighlightRoundTrip(t *testing.T) {
	doc := models.Document{Blocks: []models.Block{
		{Kind: models.BlockHeading, Text: "LIMITATION OF LIABILITY"},
		{Kind: models.BlockParagraph, Text: "Liability shall be unlimited for all damages."},
	}}
	start := len("LIMITATION OF LIABILITY") + 2 + len("Liability shall be ")
	require.NoError(t, doc.AddHighlight(models.HighlightSpan{Start: start, End: start + len("unlimited"), Level: models.RiskCritical}))

	body := BodyHTML(doc)
	assert.Contains(t, body, `<span data-risk-level="critical" class="risk-highlight risk-critical">unlimited</span>`)

	parsed, err := ParseHTML(strings.NewReader(body))
	require.NoError(t, err)
	if diff := cmp.Diff(doc, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHTMLEditorOutput(t *testing.T) {
	input := `<html><head><title>x</title><style>p{}</style></head><body>
<h1>  MASTER AGREEMENT </h1>
<p></p>
<ul><li>First <strong>item</strong></li></ul>
<p>Plain <span data-risk-level="bogus">text</span></p>
</body></html>`

	doc, err := ParseHTML(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []models.Block{
		{Kind: models.BlockHeading, Text: "MASTER AGREEMENT"},
		{Kind: models.BlockParagraph, Text: "First item"},
		{Kind: models.BlockParagraph, Text: "Plain text"},
	}, doc.Blocks)
	assert.Empty(t, doc.Highlights)
}

func TestRiskReportLayout(t *testing.T) {
	analysis := models.RiskAnalysis{
		OverallRisk: models.RiskMedium,
		Score:       65,
		Categories: []models.RiskCategory{
			{Name: "Party Identification", Status: models.CategoryPass, Issues: 0},
			{Name: "Financial Terms", Status: models.CategoryWarning, Issues: 1},
		},
		Issues: []models.RiskIssue{
			{ID: "1", Category: "Financial Terms", Severity: models.RiskHigh, Title: "Vague Fee Structure", Description: "D1", Recommendation: "R1"},
			{ID: "2", Category: "Financial Terms", Severity: models.RiskLow, Title: "Minor", Description: "D2", Recommendation: "R2"},
		},
	}

	want := "CONTRACT RISK ANALYSIS REPORT\n" +
		"Generated: 3/5/2024\n" +
		"\n" +
		"OVERALL RISK: MEDIUM\n" +
		"RISK SCORE: 65/100\n" +
		"\n" +
		"CATEGORY ANALYSIS:\n" +
		"- Party Identification: PASS (0 issues)\n" +
		"- Financial Terms: WARNING (1 issue)\n" +
		"\n" +
		"DETAILED ISSUES:\n" +
		"\n1. Vague Fee Structure\n   Severity: HIGH\n   Category: Financial Terms\n\n   Description: D1\n\n   Recommendation: R1\n" +
		"\n" +
		"\n2. Minor\n   Severity: LOW\n   Category: Financial Terms\n\n   Description: D2\n\n   Recommendation: R2\n"

	got := RiskReport(analysis, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, want, got)
	assert.Equal(t, got, RiskReport(analysis, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)))
}

func TestRendererFormats(t *testing.T) {
	doc := models.Document{Blocks: []models.Block{
		{Kind: models.BlockHeading, Text: "SCOPE OF SERVICES"},
		{Kind: models.BlockParagraph, Text: "Services per Exhibit A."},
	}}
	r := NewRenderer(doc, models.FieldMap{ClientName: "Helios Analytics"})

	assert.Equal(t, "SCOPE OF SERVICES\n\nServices per Exhibit A.\n", r.RenderText())
	assert.Equal(t, "Helios_Analytics_contract.html", r.Filename(FormatHTML))
	assert.Equal(t, "Helios_Analytics_contract.md", r.Filename(FormatMarkdown))

	mdOut, err := r.Render(FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, mdOut, "## SCOPE OF SERVICES")
	assert.Contains(t, mdOut, "Services per Exhibit A.")

	jsonOut, err := r.Render(FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"clientName": "Helios Analytics"`)
	assert.Contains(t, jsonOut, `"kind": "heading"`)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
