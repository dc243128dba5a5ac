package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/dpshade/contract-desk/internal/models"
)

func mustDefault(t *testing.T) *Library {
	t.Helper()
	lib, err := Default()
	require.NoError(t, err)
	return lib
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultLibrary(t *testing.T) {
	lib := mustDefault(t)

	assert.Len(t, lib.ContractTypes, 4)
	assert.Len(t, lib.RiskProfiles, 3)
	assert.Len(t, lib.Playbook, 4)
	assert.Len(t, lib.Clauses, 4)
	assert.Len(t, lib.Templates, 1)
	assert.Len(t, lib.Positions, 3)

	ids := make([]string, len(lib.Drafts))
	for i, d := range lib.Drafts {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"enterprise-saas-msa", "professional-services-sow", "mutual-nda-shortform"}, ids)

	msa, ok := lib.Draft("enterprise-saas-msa")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(msa.Contract, "ENTERPRISE SAAS MASTER SERVICE AGREEMENT\n\n"))
	assert.Equal(t, "NorthBridge Capital", msa.FormDefaults.ClientName)
	assert.Equal(t, 92, msa.Readiness)

	tmpl, ok := lib.Template("service")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(tmpl.Content, "PROFESSIONAL SERVICES AGREEMENT"))
	assert.Contains(t, tmpl.Content, "[First Party Name]")
	assert.Contains(t, tmpl.Content, "[Jurisdiction]")
	assert.Equal(t, "general services", tmpl.Defaults.Industry)

	assert.Equal(t, 65, lib.Analysis.Score)
	assert.Equal(t, models.RiskMedium, lib.Analysis.OverallRisk)
	assert.Len(t, lib.Analysis.Categories, 10)
	assert.Len(t, lib.Analysis.Issues, 9)

	capClause, ok := lib.Clause("liability-cap")
	require.True(t, ok)
	assert.Equal(t, models.RiskCritical, capClause.RiskLevel)

	growth, ok := lib.Profile("growth")
	require.True(t, ok)
	assert.Equal(t, "Growth", growth.Headline())

	pos, ok := lib.Position("liability")
	require.True(t, ok)
	assert.Equal(t, "Reject removal; counter with 1x annual fees cap plus mutual carve-outs.", pos.FirmPosition)

	assert.Equal(t, "Non-Disclosure Agreement (NDA)", lib.ContractTypeLabel("nda"))
	assert.Equal(t, "custom", lib.ContractTypeLabel("custom"))
}

func TestEmbeddedTemplatesParse(t *testing.T) {
	paths, err := fs.Glob(EmbeddedFS(), "templates/*.md")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	fallbacks := 0
	for _, path := range paths {
		content, err := fs.ReadFile(EmbeddedFS(), path)
		require.NoError(t, err, path)
		tmpl, err := parseTemplateFile(content)
		require.NoError(t, err, path)
		if tmpl.Fallback {
			fallbacks++
		}
	}
	assert.Equal(t, 1, fallbacks)

	lib, err := LoadWithOverrides("")
	require.NoError(t, err)
	assert.NoError(t, lib.Validate())
}

func TestTemplateResolution(t *testing.T) {
	lib := mustDefault(t)

	for _, ct := range []string{"service", "nda", "licensing", "partnership", "unknown", ""} {
		tmpl, ok := lib.Template(ct)
		require.True(t, ok, ct)
		assert.Equal(t, "professional-services", tmpl.ID, ct)
	}

	dir := t.TempDir()
	writeFile(t, dir, "templates/nda.md", "---\nid: mutual-nda\nname: Mutual NDA\ncontract_types: [nda]\n---\n\nMUTUAL NDA\n\n[First Party Name] and [Second Party Name].\n")
	withNDA, err := LoadWithOverrides(dir)
	require.NoError(t, err)

	tmpl, _ := withNDA.Template("nda")
	assert.Equal(t, "mutual-nda", tmpl.ID)
	assert.Equal(t, "MUTUAL NDA\n\n[First Party Name] and [Second Party Name].", tmpl.Content)
	tmpl, _ = withNDA.Template("licensing")
	assert.Equal(t, "professional-services", tmpl.ID)

	_, ok := (&Library{}).Template("service")
	assert.False(t, ok)
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ClausesFile, `clauses:
  - id: liability-cap
    title: Liability Cap (Firm 2025)
    riskLevel: critical
    standardText: Liability is capped at fees paid in the prior twelve months.
  - id: force-majeure
    title: Force Majeure
    riskLevel: high
    standardText: Neither Party is liable for delays caused by events beyond its reasonable control.
    triggers: [Critical infrastructure]
`)
	writeFile(t, dir, "drafts/zz-custom.md", "---\nid: custom\nname: Custom Draft\norder: 10\nform_defaults:\n  contractType: service\n---\nCUSTOM AGREEMENT\n")

	lib, err := LoadWithOverrides(dir)
	require.NoError(t, err)

	require.Len(t, lib.Clauses, 5)
	assert.Equal(t, "Liability Cap (Firm 2025)", lib.Clauses[1].Title, "override keeps position")
	assert.Equal(t, "force-majeure", lib.Clauses[4].ID, "new ids are appended")
	assert.Equal(t, "custom", lib.Drafts[len(lib.Drafts)-1].ID)
	assert.Len(t, lib.Positions, 3, "missing files leave embedded data")
	assert.Equal(t, 65, lib.Analysis.Score)

	embedded := mustDefault(t)
	assert.Equal(t, "Liability Cap", embedded.Clauses[1].Title, "overlay does not touch the base")
}

func TestLoadWithOverridesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ClausesFile, "clauses:\n  - id: broken\n    title: Broken\n    riskLevel: severe\n    standardText: x\n")

	_, err := LoadWithOverrides(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `clause "broken" has invalid risk level "severe"`)

	_, err = LoadWithOverrides(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	lib := &Library{
		ContractTypes: []models.ContractType{{Value: "service"}, {Value: "service"}},
		Clauses:       []models.Clause{{ID: "a", RiskLevel: models.RiskLow}},
		Analysis:      models.RiskAnalysis{OverallRisk: models.RiskLow},
	}
	err := lib.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "no templates defined")
	assert.Contains(t, msg, `duplicate contract type "service"`)
	assert.Contains(t, msg, `clause "a" needs a title and standard text`)
}

func TestParseFrontmatter(t *testing.T) {
	_, err := parseTemplateFile([]byte("no frontmatter"))
	assert.ErrorContains(t, err, "missing frontmatter delimiter")

	_, err = parseTemplateFile([]byte("---\nid: x\n"))
	assert.ErrorContains(t, err, "unterminated")

	_, err = parseDraftFile([]byte("---\nname: No ID\n---\nbody"))
	assert.ErrorContains(t, err, "no id")

	d, err := parseDraftFile([]byte("---\r\nid: crlf\r\n---\r\n\n\nBODY"))
	require.NoError(t, err)
	assert.Equal(t, "crlf", d.ID)
	assert.Equal(t, "BODY", d.Contract)
}

func TestSearch(t *testing.T) {
	lib := mustDefault(t)

	clauses := lib.SearchClauses("liab")
	require.NotEmpty(t, clauses)
	assert.Equal(t, "liability-cap", clauses[0].ID)
	assert.Len(t, lib.SearchClauses(""), 4)

	drafts := lib.SearchDrafts("nda")
	require.NotEmpty(t, drafts)
	assert.Equal(t, "mutual-nda-shortform", drafts[0].ID)

	hits := lib.Search("residency")
	require.NotEmpty(t, hits)
	assert.Equal(t, KindClause, hits[0].Kind)
	assert.Equal(t, "data-residency", hits[0].ID)
	assert.Empty(t, lib.Search("zzzzqqq"))
	assert.Len(t, lib.Search(""), 7)
}

func TestRecommend(t *testing.T) {
	lib := mustDefault(t)
	ids := func(recs []Recommendation) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = r.Clause.ID
		}
		return out
	}

	msa, _ := lib.Draft("enterprise-saas-msa")
	recs := lib.Recommend(msa.FormDefaults, nil)
	assert.Equal(t, []string{"liability-cap", "service-levels"}, ids(recs))
	assert.Equal(t, "Unlimited liability request", recs[0].Trigger)

	assert.Equal(t, []string{"service-levels"}, ids(lib.Recommend(msa.FormDefaults, models.NewClauseSet("liability-cap"))))

	nda, _ := lib.Draft("mutual-nda-shortform")
	assert.Equal(t, []string{"data-security", "data-residency"}, ids(lib.Recommend(nda.FormDefaults, nil)))

	sow, _ := lib.Draft("professional-services-sow")
	assert.Empty(t, lib.Recommend(sow.FormDefaults, nil))
	assert.Empty(t, lib.Recommend(models.FieldMap{}, nil))
}

func TestScaffoldRoundTrip(t *testing.T) {
	dir := t.TempDir()
	written, err := Scaffold(dir, false)
	require.NoError(t, err)
	assert.Contains(t, written, filepath.Join(dir, "templates", "professional-services.md"))

	again, err := Scaffold(dir, false)
	require.NoError(t, err)
	assert.Empty(t, again, "existing files are kept")

	fromDisk, err := LoadWithOverrides(dir)
	require.NoError(t, err)
	if diff := cmp.Diff(mustDefault(t), fromDisk, cmp.AllowUnexported(Library{})); diff != "" {
		t.Errorf("scaffolded library differs (-embedded +disk):\n%s", diff)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, ClausesFile, "clauses: []\n")

	reloaded := make(chan *Library, 4)
	w, err := NewWatcher(dir, 20*time.Millisecond, zaptest.NewLogger(t), func(lib *Library) { reloaded <- lib })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeFile(t, dir, ClausesFile, "clauses:\n  - id: liability-cap\n    title: Watched Cap\n    riskLevel: critical\n    standardText: Capped.\n")

	select {
	case lib := <-reloaded:
		c, ok := lib.Clause("liability-cap")
		require.True(t, ok)
		assert.Equal(t, "Watched Cap", c.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("library was not reloaded")
	}

	cancel()
	require.NoError(t, <-done)
}
