package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/contract-desk/internal/config"
	"github.com/dpshade/contract-desk/internal/errors"
)

type result struct {
	out    string
	errOut string
	err    error
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	t.Setenv(config.EnvDir, t.TempDir())

	var out, errOut bytes.Buffer
	root := NewRootCommand("1.2.3", nil, WithOutput(&out, &errOut))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

var parties = []string{
	"--client", "Acme Corp",
	"--first-party", "Acme Corporation",
	"--second-party", "Globex LLC",
	"--law", "Delaware",
}

func TestVersion(t *testing.T) {
	res := execute(t, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "contract-desk version 1.2.3\n", res.out)
}

func TestDraftMarkdown(t *testing.T) {
	args := append([]string{"draft", "--clause", "liability-cap", "--clause", "liability-cap", "--format", "md"}, parties...)
	res := execute(t, args...)
	require.NoError(t, res.err, res.errOut)

	assert.Contains(t, res.out, "Acme Corporation")
	assert.Contains(t, res.out, "Globex LLC")
	assert.Contains(t, res.out, "LIABILITY CAP")
	assert.Contains(t, res.errOut, "already")
}

func TestDraftToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.txt")
	args := append([]string{"draft", "--output", path}, parties...)
	res := execute(t, args...)
	require.NoError(t, res.err, res.errOut)

	assert.Empty(t, res.out)
	assert.Contains(t, res.errOut, "Saved to "+path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Acme Corporation")
}

func TestDraftWithoutParties(t *testing.T) {
	res := execute(t, "draft", "--client", "Acme Corp")
	require.Error(t, res.err)
	assert.True(t, errors.IsGuidance(res.err))
	assert.Equal(t, errors.MsgMissingParties, errors.GetAppError(res.err).Message)
}

func TestDraftFromPrebuilt(t *testing.T) {
	res := execute(t, "draft", "--from", "mutual-nda-shortform", "--second-party", "Initech", "--format", "json")
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.errOut, "loaded into the draft preview")
	assert.True(t, json.Valid([]byte(res.out)), res.out)
}

func TestDrafts(t *testing.T) {
	res := execute(t, "drafts", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "enterprise-saas-msa")
	assert.Contains(t, res.out, "mutual-nda-shortform")

	res = execute(t, "drafts", "load", "missing")
	require.Error(t, res.err)
	assert.True(t, errors.HasCode(res.err, errors.ErrCodeNotFound))
}

func TestClauses(t *testing.T) {
	res := execute(t, "clauses", "list", "--format", "ids")
	require.NoError(t, res.err)
	assert.Equal(t, "data-security\nliability-cap\nservice-levels\ndata-residency\n", res.out)

	res = execute(t, "clauses", "search", "liability")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "liability-cap")

	res = execute(t, "clauses", "search", "zzzzqqq")
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "No clauses found.")

	res = execute(t, "clauses", "show", "data-residency", "--format", "json")
	require.NoError(t, res.err)
	var clause map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.out), &clause))
	assert.Equal(t, "Data Residency", clause["title"])
}

func TestReadinessJSON(t *testing.T) {
	args := append([]string{"readiness", "--clause", "liability-cap", "--format", "json"}, parties...)
	res := execute(t, args...)
	require.NoError(t, res.err, res.errOut)

	var report struct {
		Readiness struct {
			Total  int `json:"total"`
			Checks []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"checks"`
		} `json:"readiness"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &report))
	assert.Equal(t, len(report.Readiness.Checks), report.Readiness.Total)
	assert.NotZero(t, report.Readiness.Total)
}

func TestReview(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "vendor-msa.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.7"), 0644))

	res := execute(t, "review", pdf)
	require.NoError(t, res.err, res.errOut)
	assert.Contains(t, res.out, "CONTRACT RISK ANALYSIS REPORT")
	assert.Contains(t, res.errOut, "vendor-msa.pdf")

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("notes"), 0644))
	res = execute(t, "review", txt)
	require.Error(t, res.err)
	assert.True(t, errors.HasCode(res.err, errors.ErrCodeUnsupportedFile))

	res = execute(t, "review", filepath.Join(dir, "missing.pdf"))
	require.Error(t, res.err)
	assert.True(t, errors.HasCode(res.err, errors.ErrCodeFileNotFound))
}

func TestPositionList(t *testing.T) {
	res := execute(t, "position", "list", "--format", "json")
	require.NoError(t, res.err)
	var positions []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.out), &positions))
	assert.Len(t, positions, 3)
}
