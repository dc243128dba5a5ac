package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/dpshade/contract-desk/internal/clipboard"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/renderer"
	"github.com/dpshade/contract-desk/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memClipboard struct{ text string }

func (c *memClipboard) Available() bool { return true }

func (c *memClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func newTestExecutor(t *testing.T) *CommandExecutor {
	t.Helper()
	svc, err := service.NewService(service.Options{
		Logger:        zaptest.NewLogger(t),
		Clock:         func() time.Time { return time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC) },
		DraftDelay:    -1,
		AnalysisDelay: -1,
		Clipboard:     clipboard.New(&memClipboard{}),
	})
	require.NoError(t, err)
	return NewCommandExecutor(svc)
}

func run(t *testing.T, e *CommandExecutor, name string, params map[string]any) *CommandResult {
	t.Helper()
	result, err := e.Execute(context.Background(), name, params)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func createMatter(t *testing.T, e *CommandExecutor) string {
	t.Helper()
	result := run(t, e, "create-matter", map[string]any{
		"fields": map[string]any{
			"clientName":   "Acme Corp",
			"firstParty":   "Acme Corporation",
			"secondParty":  "  Globex LLC ",
			"governingLaw": "Delaware",
		},
	})
	require.True(t, result.Success, "%+v", result.Error)
	snap := result.Data.(service.Snapshot)
	assert.Equal(t, "Globex LLC", snap.Fields.SecondParty)
	return snap.ID
}

func TestRegisteredCommands(t *testing.T) {
	e := newTestExecutor(t)
	names := e.Commands()
	assert.Contains(t, names, "generate")
	assert.Contains(t, names, "copy-position")
	assert.IsIncreasing(t, names)

	desc, ok := e.Describe("insert-clause")
	assert.True(t, ok)
	assert.NotEmpty(t, desc)

	_, ok = e.Describe("list-prompts")
	assert.False(t, ok)
}

func TestUnknownCommand(t *testing.T) {
	e := newTestExecutor(t)
	result := run(t, e, "nope", nil)
	assert.False(t, result.Success)
	assert.Equal(t, string(errors.ErrCodeCommandNotFound), result.Error.Code)
}

func TestCancelledContext(t *testing.T) {
	e := newTestExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Execute(ctx, "health", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchemaRejectsBadMatterID(t *testing.T) {
	e := newTestExecutor(t)
	result := run(t, e, "generate", map[string]any{"matter_id": "not-a-uuid"})
	assert.False(t, result.Success)
	assert.Equal(t, string(errors.ErrCodeValidation), result.Error.Code)
}

func TestCreateMatterRejectsUnknownField(t *testing.T) {
	e := newTestExecutor(t)
	result := run(t, e, "create-matter", map[string]any{
		"fields": map[string]any{"favouriteColour": "blue"},
	})
	assert.False(t, result.Success)
	assert.Empty(t, e.Service().ListMatters())
}

func TestGenerateWithoutPartiesIsGuidance(t *testing.T) {
	e := newTestExecutor(t)
	created := run(t, e, "create-matter", nil)
	id := created.Data.(service.Snapshot).ID

	result := run(t, e, "generate", map[string]any{"matter_id": id})
	assert.False(t, result.Success)
	assert.Equal(t, "guidance", result.Error.Category)
	assert.Equal(t, errors.MsgMissingParties, result.Error.Message)
	assert.True(t, errors.IsGuidance(result.Error.AppError()))
}

func TestDraftingFlow(t *testing.T) {
	e := newTestExecutor(t)
	id := createMatter(t, e)

	result := run(t, e, "insert-clause", map[string]any{"matter_id": id, "clause_id": "liability-cap"})
	assert.False(t, result.Success)
	assert.Equal(t, errors.MsgNoDocumentForClause, result.Error.Message)

	result = run(t, e, "generate", map[string]any{"matter_id": id})
	require.True(t, result.Success, "%+v", result.Error)
	assert.Equal(t, "Contract generated successfully.", result.Message)
	assert.Equal(t, "success", result.Notice)

	result = run(t, e, "insert-clause", map[string]any{"matter_id": id, "clause_id": "liability-cap"})
	require.True(t, result.Success, "%+v", result.Error)
	assert.Contains(t, result.Message, "inserted into the draft")
	assert.Contains(t, result.Data.(service.Snapshot).Inserted, "liability-cap")

	result = run(t, e, "insert-clause", map[string]any{"matter_id": id, "clause_id": "liability-cap"})
	require.True(t, result.Success)
	assert.Equal(t, "info", result.Notice)

	result = run(t, e, "readiness", map[string]any{"matter_id": id})
	require.True(t, result.Success)
	report := result.Data.(ReadinessReport)
	assert.Equal(t, report.Hero.Caption, result.Message)
	assert.NotEmpty(t, report.Readiness.Checks)

	result = run(t, e, "export", map[string]any{"matter_id": id, "format": "markdown"})
	require.True(t, result.Success, "%+v", result.Error)
	export := result.Data.(service.Export)
	assert.Equal(t, "text/markdown; charset=utf-8", export.ContentType)
	assert.NotEmpty(t, export.Content)
	assert.Equal(t, "Contract downloaded.", result.Message)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	e := newTestExecutor(t)
	id := createMatter(t, e)
	result := run(t, e, "export", map[string]any{"matter_id": id, "format": "pdf"})
	assert.False(t, result.Success)
}

func TestExportBeforeGenerate(t *testing.T) {
	e := newTestExecutor(t)
	id := createMatter(t, e)
	result := run(t, e, "export", map[string]any{"matter_id": id, "format": string(renderer.FormatText)})
	assert.False(t, result.Success)
	assert.Equal(t, errors.MsgNoDocumentForExport, result.Error.Message)
}

func TestCreateMatterFromDraft(t *testing.T) {
	e := newTestExecutor(t)
	result := run(t, e, "create-matter", map[string]any{"draft_id": "mutual-nda-shortform"})
	require.True(t, result.Success, "%+v", result.Error)
	snap := result.Data.(service.Snapshot)
	assert.False(t, snap.Document.IsEmpty())
	assert.Contains(t, result.Message, "loaded into the draft preview")

	result = run(t, e, "create-matter", map[string]any{"draft_id": "missing"})
	assert.False(t, result.Success)
	assert.Len(t, e.Service().ListMatters(), 1)
}

func TestReviewFlow(t *testing.T) {
	e := newTestExecutor(t)
	id := createMatter(t, e)

	result := run(t, e, "analyze", map[string]any{"matter_id": id})
	assert.False(t, result.Success)
	assert.Equal(t, errors.MsgNoUpload, result.Error.Message)

	result = run(t, e, "upload", map[string]any{"matter_id": id, "filename": "notes.txt", "size_bytes": 12, "mime_type": "text/plain"})
	assert.False(t, result.Success)
	assert.Equal(t, errors.MsgUnsupportedFile, result.Error.Message)

	result = run(t, e, "upload", map[string]any{"matter_id": id, "filename": "msa.docx", "size_bytes": 4096})
	require.True(t, result.Success, "%+v", result.Error)
	assert.Contains(t, result.Message, "msa.docx")

	result = run(t, e, "report", map[string]any{"matter_id": id})
	assert.False(t, result.Success)
	assert.Equal(t, errors.MsgNoAnalysis, result.Error.Message)

	result = run(t, e, "analyze", map[string]any{"matter_id": id})
	require.True(t, result.Success, "%+v", result.Error)
	summary := result.Data.(AnalysisSummary)
	assert.Equal(t, "Contract analysis complete.", result.Message)
	for i := 1; i < len(summary.Severities); i++ {
		assert.Greater(t, summary.Severities[i-1].Rank(), summary.Severities[i].Rank())
	}

	result = run(t, e, "report", map[string]any{"matter_id": id})
	require.True(t, result.Success)
	assert.Equal(t, renderer.ReportFilename, result.Data.(service.Export).Filename)
}

func TestDeleteMatter(t *testing.T) {
	e := newTestExecutor(t)
	id := createMatter(t, e)

	result := run(t, e, "delete-matter", map[string]any{"matter_id": id})
	require.True(t, result.Success)

	result = run(t, e, "get-matter", map[string]any{"matter_id": id})
	assert.False(t, result.Success)
	assert.Equal(t, string(errors.ErrCodeNotFound), result.Error.Code)
}

func TestLibraryCommands(t *testing.T) {
	e := newTestExecutor(t)

	result := run(t, e, "list-clauses", nil)
	require.True(t, result.Success)
	assert.NotEmpty(t, result.Data)

	result = run(t, e, "search-clauses", map[string]any{"query": "liability"})
	require.True(t, result.Success)
	assert.Contains(t, result.Message, `"liability"`)

	result = run(t, e, "search-clauses", map[string]any{"query": ""})
	assert.False(t, result.Success)

	result = run(t, e, "playbook", nil)
	require.True(t, result.Success)
	view := result.Data.(PlaybookView)
	assert.NotEmpty(t, view.ContractTypes)

	result = run(t, e, "copy-position", map[string]any{"position_id": "liability"})
	require.True(t, result.Success, "%+v", result.Error)
	assert.True(t, result.Data.(service.CopyResult).Copied)
	assert.Equal(t, clipboard.MsgCopied, result.Message)

	result = run(t, e, "copy-position", map[string]any{"position_id": "missing"})
	assert.False(t, result.Success)
}

func TestHealth(t *testing.T) {
	e := newTestExecutor(t)
	createMatter(t, e)

	result := run(t, e, "health", nil)
	require.True(t, result.Success)
	report := result.Data.(HealthReport)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, 1, report.Matters)
	assert.Positive(t, report.Library.Clauses)
}
