package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dpshade/contract-desk/internal/clipboard"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/renderer"
	"github.com/dpshade/contract-desk/internal/service"
)

type memClipboard struct{ text string }

func (c *memClipboard) Available() bool { return true }

func (c *memClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

func newTestModel(t *testing.T) (*Model, *memClipboard) {
	t.Helper()
	t.Setenv("GLAMOUR_STYLE", "notty")
	clip := &memClipboard{}
	svc, err := service.NewService(service.Options{
		Logger:        zaptest.NewLogger(t),
		Clock:         func() time.Time { return time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC) },
		DraftDelay:    -1,
		AnalysisDelay: -1,
		Clipboard:     clipboard.New(clip),
	})
	require.NoError(t, err)

	m, err := NewModel(context.Background(), svc, zaptest.NewLogger(t), t.TempDir())
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, clip
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// run executes cmd and any batch below it. Only use it on commands without
// status timers, which would sleep.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver feeds the async results of cmd back into the model
func deliver(m *Model, cmd tea.Cmd) {
	for _, msg := range run(cmd) {
		switch msg.(type) {
		case generatedMsg, analyzedMsg:
			m.Update(msg)
		}
	}
}

func fillParties(m *Model) {
	m.form.Load(models.FieldMap{
		ContractType: "service",
		ClientName:   "Acme Corp",
		FirstParty:   "Acme Corporation",
		SecondParty:  "Globex LLC",
		GoverningLaw: "Delaware",
	})
	press(m, "esc")
}

func TestMatterForm(t *testing.T) {
	m, _ := newTestModel(t)
	f := m.form

	assert.Equal(t, models.FieldContractType, f.Focused())
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, models.FieldClientName, f.Focused())
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Initech")})
	f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, models.FieldContractType, f.Focused())
	f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, models.FieldNegotiationFocus, f.Focused())

	values := f.Values()
	assert.Equal(t, "Initech", values[string(models.FieldClientName)])
	assert.Contains(t, values, string(models.FieldSecondParty))

	assert.False(t, f.IsSubmitted())
	f.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, f.IsSubmitted())
	f.Reset()
	assert.False(t, f.IsSubmitted())
}

func TestGenerateRequiresParties(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "esc")

	deliver(m, press(m, "g"))
	assert.False(t, m.generating)
	assert.Equal(t, "warning", m.statusKind)
	assert.Contains(t, m.statusMsg, errors.MsgMissingParties)
}

func TestGenerateAndInsert(t *testing.T) {
	m, _ := newTestModel(t)
	fillParties(m)
	assert.False(t, m.editing)

	cmd := press(m, "g")
	assert.True(t, m.generating)
	deliver(m, cmd)
	assert.False(t, m.generating)
	assert.Equal(t, "Contract generated successfully.", m.statusMsg)
	assert.False(t, m.matter.Document().IsEmpty())

	press(m, "i")
	require.True(t, m.picker.IsActive())
	press(m, "enter")
	assert.False(t, m.picker.IsActive())
	first := m.service.Clauses()[0]
	assert.Equal(t, []string{first.ID}, m.matter.Inserted())
	assert.Equal(t, "success", m.statusKind)

	press(m, "i")
	press(m, "enter")
	assert.Equal(t, "info", m.statusKind)
	assert.Contains(t, m.statusMsg, "already in the draft")

	press(m, "2")
	assert.Equal(t, ViewPreview, m.viewMode)
	assert.Contains(t, m.View(), "Acme Corporation")
}

func TestInsertBeforeGenerate(t *testing.T) {
	m, _ := newTestModel(t)
	fillParties(m)

	press(m, "i")
	press(m, "enter")
	assert.Equal(t, "warning", m.statusKind)
	assert.Contains(t, m.statusMsg, errors.MsgNoDocumentForClause)
}

func TestLoadDraftFromSearch(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "esc")

	press(m, "/")
	require.True(t, m.search.IsActive())
	press(m, "Mutual NDA")
	require.NotEmpty(t, m.search.results)

	cmd := m.pick(PickDraft, "mutual-nda-shortform")
	require.NotNil(t, cmd)
	assert.Equal(t, ViewPreview, m.viewMode)
	assert.Equal(t, "Brightline Ventures", m.form.Values()[string(models.FieldClientName)])
	assert.False(t, m.matter.Document().IsEmpty())

	press(m, "esc")
	assert.False(t, m.search.IsActive())
}

func TestUploadAndAnalyze(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "esc")

	press(m, "a")
	assert.Contains(t, m.statusMsg, errors.MsgNoUpload)

	pdf := filepath.Join(m.exportTo, "vendor-msa.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.7"), 0644))

	press(m, "u")
	require.True(t, m.upload.IsActive())
	assert.Contains(t, m.upload.pathInput.AvailableSuggestions(), "vendor-msa.pdf")
	press(m, pdf)
	press(m, "enter")
	assert.False(t, m.upload.IsActive())
	assert.Equal(t, ViewReview, m.viewMode)
	assert.Contains(t, m.statusMsg, "vendor-msa.pdf")

	cmd := press(m, "a")
	assert.True(t, m.analyzing)
	deliver(m, cmd)
	assert.False(t, m.analyzing)
	assert.Equal(t, "Contract analysis complete.", m.statusMsg)
	assert.Contains(t, m.View(), "score")

	press(m, "r")
	_, err := os.Stat(filepath.Join(m.exportTo, renderer.ReportFilename))
	assert.NoError(t, err)
}

func TestUploadRejectsMissingFile(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "esc")

	press(m, "u")
	press(m, filepath.Join(m.exportTo, "missing.pdf"))
	press(m, "enter")
	assert.True(t, m.upload.IsActive())
	assert.Error(t, m.upload.err)
}

func TestCopyPositionAndDownload(t *testing.T) {
	m, clip := newTestModel(t)
	fillParties(m)

	press(m, "c")
	require.True(t, m.picker.IsActive())
	press(m, "enter")
	assert.Equal(t, m.service.Positions()[0].FirmPosition, clip.text)
	assert.Equal(t, clipboard.MsgCopied, m.statusMsg)

	press(m, "x")
	assert.Equal(t, "warning", m.statusKind)

	deliver(m, press(m, "g"))
	press(m, "x")
	assert.Contains(t, m.statusMsg, "Saved to")
	entries, err := os.ReadDir(m.exportTo)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Acme_Corp_contract.html", entries[0].Name())

	content, err := os.ReadFile(filepath.Join(m.exportTo, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "<html")
	assert.Contains(t, string(content), "Times New Roman")
}

func TestStaleResultKeepsWorkInFlight(t *testing.T) {
	m, _ := newTestModel(t)
	fillParties(m)

	m.generating = true
	m.Update(generatedMsg{err: errors.StaleResultError("generate")})
	assert.True(t, m.generating)
	assert.Empty(t, m.statusMsg)

	m.analyzing = true
	m.Update(analyzedMsg{err: errors.StaleResultError("analyze")})
	assert.True(t, m.analyzing)

	deliver(m, m.generateCmd())
	assert.False(t, m.generating)
	assert.Equal(t, "Contract generated successfully.", m.statusMsg)
}

func TestResetStartsNewMatter(t *testing.T) {
	m, _ := newTestModel(t)
	fillParties(m)
	deliver(m, press(m, "g"))

	press(m, "n")
	assert.True(t, m.matter.Document().IsEmpty())
	assert.Empty(t, m.form.Values()[string(models.FieldClientName)])
}

func TestFindContracts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "inbox"), 0755))
	for _, name := range []string{"msa.pdf", "inbox/sow.docx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	assert.ElementsMatch(t, []string{"msa.pdf", "inbox/sow.docx"}, findContracts(dir))
}

func TestMeter(t *testing.T) {
	s := NewStyles(darkPalette)
	assert.Empty(t, s.Meter(50, 0))
	assert.Contains(t, s.Meter(50, 10), "█████")
	assert.Contains(t, s.Meter(150, 4), "████")
}
