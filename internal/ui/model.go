// Package ui is the interactive terminal desk: a matter form, a live draft
// preview, readiness guardrails and contract review in one bubbletea program.
package ui

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/library"
	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/renderer"
	"github.com/dpshade/contract-desk/internal/service"
)

// createGlamourRenderer picks a markdown style for the terminal background
func createGlamourRenderer(wordWrap int) (*glamour.TermRenderer, error) {
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wordWrap),
		)
	}

	profile := termenv.ColorProfile()
	style := glamour.WithAutoStyle()
	if profile == termenv.TrueColor || profile == termenv.ANSI256 {
		if lipgloss.HasDarkBackground() {
			style = glamour.WithStandardStyle("dark")
		} else {
			style = glamour.WithStandardStyle("light")
		}
	}
	return glamour.NewTermRenderer(
		style,
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(wordWrap),
	)
}

// ViewMode is the active tab
type ViewMode int

const (
	ViewDesk ViewMode = iota
	ViewPreview
	ViewReview
	ViewPlaybook
)

var viewNames = []string{"Desk", "Draft", "Review", "Playbook"}

// async results
type generatedMsg struct {
	notice service.Notice
	err    error
}

type analyzedMsg struct {
	analysis models.RiskAnalysis
	notice   service.Notice
	err      error
}

// tickMsg counts down the status message
type tickMsg time.Time

func clearStatusCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// statusSeconds is how long a status message stays up
const statusSeconds = 4

// KeyMap defines the key bindings outside of text inputs
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextView   key.Binding
	Edit       key.Binding
	Apply      key.Binding
	Back       key.Binding
	Generate   key.Binding
	Insert     key.Binding
	LoadDraft  key.Binding
	Search     key.Binding
	Export     key.Binding
	Upload     key.Binding
	Analyze    key.Binding
	Report     key.Binding
	Position   key.Binding
	Reset      key.Binding
	Help       key.Binding
	ExpandHelp key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Edit, k.Apply, k.Back, k.NextView},
		{k.Generate, k.Insert, k.LoadDraft, k.Search},
		{k.Export, k.Upload, k.Analyze, k.Report},
		{k.Position, k.Reset, k.Up, k.Down},
		{k.Help, k.ExpandHelp, k.Quit},
	}
}

var keys = KeyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	NextView:   key.NewBinding(key.WithKeys("tab", "1", "2", "3", "4"), key.WithHelp("Tab/1-4", "switch view")),
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit fields")),
	Apply:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("Ctrl+s", "apply fields")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "back")),
	Generate:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate draft")),
	Insert:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert clause")),
	LoadDraft:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "load prebuilt draft")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search library")),
	Export:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "download draft")),
	Upload:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload contract")),
	Analyze:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analyze")),
	Report:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "download report")),
	Position:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy position")),
	Reset:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new matter")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	ExpandHelp: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("Ctrl+g", "expand help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the TUI state for one matter
type Model struct {
	ctx     context.Context
	service *service.Service
	matter  *service.Matter
	logger  *zap.Logger
	errors  *errors.TUIErrorHandler
	styles  Styles
	keys    KeyMap

	viewMode ViewMode
	editing  bool

	form     *MatterForm
	picker   *PickerModal
	search   *SearchModal
	upload   *UploadModal
	preview  viewport.Model
	spinner  spinner.Model
	help     help.Model
	glamour  *glamour.TermRenderer
	wrapAt   int
	exportTo string

	generating bool
	analyzing  bool

	showHelpModal    bool
	showExpandedHelp bool

	width  int
	height int

	statusMsg     string
	statusKind    string
	statusTimeout int
}

// NewModel creates the desk over a fresh matter. Downloads are written to exportDir.
func NewModel(ctx context.Context, svc *service.Service, logger *zap.Logger, exportDir string) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	styles := NewStyles(detectPalette())

	gr, err := createGlamourRenderer(60)
	if err != nil {
		return nil, fmt.Errorf("failed to create glamour renderer: %w", err)
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = styles.Loading

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	m := &Model{
		ctx:      ctx,
		service:  svc,
		matter:   svc.NewMatter(),
		logger:   logger.Named("tui"),
		errors:   errors.NewTUIErrorHandler(false, logger),
		styles:   styles,
		keys:     keys,
		form:     NewMatterForm(svc.Library()),
		upload:   NewUploadModal(),
		preview:  vp,
		spinner:  sp,
		help:     help.New(),
		glamour:  gr,
		wrapAt:   60,
		exportTo: exportDir,
		editing:  true,
	}
	m.picker = NewPickerModal(&m.styles)
	m.search = NewSearchModal(svc.Search)
	m.search.SetSuggestions(searchTitles(svc.Library()))
	m.form.Load(m.matter.Fields())
	m.renderPreview()
	return m, nil
}

func searchTitles(lib *library.Library) []string {
	titles := make([]string, 0, len(lib.Clauses)+len(lib.Drafts))
	for _, c := range lib.Clauses {
		titles = append(titles, c.Title)
	}
	for _, d := range lib.Drafts {
		titles = append(titles, d.Name)
	}
	return titles
}

// Init starts the cursor blink for the focused input
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) setStatus(msg, kind string) tea.Cmd {
	m.statusMsg = msg
	m.statusKind = kind
	m.statusTimeout = statusSeconds
	return clearStatusCmd()
}

func (m *Model) notice(n service.Notice) tea.Cmd {
	return m.setStatus(n.Message, string(n.Kind))
}

// fail shows an error in the status bar. Guidance reads as a warning.
func (m *Model) fail(err error) tea.Cmd {
	appErr := m.errors.HandleError(err)
	kind := "error"
	if errors.IsGuidance(appErr) {
		kind = "warning"
	}
	icon, _ := m.errors.GetErrorStyle(appErr)
	return m.setStatus(icon+" "+m.errors.FormatError(appErr), kind)
}

// applyForm stores the form values on the matter
func (m *Model) applyForm() error {
	return m.matter.SetFields(m.form.Values())
}

func (m *Model) generateCmd() tea.Cmd {
	matter, ctx := m.matter, m.ctx
	return func() tea.Msg {
		notice, err := matter.Generate(ctx)
		return generatedMsg{notice: notice, err: err}
	}
}

func (m *Model) analyzeCmd() tea.Cmd {
	matter, ctx := m.matter, m.ctx
	return func() tea.Msg {
		a, notice, err := matter.Analyze(ctx)
		return analyzedMsg{analysis: a, notice: notice, err: err}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.statusTimeout > 0 {
			m.statusTimeout--
			if m.statusTimeout == 0 {
				m.statusMsg = ""
				return m, nil
			}
			return m, clearStatusCmd()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.generating && !m.analyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generatedMsg:
		// a superseded draft is expected after a reload or reset; the newer
		// request is still in flight
		if errors.HasCode(msg.err, errors.ErrCodeStaleResult) {
			return m, nil
		}
		m.generating = false
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.renderPreview()
		return m, m.notice(msg.notice)

	case analyzedMsg:
		if errors.HasCode(msg.err, errors.ErrCodeStaleResult) {
			return m, nil
		}
		m.analyzing = false
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.logger.Debug("analysis shown", zap.String("overall", string(msg.analysis.OverallRisk)))
		return m, m.notice(msg.notice)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.editing {
		return m, m.form.Update(msg)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// title, tabs, status and help
	const reserved = 7
	body := max(5, height-reserved)

	m.form.Resize(max(30, width*2/5-4))
	m.preview.Width = max(40, width-6)
	m.preview.Height = body - 2
	m.picker.SetSize(width, height)
	m.search.Resize(width, height)
	m.upload.Resize(width, height)

	if wrap := max(40, m.preview.Width-4); wrap != m.wrapAt {
		if gr, err := createGlamourRenderer(wrap); err == nil {
			m.glamour = gr
			m.wrapAt = wrap
		}
	}
	m.renderPreview()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.picker.IsActive():
		cmd := m.picker.Update(msg)
		if id, ok := m.picker.Chosen(); ok {
			return m, tea.Batch(cmd, m.pick(m.picker.Kind(), id))
		}
		return m, cmd

	case m.search.IsActive():
		cmd := m.search.Update(msg)
		if hit, ok := m.search.Chosen(); ok {
			kind := PickClause
			if hit.Kind == library.KindDraft {
				kind = PickDraft
			}
			return m, tea.Batch(cmd, m.pick(kind, hit.ID))
		}
		return m, cmd

	case m.upload.IsActive():
		cmd := m.upload.Update(msg)
		if u, ok := m.upload.Submitted(); ok {
			return m, tea.Batch(cmd, m.uploadContract(u))
		}
		return m, cmd

	case m.showHelpModal:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.showHelpModal = false
		}
		return m, nil
	}

	if m.editing {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.editing = false
			if err := m.applyForm(); err != nil {
				return m, m.fail(err)
			}
			return m, nil
		case key.Matches(msg, m.keys.ExpandHelp):
			m.showExpandedHelp = !m.showExpandedHelp
			return m, nil
		}
		cmd := m.form.Update(msg)
		if m.form.IsSubmitted() {
			m.form.Reset()
			if err := m.applyForm(); err != nil {
				return m, m.fail(err)
			}
			return m, tea.Batch(cmd, m.setStatus("Fields updated.", "info"))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelpModal = true
	case key.Matches(msg, m.keys.ExpandHelp):
		m.showExpandedHelp = !m.showExpandedHelp
	case key.Matches(msg, m.keys.NextView):
		m.switchView(msg.String())
	case key.Matches(msg, m.keys.Edit):
		m.viewMode = ViewDesk
		m.editing = true
	case key.Matches(msg, m.keys.Generate):
		return m, m.generate()
	case key.Matches(msg, m.keys.Insert):
		m.picker.ShowClauses(m.service.Clauses(), m.matter.Inserted(), m.styles)
	case key.Matches(msg, m.keys.LoadDraft):
		m.picker.ShowDrafts(m.service.Drafts(), m.styles)
	case key.Matches(msg, m.keys.Position):
		m.picker.ShowPositions(m.service.Positions(), m.styles)
	case key.Matches(msg, m.keys.Search):
		m.search.Show()
	case key.Matches(msg, m.keys.Upload):
		m.upload.Show(m.exportTo)
	case key.Matches(msg, m.keys.Analyze):
		return m, m.analyze()
	case key.Matches(msg, m.keys.Export):
		return m, m.download(m.matter.Export(renderer.FormatHTML))
	case key.Matches(msg, m.keys.Report):
		return m, m.download(m.matter.Report())
	case key.Matches(msg, m.keys.Reset):
		m.matter.Reset()
		m.generating, m.analyzing = false, false
		m.form.Load(m.matter.Fields())
		m.renderPreview()
		return m, m.setStatus("Started a new matter.", "info")
	case m.viewMode == ViewPreview && key.Matches(msg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) switchView(k string) {
	switch k {
	case "1":
		m.viewMode = ViewDesk
	case "2":
		m.viewMode = ViewPreview
	case "3":
		m.viewMode = ViewReview
	case "4":
		m.viewMode = ViewPlaybook
	default:
		m.viewMode = (m.viewMode + 1) % ViewMode(len(viewNames))
	}
}

func (m *Model) generate() tea.Cmd {
	if m.generating {
		return nil
	}
	if err := m.applyForm(); err != nil {
		return m.fail(err)
	}
	m.generating = true
	return tea.Batch(m.spinner.Tick, m.generateCmd())
}

func (m *Model) analyze() tea.Cmd {
	if m.analyzing {
		return nil
	}
	if m.matter.Snapshot().Upload == nil {
		return m.fail(errors.NoUploadError())
	}
	m.analyzing = true
	m.viewMode = ViewReview
	return tea.Batch(m.spinner.Tick, m.analyzeCmd())
}

// pick applies a picker or search selection
func (m *Model) pick(kind PickerKind, id string) tea.Cmd {
	switch kind {
	case PickClause:
		notice, err := m.matter.InsertClause(id)
		if err != nil {
			return m.fail(err)
		}
		m.renderPreview()
		return m.notice(notice)

	case PickDraft:
		notice, err := m.matter.LoadDraft(id)
		if err != nil {
			return m.fail(err)
		}
		m.generating = false
		m.form.Load(m.matter.Fields())
		m.renderPreview()
		m.viewMode = ViewPreview
		return m.notice(notice)

	case PickPosition:
		result, err := m.service.CopyPosition(id)
		if err != nil {
			return m.fail(err)
		}
		return m.notice(result.Notice)
	}
	return nil
}

func (m *Model) uploadContract(u models.Upload) tea.Cmd {
	if err := m.matter.Upload(u); err != nil {
		return m.fail(err)
	}
	m.analyzing = false
	m.viewMode = ViewReview
	return m.setStatus(fmt.Sprintf("%s (%s) ready for analysis.", u.Filename, u.SizeKB()), "success")
}

// download writes an export or report into the export directory
func (m *Model) download(export service.Export, err error) tea.Cmd {
	if err != nil {
		return m.fail(err)
	}
	path := filepath.Join(m.exportTo, export.Filename)
	if err := os.WriteFile(path, []byte(export.Content), 0644); err != nil {
		return m.fail(errors.ExportError(path, err))
	}
	m.logger.Info("file downloaded", zap.String("path", path))
	return m.setStatus(export.Notice.Message+" Saved to "+path, string(export.Notice.Kind))
}

// renderPreview refreshes the draft viewport from the matter document
func (m *Model) renderPreview() {
	export, err := m.matter.Export(renderer.FormatMarkdown)
	if err != nil {
		m.preview.SetContent(m.styles.Muted.Render("Generate a draft or load a prebuilt one to preview it here."))
		return
	}
	out, err := m.glamour.Render(export.Content)
	if err != nil {
		m.logger.Warn("markdown render failed", zap.Error(err))
		out = export.Content
	}
	m.preview.SetContent(out)
}

// Run starts the desk and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, svc *service.Service, logger *zap.Logger) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	m, err := NewModel(ctx, svc, logger, dir)
	if err != nil {
		return err
	}
	defer func() { _ = svc.DeleteMatter(m.matter.ID()) }()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}
