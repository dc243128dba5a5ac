package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/models"
)

const uploadPattern = "**/*.{pdf,docx,PDF,DOCX}"

// maxUploadSuggestions bounds the completion list on large trees
const maxUploadSuggestions = 200

// UploadModal asks for the path of a contract to review
type UploadModal struct {
	pathInput textinput.Model
	isActive  bool
	submitted bool
	upload    models.Upload
	err       error
	width     int
	height    int
}

// NewUploadModal creates an inactive upload modal
func NewUploadModal() *UploadModal {
	in := textinput.New()
	in.Placeholder = "path/to/contract.pdf"
	in.CharLimit = 1024
	in.Width = 60

	keyMap := textinput.DefaultKeyMap
	keyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("tab", "ctrl+space", "right"))
	in.KeyMap = keyMap

	return &UploadModal{pathInput: in}
}

// findContracts lists PDF and DOCX files below dir, relative to it
func findContracts(dir string) []string {
	matches, err := doublestar.Glob(os.DirFS(dir), uploadPattern, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return nil
	}
	if len(matches) > maxUploadSuggestions {
		matches = matches[:maxUploadSuggestions]
	}
	return matches
}

// Show opens the modal, offering contracts below dir as completions
func (m *UploadModal) Show(dir string) {
	m.isActive = true
	m.submitted = false
	m.err = nil
	m.pathInput.SetValue("")
	m.pathInput.Focus()

	suggestions := findContracts(dir)
	m.pathInput.SetSuggestions(suggestions)
	m.pathInput.ShowSuggestions = len(suggestions) > 0
}

// Hide closes the modal
func (m *UploadModal) Hide() {
	m.isActive = false
	m.pathInput.Blur()
}

// IsActive reports whether the modal is open
func (m *UploadModal) IsActive() bool {
	return m.isActive
}

// Submitted returns the chosen upload once and clears it
func (m *UploadModal) Submitted() (models.Upload, bool) {
	if !m.submitted {
		return models.Upload{}, false
	}
	m.submitted = false
	return m.upload, true
}

// Resize records the screen size used for centering
func (m *UploadModal) Resize(width, height int) {
	m.width = width
	m.height = height
	m.pathInput.Width = min(60, max(20, width-16))
}

// describe stats path and builds the upload metadata
func describe(path string) (models.Upload, error) {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return models.Upload{}, errors.FileError(path, err)
	}
	if info.IsDir() {
		return models.Upload{}, errors.ValidationError(path + " is a directory")
	}
	return models.Upload{
		Filename:  filepath.Base(path),
		SizeBytes: info.Size(),
		MimeType:  models.MimeTypeForPath(path),
	}, nil
}

// Update handles typing and submission
func (m *UploadModal) Update(msg tea.Msg) tea.Cmd {
	if !m.isActive {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.Hide()
			return nil
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			if path == "" {
				return nil
			}
			upload, err := describe(path)
			if err != nil {
				m.err = err
				return nil
			}
			m.upload = upload
			m.submitted = true
			m.Hide()
			return nil
		}
	}
	m.err = nil
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

// View renders the modal
func (m *UploadModal) View(s Styles) string {
	if !m.isActive {
		return ""
	}
	content := []string{
		s.Title.Render("Upload contract for review"),
		"",
		s.Label.Render("▶ File:"),
		m.pathInput.View(),
	}
	if m.err != nil {
		content = append(content, "", s.Error.Render(errors.GetAppError(m.err).Message))
	}
	content = append(content, "",
		s.FormHelp.Render("PDF or DOCX • Tab/→: complete • Enter: upload • Esc: cancel"))

	modal := s.Modal.Width(min(80, max(40, m.width-4))).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
	return CenterModal(modal, m.width, m.height)
}
