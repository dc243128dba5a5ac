package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/contract-desk/internal/library"
)

const maxSearchResults = 8

// SearchModal fuzzy-searches clauses and prebuilt drafts as the user types
type SearchModal struct {
	input        textinput.Model
	results      []library.SearchHit
	cursor       int
	focusResults bool
	isActive     bool
	showHelp     bool
	chosen       *library.SearchHit
	lastQuery    string
	width        int
	height       int

	searchFunc func(string) []library.SearchHit
}

// NewSearchModal creates an inactive search modal backed by searchFunc
func NewSearchModal(searchFunc func(string) []library.SearchHit) *SearchModal {
	in := textinput.New()
	in.Placeholder = "liability, residency, nda..."
	in.CharLimit = 200
	in.Width = 60

	keyMap := textinput.DefaultKeyMap
	keyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("ctrl+space", "right"))
	in.KeyMap = keyMap

	return &SearchModal{input: in, searchFunc: searchFunc}
}

// SetSuggestions offers clause and draft titles as completions
func (m *SearchModal) SetSuggestions(titles []string) {
	m.input.SetSuggestions(titles)
	m.input.ShowSuggestions = len(titles) > 0
}

// Show opens the modal with an empty query
func (m *SearchModal) Show() {
	m.isActive = true
	m.focusResults = false
	m.cursor = 0
	m.chosen = nil
	m.input.SetValue("")
	m.input.Focus()
	m.lastQuery = "\x00"
	m.refresh()
}

// Hide closes the modal
func (m *SearchModal) Hide() {
	m.isActive = false
	m.input.Blur()
}

// IsActive reports whether the modal is open
func (m *SearchModal) IsActive() bool {
	return m.isActive
}

// Chosen returns the selected hit and clears it
func (m *SearchModal) Chosen() (library.SearchHit, bool) {
	if m.chosen == nil {
		return library.SearchHit{}, false
	}
	hit := *m.chosen
	m.chosen = nil
	return hit, true
}

// Resize records the screen size used for centering
func (m *SearchModal) Resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = min(60, max(20, width-16))
}

func (m *SearchModal) refresh() {
	query := strings.TrimSpace(m.input.Value())
	if query == m.lastQuery {
		return
	}
	m.lastQuery = query
	m.cursor = 0
	if query == "" || m.searchFunc == nil {
		m.results = nil
		return
	}
	m.results = m.searchFunc(query)
	if len(m.results) > maxSearchResults {
		m.results = m.results[:maxSearchResults]
	}
}

// Update handles typing, result navigation and selection
func (m *SearchModal) Update(msg tea.Msg) tea.Cmd {
	if !m.isActive {
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.Hide()
			return nil
		case "ctrl+g":
			m.showHelp = !m.showHelp
			return nil
		case "tab":
			if len(m.results) > 0 {
				m.focusResults = !m.focusResults
				if m.focusResults {
					m.input.Blur()
				} else {
					m.input.Focus()
				}
			}
			return nil
		case "enter":
			if len(m.results) > 0 {
				hit := m.results[m.cursor]
				m.chosen = &hit
				m.Hide()
			}
			return nil
		case "up", "k":
			if m.focusResults {
				if m.cursor > 0 {
					m.cursor--
				}
				return nil
			}
		case "down", "j":
			if m.focusResults {
				if m.cursor < len(m.results)-1 {
					m.cursor++
				}
				return nil
			}
		}
	}

	if m.focusResults {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return cmd
}

// View renders the modal
func (m *SearchModal) View(s Styles) string {
	if !m.isActive {
		return ""
	}

	content := []string{s.Title.Render("Search library"), ""}

	label := "Query:"
	if !m.focusResults {
		label = "▶ " + label
	}
	content = append(content, s.Label.Render(label), m.input.View(), "")

	query := strings.TrimSpace(m.input.Value())
	switch {
	case len(m.results) > 0:
		title := fmt.Sprintf("Results (%d):", len(m.results))
		if m.focusResults {
			title = "▶ " + title
		}
		content = append(content, s.Label.Render(title))
		for i, hit := range m.results {
			line := fmt.Sprintf("%d. [%s] %s", i+1, hit.Kind, hit.Title)
			if m.focusResults && i == m.cursor {
				content = append(content, s.Focused.Render(line))
			} else {
				content = append(content, s.Text.Render(line))
			}
			if hit.Detail != "" {
				content = append(content, s.Dim.Render("   "+truncate(hit.Detail, 70)))
			}
		}
	case query != "":
		content = append(content, s.Muted.Render("No results found"))
	}

	content = append(content, "")
	essential := "Tab: results • Enter: open • Esc: close"
	if m.showHelp {
		content = append(content,
			s.FormHelp.Render("Clauses are inserted into the draft; drafts replace it."),
			s.FormHelp.Render(essential),
			s.FormHelp.Render("↑/↓: navigate results • Ctrl+Space/→: accept suggestion • Ctrl+g: less help"))
	} else {
		content = append(content, s.FormHelp.Render(essential+" • Ctrl+g: more help"))
	}

	modal := s.Modal.Width(min(84, max(40, m.width-4))).Render(lipgloss.JoinVertical(lipgloss.Left, content...))
	return CenterModal(modal, m.width, m.height)
}
