package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/contract-desk/internal/models"
)

// PickerKind says what a picker selection does
type PickerKind int

const (
	PickClause PickerKind = iota
	PickDraft
	PickPosition
)

// pickerItem implements list.Item for clauses, drafts and positions
type pickerItem struct {
	id       string
	title    string
	detail   string
	badge    string
	inserted bool
}

func (p pickerItem) FilterValue() string { return p.title + " " + p.id }

func (p pickerItem) Title() string { return p.title }

func (p pickerItem) Description() string { return p.detail }

// pickerDelegate renders two-line picker rows
type pickerDelegate struct {
	styles *Styles
}

func (d pickerDelegate) Height() int                               { return 2 }
func (d pickerDelegate) Spacing() int                              { return 1 }
func (d pickerDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d pickerDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(pickerItem)
	if !ok {
		return
	}

	mark := "  "
	if item.inserted {
		mark = "✓ "
	}
	title := mark + item.title
	if index == m.Index() {
		title = d.styles.Subtitle.Render("▶ " + item.title)
		if item.inserted {
			title = d.styles.Subtitle.Render("✓ " + item.title)
		}
	} else {
		title = d.styles.Text.Render(title)
	}
	if item.badge != "" {
		title += "  " + item.badge
	}
	fmt.Fprintf(w, "%s\n%s", title, d.styles.Dim.Render("  "+truncate(item.detail, m.Width()-2)))
}

// PickerModal selects one clause, draft or position
type PickerModal struct {
	list     list.Model
	kind     PickerKind
	isActive bool
	chosen   string
	width    int
	height   int
}

// NewPickerModal creates an inactive picker
func NewPickerModal(styles *Styles) *PickerModal {
	l := list.New(nil, pickerDelegate{styles: styles}, 60, 15)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	keyMap := list.DefaultKeyMap()
	keyMap.Filter = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter"))
	l.KeyMap = keyMap
	l.Styles.Title = styles.Title

	return &PickerModal{list: l}
}

// SetSize fits the list inside the modal
func (p *PickerModal) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.list.SetSize(min(width-8, 76), min(height-8, 24))
}

// ShowClauses lists the clause library, marking clauses already inserted
func (p *PickerModal) ShowClauses(clauses []models.Clause, inserted []string, styles Styles) {
	in := make(map[string]bool, len(inserted))
	for _, id := range inserted {
		in[id] = true
	}
	items := make([]list.Item, len(clauses))
	for i, c := range clauses {
		items[i] = pickerItem{
			id:       c.ID,
			title:    c.Title,
			detail:   c.StandardText,
			badge:    styles.Risk(c.RiskLevel),
			inserted: in[c.ID],
		}
	}
	p.show(PickClause, "Insert clause", items)
}

// ShowDrafts lists the prebuilt drafts
func (p *PickerModal) ShowDrafts(drafts []models.PrebuiltDraft, styles Styles) {
	items := make([]list.Item, len(drafts))
	for i, d := range drafts {
		items[i] = pickerItem{
			id:     d.ID,
			title:  d.Name,
			detail: d.Summary,
			badge:  styles.Dim.Render(fmt.Sprintf("%d%% ready", d.Readiness)),
		}
	}
	p.show(PickDraft, "Load prebuilt draft", items)
}

// ShowPositions lists the negotiation positions
func (p *PickerModal) ShowPositions(positions []models.NegotiationPosition, styles Styles) {
	items := make([]list.Item, len(positions))
	for i, pos := range positions {
		items[i] = pickerItem{
			id:     pos.ID,
			title:  pos.Clause,
			detail: pos.FirmPosition,
			badge:  styles.Dim.Render(pos.ChangeType),
		}
	}
	p.show(PickPosition, "Copy firm position", items)
}

func (p *PickerModal) show(kind PickerKind, title string, items []list.Item) {
	p.kind = kind
	p.list.Title = title
	p.list.ResetFilter()
	p.list.SetItems(items)
	p.list.Select(0)
	p.chosen = ""
	p.isActive = true
}

// Hide closes the picker without a selection
func (p *PickerModal) Hide() {
	p.isActive = false
}

// IsActive reports whether the picker is open
func (p *PickerModal) IsActive() bool {
	return p.isActive
}

// Kind is the kind of the last shown list
func (p *PickerModal) Kind() PickerKind {
	return p.kind
}

// Chosen returns the selected id and clears it
func (p *PickerModal) Chosen() (string, bool) {
	id := p.chosen
	p.chosen = ""
	return id, id != ""
}

// Update handles selection and list navigation
func (p *PickerModal) Update(msg tea.Msg) tea.Cmd {
	if !p.isActive {
		return nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && p.list.FilterState() != list.Filtering {
		switch msg.String() {
		case "enter":
			if item, ok := p.list.SelectedItem().(pickerItem); ok {
				p.chosen = item.id
			}
			p.isActive = false
			return nil
		case "esc":
			if p.list.FilterState() == list.FilterApplied {
				p.list.ResetFilter()
				return nil
			}
			p.isActive = false
			return nil
		}
	}
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

// View renders the picker as a centered modal
func (p *PickerModal) View(s Styles) string {
	if !p.isActive {
		return ""
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		p.list.View(),
		"",
		s.Dim.Render("Enter: select • /: filter • Esc: cancel"),
	)
	return CenterModal(s.Modal.Render(content), p.width, p.height)
}
