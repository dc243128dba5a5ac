package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/contract-desk/internal/library"
	"github.com/dpshade/contract-desk/internal/models"
)

var fieldPlaceholders = map[models.FieldKey]string{
	models.FieldContractType:     "service",
	models.FieldClientName:       "Acme Corp",
	models.FieldIndustry:         "Financial Services",
	models.FieldFirstParty:       "Acme Corporation",
	models.FieldSecondParty:      "Globex LLC",
	models.FieldTermDuration:     "24 months",
	models.FieldBusinessPurpose:  "Provision of analytics services",
	models.FieldGoverningLaw:     "Delaware",
	models.FieldRiskProfile:      "standard",
	models.FieldNegotiationFocus: "Liability cap, data residency",
}

// MatterForm edits the matter fields, one text input per field in FieldKeys order
type MatterForm struct {
	inputs    []textinput.Model
	focused   int
	submitted bool
	width     int
}

// NewMatterForm builds the form. Contract types and risk profiles from lib
// are offered as completions.
func NewMatterForm(lib *library.Library) *MatterForm {
	accept := textinput.DefaultKeyMap
	accept.AcceptSuggestion = key.NewBinding(key.WithKeys("ctrl+space", "right"))

	inputs := make([]textinput.Model, len(models.FieldKeys))
	for i, field := range models.FieldKeys {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = fieldPlaceholders[field]
		in.CharLimit = 2000
		in.Width = 48
		in.KeyMap = accept
		inputs[i] = in
	}

	f := &MatterForm{inputs: inputs}
	f.SetLibrary(lib)
	f.inputs[0].Focus()
	return f
}

// SetLibrary refreshes the completions after a library reload
func (f *MatterForm) SetLibrary(lib *library.Library) {
	if lib == nil {
		return
	}
	types := make([]string, len(lib.ContractTypes))
	for i, ct := range lib.ContractTypes {
		types[i] = ct.Value
	}
	profiles := make([]string, len(lib.RiskProfiles))
	for i, p := range lib.RiskProfiles {
		profiles[i] = p.Value
	}
	f.suggest(models.FieldContractType, types)
	f.suggest(models.FieldRiskProfile, profiles)
}

func (f *MatterForm) suggest(field models.FieldKey, values []string) {
	i := f.index(field)
	f.inputs[i].SetSuggestions(values)
	f.inputs[i].ShowSuggestions = len(values) > 0
	if len(values) > 0 {
		f.inputs[i].Placeholder = strings.Join(values, ", ")
	}
}

func (f *MatterForm) index(field models.FieldKey) int {
	for i, k := range models.FieldKeys {
		if k == field {
			return i
		}
	}
	return 0
}

// Update handles navigation and passes other keys to the focused input
func (f *MatterForm) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down", "enter":
			f.nextField()
			return nil
		case "shift+tab", "up":
			f.prevField()
			return nil
		case "ctrl+s":
			f.submitted = true
			return nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f *MatterForm) nextField() {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + 1) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

func (f *MatterForm) prevField() {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused - 1 + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focused].Focus()
}

// Focused returns the field being edited
func (f *MatterForm) Focused() models.FieldKey {
	return models.FieldKeys[f.focused]
}

// Values returns every field, empty ones included so they clear on submit
func (f *MatterForm) Values() map[string]string {
	values := make(map[string]string, len(f.inputs))
	for i, field := range models.FieldKeys {
		values[string(field)] = strings.TrimSpace(f.inputs[i].Value())
	}
	return values
}

// Load fills the inputs from a field map
func (f *MatterForm) Load(fields models.FieldMap) {
	for i, field := range models.FieldKeys {
		f.inputs[i].SetValue(fields.Get(field))
		f.inputs[i].CursorEnd()
	}
}

// IsSubmitted reports whether ctrl+s was pressed since the last Reset
func (f *MatterForm) IsSubmitted() bool {
	return f.submitted
}

// Reset clears the submitted flag
func (f *MatterForm) Reset() {
	f.submitted = false
}

// Resize fits the inputs to the form column
func (f *MatterForm) Resize(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = max(20, width-4)
	}
}

// View renders labels and inputs, marking the parties that generation needs
func (f *MatterForm) View(s Styles) string {
	var b strings.Builder
	for i, field := range models.FieldKeys {
		label := field.Label()
		switch field {
		case models.FieldClientName, models.FieldFirstParty, models.FieldSecondParty:
			label += " *"
		}
		if i == f.focused {
			b.WriteString(s.Subtitle.Render("▶ " + label))
		} else {
			b.WriteString(s.Label.Render("  " + label))
		}
		b.WriteString("\n  ")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.FormHelp.Render("* required to generate"))
	return lipgloss.NewStyle().Width(max(f.width, 24)).Render(b.String())
}
