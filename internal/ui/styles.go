package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/contract-desk/internal/models"
)

// Palette holds the adaptive colors for one terminal background
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Text      lipgloss.Color
	TextMuted lipgloss.Color
	TextDim   lipgloss.Color
	Border    lipgloss.Color
	Surface   lipgloss.Color
}

var darkPalette = Palette{
	Primary:   lipgloss.Color("205"), // magenta
	Secondary: lipgloss.Color("33"),  // cyan-blue
	Accent:    lipgloss.Color("214"), // orange
	Success:   lipgloss.Color("42"),
	Warning:   lipgloss.Color("220"),
	Error:     lipgloss.Color("196"),
	Info:      lipgloss.Color("39"),
	Text:      lipgloss.Color("252"),
	TextMuted: lipgloss.Color("246"),
	TextDim:   lipgloss.Color("240"),
	Border:    lipgloss.Color("238"),
	Surface:   lipgloss.Color("235"),
}

var lightPalette = Palette{
	Primary:   lipgloss.Color("125"),
	Secondary: lipgloss.Color("25"),
	Accent:    lipgloss.Color("166"),
	Success:   lipgloss.Color("28"),
	Warning:   lipgloss.Color("136"),
	Error:     lipgloss.Color("160"),
	Info:      lipgloss.Color("31"),
	Text:      lipgloss.Color("235"),
	TextMuted: lipgloss.Color("241"),
	TextDim:   lipgloss.Color("245"),
	Border:    lipgloss.Color("250"),
	Surface:   lipgloss.Color("254"),
}

// detectPalette honors GLAMOUR_STYLE before asking the terminal
func detectPalette() Palette {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		return lightPalette
	case "dark":
		return darkPalette
	}
	if lipgloss.HasDarkBackground() {
		return darkPalette
	}
	return lightPalette
}

// Styles are the component styles derived from a palette
type Styles struct {
	Palette Palette

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Text       lipgloss.Style
	Muted      lipgloss.Style
	Dim        lipgloss.Style
	Focused    lipgloss.Style
	Unselected lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Loading lipgloss.Style

	Modal     lipgloss.Style
	Card      lipgloss.Style
	Container lipgloss.Style
	Label     lipgloss.Style
	FormHelp  lipgloss.Style

	ScrollIndicator       lipgloss.Style
	ScrollIndicatorActive lipgloss.Style
}

// NewStyles builds the style set for p
func NewStyles(p Palette) Styles {
	return Styles{
		Palette:    p,
		Title:      lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Padding(0, 1),
		Subtitle:   lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		Text:       lipgloss.NewStyle().Foreground(p.Text),
		Muted:      lipgloss.NewStyle().Foreground(p.TextMuted),
		Dim:        lipgloss.NewStyle().Foreground(p.TextDim),
		Focused:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(p.Secondary).Bold(true).Padding(0, 1),
		Unselected: lipgloss.NewStyle().Foreground(p.TextMuted).Padding(0, 1),
		Tab:        lipgloss.NewStyle().Foreground(p.TextMuted).Padding(0, 2),
		ActiveTab:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(p.Primary).Bold(true).Padding(0, 2),

		Success: lipgloss.NewStyle().Foreground(p.Success).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(p.Info).Bold(true),
		Loading: lipgloss.NewStyle().Foreground(p.Info).Italic(true),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(1, 2),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Container: lipgloss.NewStyle().Padding(0, 2),
		Label:     lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		FormHelp:  lipgloss.NewStyle().Foreground(p.TextDim).Italic(true),

		ScrollIndicator:       lipgloss.NewStyle().Foreground(p.TextDim).Align(lipgloss.Center),
		ScrollIndicatorActive: lipgloss.NewStyle().Foreground(p.Secondary).Bold(true).Align(lipgloss.Center),
	}
}

// Status renders a status-bar message by kind: success, info, warning or error
func (s Styles) Status(text, kind string) string {
	switch kind {
	case "success":
		return s.Success.Render("✓ " + text)
	case "warning":
		return s.Warning.Render(text)
	case "error":
		return s.Error.Render(text)
	case "info":
		return s.Info.Render(text)
	default:
		return s.Text.Render(text)
	}
}

// Guard renders a guardrail status badge
func (s Styles) Guard(status models.GuardStatus) string {
	switch status {
	case models.GuardPass:
		return s.Success.Render("● " + status.Label())
	case models.GuardWarning:
		return s.Warning.Render("● " + status.Label())
	default:
		return s.Error.Render("● " + status.Label())
	}
}

// Risk renders a risk level badge
func (s Styles) Risk(level models.RiskLevel) string {
	switch level {
	case models.RiskCritical, models.RiskHigh:
		return s.Error.Render(level.BadgeLabel())
	case models.RiskMedium:
		return s.Warning.Render(level.BadgeLabel())
	default:
		return s.Success.Render(level.BadgeLabel())
	}
}

// Meter renders a percentage as a fixed-width bar
func (s Styles) Meter(percentage, width int) string {
	if width <= 0 {
		return ""
	}
	percentage = max(0, min(100, percentage))
	filled := percentage * width / 100
	style := s.Error
	switch {
	case percentage == 100:
		style = s.Success
	case percentage >= 50:
		style = s.Warning
	}
	return style.Render(strings.Repeat("█", filled)) + s.Dim.Render(strings.Repeat("░", width-filled))
}

// ContextualHelp renders the essential key hints, plus extra rows when expanded
func (s Styles) ContextualHelp(essential, additional []string, expanded bool, width int) string {
	first := essential
	if len(additional) > 0 && !expanded {
		first = append(append([]string(nil), essential...), "Ctrl+g for more")
	}
	lines := []string{truncate(strings.Join(first, " • "), width-4)}
	if expanded {
		for _, row := range additional {
			lines = append(lines, truncate(row, width-4))
		}
	}
	return s.Dim.Render(strings.Join(lines, "\n"))
}

// ScrollIndicators returns the markers drawn above and below a viewport
func (s Styles) ScrollIndicators(canScrollUp, canScrollDown bool) (string, string) {
	indicator := func(active bool) string {
		if active {
			return s.ScrollIndicatorActive.Render("...")
		}
		return s.ScrollIndicator.Render("─────────")
	}
	return indicator(canScrollUp), indicator(canScrollDown)
}

// CenterModal places content in the middle of the screen
func CenterModal(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-3 {
		r = r[:width-3]
	}
	return string(r) + "..."
}
