package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/renderer"
)

// View renders the active tab with any open modal over it
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch {
	case m.picker.IsActive():
		return m.picker.View(m.styles)
	case m.search.IsActive():
		return m.search.View(m.styles)
	case m.upload.IsActive():
		return m.upload.View(m.styles)
	case m.showHelpModal:
		return m.renderHelpModal()
	}

	var body string
	switch m.viewMode {
	case ViewPreview:
		body = m.renderPreviewView()
	case ViewReview:
		body = m.renderReviewView()
	case ViewPlaybook:
		body = m.renderPlaybookView()
	default:
		body = m.renderDeskView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		body,
		m.renderStatus(),
		m.renderHelp(),
	)
}

func (m *Model) renderHeader() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if ViewMode(i) == m.viewMode {
			tabs[i] = m.styles.ActiveTab.Render(label)
		} else {
			tabs[i] = m.styles.Tab.Render(label)
		}
	}
	title := m.styles.Title.Render("Contract Desk")
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m *Model) renderStatus() string {
	switch {
	case m.generating:
		return m.spinner.View() + m.styles.Loading.Render(" Generating draft...")
	case m.analyzing:
		return m.spinner.View() + m.styles.Loading.Render(" Analyzing contract...")
	case m.statusMsg != "":
		return m.styles.Status(m.statusMsg, m.statusKind)
	}
	return ""
}

func (m *Model) renderHelp() string {
	var essential, additional []string
	switch {
	case m.editing:
		essential = []string{"Tab/↓: next field", "Shift+Tab/↑: previous", "Ctrl+s: apply", "Esc: done"}
		additional = []string{"→/Ctrl+Space: accept suggestion • Ctrl+c: quit"}
	case m.viewMode == ViewReview:
		essential = []string{"u: upload", "a: analyze", "r: download report", "?: help", "q: quit"}
		additional = []string{"Tab/1-4: switch view • n: new matter"}
	case m.viewMode == ViewPreview:
		essential = []string{"↑/↓: scroll", "i: insert clause", "x: download", "?: help", "q: quit"}
		additional = []string{"g: regenerate • d: load draft • /: search • Tab/1-4: switch view"}
	default:
		essential = []string{"e: edit", "g: generate", "i: insert clause", "?: help", "q: quit"}
		additional = []string{"d: load draft • /: search • x: download • c: copy position", "Tab/1-4: switch view • n: new matter"}
	}
	return m.styles.ContextualHelp(essential, additional, m.showExpandedHelp, m.width)
}

func (m *Model) bodyHeight() int {
	return max(5, m.height-7)
}

func (m *Model) renderDeskView() string {
	formWidth := max(30, m.width*2/5)
	left := m.styles.Card.Width(formWidth).Render(m.form.View(m.styles))

	right := m.renderReadiness(max(30, m.width-formWidth-6))
	return lipgloss.NewStyle().MaxHeight(m.bodyHeight()).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
}

// renderReadiness draws the hero summary, guardrails and clause suggestions
func (m *Model) renderReadiness(width int) string {
	hero := m.matter.Hero()
	s := m.styles

	lines := []string{
		s.Subtitle.Render(hero.ContractType),
		s.Meter(hero.Readiness.Percentage, min(30, width-10)) + fmt.Sprintf(" %d%%", hero.Readiness.Percentage),
		s.Muted.Render(hero.Caption),
		"",
	}
	for _, check := range hero.Readiness.Checks {
		lines = append(lines, fmt.Sprintf("%s  %s", s.Guard(check.Status), s.Label.Render(check.Label)))
		if check.Detail != "" {
			lines = append(lines, s.Dim.Render("   "+truncate(check.Detail, width-6)))
		}
	}

	lines = append(lines, "", s.Label.Render("Risk posture: ")+hero.RiskHeadline, s.Dim.Render(truncate(hero.RiskNarrative, width-2)))
	lines = append(lines, s.Label.Render("Next milestone: ")+hero.Milestone, s.Dim.Render(hero.MilestoneCaption))

	if recs := m.matter.Recommend(); len(recs) > 0 {
		lines = append(lines, "", s.Label.Render("Suggested clauses"))
		for _, rec := range recs {
			lines = append(lines, "  "+s.Info.Render(rec.Clause.Title)+s.Dim.Render(" · "+truncate(rec.Trigger, width-len(rec.Clause.Title)-8)))
		}
	}

	if inserted := m.matter.Inserted(); len(inserted) > 0 {
		lines = append(lines, "", s.Muted.Render("Inserted: "+strings.Join(inserted, ", ")))
	}
	return s.Card.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPreviewView() string {
	top, bottom := m.styles.ScrollIndicators(!m.preview.AtTop(), !m.preview.AtBottom())
	return lipgloss.JoinVertical(lipgloss.Left, top, m.preview.View(), bottom)
}

func (m *Model) renderReviewView() string {
	s := m.styles
	snap := m.matter.Snapshot()

	var lines []string
	if snap.Upload == nil {
		lines = append(lines,
			s.Muted.Render("No contract uploaded."),
			s.Dim.Render("Press u to upload a PDF or DOCX for risk review."))
		return s.Container.Render(strings.Join(lines, "\n"))
	}

	lines = append(lines,
		s.Label.Render("File: ")+snap.Upload.Filename+s.Dim.Render("  "+snap.Upload.SizeKB()),
		"")

	if snap.Analysis == nil {
		if !m.analyzing {
			lines = append(lines, s.Dim.Render("Press a to run the analysis."))
		}
		return s.Container.Render(strings.Join(lines, "\n"))
	}
	return s.Container.Render(strings.Join(append(lines, m.renderAnalysis(*snap.Analysis)...), "\n"))
}

func (m *Model) renderAnalysis(a models.RiskAnalysis) []string {
	s := m.styles
	lines := []string{
		s.Risk(a.OverallRisk) + fmt.Sprintf("  score %d/100", a.Score),
		"",
		s.Label.Render("Categories"),
	}
	for _, c := range a.Categories {
		status := s.Success.Render(string(c.Status))
		switch c.Status {
		case models.CategoryWarning:
			status = s.Warning.Render(string(c.Status))
		case models.CategoryCritical:
			status = s.Error.Render(string(c.Status))
		}
		lines = append(lines, fmt.Sprintf("  %-28s %s %s", c.Name, status, s.Dim.Render(fmt.Sprintf("(%d)", c.Issues))))
	}

	lines = append(lines, "", s.Label.Render("Issues"))
	width := max(40, m.width-10)
	for i, issue := range a.Issues {
		lines = append(lines,
			fmt.Sprintf("  %d. %s  %s", i+1, issue.Title, s.Risk(issue.Severity)),
			s.Dim.Render("     "+truncate(issue.Description, width)),
			s.Muted.Render("     → "+truncate(issue.Recommendation, width)))
	}
	return lines
}

func (m *Model) renderPlaybookView() string {
	s := m.styles
	lib := m.service.Library()
	width := max(40, m.width-10)

	lines := []string{s.Subtitle.Render("Negotiation playbook")}
	for _, step := range lib.Playbook {
		marker := s.Dim.Render("○")
		switch step.Status {
		case models.StepComplete:
			marker = s.Success.Render("●")
		case models.StepInProgress:
			marker = s.Info.Render("◐")
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", marker, s.Label.Render(step.Title), s.Dim.Render(step.Owner+" • "+step.Due)))
		for _, g := range step.Guidance {
			lines = append(lines, s.Muted.Render("    - "+truncate(g, width)))
		}
	}

	lines = append(lines, "", s.Subtitle.Render("Fallback positions")+s.Dim.Render("  (c to copy)"))
	for _, p := range lib.Positions {
		lines = append(lines,
			s.Label.Render(p.Clause)+s.Dim.Render("  "+p.ChangeType),
			s.Muted.Render("    Counterparty: "+truncate(p.Counterparty, width-18)),
			s.Text.Render("    Firm: "+truncate(p.FirmPosition, width-10)))
	}
	return lipgloss.NewStyle().MaxHeight(m.bodyHeight()).Render(s.Container.Render(strings.Join(lines, "\n")))
}

func (m *Model) renderHelpModal() string {
	s := m.styles
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Keyboard shortcuts"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		s.FormHelp.Render(renderer.ReportFilename+" and drafts are saved to "+m.exportTo),
		s.FormHelp.Render("Press ? or Esc to close"),
	)
	return CenterModal(s.Modal.Render(content), m.width, m.height)
}
