package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dpshade/contract-desk/internal/commands"
	"github.com/dpshade/contract-desk/internal/models"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// noticeStyle picks the color for a notice kind
func noticeStyle(kind string) lipgloss.Style {
	if kind == "info" {
		return infoStyle
	}
	return successStyle
}

func guardStyle(status models.GuardStatus) lipgloss.Style {
	switch status {
	case models.GuardPass:
		return successStyle
	case models.GuardWarning:
		return warningStyle
	default:
		return actionStyle
	}
}

func riskStyle(level models.RiskLevel) lipgloss.Style {
	switch level {
	case models.RiskCritical, models.RiskHigh:
		return actionStyle
	case models.RiskMedium:
		return warningStyle
	default:
		return successStyle
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// padRight pads by display width so styled cells still line up
func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func printDrafts(w io.Writer, drafts []models.PrebuiltDraft) {
	idWidth := len("ID")
	for _, d := range drafts {
		idWidth = max(idWidth, len(d.ID))
	}
	fmt.Fprintln(w, headerStyle.Render(padRight("ID", idWidth)+"  READY  NAME"))
	for _, d := range drafts {
		fmt.Fprintf(w, "%s  %4d%%  %s\n", padRight(d.ID, idWidth), d.Readiness, d.Name)
		if d.Summary != "" {
			fmt.Fprintf(w, "%s  %s\n", strings.Repeat(" ", idWidth+7), mutedStyle.Render(d.Summary))
		}
	}
}

func printClauseTable(w io.Writer, clauses []models.Clause) {
	idWidth := len("ID")
	for _, cl := range clauses {
		idWidth = max(idWidth, len(cl.ID))
	}
	fmt.Fprintln(w, headerStyle.Render(padRight("ID", idWidth)+"  "+padRight("RISK", 14)+"  TITLE"))
	for _, cl := range clauses {
		badge := riskStyle(cl.RiskLevel).Render(cl.RiskLevel.BadgeLabel())
		fmt.Fprintf(w, "%s  %s  %s\n", padRight(cl.ID, idWidth), padRight(badge, 14), cl.Title)
	}
}

func printClause(w io.Writer, cl models.Clause) {
	fmt.Fprintln(w, headerStyle.Render(cl.Title))
	fmt.Fprintf(w, "%s  %s\n\n", riskStyle(cl.RiskLevel).Render(cl.RiskLevel.BadgeLabel()), mutedStyle.Render(cl.ID))
	fmt.Fprintln(w, headerStyle.Render("Standard"))
	fmt.Fprintln(w, cl.StandardText)
	if cl.FallbackText != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Fallback"))
		fmt.Fprintln(w, cl.FallbackText)
	}
	if len(cl.Triggers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, mutedStyle.Render("Triggers: "+strings.Join(cl.Triggers, "; ")))
	}
}

func printReadiness(w io.Writer, report commands.ReadinessReport) {
	hero := report.Hero
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s  %d%% ready", hero.ContractType, report.Readiness.Percentage)))
	fmt.Fprintln(w, mutedStyle.Render(hero.Caption))
	fmt.Fprintln(w)

	labelWidth := 0
	for _, check := range report.Readiness.Checks {
		labelWidth = max(labelWidth, len(check.Label))
	}
	for _, check := range report.Readiness.Checks {
		status := guardStyle(check.Status).Render(check.Status.Label())
		fmt.Fprintf(w, "%s  %s  %s\n", padRight(check.Label, labelWidth), padRight(status, 12), mutedStyle.Render(check.Detail))
	}

	fmt.Fprintln(w)
	if hero.RiskHeadline != "" {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Risk posture:"), hero.RiskHeadline)
		if hero.RiskNarrative != "" {
			fmt.Fprintln(w, mutedStyle.Render(hero.RiskNarrative))
		}
	}
	if hero.Milestone != "" {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Next milestone:"), hero.Milestone)
		if hero.MilestoneCaption != "" {
			fmt.Fprintln(w, mutedStyle.Render(hero.MilestoneCaption))
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Recommended clauses"))
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "  %s  %s\n", padRight(rec.Clause.ID, 18), mutedStyle.Render(rec.Trigger))
		}
	}
}

func printPositions(w io.Writer, positions []models.NegotiationPosition) {
	for i, p := range positions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s\n", headerStyle.Render(p.Clause), mutedStyle.Render(p.ID+" · "+p.ChangeType))
		fmt.Fprintf(w, "  Baseline:     %s\n", p.Baseline)
		fmt.Fprintf(w, "  Counterparty: %s\n", p.Counterparty)
		fmt.Fprintf(w, "  Firm:         %s\n", p.FirmPosition)
		if p.Note != "" {
			fmt.Fprintln(w, "  "+mutedStyle.Render(p.Note))
		}
	}
}

func printAnalysis(w io.Writer, summary commands.AnalysisSummary) {
	a := summary.Analysis
	fmt.Fprintf(w, "%s  score %d/100\n", riskStyle(a.OverallRisk).Render(a.OverallRisk.BadgeLabel()), a.Score)
	for _, level := range summary.Severities {
		fmt.Fprintf(w, "  %-8s %d\n", string(level), summary.BySeverity[level])
	}
}
