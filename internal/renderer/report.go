package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/dpshade/contract-desk/internal/models"
)

// RiskReport serializes an analysis into the plain-text report layout.
// Output is byte-for-byte reproducible for the same analysis and date.
func RiskReport(a models.RiskAnalysis, generated time.Time) string {
	categories := make([]string, len(a.Categories))
	for i, c := range a.Categories {
		noun := "issues"
		if c.Issues == 1 {
			noun = "issue"
		}
		categories[i] = fmt.Sprintf("- %s: %s (%d %s)", c.Name, strings.ToUpper(string(c.Status)), c.Issues, noun)
	}

	issues := make([]string, len(a.Issues))
	for i, issue := range a.Issues {
		issues[i] = fmt.Sprintf("\n%d. %s\n   Severity: %s\n   Category: %s\n\n   Description: %s\n\n   Recommendation: %s\n",
			i+1,
			issue.Title,
			strings.ToUpper(string(issue.Severity)),
			issue.Category,
			issue.Description,
			issue.Recommendation,
		)
	}

	var b strings.Builder
	b.WriteString("CONTRACT RISK ANALYSIS REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", generated.Format(DateLayout))
	fmt.Fprintf(&b, "OVERALL RISK: %s\n", strings.ToUpper(string(a.OverallRisk)))
	fmt.Fprintf(&b, "RISK SCORE: %d/100\n\n", a.Score)
	b.WriteString("CATEGORY ANALYSIS:\n")
	b.WriteString(strings.Join(categories, "\n"))
	b.WriteString("\n\nDETAILED ISSUES:\n")
	b.WriteString(strings.Join(issues, "\n"))
	return b.String()
}
