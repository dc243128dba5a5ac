package models

import "fmt"

// CategoryStatus is the per-category outcome of a risk analysis
type CategoryStatus string

const (
	CategoryPass     CategoryStatus = "pass"
	CategoryWarning  CategoryStatus = "warning"
	CategoryCritical CategoryStatus = "critical"
)

// RiskCategory summarises findings for one review category
type RiskCategory struct {
	Name   string         `yaml:"name" json:"name"`
	Status CategoryStatus `yaml:"status" json:"status"`
	Issues int            `yaml:"issues" json:"issues"`
}

// RiskIssue is a single finding with remediation advice
type RiskIssue struct {
	ID             string    `yaml:"id" json:"id"`
	Category       string    `yaml:"category" json:"category"`
	Severity       RiskLevel `yaml:"severity" json:"severity"`
	Title          string    `yaml:"title" json:"title"`
	Description    string    `yaml:"description" json:"description"`
	Recommendation string    `yaml:"recommendation" json:"recommendation"`
}

// RiskAnalysis is the result handed back by an analyzer
type RiskAnalysis struct {
	OverallRisk RiskLevel      `yaml:"overall_risk" json:"overallRisk"`
	Score       int            `yaml:"score" json:"score"`
	Categories  []RiskCategory `yaml:"categories" json:"categories"`
	Issues      []RiskIssue    `yaml:"issues" json:"issues"`
}

// Clone returns a deep copy
func (a RiskAnalysis) Clone() RiskAnalysis {
	out := a
	out.Categories = append([]RiskCategory(nil), a.Categories...)
	out.Issues = append([]RiskIssue(nil), a.Issues...)
	return out
}

// Validate checks score bounds and enumerations
func (a RiskAnalysis) Validate() error {
	if !a.OverallRisk.Valid() {
		return fmt.Errorf("invalid overall risk %q", a.OverallRisk)
	}
	if a.Score < 0 || a.Score > 100 {
		return fmt.Errorf("score %d outside 0-100", a.Score)
	}
	for _, c := range a.Categories {
		switch c.Status {
		case CategoryPass, CategoryWarning, CategoryCritical:
		default:
			return fmt.Errorf("category %q has invalid status %q", c.Name, c.Status)
		}
		if c.Issues < 0 {
			return fmt.Errorf("category %q has negative issue count", c.Name)
		}
	}
	for _, i := range a.Issues {
		if !i.Severity.Valid() {
			return fmt.Errorf("issue %q has invalid severity %q", i.ID, i.Severity)
		}
	}
	return nil
}

// IssuesBySeverity counts issues per level
func (a RiskAnalysis) IssuesBySeverity() map[RiskLevel]int {
	counts := make(map[RiskLevel]int, len(RiskLevels))
	for _, i := range a.Issues {
		counts[i.Severity]++
	}
	return counts
}
