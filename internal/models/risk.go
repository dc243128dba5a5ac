package models

import "fmt"

// RiskLevel grades clauses, issues and highlights
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// RiskLevels lists levels from most to least severe
var RiskLevels = []RiskLevel{RiskCritical, RiskHigh, RiskMedium, RiskLow}

// ParseRiskLevel validates a level name
func ParseRiskLevel(s string) (RiskLevel, error) {
	for _, l := range RiskLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown risk level %q", s)
}

// Valid reports whether l is one of the four levels
func (l RiskLevel) Valid() bool {
	_, err := ParseRiskLevel(string(l))
	return err == nil
}

// BadgeLabel is the display label used on risk badges
func (l RiskLevel) BadgeLabel() string {
	switch l {
	case RiskCritical:
		return "Critical Risk"
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium Risk"
	case RiskLow:
		return "Low Risk"
	default:
		return "Unknown Risk"
	}
}

// Rank orders levels, higher is more severe
func (l RiskLevel) Rank() int {
	switch l {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// HighlightSpan marks [Start, End) of a document's plain text with a risk level
type HighlightSpan struct {
	Start int       `json:"start" yaml:"start"`
	End   int       `json:"end" yaml:"end"`
	Level RiskLevel `json:"level" yaml:"level"`
}

// Validate checks the span against a text of length n
func (h HighlightSpan) Validate(n int) error {
	if !h.Level.Valid() {
		return fmt.Errorf("highlight has invalid level %q", h.Level)
	}
	if h.Start < 0 || h.End > n || h.Start >= h.End {
		return fmt.Errorf("highlight %d-%d out of range for %d bytes", h.Start, h.End, n)
	}
	return nil
}

// Overlaps reports whether the two spans share any offset
func (h HighlightSpan) Overlaps(o HighlightSpan) bool {
	return h.Start < o.End && o.Start < h.End
}

// CSSClass is the class list used when serializing the mark
func (h HighlightSpan) CSSClass() string {
	return "risk-highlight risk-" + string(h.Level)
}
