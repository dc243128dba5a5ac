package models

import (
	"sort"
	"strings"
)

// Clause is a firm-standard clause from the library
type Clause struct {
	ID           string    `yaml:"id" json:"id"`
	Title        string    `yaml:"title" json:"title"`
	RiskLevel    RiskLevel `yaml:"riskLevel" json:"riskLevel"`
	StandardText string    `yaml:"standardText" json:"standardText"`
	FallbackText string    `yaml:"fallbackText" json:"fallbackText"`
	Triggers     []string  `yaml:"triggers" json:"triggers"`
}

// Heading is the block text a clause is inserted under
func (c Clause) Heading() string {
	return strings.ToUpper(c.Title)
}

// FilterValue returns the value used for filtering in lists
func (c Clause) FilterValue() string {
	return cleanString(c.Title + " " + strings.Join(c.Triggers, " "))
}

// Summary is the one-line description shown in pickers
func (c Clause) Summary() string {
	desc := c.RiskLevel.BadgeLabel()
	if len(c.Triggers) > 0 {
		desc += " • " + strings.Join(c.Triggers, ", ")
	}
	return truncate(cleanString(desc), 100)
}

// ClauseSet records which clauses were inserted into the active draft
type ClauseSet map[string]struct{}

// NewClauseSet builds a set from ids
func NewClauseSet(ids ...string) ClauseSet {
	s := make(ClauseSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership; a nil set is empty
func (s ClauseSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of s
func (s ClauseSet) Clone() ClauseSet {
	out := make(ClauseSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// With returns a copy of s including id
func (s ClauseSet) With(id string) ClauseSet {
	out := s.Clone()
	out[id] = struct{}{}
	return out
}

// IDs returns the members sorted
func (s ClauseSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// cleanString removes control characters that break list rendering
func cleanString(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case r >= 32 && r != 127:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// truncate shortens s to max runes, ending in "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
