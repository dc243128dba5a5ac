package library

import (
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/contract-desk/internal/models"
)

// Search result kinds
const (
	KindClause = "clause"
	KindDraft  = "draft"
)

// SearchHit is one fuzzy match across clauses and drafts
type SearchHit struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Score  int    `json:"score"`
}

// SearchClauses fuzzy-matches query against clause titles and triggers.
// An empty query returns every clause in library order.
func (l *Library) SearchClauses(query string) []models.Clause {
	if strings.TrimSpace(query) == "" {
		return append([]models.Clause(nil), l.Clauses...)
	}

	searchStrings := make([]string, len(l.Clauses))
	for i, c := range l.Clauses {
		searchStrings[i] = c.FilterValue()
	}

	matches := fuzzy.Find(query, searchStrings)
	results := make([]models.Clause, 0, len(matches))
	for _, match := range matches {
		results = append(results, l.Clauses[match.Index])
	}
	return results
}

// SearchDrafts fuzzy-matches query against draft names and industries
func (l *Library) SearchDrafts(query string) []models.PrebuiltDraft {
	if strings.TrimSpace(query) == "" {
		return append([]models.PrebuiltDraft(nil), l.Drafts...)
	}

	searchStrings := make([]string, len(l.Drafts))
	for i, d := range l.Drafts {
		searchStrings[i] = d.FilterValue()
	}

	matches := fuzzy.Find(query, searchStrings)
	results := make([]models.PrebuiltDraft, 0, len(matches))
	for _, match := range matches {
		results = append(results, l.Drafts[match.Index])
	}
	return results
}

// Search matches query across clauses and drafts, best score first
func (l *Library) Search(query string) []SearchHit {
	var hits []SearchHit
	var searchStrings []string
	for _, c := range l.Clauses {
		hits = append(hits, SearchHit{Kind: KindClause, ID: c.ID, Title: c.Title, Detail: c.Summary()})
		searchStrings = append(searchStrings, c.FilterValue())
	}
	for _, d := range l.Drafts {
		hits = append(hits, SearchHit{Kind: KindDraft, ID: d.ID, Title: d.Name, Detail: d.Description()})
		searchStrings = append(searchStrings, d.FilterValue())
	}

	if strings.TrimSpace(query) == "" {
		return hits
	}

	matches := fuzzy.Find(query, searchStrings)
	results := make([]SearchHit, 0, len(matches))
	for _, match := range matches {
		hit := hits[match.Index]
		hit.Score = match.Score
		results = append(results, hit)
	}
	return results
}

// Recommendation suggests a clause because one of its triggers matches the matter
type Recommendation struct {
	Clause  models.Clause `json:"clause"`
	Trigger string        `json:"trigger"`
	Keyword string        `json:"keyword"`
}

// minKeywordLength drops short words such as "data" that match everything
const minKeywordLength = 5

var genericKeywords = map[string]bool{
	"service":  true,
	"services": true,
	"request":  true,
}

// Recommend lists clauses whose triggers match the matter's industry, business
// purpose or negotiation focus. Clauses in skip are left out.
func (l *Library) Recommend(fields models.FieldMap, skip models.ClauseSet) []Recommendation {
	words := keywords(strings.Join([]string{fields.Industry, fields.BusinessPurpose, fields.NegotiationFocus}, " "))
	if len(words) == 0 {
		return nil
	}

	var out []Recommendation
	for _, c := range l.Clauses {
		if skip.Has(c.ID) {
			continue
		}
		if trigger, keyword, ok := matchTriggers(c.Triggers, words); ok {
			out = append(out, Recommendation{Clause: c, Trigger: trigger, Keyword: keyword})
		}
	}
	return out
}

func matchTriggers(triggers, words []string) (string, string, bool) {
	for _, trigger := range triggers {
		for _, kw := range keywords(trigger) {
			for _, match := range fuzzy.Find(kw, words) {
				// A subsequence hit only counts when the word is the keyword or
				// a close inflection of it.
				if len(match.Str) <= len(kw)+3 && strings.HasPrefix(match.Str, kw[:minKeywordLength-1]) {
					return trigger, kw, true
				}
			}
		}
	}
	return "", "", false
}

func keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	out := fields[:0]
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if len(f) < minKeywordLength || genericKeywords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
