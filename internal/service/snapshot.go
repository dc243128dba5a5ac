package service

import (
	"time"

	"github.com/dpshade/contract-desk/internal/models"
)

// Snapshot is a consistent read of a matter for display and the API
type Snapshot struct {
	ID         string                 `json:"id"`
	Fields     models.FieldMap        `json:"fields"`
	Document   models.Document        `json:"document"`
	Inserted   []string               `json:"insertedClauses"`
	Upload     *models.Upload         `json:"upload,omitempty"`
	Analysis   *models.RiskAnalysis   `json:"analysis,omitempty"`
	Readiness  models.ReadinessResult `json:"readiness"`
	Generating bool                   `json:"generating"`
	Analyzing  bool                   `json:"analyzing"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// Snapshot copies the matter state and evaluates readiness over it
func (m *Matter) Snapshot() Snapshot {
	m.mu.Lock()
	snap := Snapshot{
		ID:         m.id,
		Fields:     m.fields,
		Document:   m.document.Clone(),
		Inserted:   m.inserted.IDs(),
		Generating: m.generating != 0,
		Analyzing:  m.analyzing != 0,
		CreatedAt:  m.created,
		UpdatedAt:  m.updated,
	}
	if m.upload != nil {
		u := *m.upload
		snap.Upload = &u
	}
	if m.analysis != nil {
		a := m.analysis.Clone()
		snap.Analysis = &a
	}
	state := models.MatterState{Fields: m.fields, Inserted: m.inserted.Clone()}
	m.mu.Unlock()

	snap.Readiness = m.svc.rules.Evaluate(state)
	return snap
}

// Hero fallbacks when the library has no matching profile or playbook
const (
	DefaultRiskHeadline  = "Standard"
	DefaultRiskNarrative = "Follow playbook guardrails"
	EmptyPlaybookTitle   = "Playbook ready"
	EmptyPlaybookCaption = "All steps queued"
)

// Hero is the readiness summary shown above the draft
type Hero struct {
	Readiness        models.ReadinessResult `json:"readiness"`
	Caption          string                 `json:"caption"`
	ContractType     string                 `json:"contractType"`
	RiskHeadline     string                 `json:"riskHeadline"`
	RiskNarrative    string                 `json:"riskNarrative"`
	Milestone        string                 `json:"milestone"`
	MilestoneCaption string                 `json:"milestoneCaption"`
}

// Hero combines readiness, the selected risk posture and the next playbook step
func (m *Matter) Hero() Hero {
	lib := m.svc.Library()
	readiness := m.Readiness()
	fields := m.Fields()

	hero := Hero{
		Readiness:        readiness,
		Caption:          readiness.Summary(),
		ContractType:     lib.ContractTypeLabel(fields.ContractType),
		RiskHeadline:     DefaultRiskHeadline,
		RiskNarrative:    DefaultRiskNarrative,
		Milestone:        EmptyPlaybookTitle,
		MilestoneCaption: EmptyPlaybookCaption,
	}

	profile, ok := lib.Profile(fields.RiskProfile)
	if !ok && len(lib.RiskProfiles) > 0 {
		profile, ok = lib.RiskProfiles[0], true
	}
	if ok {
		if h := profile.Headline(); h != "" {
			hero.RiskHeadline = h
		}
		if n := profile.Narrative(); n != "" {
			hero.RiskNarrative = n
		}
	}

	if step, ok := models.NextStep(lib.Playbook); ok {
		hero.Milestone = step.Title
		hero.MilestoneCaption = step.Owner + " • " + step.Due
	}
	return hero
}
