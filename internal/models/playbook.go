package models

import "strings"

// StepStatus tracks a playbook step
type StepStatus string

const (
	StepInProgress StepStatus = "in-progress"
	StepPending    StepStatus = "pending"
	StepUpcoming   StepStatus = "upcoming"
	StepComplete   StepStatus = "complete"
)

// PlaybookStep is one stage of the drafting playbook
type PlaybookStep struct {
	ID         string     `yaml:"id" json:"id"`
	Title      string     `yaml:"title" json:"title"`
	Owner      string     `yaml:"owner" json:"owner"`
	Status     StepStatus `yaml:"status" json:"status"`
	Due        string     `yaml:"due" json:"due"`
	Guidance   []string   `yaml:"guidance" json:"guidance"`
	Escalation string     `yaml:"escalation,omitempty" json:"escalation,omitempty"`
}

// NextStep picks the step to surface: the first in progress, otherwise the
// first pending or upcoming one, otherwise the first step.
func NextStep(steps []PlaybookStep) (PlaybookStep, bool) {
	if len(steps) == 0 {
		return PlaybookStep{}, false
	}
	for _, s := range steps {
		if s.Status == StepInProgress {
			return s, true
		}
	}
	for _, s := range steps {
		if s.Status == StepPending || s.Status == StepUpcoming {
			return s, true
		}
	}
	return steps[0], true
}

// RiskProfile is a negotiation posture
type RiskProfile struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

const profileSeparator = " · "

// Headline is the part of the label before the separator
func (p RiskProfile) Headline() string {
	head, _, _ := strings.Cut(p.Label, profileSeparator)
	return head
}

// Narrative is the part of the label after the separator, if any
func (p RiskProfile) Narrative() string {
	_, tail, _ := strings.Cut(p.Label, profileSeparator)
	return tail
}
