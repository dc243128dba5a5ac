// Package commands/utility_commands implements health and introspection commands.
//
// INTEGRATION POINTS:
// - internal/api/server.go: /api/v1/health runs HealthCheckCommand
// - internal/cli: `contract-desk serve` logs the same report at startup
package commands

import (
	"context"
	"time"
)

// LibraryStats counts what the loaded library offers
type LibraryStats struct {
	Clauses       int `json:"clauses"`
	Templates     int `json:"templates"`
	Drafts        int `json:"drafts"`
	Positions     int `json:"positions"`
	PlaybookSteps int `json:"playbookSteps"`
}

// HealthReport is the health command's payload
type HealthReport struct {
	Status    string       `json:"status"`
	Service   string       `json:"service"`
	Library   LibraryStats `json:"library"`
	Matters   int          `json:"matters"`
	Timestamp time.Time    `json:"timestamp"`
	Problems  string       `json:"problems,omitempty"`
}

// HealthCheckCommand performs a health check
type HealthCheckCommand struct {
	serviceCommand
}

func (c *HealthCheckCommand) GetName() string { return "health" }

func (c *HealthCheckCommand) GetDescription() string { return "Check system health" }

func (c *HealthCheckCommand) Execute(ctx context.Context) (*CommandResult, error) {
	lib := c.service.Library()
	report := HealthReport{
		Status:  "healthy",
		Service: "contract-desk",
		Library: LibraryStats{
			Clauses:       len(lib.Clauses),
			Templates:     len(lib.Templates),
			Drafts:        len(lib.Drafts),
			Positions:     len(lib.Positions),
			PlaybookSteps: len(lib.Playbook),
		},
		Matters:   len(c.service.ListMatters()),
		Timestamp: c.service.Now(),
	}

	// a library that fails validation still serves, but drafting may misbehave
	if err := lib.Validate(); err != nil {
		report.Status = "degraded"
		report.Problems = err.Error()
	}

	return &CommandResult{Success: true, Data: report, Message: "System is " + report.Status}, nil
}
