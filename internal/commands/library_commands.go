// Package commands/library_commands exposes the clause library, prebuilt drafts,
// the negotiation playbook and fallback positions.
//
// These commands are read-only except copy-position, which writes to the
// clipboard when one is available.
package commands

import (
	"context"
	"fmt"

	"github.com/dpshade/contract-desk/internal/models"
)

// ListClausesCommand lists the clause library
type ListClausesCommand struct {
	serviceCommand
}

func (c *ListClausesCommand) GetName() string { return "list-clauses" }

func (c *ListClausesCommand) GetDescription() string { return "List the clause library" }

func (c *ListClausesCommand) Execute(ctx context.Context) (*CommandResult, error) {
	clauses := c.service.Clauses()
	return &CommandResult{
		Success: true,
		Data:    clauses,
		Message: fmt.Sprintf("%d clauses", len(clauses)),
	}, nil
}

// SearchClausesCommand fuzzy-searches clause titles and triggers
type SearchClausesCommand struct {
	serviceCommand
	Query string
}

func (c *SearchClausesCommand) SetParameters(params map[string]any) error {
	if q, ok := params["query"].(string); ok {
		c.Query = q
	}
	return nil
}

func (c *SearchClausesCommand) GetName() string { return "search-clauses" }

func (c *SearchClausesCommand) GetDescription() string {
	return "Search clauses by title and trigger keywords"
}

func (c *SearchClausesCommand) Execute(ctx context.Context) (*CommandResult, error) {
	clauses := c.service.SearchClauses(c.Query)
	if clauses == nil {
		clauses = []models.Clause{}
	}
	return &CommandResult{
		Success: true,
		Data:    clauses,
		Message: fmt.Sprintf("Found %d clauses matching %q", len(clauses), c.Query),
	}, nil
}

// ListDraftsCommand lists the prebuilt drafts
type ListDraftsCommand struct {
	serviceCommand
}

func (c *ListDraftsCommand) GetName() string { return "list-drafts" }

func (c *ListDraftsCommand) GetDescription() string { return "List prebuilt agreements" }

func (c *ListDraftsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	return &CommandResult{Success: true, Data: c.service.Drafts()}, nil
}

// PlaybookView is the playbook command's payload
type PlaybookView struct {
	Steps         []models.PlaybookStep `json:"steps"`
	Next          *models.PlaybookStep  `json:"next,omitempty"`
	RiskProfiles  []models.RiskProfile  `json:"riskProfiles"`
	ContractTypes []models.ContractType `json:"contractTypes"`
}

// PlaybookCommand returns the negotiation playbook with its catalogs
type PlaybookCommand struct {
	serviceCommand
}

func (c *PlaybookCommand) GetName() string { return "playbook" }

func (c *PlaybookCommand) GetDescription() string {
	return "Show the negotiation playbook, risk profiles and contract types"
}

func (c *PlaybookCommand) Execute(ctx context.Context) (*CommandResult, error) {
	view := PlaybookView{
		Steps:         c.service.Playbook(),
		RiskProfiles:  c.service.RiskProfiles(),
		ContractTypes: c.service.ContractTypes(),
	}
	if step, ok := models.NextStep(view.Steps); ok {
		view.Next = &step
	}
	return &CommandResult{Success: true, Data: view}, nil
}

// ListPositionsCommand lists fallback negotiation positions
type ListPositionsCommand struct {
	serviceCommand
}

func (c *ListPositionsCommand) GetName() string { return "list-positions" }

func (c *ListPositionsCommand) GetDescription() string { return "List negotiation fallback positions" }

func (c *ListPositionsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	return &CommandResult{Success: true, Data: c.service.Positions()}, nil
}

// CopyPositionCommand copies a firm position to the clipboard
type CopyPositionCommand struct {
	serviceCommand
	PositionID string
}

func (c *CopyPositionCommand) SetParameters(params map[string]any) error {
	if id, ok := params["position_id"].(string); ok {
		c.PositionID = id
	}
	return nil
}

func (c *CopyPositionCommand) GetName() string { return "copy-position" }

func (c *CopyPositionCommand) GetDescription() string {
	return "Copy a firm negotiation position to the clipboard"
}

func (c *CopyPositionCommand) Execute(ctx context.Context) (*CommandResult, error) {
	result, err := c.service.CopyPosition(c.PositionID)
	if err != nil {
		return nil, err
	}
	return noticed(result, result.Notice), nil
}
