// Package commands/matter_commands implements the drafting and review commands.
//
// COMMAND IMPLEMENTATIONS:
// - CreateMatterCommand, GetMatterCommand, DeleteMatterCommand: matter lifecycle
// - SetFieldsCommand: form values
// - GenerateCommand, InsertClauseCommand, LoadDraftCommand, ReplaceDocumentCommand: the draft
// - ReadinessCommand: guardrails, hero and clause recommendations
// - ExportCommand: text, HTML, Markdown or JSON download
// - UploadCommand, AnalyzeCommand, ReportCommand: the review flow
//
// Commands that can be superseded (generate, analyze) honour ctx and report
// STALE_RESULT guidance when a newer request won.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dpshade/contract-desk/internal/library"
	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/renderer"
	"github.com/dpshade/contract-desk/internal/service"
	"github.com/dpshade/contract-desk/internal/validation"
)

// fieldValues converts a validated "fields" object into sanitized strings
func fieldValues(params map[string]any) map[string]string {
	raw, ok := params["fields"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = validation.SanitizeString(s)
		}
	}
	return out
}

// CreateMatterCommand starts a matter, optionally seeded with fields or a prebuilt draft
type CreateMatterCommand struct {
	serviceCommand
	Fields  map[string]string
	DraftID string
}

func (c *CreateMatterCommand) SetParameters(params map[string]any) error {
	c.Fields = fieldValues(params)
	if id, ok := params["draft_id"].(string); ok {
		c.DraftID = id
	}
	return nil
}

func (c *CreateMatterCommand) GetName() string { return "create-matter" }

func (c *CreateMatterCommand) GetDescription() string {
	return "Start a new matter, optionally with field values or a prebuilt draft"
}

func (c *CreateMatterCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m := c.service.NewMatter()
	notice := service.Notice{Kind: service.NoticeSuccess, Message: "Matter created."}

	// explicit fields win over the draft's form defaults
	if c.DraftID != "" {
		n, err := m.LoadDraft(c.DraftID)
		if err != nil {
			_ = c.service.DeleteMatter(m.ID())
			return nil, err
		}
		notice = n
	}
	if len(c.Fields) > 0 {
		if err := m.SetFields(c.Fields); err != nil {
			_ = c.service.DeleteMatter(m.ID())
			return nil, err
		}
	}
	return noticed(m.Snapshot(), notice), nil
}

// GetMatterCommand returns a matter snapshot
type GetMatterCommand struct {
	matterCommand
}

func (c *GetMatterCommand) GetName() string { return "get-matter" }

func (c *GetMatterCommand) GetDescription() string { return "Show a matter's fields, draft and review state" }

func (c *GetMatterCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	return &CommandResult{Success: true, Data: m.Snapshot()}, nil
}

// DeleteMatterCommand discards a matter
type DeleteMatterCommand struct {
	matterCommand
}

func (c *DeleteMatterCommand) GetName() string { return "delete-matter" }

func (c *DeleteMatterCommand) GetDescription() string { return "Discard a matter and any work in flight" }

func (c *DeleteMatterCommand) Execute(ctx context.Context) (*CommandResult, error) {
	if err := c.service.DeleteMatter(c.MatterID); err != nil {
		return nil, err
	}
	return &CommandResult{Success: true, Message: "Matter deleted."}, nil
}

// SetFieldsCommand updates form values
type SetFieldsCommand struct {
	matterCommand
	Fields map[string]string
}

func (c *SetFieldsCommand) SetParameters(params map[string]any) error {
	_ = c.matterCommand.SetParameters(params)
	c.Fields = fieldValues(params)
	return nil
}

func (c *SetFieldsCommand) GetName() string { return "set-fields" }

func (c *SetFieldsCommand) GetDescription() string { return "Update matter form values" }

func (c *SetFieldsCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	if err := m.SetFields(c.Fields); err != nil {
		return nil, err
	}
	return &CommandResult{Success: true, Data: m.Fields()}, nil
}

// GenerateCommand fills the template for the matter's contract type
type GenerateCommand struct {
	matterCommand
}

func (c *GenerateCommand) GetName() string { return "generate" }

func (c *GenerateCommand) GetDescription() string {
	return "Generate the base draft from the contract type's template"
}

func (c *GenerateCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	notice, err := m.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return noticed(m.Document(), notice), nil
}

// InsertClauseCommand appends a library clause to the draft
type InsertClauseCommand struct {
	matterCommand
	ClauseID string
}

func (c *InsertClauseCommand) SetParameters(params map[string]any) error {
	_ = c.matterCommand.SetParameters(params)
	if id, ok := params["clause_id"].(string); ok {
		c.ClauseID = id
	}
	return nil
}

func (c *InsertClauseCommand) GetName() string { return "insert-clause" }

func (c *InsertClauseCommand) GetDescription() string { return "Insert a library clause into the draft" }

func (c *InsertClauseCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	notice, err := m.InsertClause(c.ClauseID)
	if err != nil {
		return nil, err
	}
	return noticed(m.Snapshot(), notice), nil
}

// LoadDraftCommand replaces the draft with a prebuilt agreement
type LoadDraftCommand struct {
	matterCommand
	DraftID string
}

func (c *LoadDraftCommand) SetParameters(params map[string]any) error {
	_ = c.matterCommand.SetParameters(params)
	if id, ok := params["draft_id"].(string); ok {
		c.DraftID = id
	}
	return nil
}

func (c *LoadDraftCommand) GetName() string { return "load-draft" }

func (c *LoadDraftCommand) GetDescription() string {
	return "Load a prebuilt draft and merge its form defaults"
}

func (c *LoadDraftCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	notice, err := m.LoadDraft(c.DraftID)
	if err != nil {
		return nil, err
	}
	return noticed(m.Snapshot(), notice), nil
}

// ReplaceDocumentCommand stores an edited HTML document
type ReplaceDocumentCommand struct {
	matterCommand
	HTML string
}

func (c *ReplaceDocumentCommand) SetParameters(params map[string]any) error {
	_ = c.matterCommand.SetParameters(params)
	if html, ok := params["html"].(string); ok {
		c.HTML = html
	}
	return nil
}

func (c *ReplaceDocumentCommand) GetName() string { return "replace-document" }

func (c *ReplaceDocumentCommand) GetDescription() string {
	return "Replace the draft with edited HTML, keeping risk highlights"
}

func (c *ReplaceDocumentCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	if err := m.ReplaceHTML(strings.NewReader(c.HTML)); err != nil {
		return nil, err
	}
	return &CommandResult{Success: true, Data: m.Document(), Message: "Draft updated."}, nil
}

// ReadinessReport is the readiness command's payload
type ReadinessReport struct {
	Readiness       models.ReadinessResult   `json:"readiness"`
	Hero            service.Hero             `json:"hero"`
	Recommendations []library.Recommendation `json:"recommendations"`
}

// ReadinessCommand evaluates the guardrails for a matter
type ReadinessCommand struct {
	matterCommand
}

func (c *ReadinessCommand) GetName() string { return "readiness" }

func (c *ReadinessCommand) GetDescription() string {
	return "Evaluate guardrails and suggest clauses for the matter"
}

func (c *ReadinessCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	hero := m.Hero()
	return &CommandResult{
		Success: true,
		Data: ReadinessReport{
			Readiness:       hero.Readiness,
			Hero:            hero,
			Recommendations: m.Recommend(),
		},
		Message: hero.Caption,
	}, nil
}

// ExportCommand renders the draft for download
type ExportCommand struct {
	matterCommand
	Format renderer.Format
}

func (c *ExportCommand) SetParameters(params map[string]any) error {
	_ = c.matterCommand.SetParameters(params)
	name, _ := params["format"].(string)
	format, err := renderer.ParseFormat(name)
	if err != nil {
		return err
	}
	c.Format = format
	return nil
}

func (c *ExportCommand) GetName() string { return "export" }

func (c *ExportCommand) GetDescription() string {
	return "Export the draft as text, HTML, Markdown or JSON"
}

func (c *ExportCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	export, err := m.Export(c.Format)
	if err != nil {
		return nil, err
	}
	return noticed(export, export.Notice), nil
}

// UploadCommand records the contract to review
type UploadCommand struct {
	matterCommand
	Upload models.Upload
}

func (c *UploadCommand) SetParameters(params map[string]any) error {
	_ = c.matterCommand.SetParameters(params)
	c.Upload.Filename, _ = params["filename"].(string)
	if size, ok := params["size_bytes"].(int); ok {
		c.Upload.SizeBytes = int64(size)
	}
	c.Upload.MimeType, _ = params["mime_type"].(string)
	// octet-stream is what browsers send when they do not know the type
	if c.Upload.MimeType == "" || c.Upload.MimeType == "application/octet-stream" {
		c.Upload.MimeType = models.MimeTypeForPath(c.Upload.Filename)
	}
	return nil
}

func (c *UploadCommand) GetName() string { return "upload" }

func (c *UploadCommand) GetDescription() string { return "Attach a PDF or DOCX contract for review" }

func (c *UploadCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	if err := m.Upload(c.Upload); err != nil {
		return nil, err
	}
	return &CommandResult{
		Success: true,
		Data:    c.Upload,
		Message: fmt.Sprintf("%s (%s) ready for analysis.", c.Upload.Filename, c.Upload.SizeKB()),
	}, nil
}

// AnalysisSummary is the analyze command's payload
type AnalysisSummary struct {
	Analysis   models.RiskAnalysis      `json:"analysis"`
	BySeverity map[models.RiskLevel]int `json:"bySeverity"`
	Severities []models.RiskLevel       `json:"severities"`
}

// AnalyzeCommand runs the risk analysis on the uploaded contract
type AnalyzeCommand struct {
	matterCommand
}

func (c *AnalyzeCommand) GetName() string { return "analyze" }

func (c *AnalyzeCommand) GetDescription() string { return "Analyze the uploaded contract for risk" }

func (c *AnalyzeCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	result, notice, err := m.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	bySeverity := result.IssuesBySeverity()
	severities := make([]models.RiskLevel, 0, len(bySeverity))
	for level := range bySeverity {
		severities = append(severities, level)
	}
	sort.Slice(severities, func(i, j int) bool { return severities[i].Rank() > severities[j].Rank() })

	return noticed(AnalysisSummary{
		Analysis:   result,
		BySeverity: bySeverity,
		Severities: severities,
	}, notice), nil
}

// ReportCommand renders the plain-text risk report
type ReportCommand struct {
	matterCommand
}

func (c *ReportCommand) GetName() string { return "report" }

func (c *ReportCommand) GetDescription() string { return "Download the risk analysis report" }

func (c *ReportCommand) Execute(ctx context.Context) (*CommandResult, error) {
	m, err := c.matter()
	if err != nil {
		return nil, err
	}
	report, err := m.Report()
	if err != nil {
		return nil, err
	}
	return noticed(report, report.Notice), nil
}
