// Package commands implements the unified command execution system for contract-desk.
//
// SYSTEM ARCHITECTURE ROLE:
// This module serves as the coordination layer between user interfaces (CLI, HTTP, TUI) and
// the matter service. It implements the Command Pattern so that drafting and review
// operations behave identically whichever interface invoked them.
//
// KEY RESPONSIBILITIES:
// - Define standardized command interface and execution patterns
// - Validate parameters with the centralized validation schemas
// - Convert loosely typed parameters into service calls
// - Standardize results, notices and guidance errors across interfaces
//
// INTEGRATION POINTS:
// - internal/api/server.go: API handlers use executor.Execute() for every endpoint
// - internal/ui/model.go: the TUI runs matter operations through the executor
// - internal/service: commands delegate through the ServiceAwareCommand interface
// - internal/validation/validator.go: CommandExecutor.validator validates parameters before execution
// - internal/errors/errors.go: command failures become ErrorInfo via AppError conversion
// - internal/commands/matter_commands.go: drafting and review commands
// - internal/commands/library_commands.go: clause, draft, playbook and position commands
// - internal/commands/utility_commands.go: health
//
// COMMAND FLOW:
// 1. Interface receives user input (CLI args, HTTP request, TUI interaction)
// 2. Interface converts input to command parameters map
// 3. CommandExecutor validates parameters against schema
// 4. Command instance is created and configured with validated parameters
// 5. Command executes business logic via the service
// 6. Results are formatted into standardized CommandResult
// 7. Interface converts CommandResult to appropriate display format
//
// USAGE PATTERNS:
// - Register commands: implement Command and add a factory in registerCommands()
// - Execute commands: CommandExecutor.Execute() with command name and parameters
// - Add validation: define a schema in the validation package and map it in getValidationSchema()
// - Guidance: a failed result whose Error.Category is "guidance" is a prompt to the user, not a fault
package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/service"
	"github.com/dpshade/contract-desk/internal/validation"
)

// CommandResult represents the result of executing a command
type CommandResult struct {
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Notice  string     `json:"notice,omitempty"` // success or info, when Message is a user notice
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo provides structured error information
type ErrorInfo struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	Category string `json:"category,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// AppError rebuilds the AppError an ErrorInfo was made from
func (e *ErrorInfo) AppError() *errors.AppError {
	appErr := errors.NewAppError(errors.ErrorCode(e.Code), e.Message)
	if e.Details != "" {
		appErr.WithDetails(e.Details)
	}
	return appErr
}

// Command represents a unified command interface
type Command interface {
	Execute(ctx context.Context) (*CommandResult, error)
	Validate() error
	GetName() string
	GetDescription() string
}

// ParameterizedCommand interface for commands that accept parameters
type ParameterizedCommand interface {
	SetParameters(params map[string]any) error
}

// ServiceAwareCommand interface for commands that need service access
type ServiceAwareCommand interface {
	SetService(svc *service.Service)
}

// CommandRegistry manages available commands
type CommandRegistry struct {
	commands map[string]func() Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]func() Command),
	}
}

// Register adds a command factory to the registry
func (r *CommandRegistry) Register(name string, factory func() Command) {
	r.commands[name] = factory
}

// Get retrieves a command factory by name
func (r *CommandRegistry) Get(name string) (func() Command, bool) {
	factory, exists := r.commands[name]
	return factory, exists
}

// List returns all available command names, sorted
func (r *CommandRegistry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommandExecutor provides a unified way to execute commands
type CommandExecutor struct {
	service   *service.Service
	registry  *CommandRegistry
	validator *validation.Validator
}

// NewCommandExecutor creates a new command executor
func NewCommandExecutor(svc *service.Service) *CommandExecutor {
	executor := &CommandExecutor{
		service:   svc,
		registry:  NewCommandRegistry(),
		validator: validation.NewValidator(),
	}
	executor.registerCommands()
	return executor
}

// Service returns the service commands run against
func (e *CommandExecutor) Service() *service.Service {
	return e.service
}

// Commands lists the registered command names
func (e *CommandExecutor) Commands() []string {
	return e.registry.List()
}

// Describe returns the description of a registered command
func (e *CommandExecutor) Describe(name string) (string, bool) {
	factory, ok := e.registry.Get(name)
	if !ok {
		return "", false
	}
	return factory().GetDescription(), true
}

// Execute runs a command by name with the given parameters. Failures are
// reported in the result; the error return is reserved for the caller's
// context ending before the command could run.
func (e *CommandExecutor) Execute(ctx context.Context, commandName string, params map[string]any) (*CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	factory, exists := e.registry.Get(commandName)
	if !exists {
		return failure(errors.CommandNotFoundError(commandName)), nil
	}

	if schema := e.getValidationSchema(commandName); schema != "" {
		if params == nil {
			params = make(map[string]any)
		}
		result := e.validator.Validate(schema, params)
		if !result.Valid {
			return failure(result.ToAppError()), nil
		}
		params = result.GetValidatedData()
	}

	cmd := factory()
	if parameterized, ok := cmd.(ParameterizedCommand); ok {
		if err := parameterized.SetParameters(params); err != nil {
			return failure(errors.ValidationError(err.Error())), nil
		}
	}
	if err := cmd.Validate(); err != nil {
		return failure(errors.ValidationError(err.Error())), nil
	}

	result, err := cmd.Execute(ctx)
	if err != nil {
		return failure(err), nil
	}
	return result, nil
}

// failure converts any error into a failed CommandResult
func failure(err error) *CommandResult {
	appErr := errors.Wrap(err, errors.ErrCodeCommandFailed, err.Error())
	if errors.IsAppError(err) {
		appErr = errors.GetAppError(err)
	}
	return &CommandResult{
		Success: false,
		Error: &ErrorInfo{
			Code:     string(appErr.Code),
			Message:  appErr.Message,
			Details:  appErr.Details,
			Category: string(appErr.Category),
			Severity: string(appErr.Severity),
		},
	}
}

// noticed builds a successful result that carries a user notice
func noticed(data any, notice service.Notice) *CommandResult {
	return &CommandResult{
		Success: true,
		Data:    data,
		Message: notice.Message,
		Notice:  string(notice.Kind),
	}
}

// getValidationSchema returns the validation schema name for a command
func (e *CommandExecutor) getValidationSchema(commandName string) string {
	switch commandName {
	case "get-matter", "delete-matter", "generate", "readiness", "analyze", "report":
		return "matter_ref"
	case "create-matter":
		return "create_matter"
	case "set-fields":
		return "set_fields"
	case "insert-clause":
		return "insert_clause"
	case "load-draft":
		return "load_draft"
	case "replace-document":
		return "replace_document"
	case "export":
		return "export"
	case "upload":
		return "upload"
	case "copy-position":
		return "copy_position"
	case "search-clauses":
		return "search_clauses"
	default:
		return "" // No validation schema defined
	}
}

// serviceCommand carries the service for commands that need it
type serviceCommand struct {
	service *service.Service
}

func (c *serviceCommand) SetService(svc *service.Service) {
	c.service = svc
}

func (c *serviceCommand) Validate() error {
	if c.service == nil {
		return fmt.Errorf("service not set")
	}
	return nil
}

// matterCommand resolves the matter_id parameter
type matterCommand struct {
	serviceCommand
	MatterID string
}

func (c *matterCommand) SetParameters(params map[string]any) error {
	if id, ok := params["matter_id"].(string); ok {
		c.MatterID = id
	}
	return nil
}

func (c *matterCommand) matter() (*service.Matter, error) {
	return c.service.GetMatter(c.MatterID)
}

// registerCommands registers all available commands
func (e *CommandExecutor) registerCommands() {
	factories := map[string]func() Command{
		// Matter lifecycle
		"create-matter": func() Command { return &CreateMatterCommand{} },
		"get-matter":    func() Command { return &GetMatterCommand{} },
		"delete-matter": func() Command { return &DeleteMatterCommand{} },

		// Drafting
		"set-fields":       func() Command { return &SetFieldsCommand{} },
		"generate":         func() Command { return &GenerateCommand{} },
		"insert-clause":    func() Command { return &InsertClauseCommand{} },
		"load-draft":       func() Command { return &LoadDraftCommand{} },
		"replace-document": func() Command { return &ReplaceDocumentCommand{} },
		"readiness":        func() Command { return &ReadinessCommand{} },
		"export":           func() Command { return &ExportCommand{} },

		// Review
		"upload":        func() Command { return &UploadCommand{} },
		"analyze":       func() Command { return &AnalyzeCommand{} },
		"report":        func() Command { return &ReportCommand{} },
		"copy-position": func() Command { return &CopyPositionCommand{} },

		// Library
		"list-clauses":   func() Command { return &ListClausesCommand{} },
		"search-clauses": func() Command { return &SearchClausesCommand{} },
		"list-drafts":    func() Command { return &ListDraftsCommand{} },
		"playbook":       func() Command { return &PlaybookCommand{} },
		"list-positions": func() Command { return &ListPositionsCommand{} },

		// Utility
		"health": func() Command { return &HealthCheckCommand{} },
	}

	for name, factory := range factories {
		factory := factory
		e.registry.Register(name, func() Command {
			cmd := factory()
			if serviceAware, ok := cmd.(ServiceAwareCommand); ok {
				serviceAware.SetService(e.service)
			}
			return cmd
		})
	}
}
