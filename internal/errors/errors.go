// Package errors provides unified error handling across contract-desk.
//
// SYSTEM ARCHITECTURE ROLE:
// This module is the foundation for error handling across every interface (CLI, HTTP, TUI).
// It standardizes error representation, categorization, and handling patterns throughout the application.
//
// KEY RESPONSIBILITIES:
// - Define standardized error codes and categories for consistent error identification
// - Provide structured error types (AppError) with severity levels and context
// - Carry user guidance (missing draft, missing upload, unsupported file) as non-fatal AppErrors
// - Enable interface-specific error formatting while keeping one core error shape
//
// INTEGRATION POINTS:
// - internal/service/matter.go: matter operations return guidance AppErrors
// - internal/commands/types.go: CommandExecutor converts errors to the ErrorInfo format
// - internal/api/server.go: HTTPErrorHandler maps AppErrors to HTTP status codes and JSON
// - internal/cli/cli.go: CLIErrorHandler formats AppErrors for terminal display
// - internal/ui/model.go: TUIErrorHandler styles status-bar messages
// - internal/validation/validator.go: ValidationResult.ToAppError() converts validation failures
//
// USAGE PATTERNS:
// - Create errors: constructor functions like GuidanceError(), NotFoundError()
// - Wrap errors: Wrap() adds a code and message to an infrastructure error
// - Handle errors: the handler specific to the interface (CLI, HTTP, TUI)
// - Check types: IsAppError(), GetAppError() and IsGuidance()
//
// FUTURE DEVELOPMENT:
// - New error codes go in the const block with a categorizeError entry
// - HTTP status mapping lives in handlers.go
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Guidance: the user must do something first. Never fatal.
	ErrCodeMissingField         ErrorCode = "MISSING_FIELD"
	ErrCodeNoDocument           ErrorCode = "NO_DOCUMENT"
	ErrCodeNoUpload             ErrorCode = "NO_UPLOAD"
	ErrCodeNoAnalysis           ErrorCode = "NO_ANALYSIS"
	ErrCodeUnsupportedFile      ErrorCode = "UNSUPPORTED_FILE"
	ErrCodeClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE"
	ErrCodeStaleResult          ErrorCode = "STALE_RESULT"

	// Service errors
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeCancelled          ErrorCode = "CANCELLED"
	ErrCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotImplemented     ErrorCode = "NOT_IMPLEMENTED"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Library and file errors
	ErrCodeLibraryFailure ErrorCode = "LIBRARY_FAILURE"
	ErrCodeFileNotFound   ErrorCode = "FILE_NOT_FOUND"
	ErrCodeExportFailure  ErrorCode = "EXPORT_FAILURE"

	// Command errors
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"
	ErrCodeInvalidCommand  ErrorCode = "INVALID_COMMAND"
)

// Guidance messages shown to the user verbatim
const (
	MsgMissingParties       = "Please populate the matter parties before generating a draft."
	MsgNoDocumentForClause  = "Generate the base draft before inserting clauses."
	MsgNoDocumentForExport  = "Generate the contract before downloading."
	MsgNoUpload             = "Please upload a contract first."
	MsgNoAnalysis           = "Run the analysis before downloading the report."
	MsgUnsupportedFile      = "Upload a PDF or DOCX contract."
	MsgClipboardUnavailable = "Unable to copy the position. Please copy manually."
	MsgStaleResult          = "A newer request superseded this one."
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGuidance   ErrorCategory = "guidance"
	CategoryService    ErrorCategory = "service"
	CategoryLibrary    ErrorCategory = "library"
	CategoryCommand    ErrorCategory = "command"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsGuidance reports whether the error only asks the user to take a step first
func (e *AppError) IsGuidance() bool {
	return e.Category == CategoryGuidance
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := NewAppError(code, message)
	appErr.Cause = err
	return appErr
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return CategoryValidation, SeverityWarning

	case ErrCodeMissingField, ErrCodeNoDocument, ErrCodeNoUpload, ErrCodeNoAnalysis,
		ErrCodeUnsupportedFile, ErrCodeClipboardUnavailable:
		return CategoryGuidance, SeverityWarning
	case ErrCodeStaleResult:
		return CategoryGuidance, SeverityInfo

	case ErrCodeServiceUnavailable:
		return CategoryService, SeverityError
	case ErrCodeCancelled, ErrCodeNotImplemented, ErrCodeNotFound:
		return CategoryService, SeverityInfo
	case ErrCodeAlreadyExists:
		return CategoryService, SeverityWarning
	case ErrCodeInternalError:
		return CategoryService, SeverityCritical

	case ErrCodeLibraryFailure, ErrCodeExportFailure:
		return CategoryLibrary, SeverityError
	case ErrCodeFileNotFound:
		return CategoryLibrary, SeverityInfo

	case ErrCodeCommandNotFound:
		return CategoryCommand, SeverityInfo
	case ErrCodeCommandFailed, ErrCodeInvalidCommand:
		return CategoryCommand, SeverityError

	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is, or wraps, an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// IsGuidance reports whether err carries user guidance rather than a failure
func IsGuidance(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.IsGuidance()
}

// HasCode reports whether err is an AppError with code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// Common error constructors for frequently used errors
func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyExistsError(resource string) *AppError {
	return NewAppError(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}

func LibraryError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeLibraryFailure, fmt.Sprintf("Library operation failed: %s", operation))
}

func FileError(path string, err error) *AppError {
	return Wrap(err, ErrCodeFileNotFound, fmt.Sprintf("Cannot read %s", path))
}

func ExportError(format string, err error) *AppError {
	return Wrap(err, ErrCodeExportFailure, fmt.Sprintf("Export to %s failed", format))
}

func CancelledError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeCancelled, fmt.Sprintf("%s cancelled", operation))
}

func CommandNotFoundError(command string) *AppError {
	return NewAppError(ErrCodeCommandNotFound, fmt.Sprintf("Command '%s' not found", command))
}

func InvalidCommandError(command string, reason string) *AppError {
	return NewAppError(ErrCodeInvalidCommand, fmt.Sprintf("Invalid command '%s': %s", command, reason))
}

// GuidanceError creates a guidance error with its user-facing message
func GuidanceError(code ErrorCode, message string) *AppError {
	return NewAppError(code, message)
}

func MissingPartiesError() *AppError {
	return GuidanceError(ErrCodeMissingField, MsgMissingParties)
}

func NoDocumentForClauseError() *AppError {
	return GuidanceError(ErrCodeNoDocument, MsgNoDocumentForClause)
}

func NoDocumentForExportError() *AppError {
	return GuidanceError(ErrCodeNoDocument, MsgNoDocumentForExport)
}

func NoUploadError() *AppError {
	return GuidanceError(ErrCodeNoUpload, MsgNoUpload)
}

func NoAnalysisError() *AppError {
	return GuidanceError(ErrCodeNoAnalysis, MsgNoAnalysis)
}

func UnsupportedFileError(mimeType string) *AppError {
	return GuidanceError(ErrCodeUnsupportedFile, MsgUnsupportedFile).WithContext("mime_type", mimeType)
}

func ClipboardError(err error) *AppError {
	appErr := GuidanceError(ErrCodeClipboardUnavailable, MsgClipboardUnavailable)
	appErr.Cause = err
	return appErr
}

func StaleResultError(operation string) *AppError {
	return GuidanceError(ErrCodeStaleResult, MsgStaleResult).WithContext("operation", operation)
}
