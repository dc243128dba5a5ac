// Package errors/handlers provides interface-specific error handling implementations.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the interface layer of the error handling system, providing
// customized error formatting and handling for each user interface (CLI, HTTP, TUI).
//
// KEY RESPONSIBILITIES:
// - Convert structured AppErrors into interface-appropriate representations
// - Log every handled error through the injected zap logger
// - Map error codes to HTTP status codes for API responses
//
// ERROR FLOW:
// 1. Business logic generates AppError
// 2. Interface-specific handler processes the error
// 3. Handler logs the error (guidance at debug level, failures at warn/error)
// 4. Formatted error is returned to user
//
// USAGE PATTERNS:
// - CLI: NewCLIErrorHandler(verbose, logger).HandleError(err)
// - HTTP: WriteHTTPError() for direct response writing
// - TUI: GetErrorStyle() for styling information
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// logAppError writes appErr at a level matching its severity
func logAppError(logger *zap.Logger, iface string, appErr *AppError) {
	if logger == nil {
		return
	}
	level := zapcore.ErrorLevel
	switch {
	case appErr.IsGuidance(), appErr.Severity == SeverityInfo:
		level = zapcore.DebugLevel
	case appErr.Severity == SeverityWarning:
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("interface", iface),
		zap.String("code", string(appErr.Code)),
		zap.String("category", string(appErr.Category)),
		zap.String("severity", string(appErr.Severity)),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.NamedError("cause", appErr.Cause))
	}
	if len(appErr.Context) > 0 {
		fields = append(fields, zap.Any("context", appErr.Context))
	}
	if ce := logger.Check(level, appErr.Message); ce != nil {
		ce.Write(fields...)
	}
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
	Logger  *zap.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, logger *zap.Logger) *CLIErrorHandler {
	return &CLIErrorHandler{
		Verbose: verbose,
		Logger:  logger,
	}
}

// HandleError handles errors for CLI interface
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logAppError(h.Logger, "cli", appErr)
	return stderrors.New(h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.Verbose && appErr.Cause != nil {
		message = fmt.Sprintf("%s (%v)", message, appErr.Cause)
	}

	if appErr.IsGuidance() {
		return fmt.Sprintf("👉 %s", message)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("❌ CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("❌ ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("⚠️  WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("ℹ️  INFO: %s", message)
	default:
		return fmt.Sprintf("❌ %s", message)
	}
}

// HTTPErrorHandler handles errors for HTTP interface
type HTTPErrorHandler struct {
	IncludeDetails bool
	Logger         *zap.Logger
}

// NewHTTPErrorHandler creates a new HTTP error handler
func NewHTTPErrorHandler(includeDetails bool, logger *zap.Logger) *HTTPErrorHandler {
	return &HTTPErrorHandler{
		IncludeDetails: includeDetails,
		Logger:         logger,
	}
}

// HandleError handles errors for HTTP interface
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logAppError(h.Logger, "http", appErr)
	return appErr
}

// FormatError formats an error for HTTP response
func (h *HTTPErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	body := map[string]interface{}{
		"code":      appErr.Code,
		"message":   appErr.Message,
		"category":  appErr.Category,
		"timestamp": appErr.Timestamp,
	}
	if h.IncludeDetails && appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if h.IncludeDetails && appErr.Context != nil {
		body["context"] = appErr.Context
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{"error": body})
	return string(jsonBytes)
}

// WriteHTTPError writes an error response to HTTP
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(err)
	h.HandleError(appErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(appErr))
	w.Write([]byte(h.FormatError(appErr)))
}

// HTTPStatus maps error codes to HTTP status codes
func HTTPStatus(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidCommand:
		return http.StatusBadRequest
	case ErrCodeMissingField:
		return http.StatusUnprocessableEntity
	case ErrCodeNoDocument, ErrCodeNoUpload, ErrCodeNoAnalysis, ErrCodeStaleResult:
		return http.StatusConflict
	case ErrCodeUnsupportedFile:
		return http.StatusUnsupportedMediaType
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeCommandNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeCancelled:
		return http.StatusRequestTimeout
	case ErrCodeServiceUnavailable, ErrCodeClipboardUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// TUIErrorHandler handles errors for TUI interface
type TUIErrorHandler struct {
	ShowDetails bool
	Logger      *zap.Logger
}

// NewTUIErrorHandler creates a new TUI error handler. The logger should write
// to a file so it never draws over the alt screen.
func NewTUIErrorHandler(showDetails bool, logger *zap.Logger) *TUIErrorHandler {
	return &TUIErrorHandler{
		ShowDetails: showDetails,
		Logger:      logger,
	}
}

// HandleError handles errors for TUI interface
func (h *TUIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	logAppError(h.Logger, "tui", appErr)
	return appErr
}

// FormatError formats an error for TUI display
func (h *TUIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.ShowDetails && appErr.Details != "" {
		message = fmt.Sprintf("%s\nDetails: %s", message, appErr.Details)
	}
	return message
}

// GetErrorStyle returns an icon and colour for the error's severity
func (h *TUIErrorHandler) GetErrorStyle(err error) (string, string) {
	appErr := GetAppError(err)

	if appErr.IsGuidance() {
		return "👉", "#feca57"
	}
	switch appErr.Severity {
	case SeverityCritical:
		return "🔥", "#ff0000"
	case SeverityError:
		return "❌", "#ff6b6b"
	case SeverityWarning:
		return "⚠️", "#feca57"
	case SeverityInfo:
		return "ℹ️", "#48cae4"
	default:
		return "❌", "#ff6b6b"
	}
}
