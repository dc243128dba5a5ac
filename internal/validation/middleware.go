// Package validation/middleware provides HTTP request validation middleware.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the HTTP middleware layer for request validation,
// ensuring API requests are checked before they reach a matter session. It
// bridges chi route parameters and request bodies with the generic schemas.
//
// KEY RESPONSIBILITIES:
// - Extract parameters from chi route params, query strings and bodies
// - Bound request bodies so pasted documents cannot exhaust memory
// - Describe multipart uploads as filename, size and mime type
// - Store validated data on the request context for handlers
//
// INTEGRATION POINTS:
// - internal/api/server.go: routes are wrapped with ValidateRequest(schema)
// - internal/validation/validator.go: RequestValidator.validator performs schema-based validation
// - internal/errors/handlers.go: failures are written with HTTPErrorHandler
//
// EXTRACTION PATTERNS:
// - Route parameters: {matter_id}, {clause_id}, {draft_id}, {position_id}
// - Query parameters: single values as strings, repeated values as arrays
// - JSON body: decoded and merged over query and route values
// - Multipart body: the "file" part becomes filename, size_bytes and mime_type
// - HTML body: the whole body becomes "html"
//
// USAGE PATTERNS:
// - Wrap handlers: r.With(rv.ValidateRequest("insert_clause")).Post(...)
// - Read results: ValidatedData(r) inside the handler
// - Free text: SanitizeString() before storing form values
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dpshade/contract-desk/internal/errors"
)

// DefaultMaxBodyBytes bounds JSON and multipart request bodies
const DefaultMaxBodyBytes = 2 << 20

// UploadField is the multipart form field carrying an uploaded contract
const UploadField = "file"

type contextKey struct{}

// RequestValidator provides middleware for HTTP request validation
type RequestValidator struct {
	validator    *Validator
	errorHandler *errors.HTTPErrorHandler
	maxBodyBytes int64
}

// NewRequestValidator creates a request validator that reports failures through logger
func NewRequestValidator(logger *zap.Logger) *RequestValidator {
	return &RequestValidator{
		validator:    NewValidator(),
		errorHandler: errors.NewHTTPErrorHandler(true, logger),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// WithMaxBodyBytes overrides the request body limit
func (rv *RequestValidator) WithMaxBodyBytes(n int64) *RequestValidator {
	rv.maxBodyBytes = n
	return rv
}

// ValidateRequest returns chi middleware validating requests against schemaName
func (rv *RequestValidator) ValidateRequest(schemaName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := rv.extractRequestData(w, r)
			if err != nil {
				rv.errorHandler.WriteHTTPError(w, err)
				return
			}

			result := rv.validator.Validate(schemaName, data)
			if !result.Valid {
				rv.errorHandler.WriteHTTPError(w, result.ToAppError())
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, result.GetValidatedData())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidatedData returns the data stored by ValidateRequest, or an empty map
func ValidatedData(r *http.Request) map[string]any {
	if data, ok := r.Context().Value(contextKey{}).(map[string]any); ok {
		return data
	}
	return map[string]any{}
}

// extractRequestData merges query, route and body values, later sources winning
func (rv *RequestValidator) extractRequestData(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	data := make(map[string]any)

	for key, values := range r.URL.Query() {
		switch len(values) {
		case 0:
		case 1:
			data[key] = values[0]
		default:
			data[key] = values
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			data[key] = rctx.URLParams.Values[i]
		}
	}

	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return data, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, rv.maxBodyBytes)
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		upload, err := rv.extractMultipart(r)
		if err != nil {
			return nil, err
		}
		for key, value := range upload {
			data[key] = value
		}
	case contentType == "" || strings.Contains(contentType, "application/json"):
		body, err := extractJSONBody(r)
		if err != nil {
			return nil, err
		}
		for key, value := range body {
			data[key] = value
		}
	case strings.HasPrefix(contentType, "text/html"):
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, errors.ValidationError("Failed to read request body")
		}
		data["html"] = string(body)
	default:
		return nil, errors.NewAppError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported content type %q", contentType))
	}

	return data, nil
}

// extractJSONBody decodes a JSON object body; an empty body yields no values
func extractJSONBody(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.ValidationError("Failed to read request body")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return map[string]any{}, nil
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.ValidationError("Invalid JSON in request body")
	}
	return data, nil
}

// extractMultipart describes the uploaded file part without keeping its bytes
func (rv *RequestValidator) extractMultipart(r *http.Request) (map[string]any, error) {
	if err := r.ParseMultipartForm(rv.maxBodyBytes); err != nil {
		return nil, errors.ValidationError("Failed to parse multipart form")
	}

	data := make(map[string]any)
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			data[key] = values[0]
		}
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		return data, nil
	}
	defer file.Close()

	data["filename"] = header.Filename
	data["size_bytes"] = header.Size
	if mimeType := header.Header.Get("Content-Type"); mimeType != "" {
		data["mime_type"] = mimeType
	}
	return data, nil
}

// SanitizeString strips NUL and control characters, keeping tabs and newlines
func SanitizeString(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == '\n' || r == '\t' || r == '\r' || r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ValidateIdentifier checks a library identifier such as a clause or draft id
func ValidateIdentifier(id string) error {
	if id == "" {
		return errors.ValidationError("Identifier cannot be empty")
	}
	if len(id) > 100 {
		return errors.ValidationError("Identifier too long (max 100 characters)")
	}
	if !slugPattern.MatchString(id) {
		return errors.ValidationError("Identifier must be lowercase letters, digits, hyphens or underscores")
	}
	return nil
}

// GetValidator returns the underlying validator instance
func (rv *RequestValidator) GetValidator() *Validator {
	return rv.validator
}
