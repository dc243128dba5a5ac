// Package validation provides centralized input validation and sanitization.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the validation layer of the system, checking every
// command parameter before it reaches the matter session. It provides
// schema-based validation with type conversion and detailed error reporting.
//
// KEY RESPONSIBILITIES:
// - Define validation schemas for all command parameters and API inputs
// - Perform type-safe validation and conversion of user input
// - Generate detailed validation error messages with field-specific context
//
// INTEGRATION POINTS:
// - internal/commands/types.go: CommandExecutor.validator validates parameters using getValidationSchema()
// - internal/validation/middleware.go: HTTP middleware bounds and decodes request bodies
// - internal/errors/errors.go: ValidationResult.ToAppError() converts failures to AppError format
// - schemas: matter_ref, create_matter, set_fields, insert_clause, load_draft,
//   replace_document, export, upload, copy_position, search_clauses
//
// VALIDATION FLOW:
// 1. User input is received by interface (CLI, HTTP, TUI)
// 2. Input is converted to parameter map format
// 3. Validator validates parameters against appropriate schema
// 4. Invalid parameters generate detailed ValidationResult with errors
// 5. Valid parameters are type-converted and passed to command execution
//
// USAGE PATTERNS:
// - Register schemas: Use RegisterSchema() to add new validation patterns
// - Validate data: Use Validate() with schema name and parameter map
// - Handle results: Check ValidationResult.Valid and process errors or validated data
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/models"
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name      string
	Required  bool
	Type      string // string, int, bool, array or object
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Options   []string
	Custom    func(any) error
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Errors   []ValidationError   `json:"errors,omitempty"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
	Data     map[string]any      `json:"data,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationWarning represents a field validation warning
type ValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Schema represents a validation schema
type Schema struct {
	Name   string
	Fields map[string]FieldValidator
	Rules  []func(map[string]any) error
}

// Validator holds the registered schemas
type Validator struct {
	schemas map[string]*Schema
}

// NewValidator creates a validator with the command schemas registered
func NewValidator() *Validator {
	v := &Validator{schemas: make(map[string]*Schema)}
	v.registerBuiltinSchemas()
	return v
}

// RegisterSchema registers a validation schema, replacing any with the same name
func (v *Validator) RegisterSchema(schema *Schema) {
	v.schemas[schema.Name] = schema
}

// HasSchema reports whether a schema is registered
func (v *Validator) HasSchema(name string) bool {
	_, ok := v.schemas[name]
	return ok
}

// Validate validates data against a schema
func (v *Validator) Validate(schemaName string, data map[string]any) *ValidationResult {
	schema, exists := v.schemas[schemaName]
	if !exists {
		return &ValidationResult{
			Errors: []ValidationError{{
				Field:   "schema",
				Code:    "SCHEMA_NOT_FOUND",
				Message: fmt.Sprintf("Validation schema '%s' not found", schemaName),
			}},
		}
	}

	result := &ValidationResult{
		Valid: true,
		Data:  make(map[string]any),
	}

	// Fields are checked in name order so error lists are stable
	names := make([]string, 0, len(schema.Fields))
	for name := range schema.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v.validateField(name, schema.Fields[name], data, result)
	}

	for _, rule := range schema.Rules {
		if err := rule(data); err != nil {
			result.fail("schema", "SCHEMA_RULE_VIOLATION", err.Error(), nil)
		}
	}

	return result
}

func (result *ValidationResult) fail(field, code, message string, value any) {
	result.Valid = false
	result.Errors = append(result.Errors, ValidationError{
		Field:   field,
		Code:    code,
		Message: message,
		Value:   value,
	})
}

// validateField validates a single field and stores its converted value
func (v *Validator) validateField(name string, fv FieldValidator, data map[string]any, result *ValidationResult) {
	value, exists := data[name]

	if fv.Required && (!exists || value == nil || value == "") {
		result.fail(name, "REQUIRED_FIELD_MISSING", fmt.Sprintf("Field '%s' is required", name), nil)
		return
	}
	if !exists || value == nil {
		return
	}

	converted, err := convertType(name, fv.Type, value)
	if err != nil {
		result.fail(name, "INVALID_TYPE", err.Error(), value)
		return
	}
	result.Data[name] = converted

	if str, ok := converted.(string); ok && fv.Type == "string" {
		switch {
		case fv.MinLength > 0 && len(str) < fv.MinLength:
			result.fail(name, "MIN_LENGTH_VIOLATION",
				fmt.Sprintf("Field '%s' must be at least %d characters long", name, fv.MinLength), str)
		case fv.MaxLength > 0 && len(str) > fv.MaxLength:
			// Oversized values are not echoed back
			result.fail(name, "MAX_LENGTH_VIOLATION",
				fmt.Sprintf("Field '%s' must be at most %d characters long", name, fv.MaxLength), nil)
		case fv.Pattern != nil && !fv.Pattern.MatchString(str):
			result.fail(name, "PATTERN_MISMATCH",
				fmt.Sprintf("Field '%s' does not match required pattern", name), str)
		case len(fv.Options) > 0 && !slices.Contains(fv.Options, str):
			result.fail(name, "INVALID_OPTION",
				fmt.Sprintf("Field '%s' must be one of: %s", name, strings.Join(fv.Options, ", ")), str)
		}
	}

	if fv.Custom != nil {
		if err := fv.Custom(converted); err != nil {
			result.fail(name, "CUSTOM_VALIDATION_FAILED", fmt.Sprintf("Field '%s': %s", name, err.Error()), converted)
		}
	}
}

// convertType coerces CLI strings and decoded JSON into the declared type
func convertType(name, expected string, value any) (any, error) {
	switch expected {
	case "string":
		if str, ok := value.(string); ok {
			return str, nil
		}
		return fmt.Sprintf("%v", value), nil

	case "int":
		switch val := value.(type) {
		case int:
			return val, nil
		case int64:
			return int(val), nil
		case float64:
			if val == float64(int(val)) {
				return int(val), nil
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return n, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be an integer", name)

	case "bool":
		switch val := value.(type) {
		case bool:
			return val, nil
		case string:
			if b, err := strconv.ParseBool(val); err == nil {
				return b, nil
			}
		}
		return nil, fmt.Errorf("field '%s' must be a boolean", name)

	case "array":
		switch val := value.(type) {
		case []any:
			return val, nil
		case []string:
			out := make([]any, len(val))
			for i, item := range val {
				out[i] = item
			}
			return out, nil
		case string:
			if val == "" {
				return []any{}, nil
			}
			parts := strings.Split(val, ",")
			out := make([]any, len(parts))
			for i, part := range parts {
				out[i] = strings.TrimSpace(part)
			}
			return out, nil
		}
		return nil, fmt.Errorf("field '%s' must be an array", name)

	case "object":
		switch val := value.(type) {
		case map[string]any:
			return val, nil
		case map[string]string:
			out := make(map[string]any, len(val))
			for k, item := range val {
				out[k] = item
			}
			return out, nil
		}
		return nil, fmt.Errorf("field '%s' must be an object", name)

	default:
		return value, nil
	}
}

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

func matterIDField() FieldValidator {
	return FieldValidator{
		Name:     "matter_id",
		Type:     "string",
		Required: true,
		Custom: func(value any) error {
			if _, err := uuid.Parse(value.(string)); err != nil {
				return fmt.Errorf("must be a matter id")
			}
			return nil
		},
	}
}

func slugField(name string, required bool) FieldValidator {
	return FieldValidator{
		Name:      name,
		Type:      "string",
		Required:  required,
		MaxLength: 100,
		Pattern:   slugPattern,
	}
}

// fieldsRule checks that a "fields" object only names known form fields
func fieldsRule(data map[string]any) error {
	raw, exists := data["fields"]
	if !exists || raw == nil {
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, known := models.ParseFieldKey(k); !known {
			return fmt.Errorf("unknown field '%s'", k)
		}
		value, ok := obj[k].(string)
		if !ok {
			return fmt.Errorf("field '%s' must be a string", k)
		}
		if len(value) > MaxFieldLength {
			return fmt.Errorf("field '%s' must be at most %d characters long", k, MaxFieldLength)
		}
	}
	return nil
}

// Limits on free-text input
const (
	MaxFieldLength    = 2000
	MaxDocumentLength = 1 << 20
	MaxFilenameLength = 255
)

// registerBuiltinSchemas registers the command parameter schemas
func (v *Validator) registerBuiltinSchemas() {
	v.RegisterSchema(&Schema{
		Name:   "matter_ref",
		Fields: map[string]FieldValidator{"matter_id": matterIDField()},
	})

	v.RegisterSchema(&Schema{
		Name: "create_matter",
		Fields: map[string]FieldValidator{
			"fields":   {Name: "fields", Type: "object"},
			"draft_id": slugField("draft_id", false),
		},
		Rules: []func(map[string]any) error{fieldsRule},
	})

	v.RegisterSchema(&Schema{
		Name: "set_fields",
		Fields: map[string]FieldValidator{
			"matter_id": matterIDField(),
			"fields":    {Name: "fields", Type: "object", Required: true},
		},
		Rules: []func(map[string]any) error{fieldsRule},
	})

	v.RegisterSchema(&Schema{
		Name: "insert_clause",
		Fields: map[string]FieldValidator{
			"matter_id": matterIDField(),
			"clause_id": slugField("clause_id", true),
		},
	})

	v.RegisterSchema(&Schema{
		Name: "load_draft",
		Fields: map[string]FieldValidator{
			"matter_id": matterIDField(),
			"draft_id":  slugField("draft_id", true),
		},
	})

	v.RegisterSchema(&Schema{
		Name: "replace_document",
		Fields: map[string]FieldValidator{
			"matter_id": matterIDField(),
			"html": {
				Name:      "html",
				Type:      "string",
				Required:  true,
				MaxLength: MaxDocumentLength,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "export",
		Fields: map[string]FieldValidator{
			"matter_id": matterIDField(),
			"format": {
				Name:    "format",
				Type:    "string",
				Options: []string{"text", "html", "md", "markdown", "json"},
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name: "upload",
		Fields: map[string]FieldValidator{
			"matter_id": matterIDField(),
			"filename": {
				Name:      "filename",
				Type:      "string",
				Required:  true,
				MinLength: 1,
				MaxLength: MaxFilenameLength,
			},
			"size_bytes": {
				Name: "size_bytes",
				Type: "int",
				Custom: func(value any) error {
					if value.(int) < 0 {
						return fmt.Errorf("must not be negative")
					}
					return nil
				},
			},
			"mime_type": {
				Name:      "mime_type",
				Type:      "string",
				MaxLength: 200,
			},
		},
	})

	v.RegisterSchema(&Schema{
		Name:   "copy_position",
		Fields: map[string]FieldValidator{"position_id": slugField("position_id", true)},
	})

	v.RegisterSchema(&Schema{
		Name: "search_clauses",
		Fields: map[string]FieldValidator{
			"query": {
				Name:      "query",
				Type:      "string",
				Required:  true,
				MinLength: 1,
				MaxLength: 200,
			},
		},
	})
}

// ToAppError converts a failed result into a validation AppError
func (result *ValidationResult) ToAppError() *errors.AppError {
	if result.Valid {
		return nil
	}
	if len(result.Errors) == 0 {
		return errors.ValidationError("Validation failed")
	}

	details := make([]string, 0, len(result.Errors))
	for _, ve := range result.Errors {
		details = append(details, fmt.Sprintf("%s: %s", ve.Field, ve.Message))
	}

	appErr := errors.ValidationError(result.Errors[0].Message).
		WithDetails(strings.Join(details, "; ")).
		WithContext("validation_errors", result.Errors)
	if len(result.Warnings) > 0 {
		appErr.WithContext("validation_warnings", result.Warnings)
	}
	return appErr
}

// GetValidatedData returns the converted data, or nil when validation failed
func (result *ValidationResult) GetValidatedData() map[string]any {
	if !result.Valid {
		return nil
	}
	return result.Data
}
