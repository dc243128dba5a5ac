// Package api/openapi serves the OpenAPI 3.0 specification and a Swagger UI page.
//
// INTEGRATION POINTS:
// - internal/api/server.go: every route in Router() has a path entry here
// - internal/validation/validator.go: parameter constraints mirror the schemas
// - internal/errors/handlers.go: ErrorResponse matches HTTPErrorHandler.FormatError()
// - Swagger UI CDN: Uses unpkg.com CDN for Swagger UI assets in handleOpenAPI()
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const swaggerPage = `<!DOCTYPE html>
<html>
<head>
    <title>Contract Desk API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        html { box-sizing: border-box; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin:0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/openapi.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
            });
        };
    </script>
</body>
</html>`

// handleOpenAPI serves the OpenAPI documentation interface
func (s *APIServer) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(swaggerPage))
}

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *APIServer) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(getOpenAPISpec(s.port)); err != nil {
		s.logger.Warn("failed to encode openapi spec", zap.Error(err))
	}
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]any) map[string]any {
	return map[string]any{"application/json": map[string]any{"schema": schema}}
}

func pathParam(name, description string) map[string]any {
	return map[string]any{
		"name":        name,
		"in":          "path",
		"description": description,
		"required":    true,
		"schema":      map[string]any{"type": "string"},
	}
}

var matterIDParam = map[string]any{
	"name":        "matter_id",
	"in":          "path",
	"description": "Matter identifier",
	"required":    true,
	"schema":      map[string]any{"type": "string", "format": "uuid"},
}

// operation builds an operation object. Guidance failures are documented as
// 409/422 on the operations that can produce them.
func operation(summary, description string, params []map[string]any, guidance ...string) map[string]any {
	responses := map[string]any{
		"200": map[string]any{"description": "Success", "content": jsonContent(ref("APIResponse"))},
		"400": map[string]any{"description": "Invalid parameters", "content": jsonContent(ref("ErrorResponse"))},
		"500": map[string]any{"description": "Internal server error"},
	}
	for _, code := range guidance {
		responses[code] = map[string]any{
			"description": "Guidance: the user must complete a prior step",
			"content":     jsonContent(ref("ErrorResponse")),
		}
	}
	op := map[string]any{
		"summary":     summary,
		"description": description,
		"responses":   responses,
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return op
}

func withBody(op map[string]any, contentType string, schema map[string]any) map[string]any {
	op["requestBody"] = map[string]any{
		"required": true,
		"content":  map[string]any{contentType: map[string]any{"schema": schema}},
	}
	return op
}

func fieldsSchema() map[string]any {
	props := map[string]any{}
	for _, name := range []string{
		"contractType", "clientName", "industry", "firstParty", "secondParty",
		"termDuration", "businessPurpose", "governingLaw", "riskProfile", "negotiationFocus",
	} {
		props[name] = map[string]any{"type": "string", "maxLength": 2000}
	}
	return map[string]any{"type": "object", "properties": props, "additionalProperties": false}
}

// getOpenAPISpec returns the OpenAPI 3.0 specification
func getOpenAPISpec(port int) map[string]any {
	matter := []map[string]any{matterIDParam}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "Contract Desk API",
			"description": "Draft contracts from templates and clauses, check readiness against guardrails and review uploaded contracts for risk",
			"version":     "1.0.0",
		},
		"servers": []map[string]any{
			{"url": "http://localhost:" + strconv.Itoa(port) + "/api/v1", "description": "Local server"},
		},
		"paths": map[string]any{
			"/health": map[string]any{
				"get": operation("Health check", "Library counts, matter count and library validation status", nil),
			},
			"/matters": map[string]any{
				"get": operation("List matters", "Snapshots of every open matter, oldest first", nil),
				"post": withBody(
					operation("Create matter", "Start a matter, optionally with field values or a prebuilt draft", nil),
					"application/json",
					map[string]any{
						"type": "object",
						"properties": map[string]any{
							"fields":   fieldsSchema(),
							"draft_id": map[string]any{"type": "string"},
						},
					}),
			},
			"/matters/{matter_id}": map[string]any{
				"get":    operation("Get matter", "Fields, document, inserted clauses, upload, analysis and readiness", matter),
				"delete": operation("Delete matter", "Discard the matter and invalidate work in flight", matter),
			},
			"/matters/{matter_id}/fields": map[string]any{
				"patch": withBody(
					operation("Set fields", "Update form values; an empty string clears a field", matter),
					"application/json",
					map[string]any{"type": "object", "properties": map[string]any{"fields": fieldsSchema()}, "required": []string{"fields"}}),
			},
			"/matters/{matter_id}/generate": map[string]any{
				"post": operation("Generate draft",
					"Fill the contract type's template. A newer generate, draft load or edit supersedes this one.",
					matter, "409", "422"),
			},
			"/matters/{matter_id}/clauses/{clause_id}": map[string]any{
				"post": operation("Insert clause",
					"Append a library clause. Inserting a clause already present reports an info notice.",
					[]map[string]any{matterIDParam, pathParam("clause_id", "Clause identifier")}, "409"),
			},
			"/matters/{matter_id}/drafts/{draft_id}": map[string]any{
				"post": operation("Load prebuilt draft", "Replace the draft and merge the draft's form defaults",
					[]map[string]any{matterIDParam, pathParam("draft_id", "Prebuilt draft identifier")}),
			},
			"/matters/{matter_id}/readiness": map[string]any{
				"get": operation("Readiness", "Guardrail results, hero summary and clause recommendations", matter),
			},
			"/matters/{matter_id}/document": map[string]any{
				"put": withBody(
					operation("Replace document", "Store edited HTML; risk highlights survive as marks", matter),
					"text/html",
					map[string]any{"type": "string"}),
			},
			"/matters/{matter_id}/export": map[string]any{
				"get": operation("Export draft", "Download the draft as a file",
					[]map[string]any{matterIDParam, {
						"name":   "format",
						"in":     "query",
						"schema": map[string]any{"type": "string", "enum": []string{"text", "html", "md", "json"}},
					}}, "409"),
			},
			"/matters/{matter_id}/upload": map[string]any{
				"post": withBody(
					operation("Upload contract", "Attach a PDF or DOCX for review; a new upload clears the previous analysis", matter, "415"),
					"multipart/form-data",
					map[string]any{
						"type":       "object",
						"properties": map[string]any{"file": map[string]any{"type": "string", "format": "binary"}},
					}),
			},
			"/matters/{matter_id}/analysis": map[string]any{
				"post": operation("Analyze contract", "Run the risk analysis on the uploaded contract", matter, "409"),
			},
			"/matters/{matter_id}/report": map[string]any{
				"get": operation("Risk report", "Download the plain-text risk report", matter, "409"),
			},
			"/clauses": map[string]any{
				"get": operation("List clauses", "The clause library", nil),
			},
			"/clauses/search": map[string]any{
				"get": operation("Search clauses", "Fuzzy search over clause titles and triggers",
					[]map[string]any{{
						"name":     "q",
						"in":       "query",
						"required": true,
						"schema":   map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
					}}),
			},
			"/drafts": map[string]any{
				"get": operation("List prebuilt drafts", "Prebuilt agreements that can be loaded into a matter", nil),
			},
			"/playbook": map[string]any{
				"get": operation("Playbook", "Negotiation steps, risk profiles and contract types", nil),
			},
			"/positions": map[string]any{
				"get": operation("List positions", "Fallback negotiation positions", nil),
			},
			"/positions/{position_id}/copy": map[string]any{
				"post": operation("Copy position", "Copy the firm position to the server's clipboard",
					[]map[string]any{pathParam("position_id", "Position identifier")}, "503"),
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"APIResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"success":   map[string]any{"type": "boolean"},
						"data":      map[string]any{"description": "Command payload"},
						"message":   map[string]any{"type": "string"},
						"notice":    map[string]any{"type": "string", "enum": []string{"success", "info"}},
						"timestamp": map[string]any{"type": "string", "format": "date-time"},
					},
					"required": []string{"success", "timestamp"},
				},
				"ErrorResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"error": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"code":      map[string]any{"type": "string", "description": "Error code"},
								"message":   map[string]any{"type": "string", "description": "Error message"},
								"details":   map[string]any{"type": "string", "description": "Additional error details"},
								"category":  map[string]any{"type": "string", "description": "Error category; guidance asks the user to act"},
								"context":   map[string]any{"type": "object"},
								"timestamp": map[string]any{"type": "string", "format": "date-time"},
							},
							"required": []string{"code", "message", "timestamp"},
						},
					},
					"required": []string{"error"},
				},
			},
		},
	}
}
