package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dpshade/contract-desk/internal/models"
)

// Format selects an export representation
type Format string

const (
	FormatText     Format = "text"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatHTML, FormatMarkdown, FormatJSON:
		return Format(s), nil
	case "":
		return FormatText, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, html, md or json)", s)
	}
}

// Renderer exports a matter's document in the supported formats
type Renderer struct {
	doc    models.Document
	fields models.FieldMap
}

// NewRenderer creates a renderer for doc, using fields for titles and filenames
func NewRenderer(doc models.Document, fields models.FieldMap) *Renderer {
	return &Renderer{doc: doc, fields: fields}
}

// Render produces the document in the requested format
func (r *Renderer) Render(format Format) (string, error) {
	switch format {
	case FormatHTML:
		return r.RenderHTML()
	case FormatMarkdown:
		return r.RenderMarkdown()
	case FormatJSON:
		return r.RenderJSON()
	default:
		return r.RenderText(), nil
	}
}

// RenderText returns the plain-text draft
func (r *Renderer) RenderText() string {
	return r.doc.PlainText() + "\n"
}

// RenderHTML returns the print-ready HTML document
func (r *Renderer) RenderHTML() (string, error) {
	return ExportHTML(r.doc, r.fields.ClientName)
}

// RenderMarkdown returns the draft as Markdown
func (r *Renderer) RenderMarkdown() (string, error) {
	return NewMarkdownConverter().Convert(r.doc)
}

// RenderJSON returns the block structure with the matter fields
func (r *Renderer) RenderJSON() (string, error) {
	payload := struct {
		Fields   models.FieldMap `json:"fields"`
		Document models.Document `json:"document"`
	}{r.fields, r.doc}

	jsonBytes, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// Filename suggests a download name for the format
func (r *Renderer) Filename(format Format) string {
	name := ContractFilename(r.fields.ClientName)
	switch format {
	case FormatHTML:
		return name
	case FormatMarkdown:
		return strings.TrimSuffix(name, ".html") + ".md"
	case FormatJSON:
		return strings.TrimSuffix(name, ".html") + ".json"
	default:
		return strings.TrimSuffix(name, ".html") + ".txt"
	}
}
