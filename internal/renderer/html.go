package renderer

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/dpshade/contract-desk/internal/models"
)

const (
	// DefaultContractFilename is used when the matter has no client name
	DefaultContractFilename = "contract_draft.html"
	// ReportFilename is the download name of the risk report
	ReportFilename = "contract_risk_analysis.txt"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// ContractFilename derives the export filename from the client name
func ContractFilename(clientName string) string {
	if clientName == "" {
		return DefaultContractFilename
	}
	return whitespaceRE.ReplaceAllString(clientName, "_") + "_contract.html"
}

var printTemplate = template.Must(template.New("contract").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: 'Times New Roman', Times, serif;
      max-width: 8.5in;
      margin: 1in auto;
      padding: 0;
      line-height: 1.6;
      color: #000;
    }
    h1 { font-size: 18pt; font-weight: bold; margin-top: 24pt; margin-bottom: 12pt; }
    h2 { font-size: 16pt; font-weight: bold; margin-top: 18pt; margin-bottom: 10pt; }
    h3 { font-size: 14pt; font-weight: bold; margin-top: 14pt; margin-bottom: 8pt; }
    p { margin-bottom: 12pt; text-align: justify; }
    ul, ol { margin-left: 1.5in; margin-bottom: 12pt; }
    li { margin-bottom: 6pt; }
    strong { font-weight: bold; }
    em { font-style: italic; }
    u { text-decoration: underline; }
  </style>
</head>
<body>
  {{.Body}}
</body>
</html>
`))

// DocumentTitle is the <title> of an exported contract
func DocumentTitle(clientName string) string {
	if clientName == "" {
		return "Contract"
	}
	return clientName
}

// ExportHTML wraps the document body in the print stylesheet
func ExportHTML(doc models.Document, clientName string) (string, error) {
	var buf bytes.Buffer
	err := printTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: DocumentTitle(clientName),
		Body:  template.HTML(BodyHTML(doc)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render contract HTML: %w", err)
	}
	return buf.String(), nil
}

// BodyHTML renders headings as <h2> and paragraphs as <p>, with risk
// highlights serialized as data-risk-level spans
func BodyHTML(doc models.Document) string {
	var b strings.Builder
	offsets := doc.BlockOffsets()
	for i, block := range doc.Blocks {
		tag := "p"
		if block.Kind == models.BlockHeading {
			tag = "h2"
		}
		b.WriteString("<" + tag + ">")
		writeHighlighted(&b, block.Text, offsets[i], doc.Highlights)
		b.WriteString("</" + tag + ">")
	}
	return b.String()
}

// writeHighlighted escapes text, wrapping the parts covered by spans. Spans
// that cross a block boundary are clipped to the block.
func writeHighlighted(b *strings.Builder, text string, base int, spans []models.HighlightSpan) {
	pos := 0
	for _, span := range spans {
		start := span.Start - base
		end := span.End - base
		if end <= 0 || start >= len(text) {
			continue
		}
		if start < pos {
			start = pos
		}
		if end > len(text) {
			end = len(text)
		}
		if start >= end {
			continue
		}
		b.WriteString(html.EscapeString(text[pos:start]))
		fmt.Fprintf(b, `<span data-risk-level="%s" class="%s">`, span.Level, span.CSSClass())
		b.WriteString(html.EscapeString(text[start:end]))
		b.WriteString("</span>")
		pos = end
	}
	b.WriteString(html.EscapeString(text[pos:]))
}
