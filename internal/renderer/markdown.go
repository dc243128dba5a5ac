package renderer

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	"github.com/dpshade/contract-desk/internal/models"
)

// MarkdownConverter turns exported contract HTML into Markdown
type MarkdownConverter struct {
	converter *md.Converter
}

// NewMarkdownConverter creates a converter with GitHub flavored output
func NewMarkdownConverter() *MarkdownConverter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &MarkdownConverter{converter: converter}
}

// Convert renders the document body as Markdown. Highlight spans are
// flattened to their text.
func (c *MarkdownConverter) Convert(doc models.Document) (string, error) {
	out, err := c.converter.ConvertString(BodyHTML(doc))
	if err != nil {
		return "", fmt.Errorf("failed to convert contract to markdown: %w", err)
	}
	return strings.TrimSpace(out) + "\n", nil
}
