package renderer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dpshade/contract-desk/internal/models"
)

// riskLevelAttr carries the highlight level on editor spans
const riskLevelAttr = "data-risk-level"

type parsedBlock struct {
	block models.Block
	spans []models.HighlightSpan // offsets local to block.Text
}

// ParseHTML reads editor output back into a document. Headings (h1-h6)
// become heading blocks; p and li become paragraphs; spans carrying
// data-risk-level become highlights.
func ParseHTML(r io.Reader) (models.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var parsed []parsedBlock
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style:
				return
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				if pb, ok := collectBlock(n, models.BlockHeading); ok {
					parsed = append(parsed, pb)
				}
				return
			case atom.P, atom.Li:
				if pb, ok := collectBlock(n, models.BlockParagraph); ok {
					parsed = append(parsed, pb)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc := models.Document{Blocks: make([]models.Block, 0, len(parsed))}
	for _, pb := range parsed {
		doc.Blocks = append(doc.Blocks, pb.block)
	}
	offsets := doc.BlockOffsets()
	for i, pb := range parsed {
		for _, span := range pb.spans {
			span.Start += offsets[i]
			span.End += offsets[i]
			if err := doc.AddHighlight(span); err != nil {
				return models.Document{}, fmt.Errorf("invalid highlight in block %d: %w", i+1, err)
			}
		}
	}
	return doc, nil
}

// collectBlock flattens the text under n and records highlight spans
func collectBlock(n *html.Node, kind models.BlockKind) (parsedBlock, bool) {
	var b strings.Builder
	var spans []models.HighlightSpan

	var walk func(*html.Node, models.RiskLevel)
	walk = func(n *html.Node, level models.RiskLevel) {
		switch n.Type {
		case html.TextNode:
			start := b.Len()
			b.WriteString(n.Data)
			if level != "" && b.Len() > start {
				spans = appendSpan(spans, models.HighlightSpan{Start: start, End: b.Len(), Level: level})
			}
			return
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				b.WriteString("\n")
				return
			}
			if v, ok := attr(n, riskLevelAttr); ok {
				if l, err := models.ParseRiskLevel(v); err == nil {
					level = l
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, level)
		}
	}
	walk(n, "")

	raw := b.String()
	text := strings.TrimSpace(raw)
	if text == "" {
		return parsedBlock{}, false
	}
	lead := len(raw) - len(strings.TrimLeftFunc(raw, unicode.IsSpace))
	var clipped []models.HighlightSpan
	for _, s := range spans {
		s.Start -= lead
		s.End -= lead
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End > len(text) {
			s.End = len(text)
		}
		if s.Start < s.End {
			clipped = append(clipped, s)
		}
	}
	return parsedBlock{block: models.Block{Kind: kind, Text: text}, spans: clipped}, true
}

// appendSpan merges adjacent text runs that share a level
func appendSpan(spans []models.HighlightSpan, s models.HighlightSpan) []models.HighlightSpan {
	if n := len(spans); n > 0 && spans[n-1].End == s.Start && spans[n-1].Level == s.Level {
		spans[n-1].End = s.End
		return spans
	}
	return append(spans, s)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
