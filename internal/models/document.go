package models

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// BlockKind classifies a rendered unit of the document
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
)

// HeadingMaxLength is the exclusive length bound for heading detection
const HeadingMaxLength = 100

// BlockSeparator joins blocks in the plain-text representation
const BlockSeparator = "\n\n"

// Block is one heading or paragraph of a rendered document
type Block struct {
	Kind BlockKind `json:"kind" yaml:"kind"`
	Text string    `json:"text" yaml:"text"`
}

// Document is an ordered sequence of blocks with optional risk highlights.
// Highlight offsets address PlainText().
type Document struct {
	Blocks     []Block         `json:"blocks"`
	Highlights []HighlightSpan `json:"highlights,omitempty"`
}

// IsEmpty reports whether the document has no blocks
func (d Document) IsEmpty() bool {
	return len(d.Blocks) == 0
}

// Clone returns a deep copy
func (d Document) Clone() Document {
	out := Document{}
	if d.Blocks != nil {
		out.Blocks = append([]Block(nil), d.Blocks...)
	}
	if d.Highlights != nil {
		out.Highlights = append([]HighlightSpan(nil), d.Highlights...)
	}
	return out
}

// PlainText joins block text with BlockSeparator
func (d Document) PlainText() string {
	parts := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, BlockSeparator)
}

// HasHeading reports whether any block's text equals text exactly
func (d Document) HasHeading(text string) bool {
	for _, b := range d.Blocks {
		if b.Text == text {
			return true
		}
	}
	return false
}

// BlockOffsets returns the start offset of every block within PlainText
func (d Document) BlockOffsets() []int {
	offsets := make([]int, len(d.Blocks))
	pos := 0
	for i, b := range d.Blocks {
		offsets[i] = pos
		pos += len(b.Text) + len(BlockSeparator)
	}
	return offsets
}

// AddHighlight validates span against the document and inserts it in order
func (d *Document) AddHighlight(span HighlightSpan) error {
	text := d.PlainText()
	if err := span.Validate(len(text)); err != nil {
		return err
	}
	if !utf8.RuneStart(byteAt(text, span.Start)) || (span.End < len(text) && !utf8.RuneStart(text[span.End])) {
		return fmt.Errorf("highlight %d-%d splits a character", span.Start, span.End)
	}
	for _, existing := range d.Highlights {
		if existing.Overlaps(span) {
			return fmt.Errorf("highlight %d-%d overlaps %d-%d", span.Start, span.End, existing.Start, existing.End)
		}
	}
	d.Highlights = append(d.Highlights, span)
	sort.Slice(d.Highlights, func(i, j int) bool {
		return d.Highlights[i].Start < d.Highlights[j].Start
	})
	return nil
}

func byteAt(s string, i int) byte {
	if i >= len(s) {
		return 0
	}
	return s[i]
}
