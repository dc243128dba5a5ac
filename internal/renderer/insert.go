package renderer

import "github.com/dpshade/contract-desk/internal/models"

// InsertOutcome reports what InsertClause did
type InsertOutcome int

const (
	// InsertApplied means the heading and text were appended
	InsertApplied InsertOutcome = iota
	// InsertDuplicate means the clause heading was already present
	InsertDuplicate
	// InsertNoDocument means there was no base draft to attach to
	InsertNoDocument
)

func (o InsertOutcome) String() string {
	switch o {
	case InsertApplied:
		return "applied"
	case InsertDuplicate:
		return "duplicate"
	case InsertNoDocument:
		return "no_document"
	default:
		return "unknown"
	}
}

// InsertClause appends the clause as a heading and paragraph. The input
// document is never modified; unchanged cases return it as given.
func InsertClause(doc models.Document, clause models.Clause) (models.Document, InsertOutcome) {
	if doc.IsEmpty() {
		return doc, InsertNoDocument
	}
	heading := clause.Heading()
	if doc.HasHeading(heading) {
		return doc, InsertDuplicate
	}
	out := doc.Clone()
	out.Blocks = append(out.Blocks,
		models.Block{Kind: models.BlockHeading, Text: heading},
		models.Block{Kind: models.BlockParagraph, Text: clause.StandardText},
	)
	return out, InsertApplied
}
