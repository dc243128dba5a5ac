package renderer

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dpshade/contract-desk/internal/models"
)

// Placeholder binds a bracketed template token to a form field
type Placeholder struct {
	Token string
	Key   models.FieldKey
}

// DateToken is replaced with the engine's current date
const DateToken = "[DATE]"

// DateLayout matches the short US date used on generated drafts
const DateLayout = "1/2/2006"

// Placeholders lists every token the engine resolves. Tokens never overlap.
var Placeholders = []Placeholder{
	{Token: "[First Party Name]", Key: models.FieldFirstParty},
	{Token: "[Second Party Name]", Key: models.FieldSecondParty},
	{Token: "[industry]", Key: models.FieldIndustry},
	{Token: "[business purpose]", Key: models.FieldBusinessPurpose},
	{Token: "[Term Duration]", Key: models.FieldTermDuration},
	{Token: "[Jurisdiction]", Key: models.FieldGoverningLaw},
}

var tokenRE = regexp.MustCompile(`\[[^\[\]\n]+\]`)

// DefaultFallbacks are substituted when the matter leaves a field blank
func DefaultFallbacks() models.FieldMap {
	return models.FieldMap{
		Industry:        "general services",
		BusinessPurpose: "professional services",
		TermDuration:    "12 months",
	}
}

// Engine fills templates and segments the result into blocks
type Engine struct {
	now        func() time.Time
	dateLayout string
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the time source used for DateToken
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithDateLayout overrides the date format
func WithDateLayout(layout string) Option {
	return func(e *Engine) {
		e.dateLayout = layout
	}
}

// NewEngine creates an engine using the wall clock
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, dateLayout: DateLayout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Substitute replaces every known token. A field value wins over its default;
// when both are empty the token is left in place.
func (e *Engine) Substitute(tmpl string, fields, defaults models.FieldMap) string {
	pairs := []string{DateToken, e.now().Format(e.dateLayout)}
	for _, p := range Placeholders {
		value := fields.Get(p.Key)
		if value == "" {
			value = defaults.Get(p.Key)
		}
		if value == "" {
			continue
		}
		pairs = append(pairs, p.Token, value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Interpolate substitutes tokens and splits the text into blocks
func (e *Engine) Interpolate(tmpl string, fields, defaults models.FieldMap) models.Document {
	return models.Document{Blocks: SplitBlocks(e.Substitute(tmpl, fields, defaults))}
}

// SplitBlocks segments text on blank lines, dropping empty units
func SplitBlocks(text string) []models.Block {
	units := strings.Split(text, models.BlockSeparator)
	blocks := make([]models.Block, 0, len(units))
	for _, unit := range units {
		trimmed := strings.TrimSpace(unit)
		if trimmed == "" {
			continue
		}
		blocks = append(blocks, models.Block{Kind: Classify(trimmed), Text: trimmed})
	}
	return blocks
}

// Classify treats short all-caps units as headings
func Classify(unit string) models.BlockKind {
	trimmed := strings.TrimSpace(unit)
	if trimmed == strings.ToUpper(trimmed) && utf8.RuneCountInString(trimmed) < models.HeadingMaxLength {
		return models.BlockHeading
	}
	return models.BlockParagraph
}

// UnresolvedTokens lists distinct bracketed tokens left in text, in order of appearance
func UnresolvedTokens(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokenRE.FindAllString(text, -1) {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
