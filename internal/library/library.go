// Package library holds the firm's reference material: contract types, risk
// profiles, the drafting playbook, the clause library, base templates,
// prebuilt drafts, negotiation positions and the canned risk analysis.
//
// SYSTEM ARCHITECTURE ROLE:
// The library is read-only data shared by every matter. The service layer
// holds one *Library at a time and swaps it atomically when the override
// directory changes.
//
// KEY RESPONSIBILITIES:
// - Parse the embedded data set and any on-disk override directory
// - Resolve the template that serves a contract type
// - Fuzzy search across clauses and drafts, and recommend clauses from triggers
// - Validate that a library is complete enough to draft with
//
// INTEGRATION POINTS:
// - internal/service: lookups for generate, insert, load draft and positions
// - internal/analysis: the canned RiskAnalysis feeds the mock analyzer
// - cmd/library-check: Validate and Scaffold for override directories
//
// USAGE PATTERNS:
// - Default() for the embedded library
// - LoadWithOverrides(dir) when a library directory is configured
// - NewWatcher(dir, ...) to reload on change
package library

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/contract-desk/internal/models"
)

//go:embed data
var embedded embed.FS

// Data file layout shared by the embedded set and override directories
const (
	CatalogFile   = "catalog.yaml"
	ClausesFile   = "clauses.yaml"
	PositionsFile = "positions.yaml"
	AnalysisFile  = "analysis.yaml"

	TemplatesPattern = "templates/**/*.md"
	DraftsPattern    = "drafts/**/*.md"
)

// Library is an immutable snapshot of the reference data
type Library struct {
	ContractTypes []models.ContractType        `yaml:"contract_types" json:"contractTypes"`
	RiskProfiles  []models.RiskProfile         `yaml:"risk_profiles" json:"riskProfiles"`
	Playbook      []models.PlaybookStep        `yaml:"playbook" json:"playbook"`
	Clauses       []models.Clause              `yaml:"clauses" json:"clauses"`
	Templates     []models.ContractTemplate    `yaml:"-" json:"templates"`
	Drafts        []models.PrebuiltDraft       `yaml:"-" json:"drafts"`
	Positions     []models.NegotiationPosition `yaml:"positions" json:"positions"`
	Analysis      models.RiskAnalysis          `yaml:"-" json:"analysis"`

	hasAnalysis bool
}

type catalogFile struct {
	ContractTypes []models.ContractType `yaml:"contract_types"`
	RiskProfiles  []models.RiskProfile  `yaml:"risk_profiles"`
	Playbook      []models.PlaybookStep `yaml:"playbook"`
}

// EmbeddedFS exposes the built-in data set rooted at its data directory
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(fmt.Sprintf("embedded library: %v", err))
	}
	return sub
}

// Default loads the embedded library
func Default() (*Library, error) {
	return Load(EmbeddedFS())
}

// Load parses a complete library from fsys
func Load(fsys fs.FS) (*Library, error) {
	return load(fsys, false)
}

// LoadWithOverrides loads the embedded library and overlays dir on top of it.
// Entries in dir replace embedded entries with the same id; new ids are
// appended. Files missing from dir leave the embedded data untouched.
func LoadWithOverrides(dir string) (*Library, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return base, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("library directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library directory %s is not a directory", dir)
	}

	overlay, err := load(os.DirFS(dir), true)
	if err != nil {
		return nil, fmt.Errorf("library overrides in %s: %w", dir, err)
	}
	merged := base.Overlay(overlay)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("library overrides in %s: %w", dir, err)
	}
	return merged, nil
}

func load(fsys fs.FS, partial bool) (*Library, error) {
	lib := &Library{}

	var catalog catalogFile
	if err := readYAML(fsys, CatalogFile, &catalog, partial); err != nil {
		return nil, err
	}
	lib.ContractTypes = catalog.ContractTypes
	lib.RiskProfiles = catalog.RiskProfiles
	lib.Playbook = catalog.Playbook

	var clauses struct {
		Clauses []models.Clause `yaml:"clauses"`
	}
	if err := readYAML(fsys, ClausesFile, &clauses, partial); err != nil {
		return nil, err
	}
	lib.Clauses = clauses.Clauses

	var positions struct {
		Positions []models.NegotiationPosition `yaml:"positions"`
	}
	if err := readYAML(fsys, PositionsFile, &positions, partial); err != nil {
		return nil, err
	}
	lib.Positions = positions.Positions

	if _, err := fs.Stat(fsys, AnalysisFile); err == nil || !partial {
		if err := readYAML(fsys, AnalysisFile, &lib.Analysis, false); err != nil {
			return nil, err
		}
		lib.hasAnalysis = true
	}

	templates, err := loadDocuments(fsys, TemplatesPattern, parseTemplateFile, func(t *models.ContractTemplate, path string) { t.FilePath = path })
	if err != nil {
		return nil, err
	}
	lib.Templates = templates

	drafts, err := loadDocuments(fsys, DraftsPattern, parseDraftFile, func(d *models.PrebuiltDraft, path string) { d.FilePath = path })
	if err != nil {
		return nil, err
	}
	sortDrafts(drafts)
	lib.Drafts = drafts

	if !partial {
		if err := lib.Validate(); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func readYAML(fsys fs.FS, name string, out any, optional bool) error {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func loadDocuments[T any](fsys fs.FS, pattern string, parse func([]byte) (T, error), setPath func(*T, string)) ([]T, error) {
	paths, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", pattern, err)
	}
	sort.Strings(paths)

	out := make([]T, 0, len(paths))
	for _, path := range paths {
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		doc, err := parse(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		setPath(&doc, path)
		out = append(out, doc)
	}
	return out, nil
}

func sortDrafts(drafts []models.PrebuiltDraft) {
	sort.SliceStable(drafts, func(i, j int) bool {
		if drafts[i].Order != drafts[j].Order {
			return drafts[i].Order < drafts[j].Order
		}
		return drafts[i].ID < drafts[j].ID
	})
}

// Overlay returns a new library with other's entries merged over l's
func (l *Library) Overlay(other *Library) *Library {
	out := &Library{
		ContractTypes: mergeByID(l.ContractTypes, other.ContractTypes, func(c models.ContractType) string { return c.Value }),
		RiskProfiles:  mergeByID(l.RiskProfiles, other.RiskProfiles, func(p models.RiskProfile) string { return p.Value }),
		Playbook:      mergeByID(l.Playbook, other.Playbook, func(s models.PlaybookStep) string { return s.ID }),
		Clauses:       mergeByID(l.Clauses, other.Clauses, func(c models.Clause) string { return c.ID }),
		Templates:     mergeByID(l.Templates, other.Templates, func(t models.ContractTemplate) string { return t.ID }),
		Drafts:        mergeByID(l.Drafts, other.Drafts, func(d models.PrebuiltDraft) string { return d.ID }),
		Positions:     mergeByID(l.Positions, other.Positions, func(p models.NegotiationPosition) string { return p.ID }),
		Analysis:      l.Analysis.Clone(),
		hasAnalysis:   l.hasAnalysis,
	}
	if other.hasAnalysis {
		out.Analysis = other.Analysis.Clone()
		out.hasAnalysis = true
	}
	sortDrafts(out.Drafts)
	return out
}

func mergeByID[T any](base, over []T, id func(T) string) []T {
	out := append([]T(nil), base...)
	index := make(map[string]int, len(out))
	for i, item := range out {
		index[id(item)] = i
	}
	for _, item := range over {
		if i, ok := index[id(item)]; ok {
			out[i] = item
			continue
		}
		index[id(item)] = len(out)
		out = append(out, item)
	}
	return out
}

// Validate reports every structural problem in the library
func (l *Library) Validate() error {
	var errs []error

	if len(l.ContractTypes) == 0 {
		errs = append(errs, errors.New("no contract types defined"))
	}
	if len(l.Templates) == 0 {
		errs = append(errs, errors.New("no templates defined"))
	}
	for _, ct := range l.ContractTypes {
		if _, ok := l.Template(ct.Value); !ok {
			errs = append(errs, fmt.Errorf("contract type %q has no template", ct.Value))
		}
	}

	errs = append(errs, duplicateIDs("contract type", l.ContractTypes, func(c models.ContractType) string { return c.Value })...)
	errs = append(errs, duplicateIDs("risk profile", l.RiskProfiles, func(p models.RiskProfile) string { return p.Value })...)
	errs = append(errs, duplicateIDs("playbook step", l.Playbook, func(s models.PlaybookStep) string { return s.ID })...)
	errs = append(errs, duplicateIDs("clause", l.Clauses, func(c models.Clause) string { return c.ID })...)
	errs = append(errs, duplicateIDs("template", l.Templates, func(t models.ContractTemplate) string { return t.ID })...)
	errs = append(errs, duplicateIDs("draft", l.Drafts, func(d models.PrebuiltDraft) string { return d.ID })...)
	errs = append(errs, duplicateIDs("position", l.Positions, func(p models.NegotiationPosition) string { return p.ID })...)

	for _, c := range l.Clauses {
		if c.Title == "" || c.StandardText == "" {
			errs = append(errs, fmt.Errorf("clause %q needs a title and standard text", c.ID))
		}
		if !c.RiskLevel.Valid() {
			errs = append(errs, fmt.Errorf("clause %q has invalid risk level %q", c.ID, c.RiskLevel))
		}
	}
	for _, d := range l.Drafts {
		if d.Contract == "" {
			errs = append(errs, fmt.Errorf("draft %q has no contract text", d.ID))
		}
		if ct := d.FormDefaults.ContractType; ct != "" && !l.hasContractType(ct) {
			errs = append(errs, fmt.Errorf("draft %q uses unknown contract type %q", d.ID, ct))
		}
	}
	for _, s := range l.Playbook {
		switch s.Status {
		case models.StepInProgress, models.StepPending, models.StepUpcoming, models.StepComplete:
		default:
			errs = append(errs, fmt.Errorf("playbook step %q has invalid status %q", s.ID, s.Status))
		}
	}
	if err := l.Analysis.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("analysis: %w", err))
	}

	return errors.Join(errs...)
}

func duplicateIDs[T any](kind string, items []T, id func(T) string) []error {
	var errs []error
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := id(item)
		if key == "" {
			errs = append(errs, fmt.Errorf("%s with empty id", kind))
			continue
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate %s %q", kind, key))
		}
		seen[key] = true
	}
	return errs
}

func (l *Library) hasContractType(value string) bool {
	for _, ct := range l.ContractTypes {
		if ct.Value == value {
			return true
		}
	}
	return false
}

// Clause finds a clause by id
func (l *Library) Clause(id string) (models.Clause, bool) {
	for _, c := range l.Clauses {
		if c.ID == id {
			return c, true
		}
	}
	return models.Clause{}, false
}

// Template resolves the template for a contract type: a dedicated template
// declaring the type, else the fallback template, else the first template.
// A fallback template that also lists the type never shadows a dedicated one.
func (l *Library) Template(contractType string) (models.ContractTemplate, bool) {
	if len(l.Templates) == 0 {
		return models.ContractTemplate{}, false
	}
	for _, t := range l.Templates {
		if !t.Fallback && t.Serves(contractType) {
			return t, true
		}
	}
	for _, t := range l.Templates {
		if t.Fallback {
			return t, true
		}
	}
	return l.Templates[0], true
}

// Draft finds a prebuilt draft by id
func (l *Library) Draft(id string) (models.PrebuiltDraft, bool) {
	for _, d := range l.Drafts {
		if d.ID == id {
			return d, true
		}
	}
	return models.PrebuiltDraft{}, false
}

// Profile finds a risk profile by value
func (l *Library) Profile(value string) (models.RiskProfile, bool) {
	for _, p := range l.RiskProfiles {
		if p.Value == value {
			return p, true
		}
	}
	return models.RiskProfile{}, false
}

// Position finds a negotiation position by id
func (l *Library) Position(id string) (models.NegotiationPosition, bool) {
	for _, p := range l.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return models.NegotiationPosition{}, false
}

// ContractTypeLabel returns the display label for a contract type value
func (l *Library) ContractTypeLabel(value string) string {
	for _, ct := range l.ContractTypes {
		if ct.Value == value {
			return ct.Label
		}
	}
	return value
}
