// Package service holds the drafting and review business logic.
//
// SYSTEM ARCHITECTURE ROLE:
// The service is the single owner of matter state. Every interface (CLI, HTTP,
// TUI) goes through it, so guard evaluation, clause insertion and the async
// draft and analysis lanes behave the same everywhere.
//
// KEY RESPONSIBILITIES:
// - Keep a registry of in-memory matters keyed by uuid
// - Hold the current reference library and swap it atomically on reload
// - Provide read-only library views (clauses, drafts, playbook, positions)
// - Copy negotiation positions to the clipboard
//
// INTEGRATION POINTS:
// - internal/library: reference data, search and recommendations
// - internal/renderer: interpolation, clause insertion and exports
// - internal/guardrails: readiness evaluation
// - internal/analysis: the analyzer and request sequencing
// - internal/metrics: counters and the readiness histogram
package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dpshade/contract-desk/internal/analysis"
	"github.com/dpshade/contract-desk/internal/clipboard"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/guardrails"
	"github.com/dpshade/contract-desk/internal/library"
	"github.com/dpshade/contract-desk/internal/metrics"
	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/renderer"
)

// Default simulated delays
const (
	DefaultDraftDelay    = 2 * time.Second
	DefaultAnalysisDelay = analysis.DefaultDelay
)

// Options configure a Service. Zero values select the defaults.
type Options struct {
	Library            *library.Library
	Rules              *guardrails.RuleSet
	Analyzer           analysis.Analyzer // nil means the library's canned analysis
	Clipboard          *clipboard.Copier
	Metrics            *metrics.Metrics
	Logger             *zap.Logger
	Clock              func() time.Time
	DraftDelay         time.Duration
	AnalysisDelay      time.Duration
	DefaultRiskProfile string
}

// Service provides business logic for drafting and review
type Service struct {
	lib      atomic.Pointer[library.Library]
	rules    *guardrails.RuleSet
	analyzer analysis.Analyzer
	clip     *clipboard.Copier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
	engine   *renderer.Engine

	draftDelay     time.Duration
	analysisDelay  time.Duration
	defaultProfile string

	mu      sync.RWMutex
	matters map[string]*Matter
}

// NewService creates a service. A nil library loads the embedded one.
func NewService(opts Options) (*Service, error) {
	lib := opts.Library
	if lib == nil {
		var err error
		lib, err = library.Default()
		if err != nil {
			return nil, errors.LibraryError("load", err)
		}
	}

	rules := opts.Rules
	if rules == nil {
		var err error
		rules, err = guardrails.NewRuleSet(guardrails.DefaultRules()...)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternalError, "invalid guard rules")
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.New(nil)
	}

	s := &Service{
		rules:          rules,
		analyzer:       opts.Analyzer,
		clip:           clip,
		metrics:        opts.Metrics,
		logger:         logger,
		now:            now,
		engine:         renderer.NewEngine(renderer.WithClock(now)),
		draftDelay:     durationOr(opts.DraftDelay, DefaultDraftDelay),
		analysisDelay:  durationOr(opts.AnalysisDelay, DefaultAnalysisDelay),
		defaultProfile: opts.DefaultRiskProfile,
		matters:        make(map[string]*Matter),
	}
	if s.defaultProfile == "" && len(lib.RiskProfiles) > 0 {
		s.defaultProfile = lib.RiskProfiles[0].Value
	}
	s.lib.Store(lib)
	return s, nil
}

// durationOr treats zero as "use the default"; negative means no delay
func durationOr(d, def time.Duration) time.Duration {
	switch {
	case d == 0:
		return def
	case d < 0:
		return 0
	default:
		return d
	}
}

// Library returns the current reference library
func (s *Service) Library() *library.Library {
	return s.lib.Load()
}

// ReplaceLibrary swaps in a reloaded library. Matters keep their documents;
// lookups made after the swap see the new data.
func (s *Service) ReplaceLibrary(lib *library.Library) {
	if lib == nil {
		return
	}
	s.lib.Store(lib)
	if s.metrics != nil {
		s.metrics.LibraryReloads.Inc()
	}
	s.logger.Info("library replaced",
		zap.Int("clauses", len(lib.Clauses)),
		zap.Int("templates", len(lib.Templates)),
		zap.Int("drafts", len(lib.Drafts)))
}

// Rules returns the registered guard rules
func (s *Service) Rules() *guardrails.RuleSet {
	return s.rules
}

// Now returns the service clock's current time
func (s *Service) Now() time.Time {
	return s.now()
}

// NewMatter starts an empty matter with the default contract type and risk profile
func (s *Service) NewMatter() *Matter {
	lib := s.Library()
	m := &Matter{
		id:       uuid.NewString(),
		svc:      s,
		inserted: models.NewClauseSet(),
		created:  s.now(),
	}
	m.updated = m.created
	if len(lib.ContractTypes) > 0 {
		m.fields.ContractType = lib.ContractTypes[0].Value
	}
	m.fields.RiskProfile = s.defaultProfile

	s.mu.Lock()
	s.matters[m.id] = m
	count := len(s.matters)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ActiveMatters.Set(float64(count))
	}
	s.logger.Debug("matter created", zap.String("matter", m.id))
	return m
}

// GetMatter looks up a matter by id
func (s *Service) GetMatter(id string) (*Matter, error) {
	s.mu.RLock()
	m, ok := s.matters[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundError("matter '" + id + "'")
	}
	return m, nil
}

// DeleteMatter drops a matter, superseding any work still in flight for it
func (s *Service) DeleteMatter(id string) error {
	s.mu.Lock()
	m, ok := s.matters[id]
	if ok {
		delete(s.matters, id)
	}
	count := len(s.matters)
	s.mu.Unlock()

	if !ok {
		return errors.NotFoundError("matter '" + id + "'")
	}
	m.Reset()
	if s.metrics != nil {
		s.metrics.ActiveMatters.Set(float64(count))
	}
	s.logger.Debug("matter deleted", zap.String("matter", id))
	return nil
}

// ListMatters returns snapshots ordered by creation time
func (s *Service) ListMatters() []Snapshot {
	s.mu.RLock()
	matters := make([]*Matter, 0, len(s.matters))
	for _, m := range s.matters {
		matters = append(matters, m)
	}
	s.mu.RUnlock()

	out := make([]Snapshot, len(matters))
	for i, m := range matters {
		out[i] = m.Snapshot()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Clauses returns the clause library
func (s *Service) Clauses() []models.Clause {
	return s.Library().Clauses
}

// Clause looks up one clause
func (s *Service) Clause(id string) (models.Clause, error) {
	c, ok := s.Library().Clause(id)
	if !ok {
		return models.Clause{}, errors.NotFoundError("clause '" + id + "'")
	}
	return c, nil
}

// SearchClauses fuzzy-matches clause titles and triggers
func (s *Service) SearchClauses(query string) []models.Clause {
	return s.Library().SearchClauses(query)
}

// Search fuzzy-matches clauses and prebuilt drafts
func (s *Service) Search(query string) []library.SearchHit {
	return s.Library().Search(query)
}

// Drafts returns the prebuilt drafts in display order
func (s *Service) Drafts() []models.PrebuiltDraft {
	return s.Library().Drafts
}

// Playbook returns the matter playbook
func (s *Service) Playbook() []models.PlaybookStep {
	return s.Library().Playbook
}

// Positions returns the negotiation positions
func (s *Service) Positions() []models.NegotiationPosition {
	return s.Library().Positions
}

// ContractTypes returns the selectable contract types
func (s *Service) ContractTypes() []models.ContractType {
	return s.Library().ContractTypes
}

// RiskProfiles returns the selectable risk profiles
func (s *Service) RiskProfiles() []models.RiskProfile {
	return s.Library().RiskProfiles
}

// CopyResult reports a position copy
type CopyResult struct {
	Position models.NegotiationPosition `json:"position"`
	Copied   bool                       `json:"copied"`
	Notice   Notice                     `json:"notice"`
}

// CopyPosition puts the firm position on the clipboard. With no clipboard the
// result is still a success and the caller shows the text.
func (s *Service) CopyPosition(id string) (CopyResult, error) {
	pos, ok := s.Library().Position(id)
	if !ok {
		return CopyResult{}, errors.NotFoundError("position '" + id + "'")
	}

	outcome, err := s.clip.Copy(pos.FirmPosition)
	if err != nil {
		s.logger.Warn("clipboard write failed", zap.String("position", id), zap.Error(err))
		return CopyResult{Position: pos}, errors.ClipboardError(err)
	}
	return CopyResult{
		Position: pos,
		Copied:   outcome == clipboard.Copied,
		Notice:   success(outcome.Message()),
	}, nil
}

// analyze runs the configured analyzer, or the library's canned analysis
func (s *Service) analyze(ctx context.Context, upload models.Upload) (models.RiskAnalysis, error) {
	if s.analyzer != nil {
		return s.analyzer.Analyze(ctx, upload)
	}
	return analysis.NewMockAnalyzer(s.Library().Analysis, s.analysisDelay).Analyze(ctx, upload)
}

func (s *Service) observeReadiness(r models.ReadinessResult) {
	if s.metrics != nil {
		s.metrics.Readiness.Observe(float64(r.Percentage))
	}
}
