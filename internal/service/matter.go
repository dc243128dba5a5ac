package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dpshade/contract-desk/internal/analysis"
	"github.com/dpshade/contract-desk/internal/errors"
	"github.com/dpshade/contract-desk/internal/library"
	"github.com/dpshade/contract-desk/internal/metrics"
	"github.com/dpshade/contract-desk/internal/models"
	"github.com/dpshade/contract-desk/internal/renderer"
)

// NoticeKind distinguishes success toasts from neutral ones
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
)

// Notice is the user-facing message for a completed operation
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

func success(msg string) Notice { return Notice{Kind: NoticeSuccess, Message: msg} }

func info(msg string) Notice { return Notice{Kind: NoticeInfo, Message: msg} }

// Export is a rendered download
type Export struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
	Notice      Notice `json:"notice"`
}

// Matter is one drafting and review session. All mutation goes through the
// matter's mutex; async results land only if their sequencer ticket is current.
type Matter struct {
	id  string
	svc *Service

	mu       sync.Mutex
	fields   models.FieldMap
	document models.Document
	inserted models.ClauseSet
	upload   *models.Upload
	analysis *models.RiskAnalysis

	drafts     analysis.Sequencer
	analyses   analysis.Sequencer
	generating analysis.Ticket
	analyzing  analysis.Ticket

	created time.Time
	updated time.Time
}

// ID returns the matter's uuid
func (m *Matter) ID() string {
	return m.id
}

func (m *Matter) touch() {
	m.updated = m.svc.now()
}

func (m *Matter) logger() *zap.Logger {
	return m.svc.logger.With(zap.String("matter", m.id))
}

// Fields returns a copy of the form values
func (m *Matter) Fields() models.FieldMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fields
}

// SetField stores one form value
func (m *Matter) SetField(key models.FieldKey, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fields.Set(key, value); err != nil {
		return errors.ValidationError(err.Error())
	}
	m.touch()
	return nil
}

// SetFields stores several values at once. Unknown keys reject the whole
// update; an empty value clears its field.
func (m *Matter) SetFields(values map[string]string) error {
	updates := make(map[models.FieldKey]string, len(values))
	for name, value := range values {
		key, ok := models.ParseFieldKey(name)
		if !ok {
			return errors.ValidationError(fmt.Sprintf("unknown field %q", name))
		}
		updates[key] = value
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, value := range updates {
		_ = m.fields.Set(key, value)
	}
	m.touch()
	return nil
}

// Document returns a copy of the current draft
func (m *Matter) Document() models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.document.Clone()
}

// Inserted returns the ids of clauses inserted since the last generate or load
func (m *Matter) Inserted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserted.IDs()
}

// Generate fills the contract type's template after the draft delay. A later
// Generate, LoadDraft, ReplaceDocument or Reset supersedes this one, in which
// case the result is dropped with a STALE_RESULT guidance error.
func (m *Matter) Generate(ctx context.Context) (Notice, error) {
	lib := m.svc.Library()

	m.mu.Lock()
	fields := m.fields
	if !fields.Has(models.FieldClientName) || !fields.Has(models.FieldFirstParty) || !fields.Has(models.FieldSecondParty) {
		m.mu.Unlock()
		return Notice{}, errors.MissingPartiesError()
	}
	tmpl, ok := lib.Template(fields.ContractType)
	if !ok {
		m.mu.Unlock()
		return Notice{}, errors.LibraryError("template", fmt.Errorf("no template for contract type %q", fields.ContractType))
	}
	ticket := m.drafts.Begin()
	m.generating = ticket
	m.mu.Unlock()

	log := m.logger()
	log.Debug("generating draft", zap.String("template", tmpl.ID), zap.String("contract_type", fields.ContractType))

	err := analysis.Sleep(ctx, m.svc.draftDelay)
	// a superseded request skips rendering; Commit below rejects it anyway
	var doc models.Document
	if err == nil && m.drafts.Current(ticket) {
		doc = m.svc.engine.Interpolate(tmpl.Content, fields, renderer.DefaultFallbacks().Merge(tmpl.Defaults))
		if open := renderer.UnresolvedTokens(doc.PlainText()); len(open) > 0 {
			log.Warn("draft has unfilled placeholders", zap.String("template", tmpl.ID), zap.Strings("tokens", open))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generating == ticket {
		m.generating = 0
	}
	if err != nil {
		log.Debug("draft cancelled", zap.Error(err))
		return Notice{}, errors.CancelledError("generate", err)
	}

	applied := m.drafts.Commit(ticket, func() {
		m.document = doc
		m.inserted = models.NewClauseSet()
		m.touch()
	})
	if !applied {
		log.Debug("draft superseded")
		return Notice{}, errors.StaleResultError("generate")
	}

	if m.svc.metrics != nil {
		m.svc.metrics.DraftsGenerated.Inc()
	}
	log.Info("draft generated", zap.Int("blocks", len(doc.Blocks)))
	return success("Contract generated successfully."), nil
}

// InsertClause appends a library clause to the draft. A clause already in the
// draft yields a neutral notice and still counts as inserted.
func (m *Matter) InsertClause(id string) (Notice, error) {
	clause, ok := m.svc.Library().Clause(id)
	if !ok {
		return Notice{}, errors.NotFoundError("clause '" + id + "'")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, outcome := renderer.InsertClause(m.document, clause)
	if m.svc.metrics != nil {
		m.svc.metrics.ClausesInserted.WithLabelValues(outcome.String()).Inc()
	}

	switch outcome {
	case renderer.InsertNoDocument:
		return Notice{}, errors.NoDocumentForClauseError()
	case renderer.InsertDuplicate:
		m.inserted = m.inserted.With(id)
		m.touch()
		return info(clause.Title + " clause is already in the draft."), nil
	default:
		m.document = doc
		m.inserted = m.inserted.With(id)
		m.touch()
		m.logger().Debug("clause inserted", zap.String("clause", id))
		return success(clause.Title + " clause inserted into the draft."), nil
	}
}

// LoadDraft replaces the draft with a prebuilt agreement and merges its form
// defaults over the current fields
func (m *Matter) LoadDraft(id string) (Notice, error) {
	draft, ok := m.svc.Library().Draft(id)
	if !ok {
		return Notice{}, errors.NotFoundError("draft '" + id + "'")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts.Invalidate()
	m.generating = 0
	m.fields = m.fields.Merge(draft.FormDefaults)
	m.document = models.Document{Blocks: renderer.SplitBlocks(draft.Contract)}
	m.inserted = models.NewClauseSet()
	m.touch()

	if m.svc.metrics != nil {
		m.svc.metrics.DraftsGenerated.Inc()
	}
	m.logger().Info("draft loaded", zap.String("draft", id))
	return success(draft.Name + " loaded into the draft preview."), nil
}

// ReplaceDocument stores an edited document. Highlights are revalidated
// against the new text.
func (m *Matter) ReplaceDocument(doc models.Document) error {
	clean := models.Document{Blocks: append([]models.Block(nil), doc.Blocks...)}
	for _, span := range doc.Highlights {
		if err := clean.AddHighlight(span); err != nil {
			return errors.ValidationError(err.Error())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts.Invalidate()
	m.generating = 0
	m.document = clean
	m.touch()
	return nil
}

// ReplaceHTML parses editor HTML and stores it as the document
func (m *Matter) ReplaceHTML(r io.Reader) error {
	doc, err := renderer.ParseHTML(r)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidFormat, "Unable to parse the edited document")
	}
	return m.ReplaceDocument(doc)
}

// Readiness evaluates the guard rules against the current fields and clauses
func (m *Matter) Readiness() models.ReadinessResult {
	m.mu.Lock()
	state := models.MatterState{Fields: m.fields, Inserted: m.inserted.Clone()}
	m.mu.Unlock()

	result := m.svc.rules.Evaluate(state)
	m.svc.observeReadiness(result)
	return result
}

// Recommend suggests clauses whose triggers match the matter's context,
// skipping those already inserted
func (m *Matter) Recommend() []library.Recommendation {
	m.mu.Lock()
	fields := m.fields
	skip := m.inserted.Clone()
	m.mu.Unlock()
	return m.svc.Library().Recommend(fields, skip)
}

// Upload records the contract to review. A new upload supersedes any analysis
// in flight and clears the previous result.
func (m *Matter) Upload(u models.Upload) error {
	if !u.Accepted() {
		return errors.UnsupportedFileError(u.MimeType)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses.Invalidate()
	m.analyzing = 0
	m.upload = &u
	m.analysis = nil
	m.touch()
	m.logger().Info("contract uploaded", zap.String("file", u.Filename), zap.Int64("bytes", u.SizeBytes))
	return nil
}

// Analyze scores the uploaded contract. Only the most recent request applies.
func (m *Matter) Analyze(ctx context.Context) (models.RiskAnalysis, Notice, error) {
	m.mu.Lock()
	if m.upload == nil {
		m.mu.Unlock()
		return models.RiskAnalysis{}, Notice{}, errors.NoUploadError()
	}
	upload := *m.upload
	ticket := m.analyses.Begin()
	m.analyzing = ticket
	m.mu.Unlock()

	result, err := m.svc.analyze(ctx, upload)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.analyzing == ticket {
		m.analyzing = 0
	}
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			m.countAnalysis(metrics.AnalysisCancelled)
			return models.RiskAnalysis{}, Notice{}, errors.CancelledError("analysis", err)
		}
		return models.RiskAnalysis{}, Notice{}, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "Contract analysis failed")
	}

	applied := m.analyses.Commit(ticket, func() {
		m.analysis = &result
		m.touch()
	})
	if !applied {
		m.countAnalysis(metrics.AnalysisStale)
		return models.RiskAnalysis{}, Notice{}, errors.StaleResultError("analysis")
	}

	m.countAnalysis(metrics.AnalysisApplied)
	m.logger().Info("analysis complete",
		zap.String("overall_risk", string(result.OverallRisk)),
		zap.Int("score", result.Score))
	return result.Clone(), success("Contract analysis complete."), nil
}

func (m *Matter) countAnalysis(result string) {
	if m.svc.metrics != nil {
		m.svc.metrics.Analyses.WithLabelValues(result).Inc()
	}
}

// Analysis returns the applied analysis, if any
func (m *Matter) Analysis() (models.RiskAnalysis, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.analysis == nil {
		return models.RiskAnalysis{}, false
	}
	return m.analysis.Clone(), true
}

// Export renders the draft for download
func (m *Matter) Export(format renderer.Format) (Export, error) {
	m.mu.Lock()
	doc := m.document.Clone()
	fields := m.fields
	m.mu.Unlock()

	if doc.IsEmpty() {
		return Export{}, errors.NoDocumentForExportError()
	}

	r := renderer.NewRenderer(doc, fields)
	content, err := r.Render(format)
	if err != nil {
		return Export{}, errors.ExportError(string(format), err)
	}
	return Export{
		Filename:    r.Filename(format),
		ContentType: contentType(format),
		Content:     content,
		Notice:      success("Contract downloaded."),
	}, nil
}

func contentType(format renderer.Format) string {
	switch format {
	case renderer.FormatHTML:
		return "text/html; charset=utf-8"
	case renderer.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case renderer.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Report renders the risk analysis report
func (m *Matter) Report() (Export, error) {
	a, ok := m.Analysis()
	if !ok {
		return Export{}, errors.NoAnalysisError()
	}
	return Export{
		Filename:    renderer.ReportFilename,
		ContentType: "text/plain; charset=utf-8",
		Content:     renderer.RiskReport(a, m.svc.now()),
		Notice:      success("Report downloaded."),
	}, nil
}

// Reset clears the matter back to a fresh form and supersedes in-flight work
func (m *Matter) Reset() {
	lib := m.svc.Library()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts.Invalidate()
	m.analyses.Invalidate()
	m.generating, m.analyzing = 0, 0

	m.fields = models.FieldMap{RiskProfile: m.svc.defaultProfile}
	if len(lib.ContractTypes) > 0 {
		m.fields.ContractType = lib.ContractTypes[0].Value
	}
	m.document = models.Document{}
	m.inserted = models.NewClauseSet()
	m.upload = nil
	m.analysis = nil
	m.touch()
}
