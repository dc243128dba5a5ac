// Package analysis runs contract risk analysis for uploaded documents.
//
// The only analyzer shipped is MockAnalyzer, which waits for a configurable
// delay and returns a copy of a canned result. Callers pair it with a
// Sequencer so that a slow result never overwrites newer matter state.
package analysis

import (
	"context"
	"time"

	"github.com/dpshade/contract-desk/internal/models"
)

// DefaultDelay is the simulated analysis time
const DefaultDelay = 2500 * time.Millisecond

// Analyzer scores an uploaded contract
type Analyzer interface {
	Analyze(ctx context.Context, upload models.Upload) (models.RiskAnalysis, error)
}

// MockAnalyzer returns Result after Delay regardless of the upload contents
type MockAnalyzer struct {
	Result models.RiskAnalysis
	Delay  time.Duration
}

// NewMockAnalyzer creates an analyzer for a canned result
func NewMockAnalyzer(result models.RiskAnalysis, delay time.Duration) *MockAnalyzer {
	return &MockAnalyzer{Result: result, Delay: delay}
}

// Analyze waits for the delay or for ctx to end
func (m *MockAnalyzer) Analyze(ctx context.Context, _ models.Upload) (models.RiskAnalysis, error) {
	if err := Sleep(ctx, m.Delay); err != nil {
		return models.RiskAnalysis{}, err
	}
	return m.Result.Clone(), nil
}

// Sleep blocks for d, returning ctx.Err() if ctx ends first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
