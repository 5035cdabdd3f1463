// Package interfaces defines service contracts for Valora
package interfaces

import (
	"context"

	"github.com/bobmcallan/valora/internal/models"
)

// ScoringService orchestrates the analyzers into composite and moat outputs.
type ScoringService interface {
	// Score runs the five composite analyzers against a snapshot and
	// combines them into a CompositeScore. Analyzer failures degrade to
	// fallback sub-scores; Score itself fails only on a nil snapshot.
	Score(ctx context.Context, snapshot *models.FinancialSnapshot) (*models.CompositeScore, error)

	// MoatProfile scores structural competitive advantage for a snapshot.
	// It is an independent overlay, never blended into the composite.
	MoatProfile(snapshot *models.FinancialSnapshot) (*models.MoatProfile, error)

	// ScoreUniverse scores many tickers concurrently, loading each
	// snapshot through the configured provider.
	ScoreUniverse(ctx context.Context, tickers []string) ([]*models.CompositeScore, error)
}

// SnapshotProvider supplies read-only snapshots assembled by upstream
// collectors. Implementations live outside the scoring core.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error)
}

// ValuationEngine produces DCF valuations.
type ValuationEngine interface {
	// Valuation runs the full DCF pipeline. It returns
	// *models.InvalidAssumptionsError when terminal growth meets or
	// exceeds the discount rate.
	Valuation(snapshot *models.FinancialSnapshot, assumptions models.DCFAssumptions) (*models.DCFResult, error)
}

// RiskAnalyzer computes statistical risk metrics from aligned price series.
type RiskAnalyzer interface {
	Profile(snapshot *models.FinancialSnapshot) (*models.RiskProfile, error)
}
