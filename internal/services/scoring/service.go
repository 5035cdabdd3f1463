// Package scoring orchestrates the five composite analyzers and the moat
// overlay into serializable score objects.
package scoring

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/valora/internal/analysis/fundamental"
	"github.com/bobmcallan/valora/internal/analysis/moat"
	"github.com/bobmcallan/valora/internal/analysis/risk"
	"github.com/bobmcallan/valora/internal/analysis/sentiment"
	"github.com/bobmcallan/valora/internal/analysis/valuation"
	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/interfaces"
	"github.com/bobmcallan/valora/internal/models"
	"github.com/bobmcallan/valora/internal/signals"
)

// dataQualityThreshold is the fallback count at which a composite score is
// flagged as degraded.
const dataQualityThreshold = 2

// Service wires the analyzers together behind interfaces.ScoringService.
type Service struct {
	config    *common.Config
	snapshots interfaces.SnapshotProvider
	limiter   *rate.Limiter

	valuationEngine *valuation.Engine
	riskAnalyzer    *risk.Analyzer
	fundAnalyzer    *fundamental.Analyzer
	moatAnalyzer    *moat.Analyzer
	sentAnalyzer    *sentiment.Analyzer
	technical       *signals.Computer

	logger *common.Logger
}

// NewService builds the scoring service. The snapshot provider may be nil
// when only Score and MoatProfile are used.
func NewService(config *common.Config, snapshots interfaces.SnapshotProvider, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	rps := config.Snapshots.RateLimit
	if rps <= 0 {
		rps = 10
	}

	return &Service{
		config:          config,
		snapshots:       snapshots,
		limiter:         rate.NewLimiter(rate.Limit(rps), rps),
		valuationEngine: valuation.NewEngine(config.Valuation, logger),
		riskAnalyzer:    risk.NewAnalyzer(config.Risk, logger),
		fundAnalyzer:    fundamental.NewAnalyzer(config.Valuation, logger),
		moatAnalyzer:    moat.NewAnalyzer(config.Moat, logger),
		sentAnalyzer:    sentiment.NewAnalyzer(logger),
		technical:       signals.NewComputer(),
		logger:          logger,
	}
}

// analyzerResult carries one dimension's outcome across the fan-in barrier.
type analyzerResult struct {
	dimension string
	score     float64
	err       error

	valuation   *models.DCFResult
	risk        *models.RiskProfile
	fundamental *models.FundamentalBreakdown
}

// Score runs the five analyzers concurrently against the snapshot, joins
// them, and combines the clamped sub-scores into the weighted composite.
// Analyzer errors, timeouts, and panics each degrade that one dimension to
// the neutral fallback of 50 with fallback provenance.
func (s *Service) Score(ctx context.Context, snapshot *models.FinancialSnapshot) (*models.CompositeScore, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	start := time.Now()
	timeout := s.config.Scoring.GetAnalyzerTimeout()

	runs := []struct {
		dimension string
		run       func() analyzerResult
	}{
		{models.DimensionFundamental, func() analyzerResult {
			score, breakdown, err := s.fundAnalyzer.Score(snapshot)
			return analyzerResult{score: score, fundamental: breakdown, err: err}
		}},
		{models.DimensionValuation, func() analyzerResult {
			result, err := s.valuationEngine.Valuation(snapshot, s.assumptionsFor(snapshot))
			if err != nil {
				return analyzerResult{err: err}
			}
			return analyzerResult{score: valuationScore(result), valuation: result}
		}},
		{models.DimensionTechnical, func() analyzerResult {
			score, _, err := s.technical.Score(snapshot)
			return analyzerResult{score: score, err: err}
		}},
		{models.DimensionSentiment, func() analyzerResult {
			score, err := s.sentAnalyzer.Score(snapshot)
			return analyzerResult{score: score, err: err}
		}},
		{models.DimensionRisk, func() analyzerResult {
			profile, err := s.riskAnalyzer.Profile(snapshot)
			if err != nil {
				return analyzerResult{err: err}
			}
			return analyzerResult{score: profile.Score, risk: profile}
		}},
	}

	resultChan := make(chan analyzerResult, len(runs))
	for _, r := range runs {
		go func(dimension string, run func() analyzerResult) {
			resultChan <- s.runBounded(ctx, dimension, timeout, run)
		}(r.dimension, r.run)
	}

	results := make(map[string]analyzerResult, len(runs))
	for range runs {
		result := <-resultChan
		results[result.dimension] = result
	}
	close(resultChan)

	score := &models.CompositeScore{
		RunID:       uuid.New().String(),
		Ticker:      snapshot.Ticker,
		Weights:     s.config.Scoring.Weights.Map(),
		GeneratedAt: time.Now().UTC(),
	}

	// Fixed dimension order for stable serialization
	for _, dimension := range []string{
		models.DimensionFundamental,
		models.DimensionValuation,
		models.DimensionTechnical,
		models.DimensionSentiment,
		models.DimensionRisk,
	} {
		result := results[dimension]
		if result.err != nil {
			s.logger.Warn().
				Str("ticker", snapshot.Ticker).
				Str("dimension", dimension).
				Err(result.err).
				Msg("Analyzer failed, using fallback")
			score.SubScores = append(score.SubScores, models.Fallback(dimension, result.err.Error()))
			score.FallbackCount++
			continue
		}

		score.SubScores = append(score.SubScores, models.SubScore{
			Dimension:  dimension,
			Value:      clamp(result.score, 0, 100),
			Provenance: models.ProvenanceComputed,
		})

		switch dimension {
		case models.DimensionValuation:
			score.Valuation = result.valuation
		case models.DimensionRisk:
			score.Risk = result.risk
		case models.DimensionFundamental:
			score.Fundamental = result.fundamental
		}
	}

	score.DataQualityFlag = score.FallbackCount >= dataQualityThreshold
	score.Composite = s.combine(score.SubScores)
	score.Recommendation = Recommend(score.Composite)

	s.logger.Info().
		Str("ticker", snapshot.Ticker).
		Str("run_id", score.RunID).
		Float64("composite", score.Composite).
		Str("recommendation", string(score.Recommendation)).
		Int("fallbacks", score.FallbackCount).
		Dur("elapsed", time.Since(start)).
		Msg("Composite score generated")

	return score, nil
}

// runBounded executes one analyzer under the per-analyzer timeout with
// panic recovery. A stalled or panicking analyzer degrades to an error
// result without touching its siblings.
func (s *Service) runBounded(ctx context.Context, dimension string, timeout time.Duration, run func() analyzerResult) (result analyzerResult) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan analyzerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- analyzerResult{err: fmt.Errorf("analyzer panic: %v", r)}
			}
		}()
		done <- run()
	}()

	select {
	case result = <-done:
	case <-ctx.Done():
		result = analyzerResult{err: fmt.Errorf("analyzer timed out after %s: %w", timeout, ctx.Err())}
	}
	result.dimension = dimension
	return result
}

// MoatProfile scores the competitive moat overlay for a snapshot.
func (s *Service) MoatProfile(snapshot *models.FinancialSnapshot) (*models.MoatProfile, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	return s.moatAnalyzer.Profile(snapshot), nil
}

// ScoreUniverse scores tickers concurrently, bounded by the configured
// concurrency limit, with snapshot loads paced through the rate limiter.
// Tickers whose snapshot cannot be loaded are logged and skipped; results
// come back in input order.
func (s *Service) ScoreUniverse(ctx context.Context, tickers []string) ([]*models.CompositeScore, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("no snapshot provider configured")
	}

	maxConcurrent := s.config.Scoring.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	semaphore := make(chan struct{}, maxConcurrent)

	type tickerResult struct {
		index int
		score *models.CompositeScore
		err   error
	}
	resultChan := make(chan tickerResult, len(tickers))

	for i, ticker := range tickers {
		go func(index int, t string) {
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			if err := s.limiter.Wait(ctx); err != nil {
				resultChan <- tickerResult{index: index, err: err}
				return
			}

			snapshot, err := s.snapshots.GetSnapshot(ctx, t)
			if err != nil {
				resultChan <- tickerResult{index: index, err: fmt.Errorf("loading snapshot for %s: %w", t, err)}
				return
			}

			score, err := s.Score(ctx, snapshot)
			resultChan <- tickerResult{index: index, score: score, err: err}
		}(i, ticker)
	}

	ordered := make([]*models.CompositeScore, len(tickers))
	for range tickers {
		result := <-resultChan
		if result.err != nil {
			s.logger.Warn().Str("ticker", tickers[result.index]).Err(result.err).Msg("Skipping ticker")
			continue
		}
		ordered[result.index] = result.score
	}
	close(resultChan)

	scores := make([]*models.CompositeScore, 0, len(tickers))
	for _, score := range ordered {
		if score != nil {
			scores = append(scores, score)
		}
	}

	s.logger.Info().
		Int("requested", len(tickers)).
		Int("scored", len(scores)).
		Msg("Universe scoring complete")

	return scores, nil
}

// combine weights the sub-scores and rounds the composite to one decimal.
// Sub-scores are combined at full precision; the single rounding step
// happens here.
func (s *Service) combine(subScores []models.SubScore) float64 {
	weights := s.config.Scoring.Weights.Map()

	total := decimal.Zero
	for _, sub := range subScores {
		total = total.Add(decimal.NewFromFloat(sub.Value).Mul(decimal.NewFromFloat(weights[sub.Dimension])))
	}

	composite, _ := total.Round(1).Float64()
	return composite
}

// Recommend maps a rounded composite onto the ordered recommendation table.
func Recommend(composite float64) models.Recommendation {
	switch {
	case composite >= 75:
		return models.StrongBuy
	case composite >= 60:
		return models.Buy
	case composite >= 45:
		return models.Hold
	case composite >= 30:
		return models.Sell
	default:
		return models.StrongSell
	}
}

// valuationScore maps a DCF result onto [0,100]: neutral 50 shifted by the
// margin of safety, pulled halfway back toward neutral when the model is
// flagged low-confidence or fragile.
func valuationScore(result *models.DCFResult) float64 {
	score := 50 + result.MarginOfSafetyPct
	if result.LowConfidence || result.ModelFragile {
		score = 50 + (score-50)/2
	}
	return clamp(score, 0, 100)
}

// assumptionsFor resolves per-run assumption overrides; snapshots carry
// none today, so the engine derives its defaults.
func (s *Service) assumptionsFor(snapshot *models.FinancialSnapshot) models.DCFAssumptions {
	return s.valuationEngine.DefaultAssumptions(snapshot)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
