package risk

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

// tradingDays is the annualization base for daily return statistics.
const tradingDays = 252

// Analyzer computes a RiskProfile from a snapshot's price and benchmark
// series. It is a pure function of its inputs.
type Analyzer struct {
	lookback int
	minObs   int
	riskFree float64 // annual
	logger   *common.Logger
}

// NewAnalyzer creates a risk analyzer from config.
func NewAnalyzer(cfg common.RiskConfig, logger *common.Logger) *Analyzer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	lookback := cfg.Lookback
	if lookback <= 0 {
		lookback = tradingDays
	}
	minObs := cfg.MinObservations
	if minObs < 2 {
		minObs = 2
	}
	return &Analyzer{
		lookback: lookback,
		minObs:   minObs,
		riskFree: cfg.RiskFreeRate,
		logger:   logger,
	}
}

// Profile computes the full risk profile for one snapshot.
func (a *Analyzer) Profile(snapshot *models.FinancialSnapshot) (*models.RiskProfile, error) {
	secReturns, benchReturns := alignedReturns(snapshot.Prices, snapshot.Benchmark, a.lookback)
	if len(secReturns) < a.minObs {
		return nil, &models.DataInsufficientError{
			What: "aligned daily returns",
			Need: a.minObs,
			Have: len(secReturns),
		}
	}

	stdev, err := stats.StandardDeviationSample(secReturns)
	if err != nil {
		return nil, err
	}
	volatility := stdev * math.Sqrt(tradingDays)

	beta := computeBeta(secReturns, benchReturns)

	rfDaily := a.riskFree / tradingDays
	excess := make([]float64, len(secReturns))
	for i, r := range secReturns {
		excess[i] = r - rfDaily
	}

	sharpe := sharpeRatio(excess)
	sortino := sortinoRatio(excess)

	mdd := maxDrawdown(closesForDrawdown(snapshot.Prices, a.lookback+1))

	var95, cvar95 := historicalVaR(secReturns)

	profile := &models.RiskProfile{
		Lookback:    len(secReturns),
		Volatility:  volatility,
		Beta:        beta,
		Sharpe:      sharpe,
		Sortino:     sortino,
		MaxDrawdown: mdd,
		VaR95:       var95,
		CVaR95:      cvar95,
	}
	profile.Score = Score(profile)
	profile.Level = Level(profile)

	a.logger.Debug().
		Str("ticker", snapshot.Ticker).
		Float64("volatility", volatility).
		Float64("beta", beta).
		Float64("score", profile.Score).
		Str("level", string(profile.Level)).
		Msg("Risk profile computed")

	return profile, nil
}

// computeBeta returns cov(sec, bench)/var(bench), or 0 when the benchmark
// shows no variance.
func computeBeta(secReturns, benchReturns []float64) float64 {
	if len(secReturns) != len(benchReturns) || len(secReturns) < 2 {
		return 0
	}

	cov, err := stats.Covariance(secReturns, benchReturns)
	if err != nil {
		return 0
	}
	benchVar, err := stats.VarS(benchReturns)
	if err != nil || benchVar == 0 {
		return 0
	}
	return cov / benchVar
}

// sharpeRatio annualizes mean excess return over its standard deviation,
// returning 0 when the deviation is 0.
func sharpeRatio(excess []float64) float64 {
	mean, err := stats.Mean(excess)
	if err != nil {
		return 0
	}
	stdev, err := stats.StandardDeviationSample(excess)
	if err != nil || stdev == 0 {
		return 0
	}
	return mean / stdev * math.Sqrt(tradingDays)
}

// sortinoRatio is the Sharpe variant using only downside deviation,
// returning 0 when there is no downside to measure.
func sortinoRatio(excess []float64) float64 {
	mean, err := stats.Mean(excess)
	if err != nil {
		return 0
	}

	var downside []float64
	for _, e := range excess {
		if e < 0 {
			downside = append(downside, e)
		}
	}
	if len(downside) < 2 {
		return 0
	}

	stdev, err := stats.StandardDeviationSample(downside)
	if err != nil || stdev == 0 {
		return 0
	}
	return mean / stdev * math.Sqrt(tradingDays)
}

// historicalVaR returns the 5th-percentile daily return and the mean of all
// returns at or below it. CVaR is always at least as negative as VaR.
func historicalVaR(returns []float64) (var95, cvar95 float64) {
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor(0.05 * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	var95 = sorted[idx]

	var sum float64
	var n int
	for _, r := range sorted {
		if r <= var95 {
			sum += r
			n++
		}
	}
	if n > 0 {
		cvar95 = sum / float64(n)
	}
	return var95, cvar95
}

// Score maps a risk profile to a 0-100 score. Higher is safer. The base is
// (1-volatility)*100, adjusted by the other metrics and re-clamped.
func Score(p *models.RiskProfile) float64 {
	score := clamp((1-p.Volatility)*100, 0, 100)

	if p.Beta > 1.5 {
		score -= 5
	}
	if math.Abs(p.MaxDrawdown) > 0.40 {
		score -= 5
	}
	if p.Sharpe < 0 {
		score -= 10
	}
	if p.Sortino > 1.0 {
		score += 5
	}
	if p.VaR95 != 0 && p.CVaR95/p.VaR95 > 2.0 {
		score -= 5
	}

	return clamp(score, 0, 100)
}

// Level classifies volatility into a risk level, floored by the worst
// individual metric: an extreme drawdown forces at least HIGH and a
// negative Sharpe forces at least MODERATE.
func Level(p *models.RiskProfile) models.RiskLevel {
	var level models.RiskLevel
	switch {
	case p.Volatility < 0.15:
		level = models.RiskLow
	case p.Volatility < 0.30:
		level = models.RiskModerate
	case p.Volatility < 0.50:
		level = models.RiskHigh
	default:
		level = models.RiskVeryHigh
	}

	if math.Abs(p.MaxDrawdown) > 0.40 {
		level = level.AtLeast(models.RiskHigh)
	}
	if p.Sharpe < 0 {
		level = level.AtLeast(models.RiskModerate)
	}

	return level
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
