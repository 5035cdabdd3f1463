package valuation

import (
	"math"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

// fragileTerminalShare marks a valuation dominated by long-run assumptions.
const fragileTerminalShare = 0.80

// Engine runs multi-stage DCF valuations against financial snapshots.
type Engine struct {
	cfg    common.ValuationConfig
	logger *common.Logger
}

// NewEngine creates a DCF engine from config.
func NewEngine(cfg common.ValuationConfig, logger *common.Logger) *Engine {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// DefaultAssumptions derives a starting assumption set for a snapshot: the
// high-growth rate comes from the historical FCF CAGR clamped to the
// configured band; everything else uses config defaults.
func (e *Engine) DefaultAssumptions(snapshot *models.FinancialSnapshot) models.DCFAssumptions {
	a := models.DCFAssumptions{
		HighGrowthYears:    e.cfg.HighGrowthYears,
		FadeYears:          e.cfg.FadeYears,
		TerminalGrowthRate: e.cfg.TerminalGrowthRate,
	}

	history := fcfHistory(snapshot.Statements)
	if g, ok := fcfCAGR(history); ok {
		a.HighGrowthRate = clampRate(g, e.cfg.MinGrowthRate, e.cfg.MaxGrowthRate)
	} else {
		a.HighGrowthRate = e.cfg.TerminalGrowthRate
	}

	return a
}

// Valuation runs the full DCF pipeline: WACC derivation, high-growth and
// fade projection, terminal value by Gordon growth (and exit multiple when
// configured), scenario analysis, and the reverse DCF.
//
// Terminal growth at or above the discount rate returns
// *models.InvalidAssumptionsError; the valuation cannot be produced.
func (e *Engine) Valuation(snapshot *models.FinancialSnapshot, assumptions models.DCFAssumptions) (*models.DCFResult, error) {
	a := e.fillDefaults(snapshot, assumptions)

	wacc := models.WACCBreakdown{WACC: a.DiscountRate}
	if assumptions.DiscountRate == 0 {
		wacc = DeriveWACC(snapshot, e.cfg)
		a.DiscountRate = wacc.WACC
	}

	if a.TerminalGrowthRate >= a.DiscountRate {
		return nil, &models.InvalidAssumptionsError{
			TerminalGrowth: a.TerminalGrowthRate,
			DiscountRate:   a.DiscountRate,
		}
	}

	history := fcfHistory(snapshot.Statements)
	if len(history) < 2 {
		return nil, &models.DataInsufficientError{What: "free cash flow history", Need: 2, Have: len(history)}
	}

	shares := dilutedShares(snapshot)
	if shares <= 0 {
		return nil, &models.DataInsufficientError{What: "diluted share count", Need: 1, Have: 0}
	}

	trailingFCF := history[0]
	netDebt := 0.0
	if snapshot.Fundamentals != nil {
		netDebt = snapshot.Fundamentals.NetDebt
	}

	core := e.run(trailingFCF, a)

	equityValue := core.enterpriseValue - netDebt
	intrinsic := equityValue / shares

	result := &models.DCFResult{
		Assumptions:         a,
		WACC:                wacc,
		EnterpriseValue:     core.enterpriseValue,
		NetDebt:             netDebt,
		EquityValue:         equityValue,
		IntrinsicValue:      intrinsic,
		MarketPrice:         snapshot.CurrentPrice,
		TerminalValueGordon: core.pvTerminal,
		TerminalValueShare:  core.terminalShare,
		LowConfidence:       trailingFCF <= 0,
		ModelFragile:        core.terminalShare > fragileTerminalShare,
	}

	if intrinsic != 0 {
		result.MarginOfSafetyPct = (intrinsic - snapshot.CurrentPrice) / intrinsic * 100
	}

	// Exit-multiple terminal value, reported beside Gordon growth
	if a.ExitMultiple > 0 {
		result.TerminalValueExit = e.exitTerminalValue(snapshot, a)
	}

	// Scenario table and probability-weighted expected value
	scenarios, expected, err := e.scenarioTable(snapshot, a, trailingFCF, netDebt, shares)
	if err != nil {
		return nil, err
	}
	result.Scenarios = scenarios
	result.ExpectedValue = expected

	// Reverse DCF: implied constant growth at the current market price
	implied, err := e.ImpliedGrowth(snapshot, a)
	if err == nil {
		result.ImpliedGrowthRate = implied
		result.ImpliedGrowthConverged = true
	} else {
		e.logger.Warn().Str("ticker", snapshot.Ticker).Err(err).Msg("Reverse DCF did not converge")
	}

	if result.LowConfidence {
		e.logger.Debug().Str("ticker", snapshot.Ticker).Msg("Negative trailing FCF — valuation flagged low confidence")
	}

	return result, nil
}

// dcfCore is the snapshot-independent middle of the pipeline.
type dcfCore struct {
	pvFCF           float64
	pvTerminal      float64
	enterpriseValue float64
	terminalShare   float64
}

// run projects FCF along the growth path, discounts each year, and adds
// the discounted Gordon Growth terminal value. Callers guarantee terminal
// growth is below the discount rate.
func (e *Engine) run(trailingFCF float64, a models.DCFAssumptions) dcfCore {
	path := growthPath(a)

	var pvFCF float64
	fcf := trailingFCF
	discount := 1.0
	for _, g := range path {
		fcf *= 1 + g
		discount *= 1 + a.DiscountRate
		pvFCF += fcf / discount
	}

	// Terminal value via Gordon Growth on the final projected year
	tv := fcf * (1 + a.TerminalGrowthRate) / (a.DiscountRate - a.TerminalGrowthRate)
	pvTerminal := tv / discount

	ev := pvFCF + pvTerminal

	share := 0.0
	if ev != 0 {
		share = pvTerminal / ev
	}

	return dcfCore{
		pvFCF:           pvFCF,
		pvTerminal:      pvTerminal,
		enterpriseValue: ev,
		terminalShare:   share,
	}
}

// growthPath expands the assumptions into one growth rate per projected
// year: the high-growth horizon at the high rate, then a linear fade down
// to the terminal rate.
func growthPath(a models.DCFAssumptions) []float64 {
	path := make([]float64, 0, a.HighGrowthYears+a.FadeYears)

	for i := 0; i < a.HighGrowthYears; i++ {
		path = append(path, a.HighGrowthRate)
	}
	for i := 1; i <= a.FadeYears; i++ {
		frac := float64(i) / float64(a.FadeYears)
		path = append(path, a.HighGrowthRate+(a.TerminalGrowthRate-a.HighGrowthRate)*frac)
	}

	return path
}

// exitTerminalValue projects trailing EBITDA along the growth path and
// applies the exit multiple, discounted back to today. Returns 0 when the
// snapshot carries no EBITDA.
func (e *Engine) exitTerminalValue(snapshot *models.FinancialSnapshot, a models.DCFAssumptions) float64 {
	if len(snapshot.Statements) == 0 {
		return 0
	}
	ebitda := snapshot.Statements[0].Income.EBITDA
	if ebitda <= 0 {
		return 0
	}

	path := growthPath(a)
	discount := 1.0
	for _, g := range path {
		ebitda *= 1 + g
		discount *= 1 + a.DiscountRate
	}

	return ebitda * a.ExitMultiple / discount
}

// intrinsicAt runs the core pipeline under modified assumptions and
// returns intrinsic value per share. Used by scenarios and the reverse DCF.
func (e *Engine) intrinsicAt(trailingFCF, netDebt, shares float64, a models.DCFAssumptions) (float64, error) {
	if a.TerminalGrowthRate >= a.DiscountRate {
		return 0, &models.InvalidAssumptionsError{
			TerminalGrowth: a.TerminalGrowthRate,
			DiscountRate:   a.DiscountRate,
		}
	}
	core := e.run(trailingFCF, a)
	return (core.enterpriseValue - netDebt) / shares, nil
}

// fillDefaults completes a caller-supplied assumption set with config
// defaults and the snapshot-derived growth rate.
func (e *Engine) fillDefaults(snapshot *models.FinancialSnapshot, a models.DCFAssumptions) models.DCFAssumptions {
	defaults := e.DefaultAssumptions(snapshot)

	if a.HighGrowthYears <= 0 {
		a.HighGrowthYears = defaults.HighGrowthYears
	}
	if a.FadeYears < 0 {
		a.FadeYears = defaults.FadeYears
	}
	if a.FadeYears == 0 && a.HighGrowthYears == defaults.HighGrowthYears {
		a.FadeYears = defaults.FadeYears
	}
	if a.TerminalGrowthRate == 0 {
		a.TerminalGrowthRate = defaults.TerminalGrowthRate
	}
	if a.HighGrowthRate == 0 {
		a.HighGrowthRate = defaults.HighGrowthRate
	}

	return a
}

// fcfHistory extracts free cash flow per period, newest first, stopping at
// the first period with no cash flow data at all.
func fcfHistory(statements []models.StatementPeriod) []float64 {
	var history []float64
	for _, p := range statements {
		if p.CashFlow.OperatingCashFlow == 0 && p.CashFlow.FreeCashFlow == 0 {
			break
		}
		history = append(history, p.CashFlow.FCF())
	}
	return history
}

// fcfCAGR computes the compound annual growth rate across the FCF history
// (newest first). Requires positive endpoints.
func fcfCAGR(history []float64) (float64, bool) {
	if len(history) < 2 {
		return 0, false
	}
	newest := history[0]
	oldest := history[len(history)-1]
	if newest <= 0 || oldest <= 0 {
		return 0, false
	}
	years := float64(len(history) - 1)
	return math.Pow(newest/oldest, 1/years) - 1, true
}

// dilutedShares prefers the newest statement's diluted count and falls
// back to shares outstanding from the ratio feed.
func dilutedShares(snapshot *models.FinancialSnapshot) float64 {
	if len(snapshot.Statements) > 0 && snapshot.Statements[0].Income.DilutedShares > 0 {
		return snapshot.Statements[0].Income.DilutedShares
	}
	if snapshot.Fundamentals != nil {
		return snapshot.Fundamentals.SharesOutstanding
	}
	return 0
}

func clampRate(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
