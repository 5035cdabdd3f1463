package valuation

import (
	"math"

	"github.com/bobmcallan/valora/internal/models"
)

const (
	impliedGrowthLow  = -0.50
	impliedGrowthHigh = 0.60
	impliedMaxIter    = 100
	impliedTolerance  = 1e-6
)

// ImpliedGrowth answers "what constant growth rate is priced in": it
// bisects over the high-growth rate until the model's intrinsic value
// matches the current market price, holding every other assumption fixed.
// Returns models.ErrReverseDCFNoConvergence when no rate in the search
// bracket reproduces the price.
func (e *Engine) ImpliedGrowth(snapshot *models.FinancialSnapshot, assumptions models.DCFAssumptions) (float64, error) {
	a := e.fillDefaults(snapshot, assumptions)
	if a.DiscountRate == 0 {
		a.DiscountRate = DeriveWACC(snapshot, e.cfg).WACC
	}
	if a.TerminalGrowthRate >= a.DiscountRate {
		return 0, &models.InvalidAssumptionsError{
			TerminalGrowth: a.TerminalGrowthRate,
			DiscountRate:   a.DiscountRate,
		}
	}

	history := fcfHistory(snapshot.Statements)
	if len(history) < 1 {
		return 0, &models.DataInsufficientError{What: "free cash flow history", Need: 1, Have: 0}
	}
	trailingFCF := history[0]
	if trailingFCF <= 0 {
		return 0, models.ErrReverseDCFNoConvergence
	}

	shares := dilutedShares(snapshot)
	if shares <= 0 {
		return 0, &models.DataInsufficientError{What: "diluted share count", Need: 1, Have: 0}
	}

	price := snapshot.CurrentPrice
	netDebt := 0.0
	if snapshot.Fundamentals != nil {
		netDebt = snapshot.Fundamentals.NetDebt
	}

	// Intrinsic value is monotonically increasing in the growth rate, so
	// a sign change across the bracket guarantees a bisection root.
	diff := func(g float64) float64 {
		a.HighGrowthRate = g
		core := e.run(trailingFCF, a)
		return (core.enterpriseValue-netDebt)/shares - price
	}

	lo, hi := impliedGrowthLow, impliedGrowthHigh
	fLo, fHi := diff(lo), diff(hi)
	if fLo*fHi > 0 {
		return 0, models.ErrReverseDCFNoConvergence
	}

	for i := 0; i < impliedMaxIter; i++ {
		mid := (lo + hi) / 2
		fMid := diff(mid)

		if math.Abs(fMid) < impliedTolerance || (hi-lo)/2 < impliedTolerance {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}

	return 0, models.ErrReverseDCFNoConvergence
}
