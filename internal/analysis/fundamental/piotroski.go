package fundamental

import (
	"github.com/bobmcallan/valora/internal/models"
)

// piotroski computes the Piotroski F-Score from the two most recent
// statement periods. Each of the nine tests contributes exactly 0 or 1;
// there is no partial credit.
func piotroski(cur, prev models.StatementPeriod) int {
	score := 0

	// Profitability
	if roa(cur) > 0 {
		score++
	}
	if cur.CashFlow.OperatingCashFlow > 0 {
		score++
	}
	if roa(cur) > roa(prev) {
		score++
	}
	if cur.CashFlow.OperatingCashFlow > cur.Income.NetIncome {
		score++
	}

	// Leverage, liquidity, dilution
	if leverageRatio(cur) < leverageRatio(prev) {
		score++
	}
	if currentRatio(cur) > currentRatio(prev) {
		score++
	}
	if cur.Balance.SharesIssued <= prev.Balance.SharesIssued {
		score++
	}

	// Operating efficiency
	if grossMargin(cur) > grossMargin(prev) {
		score++
	}
	if assetTurnover(cur) > assetTurnover(prev) {
		score++
	}

	return score
}

func roa(p models.StatementPeriod) float64 {
	if p.Balance.TotalAssets == 0 {
		return 0
	}
	return p.Income.NetIncome / p.Balance.TotalAssets
}

func leverageRatio(p models.StatementPeriod) float64 {
	if p.Balance.TotalAssets == 0 {
		return 0
	}
	return p.Balance.LongTermDebt / p.Balance.TotalAssets
}

func currentRatio(p models.StatementPeriod) float64 {
	if p.Balance.CurrentLiabilities == 0 {
		return 0
	}
	return p.Balance.CurrentAssets / p.Balance.CurrentLiabilities
}

func assetTurnover(p models.StatementPeriod) float64 {
	if p.Balance.TotalAssets == 0 {
		return 0
	}
	return p.Income.Revenue / p.Balance.TotalAssets
}
