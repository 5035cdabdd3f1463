// Package fundamental scores financial health, growth, and quality
package fundamental

import (
	"github.com/bobmcallan/valora/internal/models"
)

// dupont decomposes return on equity into margin, turnover, and leverage
// for the most recent statement period.
func dupont(p models.StatementPeriod) models.DuPont {
	var d models.DuPont

	if p.Income.Revenue != 0 {
		d.NetMargin = p.Income.NetIncome / p.Income.Revenue
	}
	if p.Balance.TotalAssets != 0 {
		d.AssetTurnover = p.Income.Revenue / p.Balance.TotalAssets
	}
	if p.Balance.ShareholderEquity != 0 {
		d.Leverage = p.Balance.TotalAssets / p.Balance.ShareholderEquity
	}
	d.ROE = d.NetMargin * d.AssetTurnover * d.Leverage

	return d
}

// roic returns NOPAT over invested capital (debt + equity - cash), or 0
// when invested capital is not positive.
func roic(p models.StatementPeriod, taxRate float64) float64 {
	nopat := p.Income.OperatingIncome * (1 - taxRate)
	invested := p.Balance.TotalDebt() + p.Balance.ShareholderEquity - p.Balance.Cash
	if invested <= 0 {
		return 0
	}
	return nopat / invested
}

// accrualRatio returns (net income - operating cash flow) / total assets.
// Higher accruals mean lower earnings quality.
func accrualRatio(p models.StatementPeriod) float64 {
	if p.Balance.TotalAssets == 0 {
		return 0
	}
	return (p.Income.NetIncome - p.CashFlow.OperatingCashFlow) / p.Balance.TotalAssets
}

// cashConversionCycle returns DSO + DIO - DPO in days for one period, and
// whether it could be computed from the available line items.
func cashConversionCycle(p models.StatementPeriod) (float64, bool) {
	if p.Income.Revenue <= 0 || p.Income.CostOfRevenue <= 0 {
		return 0, false
	}

	dso := p.Balance.Receivables / p.Income.Revenue * 365
	dio := p.Balance.Inventory / p.Income.CostOfRevenue * 365
	dpo := p.Balance.Payables / p.Income.CostOfRevenue * 365

	return dso + dio - dpo, true
}

// grossMargin returns gross profit over revenue for a period.
func grossMargin(p models.StatementPeriod) float64 {
	if p.Income.Revenue == 0 {
		return 0
	}
	gp := p.Income.GrossProfit
	if gp == 0 && p.Income.CostOfRevenue != 0 {
		gp = p.Income.Revenue - p.Income.CostOfRevenue
	}
	return gp / p.Income.Revenue
}

// yoyGrowth returns (newest-prev)/|prev| or 0 when the base is 0.
func yoyGrowth(newest, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (newest - prev) / abs(prev)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
