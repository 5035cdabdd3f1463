// Package valuation implements the discounted cash flow engine
package valuation

import (
	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

// DeriveWACC computes the weighted average cost of capital for a snapshot:
// CAPM cost of equity blended with the after-tax cost of debt at the target
// capital structure. Missing inputs fall back to configured defaults.
func DeriveWACC(snapshot *models.FinancialSnapshot, cfg common.ValuationConfig) models.WACCBreakdown {
	beta := 1.0
	costOfDebt := cfg.DefaultCostOfDebt
	debtWeight := cfg.DefaultDebtWeight

	if fund := snapshot.Fundamentals; fund != nil {
		if fund.Beta > 0 {
			beta = fund.Beta
		}
		if fund.CostOfDebt != nil && *fund.CostOfDebt > 0 {
			costOfDebt = *fund.CostOfDebt
		}
		if fund.TargetDebtWeight != nil && *fund.TargetDebtWeight >= 0 && *fund.TargetDebtWeight < 1 {
			debtWeight = *fund.TargetDebtWeight
		}
	}

	// Cost of equity via CAPM
	ke := cfg.RiskFreeRate + beta*cfg.EquityRiskPremium

	// After-tax cost of debt
	kd := costOfDebt * (1 - cfg.TaxRate)

	equityWeight := 1 - debtWeight
	wacc := ke*equityWeight + kd*debtWeight

	return models.WACCBreakdown{
		CostOfEquity: ke,
		CostOfDebt:   kd,
		EquityWeight: equityWeight,
		DebtWeight:   debtWeight,
		WACC:         wacc,
	}
}
