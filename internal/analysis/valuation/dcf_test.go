package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

func newTestEngine() *Engine {
	return NewEngine(common.NewDefaultConfig().Valuation, common.NewSilentLogger())
}

// snapshot with FCF history 100, 90 (newest first), 10 diluted shares,
// 375 net debt, trading at 80.
func valuationSnapshot() *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		Ticker:       "TEST",
		CurrentPrice: 80,
		Fundamentals: &models.Fundamentals{
			MarketCap:         800,
			SharesOutstanding: 10,
			NetDebt:           375,
		},
		Statements: []models.StatementPeriod{
			{
				Income:   models.IncomeStatement{EBITDA: 120, DilutedShares: 10},
				CashFlow: models.CashFlowStatement{FreeCashFlow: 100},
			},
			{
				Income:   models.IncomeStatement{EBITDA: 110, DilutedShares: 10},
				CashFlow: models.CashFlowStatement{FreeCashFlow: 90},
			},
		},
	}
}

func TestValuationHandComputed(t *testing.T) {
	// One projected year at 10% growth, no fade, 10% discount, 2% terminal:
	//   FCF1 = 110, PV = 100
	//   TV   = 110*1.02/0.08 = 1402.5, PV = 1275
	//   EV   = 1375, equity = 1000, intrinsic = 100/share
	assumptions := models.DCFAssumptions{
		HighGrowthRate:     0.10,
		HighGrowthYears:    1,
		FadeYears:          0,
		TerminalGrowthRate: 0.02,
		DiscountRate:       0.10,
	}

	result, err := newTestEngine().Valuation(valuationSnapshot(), assumptions)
	require.NoError(t, err)

	assert.InDelta(t, 1375.0, result.EnterpriseValue, 0.01)
	assert.InDelta(t, 375.0, result.NetDebt, 0.01)
	assert.InDelta(t, 1000.0, result.EquityValue, 0.01)
	assert.InDelta(t, 100.0, result.IntrinsicValue, 0.01)
	assert.InDelta(t, 1275.0, result.TerminalValueGordon, 0.01)
	assert.InDelta(t, 20.0, result.MarginOfSafetyPct, 0.01)
	assert.False(t, result.LowConfidence)
	assert.True(t, result.ModelFragile, "terminal value carries over 80% of EV")
}

func TestValuationExitMultiple(t *testing.T) {
	assumptions := models.DCFAssumptions{
		HighGrowthRate:     0.10,
		HighGrowthYears:    1,
		FadeYears:          0,
		TerminalGrowthRate: 0.02,
		DiscountRate:       0.10,
		ExitMultiple:       10,
	}

	result, err := newTestEngine().Valuation(valuationSnapshot(), assumptions)
	require.NoError(t, err)

	// EBITDA 120 grown one year to 132, times 10, discounted one year
	assert.InDelta(t, 1200.0, result.TerminalValueExit, 0.01)
	// Gordon terminal value still reported beside it
	assert.InDelta(t, 1275.0, result.TerminalValueGordon, 0.01)
}

func TestValuationInvalidAssumptions(t *testing.T) {
	assumptions := models.DCFAssumptions{
		HighGrowthRate:     0.10,
		HighGrowthYears:    1,
		TerminalGrowthRate: 0.12,
		DiscountRate:       0.10,
	}

	_, err := newTestEngine().Valuation(valuationSnapshot(), assumptions)
	require.Error(t, err)
	assert.True(t, models.IsInvalidAssumptions(err))
}

func TestValuationInsufficientHistory(t *testing.T) {
	snapshot := valuationSnapshot()
	snapshot.Statements = snapshot.Statements[:1]

	_, err := newTestEngine().Valuation(snapshot, models.DCFAssumptions{
		HighGrowthRate:     0.10,
		HighGrowthYears:    1,
		TerminalGrowthRate: 0.02,
		DiscountRate:       0.10,
	})
	require.Error(t, err)
	assert.True(t, models.IsDataInsufficient(err))
}

func TestValuationNegativeTrailingFCFLowConfidence(t *testing.T) {
	snapshot := valuationSnapshot()
	snapshot.Statements[0].CashFlow.FreeCashFlow = -50

	result, err := newTestEngine().Valuation(snapshot, models.DCFAssumptions{
		HighGrowthRate:     0.05,
		HighGrowthYears:    1,
		TerminalGrowthRate: 0.02,
		DiscountRate:       0.10,
	})
	require.NoError(t, err, "negative FCF still computes")
	assert.True(t, result.LowConfidence)
}

func TestValuationScenarios(t *testing.T) {
	result, err := newTestEngine().Valuation(valuationSnapshot(), models.DCFAssumptions{
		HighGrowthRate:     0.08,
		HighGrowthYears:    3,
		FadeYears:          2,
		TerminalGrowthRate: 0.025,
		DiscountRate:       0.09,
	})
	require.NoError(t, err)
	require.Len(t, result.Scenarios, 3)

	var probSum, expected float64
	for _, s := range result.Scenarios {
		probSum += s.Probability
		expected += s.Target * s.Probability
	}
	assert.InDelta(t, 1.0, probSum, 1e-9)
	assert.InDelta(t, expected, result.ExpectedValue, 1e-9)

	// Bull target beats base beats bear
	byName := map[string]models.Scenario{}
	for _, s := range result.Scenarios {
		byName[s.Name] = s
	}
	assert.Greater(t, byName["bull"].Target, byName["base"].Target)
	assert.Greater(t, byName["base"].Target, byName["bear"].Target)
}

func TestExpectedValueWeighting(t *testing.T) {
	scenarios := []models.Scenario{
		{Name: "bull", Target: 200, Probability: 0.25},
		{Name: "base", Target: 150, Probability: 0.50},
		{Name: "bear", Target: 80, Probability: 0.25},
	}

	assert.InDelta(t, 145.00, ExpectedValue(scenarios), 1e-9)
}

func TestGrowthPath(t *testing.T) {
	path := growthPath(models.DCFAssumptions{
		HighGrowthRate:     0.20,
		HighGrowthYears:    2,
		FadeYears:          4,
		TerminalGrowthRate: 0.04,
	})

	require.Len(t, path, 6)
	assert.InDelta(t, 0.20, path[0], 1e-9)
	assert.InDelta(t, 0.20, path[1], 1e-9)
	// Linear fade: 0.16, 0.12, 0.08, 0.04
	assert.InDelta(t, 0.16, path[2], 1e-9)
	assert.InDelta(t, 0.12, path[3], 1e-9)
	assert.InDelta(t, 0.08, path[4], 1e-9)
	assert.InDelta(t, 0.04, path[5], 1e-9)
}

func TestDefaultAssumptionsClampsGrowth(t *testing.T) {
	engine := newTestEngine()

	// FCF doubled in one year; the derived CAGR must clamp to the band cap
	snapshot := valuationSnapshot()
	snapshot.Statements[0].CashFlow.FreeCashFlow = 100
	snapshot.Statements[1].CashFlow.FreeCashFlow = 50

	a := engine.DefaultAssumptions(snapshot)
	assert.InDelta(t, engine.cfg.MaxGrowthRate, a.HighGrowthRate, 1e-9)

	// Collapsing FCF clamps to the floor
	snapshot.Statements[0].CashFlow.FreeCashFlow = 10
	snapshot.Statements[1].CashFlow.FreeCashFlow = 100
	a = engine.DefaultAssumptions(snapshot)
	assert.InDelta(t, engine.cfg.MinGrowthRate, a.HighGrowthRate, 1e-9)
}

func TestImpliedGrowth(t *testing.T) {
	engine := newTestEngine()
	snapshot := valuationSnapshot()

	assumptions := models.DCFAssumptions{
		HighGrowthYears:    1,
		FadeYears:          0,
		TerminalGrowthRate: 0.02,
		DiscountRate:       0.10,
	}

	implied, err := engine.ImpliedGrowth(snapshot, assumptions)
	require.NoError(t, err)

	// Intrinsic value at 10% growth is 100 vs a price of 80, so the
	// market is pricing in slower growth
	assert.Less(t, implied, 0.10)

	// Plugging the implied rate back reproduces the market price
	a := assumptions
	a.HighGrowthRate = implied
	result, err := engine.Valuation(snapshot, a)
	require.NoError(t, err)
	assert.InDelta(t, snapshot.CurrentPrice, result.IntrinsicValue, 0.01)
}

func TestImpliedGrowthNoConvergence(t *testing.T) {
	engine := newTestEngine()

	// Price far above anything the bracket can reach
	snapshot := valuationSnapshot()
	snapshot.CurrentPrice = 1e9

	_, err := engine.ImpliedGrowth(snapshot, models.DCFAssumptions{
		HighGrowthYears:    1,
		FadeYears:          0,
		TerminalGrowthRate: 0.02,
		DiscountRate:       0.10,
	})
	assert.ErrorIs(t, err, models.ErrReverseDCFNoConvergence)
}

func TestValuationSetsImpliedGrowth(t *testing.T) {
	result, err := newTestEngine().Valuation(valuationSnapshot(), models.DCFAssumptions{
		HighGrowthRate:     0.10,
		HighGrowthYears:    1,
		FadeYears:          0,
		TerminalGrowthRate: 0.02,
		DiscountRate:       0.10,
	})
	require.NoError(t, err)
	assert.True(t, result.ImpliedGrowthConverged)
	assert.Less(t, result.ImpliedGrowthRate, 0.10)
}

func TestDeriveWACC(t *testing.T) {
	cfg := common.NewDefaultConfig().Valuation

	snapshot := &models.FinancialSnapshot{
		Ticker: "TEST",
		Fundamentals: &models.Fundamentals{
			Beta: 1.2,
		},
	}

	w := DeriveWACC(snapshot, cfg)

	// CAPM: 0.042 + 1.2*0.055 = 0.108
	assert.InDelta(t, 0.108, w.CostOfEquity, 1e-9)
	// After-tax cost of debt: 0.055 * 0.75
	assert.InDelta(t, 0.04125, w.CostOfDebt, 1e-9)
	assert.InDelta(t, 0.70, w.EquityWeight, 1e-9)
	assert.InDelta(t, 0.30, w.DebtWeight, 1e-9)
	assert.InDelta(t, 0.108*0.7+0.04125*0.3, w.WACC, 1e-9)
}
