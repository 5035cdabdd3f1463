package fundamental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(common.NewDefaultConfig().Valuation, common.NewSilentLogger())
}

func floatPtr(v float64) *float64 { return &v }

func TestScoreNoFundamentals(t *testing.T) {
	snapshot := &models.FinancialSnapshot{Ticker: "TEST"}

	_, _, err := newTestAnalyzer().Score(snapshot)
	require.Error(t, err)
	assert.True(t, models.IsDataInsufficient(err))
}

func TestScoreHealthyCompany(t *testing.T) {
	snapshot := &models.FinancialSnapshot{
		Ticker: "TEST",
		Fundamentals: &models.Fundamentals{
			MarketCap:         1e9,
			SharesOutstanding: 1e7,
			Beta:              1.0,
			CurrentRatio:      floatPtr(2.5),
			DebtToEquity:      floatPtr(0.2),
			ROE:               floatPtr(0.25),
			RevenueGrowth:     floatPtr(0.15),
			EarningsGrowth:    floatPtr(0.22),
			ForwardPE:         floatPtr(15),
			PEG:               floatPtr(0.9),
		},
	}

	score, breakdown, err := newTestAnalyzer().Score(snapshot)
	require.NoError(t, err)
	require.NotNil(t, breakdown)

	assert.InDelta(t, 100, breakdown.Health, 0.01)
	assert.InDelta(t, 90, breakdown.Growth, 0.01) // 40 + 50
	assert.InDelta(t, 85, breakdown.ValuationLite, 0.01)
	assert.Greater(t, score, 70.0)
	assert.Contains(t, breakdown.Strengths, "Strong return on equity")
}

func TestScoreDistressedCompany(t *testing.T) {
	snapshot := &models.FinancialSnapshot{
		Ticker: "TEST",
		Fundamentals: &models.Fundamentals{
			MarketCap:         1e8,
			SharesOutstanding: 1e7,
			CurrentRatio:      floatPtr(0.5),
			DebtToEquity:      floatPtr(3.0),
			ROE:               floatPtr(-0.10),
			RevenueGrowth:     floatPtr(-0.20),
			EarningsGrowth:    floatPtr(-0.30),
			ForwardPE:         floatPtr(-5),
			PEG:               floatPtr(-1),
		},
	}

	score, breakdown, err := newTestAnalyzer().Score(snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 0, breakdown.Health, 0.01)
	assert.InDelta(t, 0, breakdown.Growth, 0.01)
	assert.InDelta(t, 10, breakdown.ValuationLite, 0.01)
	assert.Less(t, score, 35.0)
	assert.Contains(t, breakdown.RedFlags, "Negative return on equity")
	assert.Contains(t, breakdown.RedFlags, "Debt above twice equity")
}

func TestScoreMissingMetricsStayNeutral(t *testing.T) {
	// A snapshot with fundamentals present but every optional ratio absent
	snapshot := &models.FinancialSnapshot{
		Ticker:       "TEST",
		Fundamentals: &models.Fundamentals{MarketCap: 1e9, SharesOutstanding: 1e7},
	}

	_, breakdown, err := newTestAnalyzer().Score(snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 50, breakdown.Health, 0.01)
	assert.InDelta(t, 50, breakdown.Growth, 0.01)
	assert.InDelta(t, 50, breakdown.ValuationLite, 0.01)
	assert.InDelta(t, 50, breakdown.Quality, 0.01)
	assert.InDelta(t, 50, breakdown.ROICSpread, 0.01)
}

func TestScoreQualityUsesStatements(t *testing.T) {
	cur := models.StatementPeriod{
		Income: models.IncomeStatement{
			Revenue:       1200,
			CostOfRevenue: 600,
			GrossProfit:   600,
			NetIncome:     150,
		},
		Balance: models.BalanceSheet{
			TotalAssets:        1000,
			CurrentAssets:      500,
			CurrentLiabilities: 200,
			Receivables:        100,
			Inventory:          50,
			Payables:           80,
			LongTermDebt:       100,
			ShareholderEquity:  600,
			SharesIssued:       100,
		},
		CashFlow: models.CashFlowStatement{OperatingCashFlow: 200},
	}
	prev := models.StatementPeriod{
		Income: models.IncomeStatement{
			Revenue:       1000,
			CostOfRevenue: 550,
			GrossProfit:   450,
			NetIncome:     50,
		},
		Balance: models.BalanceSheet{
			TotalAssets:        1000,
			CurrentAssets:      400,
			CurrentLiabilities: 200,
			Receivables:        120,
			Inventory:          70,
			Payables:           60,
			LongTermDebt:       200,
			ShareholderEquity:  500,
			SharesIssued:       100,
		},
		CashFlow: models.CashFlowStatement{OperatingCashFlow: 60},
	}

	snapshot := &models.FinancialSnapshot{
		Ticker:       "TEST",
		Fundamentals: &models.Fundamentals{MarketCap: 1e9, SharesOutstanding: 100},
		Statements:   []models.StatementPeriod{cur, prev},
	}

	_, breakdown, err := newTestAnalyzer().Score(snapshot)
	require.NoError(t, err)

	assert.Equal(t, 9, breakdown.Piotroski)
	assert.InDelta(t, -0.05, breakdown.AccrualRatio, 1e-9) // (150-200)/1000
	assert.Less(t, breakdown.CashCycle, 100.0)
	assert.Greater(t, breakdown.Quality, 80.0)
	assert.Contains(t, breakdown.Strengths, "High Piotroski F-Score")

	// DuPont identity holds
	d := breakdown.DuPont
	assert.InDelta(t, d.NetMargin*d.AssetTurnover*d.Leverage, d.ROE, 1e-9)
}

func TestDupont(t *testing.T) {
	p := models.StatementPeriod{
		Income: models.IncomeStatement{Revenue: 1000, NetIncome: 100},
		Balance: models.BalanceSheet{
			TotalAssets:       2000,
			ShareholderEquity: 500,
		},
	}

	d := dupont(p)
	assert.InDelta(t, 0.10, d.NetMargin, 1e-9)
	assert.InDelta(t, 0.50, d.AssetTurnover, 1e-9)
	assert.InDelta(t, 4.0, d.Leverage, 1e-9)
	assert.InDelta(t, 0.20, d.ROE, 1e-9)
}

func TestRoic(t *testing.T) {
	p := models.StatementPeriod{
		Income: models.IncomeStatement{OperatingIncome: 200},
		Balance: models.BalanceSheet{
			LongTermDebt:      300,
			ShortTermDebt:     100,
			ShareholderEquity: 700,
			Cash:              100,
		},
	}

	// NOPAT = 200 * 0.75 = 150; invested = 400 + 700 - 100 = 1000
	assert.InDelta(t, 0.15, roic(p, 0.25), 1e-9)

	// Non-positive invested capital guards to 0
	empty := models.StatementPeriod{Income: models.IncomeStatement{OperatingIncome: 200}}
	assert.Equal(t, 0.0, roic(empty, 0.25))
}

func TestCashConversionCycle(t *testing.T) {
	p := models.StatementPeriod{
		Income: models.IncomeStatement{Revenue: 365, CostOfRevenue: 365},
		Balance: models.BalanceSheet{
			Receivables: 30,
			Inventory:   20,
			Payables:    10,
		},
	}

	ccc, ok := cashConversionCycle(p)
	require.True(t, ok)
	assert.InDelta(t, 40, ccc, 1e-9) // 30 + 20 - 10 days

	_, ok = cashConversionCycle(models.StatementPeriod{})
	assert.False(t, ok)
}
