// Package models defines data structures for Valora
package models

import (
	"time"
)

// PriceBar represents a single day's price data. Bars are ordered newest
// first, so bars[0] is the most recent trading day.
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// FinancialSnapshot is the immutable per-ticker input bundle for an analysis
// run. It is assembled once by upstream collectors and never mutated by
// analyzers.
type FinancialSnapshot struct {
	Ticker       string    `json:"ticker"`
	Exchange     string    `json:"exchange"`
	Name         string    `json:"name"`
	CurrentPrice float64   `json:"current_price"`
	AsOf         time.Time `json:"as_of"`

	Prices     []PriceBar `json:"prices"`
	Benchmark  []PriceBar `json:"benchmark"`
	BenchmarkT string     `json:"benchmark_ticker,omitempty"`

	Fundamentals *Fundamentals     `json:"fundamentals,omitempty"`
	Statements   []StatementPeriod `json:"statements,omitempty"`

	// Sentiment is a precomputed scalar in [-1, 1]. Nil when upstream
	// sentiment generation produced nothing for this ticker.
	Sentiment *float64 `json:"sentiment,omitempty"`

	// MoatOverride carries qualitative moat dimensions from the config
	// store. Nil means every qualitative dimension uses the baseline.
	MoatOverride *MoatOverride `json:"moat_override,omitempty"`
}

// Fundamentals contains ratio-level fundamental data for a ticker. Ratios
// that upstream sources may not supply are pointers so absence is
// distinguishable from zero.
type Fundamentals struct {
	Ticker            string  `json:"ticker"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Beta              float64 `json:"beta"`
	NetDebt           float64 `json:"net_debt"`

	PE               *float64 `json:"pe_ratio,omitempty"`
	ForwardPE        *float64 `json:"forward_pe,omitempty"`
	PEG              *float64 `json:"peg_ratio,omitempty"`
	PB               *float64 `json:"pb_ratio,omitempty"`
	EPS              *float64 `json:"eps,omitempty"`
	CurrentRatio     *float64 `json:"current_ratio,omitempty"`
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	ROE              *float64 `json:"return_on_equity,omitempty"`
	GrossMargin      *float64 `json:"gross_margin,omitempty"`
	OperatingMargin  *float64 `json:"operating_margin,omitempty"`
	RevenueGrowth    *float64 `json:"revenue_growth,omitempty"`
	EarningsGrowth   *float64 `json:"earnings_growth,omitempty"`
	DividendYield    *float64 `json:"dividend_yield,omitempty"`
	CostOfDebt       *float64 `json:"cost_of_debt,omitempty"`
	TargetDebtWeight *float64 `json:"target_debt_weight,omitempty"`
	MarketShare      *float64 `json:"market_share,omitempty"`

	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// StatementPeriod bundles one fiscal year of income statement, balance
// sheet, and cash flow data. Periods are ordered newest first.
type StatementPeriod struct {
	FiscalYear int       `json:"fiscal_year"`
	EndDate    time.Time `json:"end_date"`

	Income   IncomeStatement   `json:"income"`
	Balance  BalanceSheet      `json:"balance"`
	CashFlow CashFlowStatement `json:"cash_flow"`
}

// IncomeStatement holds income statement line items for one period.
type IncomeStatement struct {
	Revenue         float64 `json:"revenue"`
	CostOfRevenue   float64 `json:"cost_of_revenue"`
	GrossProfit     float64 `json:"gross_profit"`
	OperatingIncome float64 `json:"operating_income"`
	InterestExpense float64 `json:"interest_expense"`
	PretaxIncome    float64 `json:"pretax_income"`
	TaxExpense      float64 `json:"tax_expense"`
	NetIncome       float64 `json:"net_income"`
	EBITDA          float64 `json:"ebitda"`
	DilutedShares   float64 `json:"diluted_shares"`
}

// BalanceSheet holds balance sheet line items for one period.
type BalanceSheet struct {
	TotalAssets         float64 `json:"total_assets"`
	CurrentAssets       float64 `json:"current_assets"`
	Cash                float64 `json:"cash"`
	Inventory           float64 `json:"inventory"`
	Receivables         float64 `json:"receivables"`
	Payables            float64 `json:"payables"`
	TotalLiabilities    float64 `json:"total_liabilities"`
	CurrentLiabilities  float64 `json:"current_liabilities"`
	LongTermDebt        float64 `json:"long_term_debt"`
	ShortTermDebt       float64 `json:"short_term_debt"`
	ShareholderEquity   float64 `json:"shareholder_equity"`
	SharesIssued        float64 `json:"shares_issued"`
}

// CashFlowStatement holds cash flow line items for one period.
type CashFlowStatement struct {
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	CapEx             float64 `json:"capex"`
	FreeCashFlow      float64 `json:"free_cash_flow"`
	DividendsPaid     float64 `json:"dividends_paid"`
}

// FCF returns free cash flow for the period, deriving it from operating
// cash flow and capex when the source didn't supply it directly.
func (c CashFlowStatement) FCF() float64 {
	if c.FreeCashFlow != 0 {
		return c.FreeCashFlow
	}
	return c.OperatingCashFlow - c.CapEx
}

// TotalDebt returns short plus long term debt for the period.
func (b BalanceSheet) TotalDebt() float64 {
	return b.ShortTermDebt + b.LongTermDebt
}
