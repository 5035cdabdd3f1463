package models

// DCFAssumptions parameterizes one discounted cash flow run.
type DCFAssumptions struct {
	HighGrowthRate     float64 `json:"high_growth_rate"`     // annual FCF growth during the high-growth horizon
	HighGrowthYears    int     `json:"high_growth_years"`    // default 5
	FadeYears          int     `json:"fade_years"`           // default 5, linear fade to terminal growth
	TerminalGrowthRate float64 `json:"terminal_growth_rate"` // must stay below the discount rate
	DiscountRate       float64 `json:"discount_rate"`        // 0 means derive WACC from snapshot + config
	ExitMultiple       float64 `json:"exit_multiple"`        // EV/EBITDA; 0 skips the exit-multiple comparison
}

// WACCBreakdown records how the discount rate was derived.
type WACCBreakdown struct {
	CostOfEquity float64 `json:"cost_of_equity"` // CAPM
	CostOfDebt   float64 `json:"cost_of_debt"`   // after tax
	EquityWeight float64 `json:"equity_weight"`
	DebtWeight   float64 `json:"debt_weight"`
	WACC         float64 `json:"wacc"`
}

// Scenario is one row of the bull/base/bear scenario table.
type Scenario struct {
	Name        string  `json:"name"` // bull, base, bear
	GrowthRate  float64 `json:"growth_rate"`
	Discount    float64 `json:"discount_rate"`
	Target      float64 `json:"target"` // intrinsic value per share under this scenario
	Probability float64 `json:"probability"`
}

// DCFResult holds the valuation outputs for one ticker.
type DCFResult struct {
	Assumptions DCFAssumptions `json:"assumptions"`
	WACC        WACCBreakdown  `json:"wacc"`

	EnterpriseValue   float64 `json:"enterprise_value"`
	NetDebt           float64 `json:"net_debt"`
	EquityValue       float64 `json:"equity_value"`
	IntrinsicValue    float64 `json:"intrinsic_value"` // per share
	MarketPrice       float64 `json:"market_price"`
	MarginOfSafetyPct float64 `json:"margin_of_safety_pct"`

	// Terminal value by both methods, reported side by side.
	TerminalValueGordon float64 `json:"terminal_value_gordon"`
	TerminalValueExit   float64 `json:"terminal_value_exit,omitempty"`
	TerminalValueShare  float64 `json:"terminal_value_share"` // share of EV from the (Gordon) terminal value

	Scenarios     []Scenario `json:"scenarios"`
	ExpectedValue float64    `json:"expected_value"` // probability-weighted scenario target

	ImpliedGrowthRate      float64 `json:"implied_growth_rate"` // reverse DCF
	ImpliedGrowthConverged bool    `json:"implied_growth_converged"`

	// LowConfidence marks a valuation built on negative trailing FCF.
	LowConfidence bool `json:"low_confidence"`
	// ModelFragile marks a valuation dominated by terminal assumptions
	// (terminal value above 80% of enterprise value).
	ModelFragile bool `json:"model_fragile"`
}
