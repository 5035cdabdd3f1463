package models

// RiskLevel classifies overall risk, ordered from least to most risky.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY HIGH"
)

// riskLevelRank orders levels for worst-metric floors.
var riskLevelRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskModerate: 1,
	RiskHigh:     2,
	RiskVeryHigh: 3,
}

// AtLeast returns the riskier of the two levels.
func (l RiskLevel) AtLeast(floor RiskLevel) RiskLevel {
	if riskLevelRank[l] < riskLevelRank[floor] {
		return floor
	}
	return l
}

// RiskProfile holds the statistical risk metrics for one ticker.
type RiskProfile struct {
	Lookback    int       `json:"lookback"`   // trading days used
	Volatility  float64   `json:"volatility"` // annualized
	Beta        float64   `json:"beta"`
	Sharpe      float64   `json:"sharpe"`
	Sortino     float64   `json:"sortino"`
	MaxDrawdown float64   `json:"max_drawdown"` // always <= 0
	VaR95       float64   `json:"var_95"`       // 5th percentile daily return
	CVaR95      float64   `json:"cvar_95"`      // mean of returns at or below VaR95
	Score       float64   `json:"score"`        // in [0, 100]
	Level       RiskLevel `json:"level"`
}
