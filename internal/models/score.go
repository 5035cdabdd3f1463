package models

import (
	"time"
)

// Provenance records whether a sub-score was genuinely computed or
// substituted after an analyzer failure.
type Provenance string

const (
	ProvenanceComputed Provenance = "computed"
	ProvenanceFallback Provenance = "fallback"
)

// Dimension names for the five composite sub-scores.
const (
	DimensionFundamental = "fundamental"
	DimensionValuation   = "valuation"
	DimensionTechnical   = "technical"
	DimensionSentiment   = "sentiment"
	DimensionRisk        = "risk"
)

// FallbackValue is substituted for a dimension whose analyzer failed.
const FallbackValue = 50.0

// SubScore is one bounded dimension score feeding the composite.
type SubScore struct {
	Dimension  string     `json:"dimension"`
	Value      float64    `json:"value"` // always in [0, 100]
	Provenance Provenance `json:"provenance"`
	Reason     string     `json:"reason,omitempty"` // set when provenance is fallback
}

// Fallback returns the neutral substitute sub-score for a failed analyzer.
func Fallback(dimension, reason string) SubScore {
	return SubScore{
		Dimension:  dimension,
		Value:      FallbackValue,
		Provenance: ProvenanceFallback,
		Reason:     reason,
	}
}

// Recommendation is the ordered action classification of a composite score.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG SELL"
)

// CompositeScore is the final weighted output of a scoring run.
type CompositeScore struct {
	RunID           string             `json:"run_id"`
	Ticker          string             `json:"ticker"`
	SubScores       []SubScore         `json:"sub_scores"` // exactly five, fixed order
	Weights         map[string]float64 `json:"weights"`    // sums to 1.0
	Composite       float64            `json:"composite"`  // rounded to 1 decimal
	Recommendation  Recommendation     `json:"recommendation"`
	FallbackCount   int                `json:"fallback_count"`
	DataQualityFlag bool               `json:"data_quality_flag"` // true once >=2 dimensions fell back
	GeneratedAt     time.Time          `json:"generated_at"`

	// Diagnostics from the underlying analyzers, surfaced for reporting
	// collaborators. Nil when the producing analyzer fell back.
	Valuation   *DCFResult            `json:"valuation,omitempty"`
	Risk        *RiskProfile          `json:"risk,omitempty"`
	Fundamental *FundamentalBreakdown `json:"fundamental,omitempty"`
}

// SubScoreByDimension returns the sub-score for a dimension, if present.
func (c *CompositeScore) SubScoreByDimension(dimension string) (SubScore, bool) {
	for _, s := range c.SubScores {
		if s.Dimension == dimension {
			return s, true
		}
	}
	return SubScore{}, false
}

// FundamentalBreakdown carries the component diagnostics behind the
// fundamental sub-score.
type FundamentalBreakdown struct {
	Health        float64 `json:"health"`
	Growth        float64 `json:"growth"`
	ValuationLite float64 `json:"valuation_lite"`
	Quality       float64 `json:"quality"`
	ROICSpread    float64 `json:"roic_spread_score"`

	Piotroski    int     `json:"piotroski_f_score"` // 0..9
	ROIC         float64 `json:"roic"`
	AccrualRatio float64 `json:"accrual_ratio"`
	CashCycle    float64 `json:"cash_conversion_cycle"` // days
	DuPont       DuPont  `json:"dupont"`

	Rating    string   `json:"rating"`
	RedFlags  []string `json:"red_flags,omitempty"`
	Strengths []string `json:"strengths,omitempty"`
}

// DuPont is the three-way decomposition of return on equity.
type DuPont struct {
	NetMargin     float64 `json:"net_margin"`
	AssetTurnover float64 `json:"asset_turnover"`
	Leverage      float64 `json:"leverage"`
	ROE           float64 `json:"roe"`
}
