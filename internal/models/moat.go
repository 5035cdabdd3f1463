package models

// Moat dimension names.
const (
	MoatMarketDominance = "market_dominance"
	MoatSwitchingCosts  = "switching_costs"
	MoatTechnologyLock  = "technology_lock_in"
	MoatSupplyChain     = "supply_chain_criticality"
	MoatPricingPower    = "pricing_power"
	MoatBarriersToEntry = "barriers_to_entry"
)

// MoatBaseline is the default score for a qualitative dimension with no
// configured override.
const MoatBaseline = 50.0

// MoatClassification labels the strength of a competitive moat.
type MoatClassification string

const (
	WideMoat   MoatClassification = "WIDE MOAT"
	NarrowMoat MoatClassification = "NARROW MOAT"
	WeakMoat   MoatClassification = "WEAK MOAT"
	NoMoat     MoatClassification = "NO MOAT"
)

// MoatOverride carries qualitative moat dimension scores for one tracked
// company, sourced from the config store. Nil fields fall back to the
// baseline of 50.
type MoatOverride struct {
	MarketDominance *float64 `json:"market_dominance,omitempty" toml:"market_dominance"`
	SwitchingCosts  *float64 `json:"switching_costs,omitempty" toml:"switching_costs"`
	TechnologyLock  *float64 `json:"technology_lock_in,omitempty" toml:"technology_lock_in"`
	SupplyChain     *float64 `json:"supply_chain_criticality,omitempty" toml:"supply_chain_criticality"`
	BarriersToEntry *float64 `json:"barriers_to_entry,omitempty" toml:"barriers_to_entry"`
}

// MoatDimension is one scored dimension of the moat profile.
type MoatDimension struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"` // in [0, 100]
	Weight     float64 `json:"weight"`
	Overridden bool    `json:"overridden"` // true when sourced from a configured override
}

// MoatProfile is the independent competitive-advantage overlay for one
// ticker. It is reported alongside, never blended into, the composite score.
type MoatProfile struct {
	Ticker         string             `json:"ticker"`
	Dimensions     []MoatDimension    `json:"dimensions"` // six, fixed order
	Composite      float64            `json:"composite"`
	Classification MoatClassification `json:"classification"`
}
