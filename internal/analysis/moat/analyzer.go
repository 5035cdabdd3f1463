package moat

import (
	"math"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

// marginTrendBand is the gross-margin move (in percentage points) that
// shifts the pricing power score.
const marginTrendBand = 3.0

// Analyzer scores the six-dimension competitive moat overlay.
type Analyzer struct {
	cfg    common.MoatConfig
	logger *common.Logger
}

func NewAnalyzer(cfg common.MoatConfig, logger *common.Logger) *Analyzer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Profile scores all six moat dimensions. The five qualitative dimensions
// come from configured overrides (snapshot override first, then the config
// store) and default to the baseline of 50; pricing power is always
// computed from margin structure and cannot be overridden.
func (a *Analyzer) Profile(snapshot *models.FinancialSnapshot) *models.MoatProfile {
	override := a.overrideFor(snapshot)
	w := a.cfg.Weights

	dims := []models.MoatDimension{
		qualitative(models.MoatMarketDominance, override.MarketDominance, w.MarketDominance),
		qualitative(models.MoatSwitchingCosts, override.SwitchingCosts, w.SwitchingCosts),
		qualitative(models.MoatTechnologyLock, override.TechnologyLock, w.TechnologyLock),
		qualitative(models.MoatSupplyChain, override.SupplyChain, w.SupplyChain),
		{
			Name:   models.MoatPricingPower,
			Score:  a.pricingPower(snapshot),
			Weight: w.PricingPower,
		},
		qualitative(models.MoatBarriersToEntry, override.BarriersToEntry, w.BarriersToEntry),
	}

	var composite float64
	for _, d := range dims {
		composite += d.Score * d.Weight
	}

	return &models.MoatProfile{
		Ticker:         snapshot.Ticker,
		Dimensions:     dims,
		Composite:      composite,
		Classification: Classify(composite),
	}
}

// Classify maps a moat composite onto the four-tier classification.
func Classify(composite float64) models.MoatClassification {
	switch {
	case composite >= 80:
		return models.WideMoat
	case composite >= 60:
		return models.NarrowMoat
	case composite >= 40:
		return models.WeakMoat
	default:
		return models.NoMoat
	}
}

// pricingPower scores margin structure: sustained high gross and operating
// margins signal the ability to raise prices without losing volume.
func (a *Analyzer) pricingPower(snapshot *models.FinancialSnapshot) float64 {
	score := models.MoatBaseline

	gm, gmOK := grossMarginPct(snapshot)
	if gmOK {
		switch {
		case gm > 40:
			score += 25
		case gm > 25:
			score += 15
		case gm > 15:
			score += 5
		}
	}

	om, omOK := operatingMarginPct(snapshot)
	if omOK {
		switch {
		case om > 30:
			score += 15
		case om > 20:
			score += 10
		case om > 10:
			score += 5
		}
	}

	if delta, ok := grossMarginTrend(snapshot); ok {
		if delta > marginTrendBand {
			score += 10
		} else if delta < -marginTrendBand {
			score -= 10
		}
	}

	return math.Min(100, math.Max(0, score))
}

func (a *Analyzer) overrideFor(snapshot *models.FinancialSnapshot) models.MoatOverride {
	if snapshot.MoatOverride != nil {
		return *snapshot.MoatOverride
	}
	if o, ok := a.cfg.Overrides[snapshot.Ticker]; ok {
		return o
	}
	return models.MoatOverride{}
}

func qualitative(name string, override *float64, weight float64) models.MoatDimension {
	d := models.MoatDimension{Name: name, Score: models.MoatBaseline, Weight: weight}
	if override != nil {
		d.Score = math.Min(100, math.Max(0, *override))
		d.Overridden = true
	}
	return d
}

// grossMarginPct prefers the ratio feed and falls back to the newest
// income statement. Returned in percentage points.
func grossMarginPct(snapshot *models.FinancialSnapshot) (float64, bool) {
	if f := snapshot.Fundamentals; f != nil && f.GrossMargin != nil {
		return *f.GrossMargin * 100, true
	}
	if len(snapshot.Statements) > 0 {
		inc := snapshot.Statements[0].Income
		if inc.Revenue > 0 {
			return inc.GrossProfit / inc.Revenue * 100, true
		}
	}
	return 0, false
}

func operatingMarginPct(snapshot *models.FinancialSnapshot) (float64, bool) {
	if f := snapshot.Fundamentals; f != nil && f.OperatingMargin != nil {
		return *f.OperatingMargin * 100, true
	}
	if len(snapshot.Statements) > 0 {
		inc := snapshot.Statements[0].Income
		if inc.Revenue > 0 {
			return inc.OperatingIncome / inc.Revenue * 100, true
		}
	}
	return 0, false
}

// grossMarginTrend returns the newest-minus-prior gross margin move in
// percentage points across the statement history.
func grossMarginTrend(snapshot *models.FinancialSnapshot) (float64, bool) {
	if len(snapshot.Statements) < 2 {
		return 0, false
	}
	cur, prev := snapshot.Statements[0].Income, snapshot.Statements[1].Income
	if cur.Revenue <= 0 || prev.Revenue <= 0 {
		return 0, false
	}
	return (cur.GrossProfit/cur.Revenue - prev.GrossProfit/prev.Revenue) * 100, true
}
