package valuation

import (
	"github.com/bobmcallan/valora/internal/models"
)

// scenarioTable builds the bull/base/bear rows by shifting the base
// growth and discount rates by the configured deltas, and returns the
// probability-weighted expected value per share alongside the table.
func (e *Engine) scenarioTable(snapshot *models.FinancialSnapshot, base models.DCFAssumptions, trailingFCF, netDebt, shares float64) ([]models.Scenario, float64, error) {
	sc := e.cfg.Scenarios

	rows := []models.Scenario{
		{
			Name:        "bull",
			GrowthRate:  base.HighGrowthRate + sc.BullGrowthDelta,
			Discount:    base.DiscountRate + sc.BullDiscountDelta,
			Probability: sc.BullProbability,
		},
		{
			Name:        "base",
			GrowthRate:  base.HighGrowthRate,
			Discount:    base.DiscountRate,
			Probability: sc.BaseProbability,
		},
		{
			Name:        "bear",
			GrowthRate:  base.HighGrowthRate + sc.BearGrowthDelta,
			Discount:    base.DiscountRate + sc.BearDiscountDelta,
			Probability: sc.BearProbability,
		},
	}

	var expected float64
	for i := range rows {
		a := base
		a.HighGrowthRate = rows[i].GrowthRate
		a.DiscountRate = rows[i].Discount

		target, err := e.intrinsicAt(trailingFCF, netDebt, shares, a)
		if err != nil {
			return nil, 0, err
		}
		rows[i].Target = target
		expected += target * rows[i].Probability
	}

	return rows, expected, nil
}

// ExpectedValue weights scenario targets by probability. Exposed for
// callers that adjust a scenario table before aggregating.
func ExpectedValue(scenarios []models.Scenario) float64 {
	var ev float64
	for _, s := range scenarios {
		ev += s.Target * s.Probability
	}
	return ev
}
