package fundamental

import (
	"math"

	"github.com/bobmcallan/valora/internal/analysis/valuation"
	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

// Component blend weights for the final fundamental sub-score.
const (
	weightHealth     = 0.25
	weightGrowth     = 0.25
	weightValueLite  = 0.20
	weightQuality    = 0.20
	weightROICSpread = 0.10
)

// Analyzer scores financial health, growth, valuation ratios, and earnings
// quality into one bounded fundamental sub-score.
type Analyzer struct {
	valCfg common.ValuationConfig
	logger *common.Logger
}

// NewAnalyzer creates a fundamental analyzer from config.
func NewAnalyzer(valCfg common.ValuationConfig, logger *common.Logger) *Analyzer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Analyzer{valCfg: valCfg, logger: logger}
}

// Score computes the fundamental sub-score in [0, 100] with its component
// breakdown.
func (a *Analyzer) Score(snapshot *models.FinancialSnapshot) (float64, *models.FundamentalBreakdown, error) {
	fund := snapshot.Fundamentals
	if fund == nil {
		return 0, nil, &models.DataInsufficientError{What: "fundamentals", Need: 1, Have: 0}
	}

	b := &models.FundamentalBreakdown{}

	b.Health = a.scoreHealth(fund)
	b.Growth = a.scoreGrowth(fund, snapshot.Statements)
	b.ValuationLite = a.scoreValuationLite(fund)
	b.Quality = a.scoreQuality(snapshot.Statements, b)
	b.ROICSpread = a.scoreROICSpread(snapshot, b)

	score := b.Health*weightHealth +
		b.Growth*weightGrowth +
		b.ValuationLite*weightValueLite +
		b.Quality*weightQuality +
		b.ROICSpread*weightROICSpread
	score = clamp(score, 0, 100)

	b.Rating = rating(score)
	b.RedFlags = detectRedFlags(fund, snapshot.Statements, b)
	b.Strengths = detectStrengths(fund, b)

	a.logger.Debug().
		Str("ticker", snapshot.Ticker).
		Float64("score", score).
		Int("piotroski", b.Piotroski).
		Str("rating", b.Rating).
		Msg("Fundamental score computed")

	return score, b, nil
}

// scoreHealth scores liquidity, leverage, and returns. Each metric carries
// a fixed point cap; a missing metric earns half its cap so absence stays
// neutral rather than punitive.
func (a *Analyzer) scoreHealth(fund *models.Fundamentals) float64 {
	score := 0.0

	// Current ratio, up to 35
	if fund.CurrentRatio != nil {
		switch cr := *fund.CurrentRatio; {
		case cr >= 2.0:
			score += 35
		case cr >= 1.5:
			score += 28
		case cr >= 1.0:
			score += 18
		case cr >= 0.8:
			score += 8
		}
	} else {
		score += 17.5
	}

	// Debt to equity, up to 35
	if fund.DebtToEquity != nil {
		switch de := *fund.DebtToEquity; {
		case de < 0:
			// Negative equity
		case de <= 0.3:
			score += 35
		case de <= 0.6:
			score += 28
		case de <= 1.0:
			score += 18
		case de <= 2.0:
			score += 8
		}
	} else {
		score += 17.5
	}

	// Return on equity, up to 30
	if fund.ROE != nil {
		switch roe := *fund.ROE; {
		case roe >= 0.20:
			score += 30
		case roe >= 0.15:
			score += 23
		case roe >= 0.10:
			score += 15
		case roe >= 0:
			score += 8
		}
	} else {
		score += 15
	}

	return clamp(score, 0, 100)
}

// scoreGrowth scores revenue and earnings growth, deriving either from the
// statements when the ratio feed didn't supply it.
func (a *Analyzer) scoreGrowth(fund *models.Fundamentals, statements []models.StatementPeriod) float64 {
	revGrowth, revOK := growthRate(fund.RevenueGrowth, statements, func(p models.StatementPeriod) float64 {
		return p.Income.Revenue
	})
	earnGrowth, earnOK := growthRate(fund.EarningsGrowth, statements, func(p models.StatementPeriod) float64 {
		return p.Income.NetIncome
	})

	score := 0.0
	if revOK {
		score += growthPoints(revGrowth)
	} else {
		score += 25
	}
	if earnOK {
		score += growthPoints(earnGrowth)
	} else {
		score += 25
	}

	return clamp(score, 0, 100)
}

// growthPoints maps a YoY growth rate to up to 50 points.
func growthPoints(g float64) float64 {
	switch {
	case g >= 0.20:
		return 50
	case g >= 0.10:
		return 40
	case g >= 0.05:
		return 28
	case g >= 0:
		return 18
	case g >= -0.10:
		return 8
	default:
		return 0
	}
}

// growthRate prefers the supplied ratio and falls back to a YoY derivation
// from the two newest statement periods.
func growthRate(supplied *float64, statements []models.StatementPeriod, pick func(models.StatementPeriod) float64) (float64, bool) {
	if supplied != nil {
		return *supplied, true
	}
	if len(statements) >= 2 {
		return yoyGrowth(pick(statements[0]), pick(statements[1])), true
	}
	return 0, false
}

// scoreValuationLite scores forward P/E and PEG.
func (a *Analyzer) scoreValuationLite(fund *models.Fundamentals) float64 {
	score := 0.0

	// Forward P/E, up to 60
	if fund.ForwardPE != nil {
		switch pe := *fund.ForwardPE; {
		case pe <= 0:
			score += 5 // negative forward earnings
		case pe < 12:
			score += 60
		case pe < 18:
			score += 45
		case pe < 25:
			score += 30
		case pe < 40:
			score += 15
		default:
			score += 5
		}
	} else {
		score += 30
	}

	// PEG, up to 40
	if fund.PEG != nil {
		switch peg := *fund.PEG; {
		case peg <= 0:
			score += 5
		case peg < 1.0:
			score += 40
		case peg < 1.5:
			score += 30
		case peg < 2.0:
			score += 20
		case peg < 3.0:
			score += 10
		default:
			score += 5
		}
	} else {
		score += 20
	}

	return clamp(score, 0, 100)
}

// scoreQuality scores statement-level earnings quality: Piotroski F-Score,
// accrual ratio, and the cash conversion cycle trend. Needs at least two
// statement periods; with fewer it stays neutral.
func (a *Analyzer) scoreQuality(statements []models.StatementPeriod, b *models.FundamentalBreakdown) float64 {
	if len(statements) < 2 {
		return 50
	}

	cur, prev := statements[0], statements[1]

	b.Piotroski = piotroski(cur, prev)
	b.AccrualRatio = accrualRatio(cur)
	b.DuPont = dupont(cur)

	// F-Score scaled to 40 points
	score := float64(b.Piotroski) / 9.0 * 40

	// Accruals: negative accruals (cash ahead of book earnings) score best
	switch ar := b.AccrualRatio; {
	case ar <= -0.05:
		score += 30
	case ar <= 0:
		score += 25
	case ar <= 0.05:
		score += 15
	case ar <= 0.10:
		score += 8
	}

	// Cash conversion cycle: the trend matters more than the level
	curCCC, curOK := cashConversionCycle(cur)
	prevCCC, prevOK := cashConversionCycle(prev)
	if curOK {
		b.CashCycle = curCCC
	}
	switch {
	case !curOK || !prevOK:
		score += 15
	case curCCC < prevCCC-2:
		score += 30 // cycle shortening
	case curCCC > prevCCC+2:
		score += 10
	default:
		score += 20
	}

	return clamp(score, 0, 100)
}

// scoreROICSpread scores the spread between ROIC and WACC. The spread is
// the signal; the absolute ROIC level is not.
func (a *Analyzer) scoreROICSpread(snapshot *models.FinancialSnapshot, b *models.FundamentalBreakdown) float64 {
	if len(snapshot.Statements) == 0 {
		return 50
	}

	b.ROIC = roic(snapshot.Statements[0], a.valCfg.TaxRate)
	wacc := valuation.DeriveWACC(snapshot, a.valCfg).WACC
	spread := b.ROIC - wacc

	switch {
	case spread >= 0.10:
		return 100
	case spread >= 0.05:
		return 80
	case spread >= 0.02:
		return 65
	case spread >= 0:
		return 50
	case spread >= -0.05:
		return 30
	default:
		return 10
	}
}

// rating maps a 0-100 score to a rating label.
func rating(score float64) string {
	switch {
	case score >= 80:
		return "High Quality"
	case score >= 60:
		return "Quality"
	case score >= 40:
		return "Average"
	case score >= 20:
		return "Below Average"
	default:
		return "Speculative"
	}
}

func detectRedFlags(fund *models.Fundamentals, statements []models.StatementPeriod, b *models.FundamentalBreakdown) []string {
	var flags []string

	if fund.ROE != nil && *fund.ROE < 0 {
		flags = append(flags, "Negative return on equity")
	}
	if fund.DebtToEquity != nil && *fund.DebtToEquity > 2 {
		flags = append(flags, "Debt above twice equity")
	}
	if b.AccrualRatio > 0.10 {
		flags = append(flags, "Earnings running well ahead of operating cash flow")
	}
	if b.Piotroski > 0 && b.Piotroski <= 3 {
		flags = append(flags, "Weak Piotroski F-Score")
	}

	if len(statements) >= 2 {
		if statements[0].Income.NetIncome < 0 && statements[1].Income.NetIncome < 0 {
			flags = append(flags, "Consecutive loss-making years")
		}
		rev := yoyGrowth(statements[0].Income.Revenue, statements[1].Income.Revenue)
		if rev < -0.10 {
			flags = append(flags, "Revenue declining over 10%")
		}
	}

	return flags
}

func detectStrengths(fund *models.Fundamentals, b *models.FundamentalBreakdown) []string {
	var strengths []string

	if fund.ROE != nil && *fund.ROE >= 0.20 {
		strengths = append(strengths, "Strong return on equity")
	}
	if b.Piotroski >= 7 {
		strengths = append(strengths, "High Piotroski F-Score")
	}
	if b.AccrualRatio < 0 {
		strengths = append(strengths, "Cash earnings ahead of book earnings")
	}
	if b.ROICSpread >= 80 {
		strengths = append(strengths, "Returns well above cost of capital")
	}

	return strengths
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
