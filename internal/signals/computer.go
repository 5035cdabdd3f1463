// Package signals provides signal computation
package signals

import (
	"github.com/bobmcallan/valora/internal/models"
)

// minBars is the shortest price history the technical score accepts.
// Shorter histories leave too few observations for the medium-term
// indicators; the 200-day SMA falls back to the longest window available.
const minBars = 60

// Summary holds the indicator readings behind a technical score.
type Summary struct {
	Price           float64 `json:"price"`
	SMA20           float64 `json:"sma_20"`
	SMA50           float64 `json:"sma_50"`
	SMA200          float64 `json:"sma_200"`
	RSI             float64 `json:"rsi"`
	RSIState        string  `json:"rsi_state"`
	MACD            float64 `json:"macd"`
	MACDHist        float64 `json:"macd_histogram"`
	ATRPct          float64 `json:"atr_pct"`
	VolumeRatio     float64 `json:"volume_ratio"`
	Crossover20x50  string  `json:"crossover_20x50"`
	Crossover50x200 string  `json:"crossover_50x200"`
	Trend           Trend   `json:"trend"`
}

// Computer derives a bounded technical sub-score from a price series.
type Computer struct{}

// NewComputer creates a new signal computer
func NewComputer() *Computer {
	return &Computer{}
}

// Score computes the technical sub-score in [0, 100] from a snapshot's
// price series. The score starts neutral at 50 and moves with trend,
// momentum, and volume confirmation.
func (c *Computer) Score(snapshot *models.FinancialSnapshot) (float64, *Summary, error) {
	bars := snapshot.Prices
	if len(bars) < minBars {
		return 0, nil, &models.DataInsufficientError{What: "technical signals", Need: minBars, Have: len(bars)}
	}

	currentPrice := bars[0].Close

	sma20 := SMA(bars, 20)
	sma50 := SMA(bars, 50)
	sma200 := SMA(bars, 200)
	if sma200 == 0 {
		// Not enough history for the long SMA; fall back to the longest
		// window available so the trend test still has an anchor.
		sma200 = SMA(bars, len(bars))
	}

	rsi := RSI(bars, 14)
	macdLine, _, macdHist := MACD(bars, 12, 26, 9)
	atr := ATR(bars, 14)
	volRatio := VolumeRatio(bars, 20)

	cross20x50 := DetectCrossover(bars, 20, 50)
	cross50x200 := DetectCrossover(bars, 50, 200)
	trend := DetermineTrend(currentPrice, sma20, sma50, sma200)

	summary := &Summary{
		Price:           currentPrice,
		SMA20:           sma20,
		SMA50:           sma50,
		SMA200:          sma200,
		RSI:             rsi,
		RSIState:        ClassifyRSI(rsi),
		MACD:            macdLine,
		MACDHist:        macdHist,
		ATRPct:          (atr / currentPrice) * 100,
		VolumeRatio:     volRatio,
		Crossover20x50:  cross20x50,
		Crossover50x200: cross50x200,
		Trend:           trend,
	}

	score := 50.0

	// Trend
	switch trend {
	case TrendBullish:
		score += 15
	case TrendBearish:
		score -= 15
	}

	// Price vs long SMA
	if currentPrice > sma200 {
		score += 10
	} else if currentPrice < sma200 {
		score -= 10
	}

	// MACD state
	if macdHist > 0 && macdLine > 0 {
		score += 10
	} else if macdHist < 0 && macdLine < 0 {
		score -= 10
	}

	// RSI band: extremes cut the score, a healthy band adds a little
	switch {
	case rsi >= 80 || rsi <= 20:
		score -= 10
	case rsi >= 45 && rsi <= 65:
		score += 5
	}

	// Recent crossovers
	if cross20x50 == "golden_cross" || cross50x200 == "golden_cross" {
		score += 10
	}
	if cross20x50 == "death_cross" || cross50x200 == "death_cross" {
		score -= 10
	}

	// Volume confirmation: a spike only counts with a trend behind it
	if ClassifyVolume(volRatio) == "spike" {
		switch trend {
		case TrendBullish:
			score += 5
		case TrendBearish:
			score -= 5
		}
	}

	return clamp(score, 0, 100), summary, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
