package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valora/internal/models"
)

func TestComputerScore(t *testing.T) {
	tests := []struct {
		name     string
		bars     []models.PriceBar
		minScore float64
		maxScore float64
	}{
		{
			name:     "strong uptrend scores above neutral",
			bars:     generateTrendBars(200, 1.0, 120),
			minScore: 60,
			maxScore: 100,
		},
		{
			name:     "strong downtrend scores below neutral",
			bars:     generateTrendBars(200, -1.0, 120),
			minScore: 0,
			maxScore: 40,
		},
		{
			name:     "flat market stays near neutral",
			bars:     flatBars(100, 120),
			minScore: 40,
			maxScore: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := &models.FinancialSnapshot{Ticker: "TEST", Prices: tt.bars}

			score, summary, err := NewComputer().Score(snapshot)
			require.NoError(t, err)
			require.NotNil(t, summary)

			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
			assert.Equal(t, tt.bars[0].Close, summary.Price)
		})
	}
}

func TestComputerScoreInsufficientData(t *testing.T) {
	snapshot := &models.FinancialSnapshot{
		Ticker: "TEST",
		Prices: generateBars([]float64{10, 20, 30}),
	}

	_, _, err := NewComputer().Score(snapshot)
	require.Error(t, err)

	var dataErr *models.DataInsufficientError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, minBars, dataErr.Need)
	assert.Equal(t, 3, dataErr.Have)
}

func TestComputerScoreBounded(t *testing.T) {
	// Even an extreme trend must stay inside [0, 100]
	for _, change := range []float64{5.0, -0.5} {
		snapshot := &models.FinancialSnapshot{
			Ticker: "TEST",
			Prices: generateTrendBars(1000, change, 260),
		}

		score, _, err := NewComputer().Score(snapshot)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func flatBars(price float64, days int) []models.PriceBar {
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = price
	}
	return generateBars(closes)
}
