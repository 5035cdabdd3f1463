package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		sentiment float64
		expected  float64
	}{
		{"maximum bullish", 1.0, 100},
		{"mildly bullish", 0.4, 70},
		{"neutral", 0.0, 50},
		{"mildly bearish", -0.4, 30},
		{"maximum bearish", -1.0, 0},
		{"clamps above range", 1.8, 100},
		{"clamps below range", -2.0, 0},
	}

	analyzer := NewAnalyzer(common.NewSilentLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := &models.FinancialSnapshot{
				Ticker:    "TEST",
				Sentiment: floatPtr(tt.sentiment),
			}

			score, err := analyzer.Score(snapshot)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, score, 0.01)
		})
	}
}

func TestScoreMissingSentiment(t *testing.T) {
	_, err := NewAnalyzer(common.NewSilentLogger()).Score(&models.FinancialSnapshot{Ticker: "TEST"})
	require.Error(t, err)
	assert.True(t, models.IsDataInsufficient(err))
}
