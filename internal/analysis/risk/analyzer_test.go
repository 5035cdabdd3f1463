package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

func newTestAnalyzer() *Analyzer {
	cfg := common.RiskConfig{
		Lookback:        252,
		MinObservations: 30,
		RiskFreeRate:    0.042,
	}
	return NewAnalyzer(cfg, common.NewSilentLogger())
}

func TestProfileInsufficientData(t *testing.T) {
	snapshot := &models.FinancialSnapshot{
		Ticker:    "TEST",
		Prices:    generateBars([]float64{100, 101, 102}),
		Benchmark: generateBars([]float64{50, 51, 52}),
	}

	_, err := newTestAnalyzer().Profile(snapshot)
	require.Error(t, err)

	var dataErr *models.DataInsufficientError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, 30, dataErr.Need)
}

func TestProfileInvariants(t *testing.T) {
	snapshot := &models.FinancialSnapshot{
		Ticker:    "TEST",
		Prices:    generateOscillatingBars(100, 0.02, 260),
		Benchmark: generateOscillatingBars(400, 0.01, 260),
	}

	profile, err := newTestAnalyzer().Profile(snapshot)
	require.NoError(t, err)

	assert.LessOrEqual(t, profile.MaxDrawdown, 0.0, "max drawdown is never positive")
	assert.LessOrEqual(t, profile.CVaR95, profile.VaR95, "CVaR is at least as negative as VaR")
	assert.GreaterOrEqual(t, profile.Score, 0.0)
	assert.LessOrEqual(t, profile.Score, 100.0)
	assert.Greater(t, profile.Volatility, 0.0)
	assert.NotEmpty(t, profile.Level)
}

func TestProfileBetaAgainstSelf(t *testing.T) {
	// A security that IS the benchmark has beta 1
	bars := generateOscillatingBars(100, 0.015, 260)
	snapshot := &models.FinancialSnapshot{
		Ticker:    "TEST",
		Prices:    bars,
		Benchmark: bars,
	}

	profile, err := newTestAnalyzer().Profile(snapshot)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, profile.Beta, 0.001)
}

func TestComputeBetaZeroVarianceBenchmark(t *testing.T) {
	sec := []float64{0.01, -0.02, 0.015, 0.003, -0.01}
	bench := []float64{0, 0, 0, 0, 0}

	assert.Equal(t, 0.0, computeBeta(sec, bench))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.RiskProfile
		expected float64
	}{
		{
			name:     "low volatility",
			profile:  models.RiskProfile{Volatility: 0.10, Sharpe: 0.5},
			expected: 90,
		},
		{
			name:     "moderate volatility",
			profile:  models.RiskProfile{Volatility: 0.30, Sharpe: 0.5},
			expected: 70,
		},
		{
			name:     "high volatility",
			profile:  models.RiskProfile{Volatility: 0.50, Sharpe: 0.5},
			expected: 50,
		},
		{
			name:     "extreme volatility clamps to zero",
			profile:  models.RiskProfile{Volatility: 1.20, Sharpe: 0.5},
			expected: 0,
		},
		{
			name: "penalties stack",
			profile: models.RiskProfile{
				Volatility:  0.30,
				Beta:        2.0,
				MaxDrawdown: -0.45,
				Sharpe:      -0.2,
			},
			expected: 50, // 70 - 5 - 5 - 10
		},
		{
			name: "sortino bonus",
			profile: models.RiskProfile{
				Volatility: 0.20,
				Sharpe:     0.8,
				Sortino:    1.5,
			},
			expected: 85, // 80 + 5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Score(&tt.profile), 0.01)
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.RiskProfile
		expected models.RiskLevel
	}{
		{"low volatility", models.RiskProfile{Volatility: 0.10, Sharpe: 0.5}, models.RiskLow},
		{"moderate volatility", models.RiskProfile{Volatility: 0.20, Sharpe: 0.5}, models.RiskModerate},
		{"high volatility", models.RiskProfile{Volatility: 0.40, Sharpe: 0.5}, models.RiskHigh},
		{"very high volatility", models.RiskProfile{Volatility: 0.60, Sharpe: 0.5}, models.RiskVeryHigh},
		{
			"extreme drawdown floors at high",
			models.RiskProfile{Volatility: 0.10, MaxDrawdown: -0.50, Sharpe: 0.5},
			models.RiskHigh,
		},
		{
			"negative sharpe floors at moderate",
			models.RiskProfile{Volatility: 0.10, Sharpe: -0.3},
			models.RiskModerate,
		},
		{
			"floor never downgrades",
			models.RiskProfile{Volatility: 0.60, Sharpe: -0.3},
			models.RiskVeryHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Level(&tt.profile))
		})
	}
}

func TestHistoricalVaR(t *testing.T) {
	// 100 distinct returns ascending from -0.100 to -0.001
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = -0.100 + float64(i)*0.001
	}

	var95, cvar95 := historicalVaR(returns)
	assert.InDelta(t, -0.095, var95, 1e-9)
	// CVaR is the mean of the six returns at or below the VaR cutoff
	assert.InDelta(t, -0.0975, cvar95, 1e-9)
	assert.LessOrEqual(t, cvar95, var95)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64 // oldest first
		expected float64
	}{
		{"monotonic rise", []float64{100, 110, 120, 130}, 0.0},
		{"halved from peak", []float64{100, 120, 60, 80}, -0.5},
		{"recovered dip", []float64{100, 90, 100, 110}, -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, maxDrawdown(tt.closes), 1e-9)
		})
	}
}

func TestAlignedReturnsInnerJoin(t *testing.T) {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Security has a bar the benchmark is missing; it must be dropped.
	prices := []models.PriceBar{
		{Date: base.AddDate(0, 0, 3), Close: 103},
		{Date: base.AddDate(0, 0, 2), Close: 102},
		{Date: base.AddDate(0, 0, 1), Close: 101},
		{Date: base, Close: 100},
	}
	benchmark := []models.PriceBar{
		{Date: base.AddDate(0, 0, 3), Close: 206},
		{Date: base.AddDate(0, 0, 1), Close: 202},
		{Date: base, Close: 200},
	}

	sec, bench := alignedReturns(prices, benchmark, 252)
	require.Len(t, sec, 2)
	require.Len(t, bench, 2)
	assert.InDelta(t, 101.0/100-1, sec[0], 1e-9)
	assert.InDelta(t, 103.0/101-1, sec[1], 1e-9)
	assert.InDelta(t, 202.0/200-1, bench[0], 1e-9)
	assert.InDelta(t, 206.0/202-1, bench[1], 1e-9)
}

// Helpers

func generateBars(closes []float64) []models.PriceBar {
	bars := make([]models.PriceBar, len(closes))
	for i, close := range closes {
		bars[i] = models.PriceBar{
			Date:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i),
			Close:  close,
			Volume: 1000000,
		}
	}
	return bars
}

// generateOscillatingBars builds a deterministic wave so variance is
// non-zero without pulling in a random source.
func generateOscillatingBars(base, amplitude float64, days int) []models.PriceBar {
	bars := make([]models.PriceBar, days)
	for i := 0; i < days; i++ {
		price := base * (1 + amplitude*math.Sin(float64(i)/3))
		bars[i] = models.PriceBar{
			Date:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i),
			Close:  price,
			Volume: 1000000,
		}
	}
	return bars
}
