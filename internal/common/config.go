// Package common provides shared utilities for Valora
package common

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/valora/internal/models"
)

// Config holds all configuration for Valora.
type Config struct {
	Environment string          `toml:"environment"`
	Universe    []string        `toml:"universe"` // tickers scored by the batch runner
	Snapshots   SnapshotsConfig `toml:"snapshots"`
	Scoring     ScoringConfig   `toml:"scoring"`
	Valuation   ValuationConfig `toml:"valuation"`
	Risk        RiskConfig      `toml:"risk"`
	Moat        MoatConfig      `toml:"moat"`
	Logging     LoggingConfig   `toml:"logging"`
}

// SnapshotsConfig locates snapshot input and result output for the batch
// runner. The core never touches these paths; only cmd/valora does.
type SnapshotsConfig struct {
	Path       string `toml:"path"`
	OutputPath string `toml:"output_path"`
	RateLimit  int    `toml:"rate_limit"` // snapshot loads per second across the universe run
}

// ScoringConfig holds the composite weights and orchestration limits.
type ScoringConfig struct {
	Weights         CompositeWeights `toml:"weights"`
	AnalyzerTimeout string           `toml:"analyzer_timeout"` // duration string, default "10s"
	MaxConcurrent   int              `toml:"max_concurrent"`   // tickers scored in parallel
}

// GetAnalyzerTimeout parses and returns the per-analyzer timeout duration.
func (c *ScoringConfig) GetAnalyzerTimeout() time.Duration {
	d, err := time.ParseDuration(c.AnalyzerTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CompositeWeights are the five dimension weights. They must sum to 1.0.
type CompositeWeights struct {
	Fundamental float64 `toml:"fundamental" validate:"gte=0,lte=1"`
	Valuation   float64 `toml:"valuation" validate:"gte=0,lte=1"`
	Technical   float64 `toml:"technical" validate:"gte=0,lte=1"`
	Sentiment   float64 `toml:"sentiment" validate:"gte=0,lte=1"`
	Risk        float64 `toml:"risk" validate:"gte=0,lte=1"`
}

// Map returns the weights keyed by dimension name.
func (w CompositeWeights) Map() map[string]float64 {
	return map[string]float64{
		models.DimensionFundamental: w.Fundamental,
		models.DimensionValuation:   w.Valuation,
		models.DimensionTechnical:   w.Technical,
		models.DimensionSentiment:   w.Sentiment,
		models.DimensionRisk:        w.Risk,
	}
}

// Sum returns the total of the five weights.
func (w CompositeWeights) Sum() float64 {
	return w.Fundamental + w.Valuation + w.Technical + w.Sentiment + w.Risk
}

// ValuationConfig holds DCF defaults and scenario construction parameters.
type ValuationConfig struct {
	RiskFreeRate      float64 `toml:"risk_free_rate"`
	EquityRiskPremium float64 `toml:"equity_risk_premium"`
	TaxRate           float64 `toml:"tax_rate" validate:"gte=0,lt=1"`
	DefaultCostOfDebt float64 `toml:"default_cost_of_debt"`
	DefaultDebtWeight float64 `toml:"default_debt_weight" validate:"gte=0,lt=1"`

	HighGrowthYears    int     `toml:"high_growth_years" validate:"gte=1"`
	FadeYears          int     `toml:"fade_years" validate:"gte=0"`
	TerminalGrowthRate float64 `toml:"terminal_growth_rate"`
	MinGrowthRate      float64 `toml:"min_growth_rate"` // clamp band for the derived high-growth rate
	MaxGrowthRate      float64 `toml:"max_growth_rate"`

	Scenarios ScenarioConfig `toml:"scenarios"`
}

// ScenarioConfig shapes the bull/base/bear scenario table. Probabilities
// must sum to 1.0 and no scenario may be assigned probability zero.
type ScenarioConfig struct {
	BullGrowthDelta   float64 `toml:"bull_growth_delta"`
	BearGrowthDelta   float64 `toml:"bear_growth_delta"`
	BullDiscountDelta float64 `toml:"bull_discount_delta"`
	BearDiscountDelta float64 `toml:"bear_discount_delta"`
	BullProbability   float64 `toml:"bull_probability" validate:"gt=0,lt=1"`
	BaseProbability   float64 `toml:"base_probability" validate:"gt=0,lt=1"`
	BearProbability   float64 `toml:"bear_probability" validate:"gt=0,lt=1"`
}

// RiskConfig holds risk engine parameters.
type RiskConfig struct {
	Lookback        int     `toml:"lookback" validate:"gte=2"`         // trading days, default 252
	MinObservations int     `toml:"min_observations" validate:"gte=2"` // joined return observations required
	RiskFreeRate    float64 `toml:"risk_free_rate"`                    // annual
}

// MoatConfig holds the six moat weights and per-ticker overrides.
type MoatConfig struct {
	Weights   MoatWeights                    `toml:"weights"`
	Overrides map[string]models.MoatOverride `toml:"overrides"` // keyed by ticker
}

// MoatWeights are the six moat dimension weights. They must sum to 1.0.
type MoatWeights struct {
	MarketDominance float64 `toml:"market_dominance" validate:"gte=0,lte=1"`
	SwitchingCosts  float64 `toml:"switching_costs" validate:"gte=0,lte=1"`
	TechnologyLock  float64 `toml:"technology_lock_in" validate:"gte=0,lte=1"`
	SupplyChain     float64 `toml:"supply_chain_criticality" validate:"gte=0,lte=1"`
	PricingPower    float64 `toml:"pricing_power" validate:"gte=0,lte=1"`
	BarriersToEntry float64 `toml:"barriers_to_entry" validate:"gte=0,lte=1"`
}

// Sum returns the total of the six weights.
func (w MoatWeights) Sum() float64 {
	return w.MarketDominance + w.SwitchingCosts + w.TechnologyLock +
		w.SupplyChain + w.PricingPower + w.BarriersToEntry
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with the documented defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Snapshots: SnapshotsConfig{
			Path:       "data/snapshots",
			OutputPath: "data/scores",
			RateLimit:  10,
		},
		Scoring: ScoringConfig{
			Weights: CompositeWeights{
				Fundamental: 0.30,
				Valuation:   0.25,
				Technical:   0.20,
				Sentiment:   0.10,
				Risk:        0.15,
			},
			AnalyzerTimeout: "10s",
			MaxConcurrent:   5,
		},
		Valuation: ValuationConfig{
			RiskFreeRate:       0.042,
			EquityRiskPremium:  0.055,
			TaxRate:            0.25,
			DefaultCostOfDebt:  0.055,
			DefaultDebtWeight:  0.30,
			HighGrowthYears:    5,
			FadeYears:          5,
			TerminalGrowthRate: 0.025,
			MinGrowthRate:      -0.05,
			MaxGrowthRate:      0.25,
			Scenarios: ScenarioConfig{
				BullGrowthDelta:   0.03,
				BearGrowthDelta:   -0.04,
				BullDiscountDelta: -0.005,
				BearDiscountDelta: 0.01,
				BullProbability:   0.25,
				BaseProbability:   0.50,
				BearProbability:   0.25,
			},
		},
		Risk: RiskConfig{
			Lookback:        252,
			MinObservations: 30,
			RiskFreeRate:    0.042,
		},
		Moat: MoatConfig{
			Weights: MoatWeights{
				MarketDominance: 0.20,
				SwitchingCosts:  0.15,
				TechnologyLock:  0.15,
				SupplyChain:     0.20,
				PricingPower:    0.15,
				BarriersToEntry: 0.15,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// weightTolerance absorbs float decoding noise when checking weight sums.
const weightTolerance = 1e-9

// Validate checks field ranges and the exact-sum invariants on composite
// weights, moat weights, and scenario probabilities.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if d := math.Abs(c.Scoring.Weights.Sum() - 1.0); d > weightTolerance {
		return fmt.Errorf("composite weights must sum to 1.0, got %.6f", c.Scoring.Weights.Sum())
	}
	if d := math.Abs(c.Moat.Weights.Sum() - 1.0); d > weightTolerance {
		return fmt.Errorf("moat weights must sum to 1.0, got %.6f", c.Moat.Weights.Sum())
	}

	s := c.Valuation.Scenarios
	probSum := s.BullProbability + s.BaseProbability + s.BearProbability
	if math.Abs(probSum-1.0) > weightTolerance {
		return fmt.Errorf("scenario probabilities must sum to 1.0, got %.6f", probSum)
	}

	if c.Valuation.TerminalGrowthRate >= c.Valuation.RiskFreeRate+c.Valuation.EquityRiskPremium {
		return fmt.Errorf("terminal growth %.4f is not below any achievable discount rate",
			c.Valuation.TerminalGrowthRate)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VALORA_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("VALORA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("VALORA_SNAPSHOT_PATH"); path != "" {
		config.Snapshots.Path = path
	}

	if path := os.Getenv("VALORA_OUTPUT_PATH"); path != "" {
		config.Snapshots.OutputPath = path
	}

	if rl := os.Getenv("VALORA_RATE_LIMIT"); rl != "" {
		if n, err := strconv.Atoi(rl); err == nil && n > 0 {
			config.Snapshots.RateLimit = n
		}
	}

	if u := os.Getenv("VALORA_UNIVERSE"); u != "" {
		parts := strings.Split(u, ",")
		tickers := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				tickers = append(tickers, strings.ToUpper(t))
			}
		}
		if len(tickers) > 0 {
			config.Universe = tickers
		}
	}
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
