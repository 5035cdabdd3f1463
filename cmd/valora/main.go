package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
	"github.com/bobmcallan/valora/internal/services/scoring"
	"github.com/bobmcallan/valora/internal/services/snapshots"
)

func main() {
	configPath := os.Getenv("VALORA_CONFIG")
	if configPath == "" {
		configPath = "valora.toml"
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(config.Logging.Level, config.Logging.Format)
	common.PrintBanner(config, logger)

	tickers := config.Universe
	if args := os.Args[1:]; len(args) > 0 {
		tickers = normalize(args)
	}
	if len(tickers) == 0 {
		logger.Fatal().Msg("No tickers: set universe in config or pass tickers as arguments")
	}

	provider := snapshots.NewFileProvider(config.Snapshots.Path, logger)
	service := scoring.NewService(config, provider, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scores, err := service.ScoreUniverse(ctx, tickers)
	if err != nil {
		logger.Fatal().Err(err).Msg("Universe scoring failed")
	}

	if err := os.MkdirAll(config.Snapshots.OutputPath, 0o755); err != nil {
		logger.Fatal().Err(err).Str("path", config.Snapshots.OutputPath).Msg("Cannot create output directory")
	}

	for _, score := range scores {
		doc := scoreDocument{Composite: score}

		// Moat overlay reported beside, never blended into, the composite
		if snapshot, err := provider.GetSnapshot(ctx, score.Ticker); err == nil {
			if moat, err := service.MoatProfile(snapshot); err == nil {
				doc.Moat = moat
			}
		}

		path := filepath.Join(config.Snapshots.OutputPath, score.Ticker+".json")
		if err := writeJSON(path, doc); err != nil {
			logger.Error().Err(err).Str("ticker", score.Ticker).Msg("Failed to write score")
			continue
		}
		logger.Debug().Str("ticker", score.Ticker).Str("path", path).Msg("Score written")
	}

	logger.Info().
		Int("scored", len(scores)).
		Str("output", config.Snapshots.OutputPath).
		Msg("Run complete")
}

// scoreDocument is the on-disk result for one ticker.
type scoreDocument struct {
	Composite *models.CompositeScore `json:"composite"`
	Moat      *models.MoatProfile    `json:"moat,omitempty"`
}

func normalize(args []string) []string {
	tickers := make([]string, 0, len(args))
	for _, a := range args {
		t := strings.ToUpper(strings.TrimSpace(a))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
