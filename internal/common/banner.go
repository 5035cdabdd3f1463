package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	version := GetVersion()
	commit := GetGitCommit()

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 70
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` 888     888     d8888 888      .d88888b.  8888888b.       d8888`,
		` 888     888    d88888 888     d88P" "Y88b 888   Y88b     d88888`,
		` 888     888   d88P888 888     888     888 888    888    d88P888`,
		` Y88b   d88P  d88P 888 888     888     888 888   d88P   d88P 888`,
		`  Y88b d88P  d88P  888 888     888     888 8888888P"   d88P  888`,
		`   Y88o88P  d88P   888 888     888     888 888 T88b   d88P   888`,
		`    Y888P  d8888888888 888     Y88b. .d88P 888  T88b d8888888888`,
		`     Y8P  d88P     888 88888888 "Y88888P"  888   T88b888     888`,
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "\n")
	for _, line := range art {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s  Investment Scoring & Valuation Engine%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "\n")

	kvPad := 16
	kvLines := [][2]string{
		{"Version", version},
		{"Commit", commit},
		{"Environment", config.Environment},
		{"Snapshots", config.Snapshots.Path},
		{"Output", config.Snapshots.OutputPath},
		{"Universe", fmt.Sprintf("%d tickers", len(config.Universe))},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "\n")

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("environment", config.Environment).
		Int("universe", len(config.Universe)).
		Msg("Application started")
}
