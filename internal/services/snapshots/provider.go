// Package snapshots loads financial snapshots assembled by upstream
// collectors from disk.
package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

// FileProvider reads one JSON snapshot per ticker from a directory.
// Files are named <TICKER>.json, ticker uppercased.
type FileProvider struct {
	dir      string
	validate *validator.Validate
	logger   *common.Logger
}

func NewFileProvider(dir string, logger *common.Logger) *FileProvider {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &FileProvider{
		dir:      dir,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetSnapshot loads and validates the snapshot for a ticker. A missing
// file is an error; upstream collectors own snapshot freshness.
func (p *FileProvider) GetSnapshot(ctx context.Context, ticker string) (*models.FinancialSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, strings.ToUpper(ticker)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var snapshot models.FinancialSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if snapshot.Ticker == "" {
		snapshot.Ticker = strings.ToUpper(ticker)
	}

	if err := p.validate.Struct(&snapshot); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	p.logger.Debug().
		Str("ticker", snapshot.Ticker).
		Int("bars", len(snapshot.Prices)).
		Int("statements", len(snapshot.Statements)).
		Msg("Snapshot loaded")

	return &snapshot, nil
}
