package sentiment

import (
	"github.com/bobmcallan/valora/internal/common"
	"github.com/bobmcallan/valora/internal/models"
)

// Analyzer maps an upstream sentiment scalar onto the 0-100 scale.
type Analyzer struct {
	logger *common.Logger
}

func NewAnalyzer(logger *common.Logger) *Analyzer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Analyzer{logger: logger}
}

// Score converts the snapshot's sentiment scalar in [-1, 1] to a 0-100
// score: -1 maps to 0, 0 to 50, +1 to 100. Out-of-range inputs clamp.
// A snapshot with no sentiment reading returns *models.DataInsufficientError.
func (a *Analyzer) Score(snapshot *models.FinancialSnapshot) (float64, error) {
	if snapshot.Sentiment == nil {
		return 0, &models.DataInsufficientError{What: "sentiment reading", Need: 1, Have: 0}
	}

	s := *snapshot.Sentiment
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}

	return 50 + 50*s, nil
}
