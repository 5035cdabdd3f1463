// Package risk computes statistical risk metrics from price history
package risk

import (
	"time"

	"github.com/bobmcallan/valora/internal/models"
)

// dateKey normalizes a bar timestamp to its trading day.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// alignedReturns inner-joins security and benchmark bars by trading day and
// returns daily simple returns for both, oldest first, limited to the
// lookback window. Calendar mismatches between the two series are dropped.
func alignedReturns(prices, benchmark []models.PriceBar, lookback int) (security, bench []float64) {
	benchByDate := make(map[string]float64, len(benchmark))
	for _, b := range benchmark {
		benchByDate[dateKey(b.Date)] = b.Close
	}

	// Collect joined closes oldest first. Bars arrive newest first.
	type joined struct {
		sec, bench float64
	}
	var rows []joined
	for i := len(prices) - 1; i >= 0; i-- {
		p := prices[i]
		bc, ok := benchByDate[dateKey(p.Date)]
		if !ok || p.Close <= 0 || bc <= 0 {
			continue
		}
		rows = append(rows, joined{sec: p.Close, bench: bc})
	}

	// Keep only the trailing lookback+1 closes (lookback returns).
	if lookback > 0 && len(rows) > lookback+1 {
		rows = rows[len(rows)-lookback-1:]
	}

	for i := 1; i < len(rows); i++ {
		security = append(security, rows[i].sec/rows[i-1].sec-1)
		bench = append(bench, rows[i].bench/rows[i-1].bench-1)
	}
	return security, bench
}

// closesForDrawdown returns the security closes oldest first over the
// lookback window, without requiring benchmark alignment.
func closesForDrawdown(prices []models.PriceBar, lookback int) []float64 {
	n := len(prices)
	if lookback > 0 && n > lookback {
		n = lookback
	}

	closes := make([]float64, 0, n)
	for i := n - 1; i >= 0; i-- {
		if prices[i].Close > 0 {
			closes = append(closes, prices[i].Close)
		}
	}
	return closes
}

// maxDrawdown returns the deepest peak-to-trough decline as a non-positive
// fraction of the running peak.
func maxDrawdown(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}

	runningMax := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > runningMax {
			runningMax = c
		}
		dd := (c - runningMax) / runningMax
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
