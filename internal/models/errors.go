package models

import (
	"errors"
	"fmt"
)

// DataInsufficientError reports fewer data points than a computation
// requires. Analyzers return it instead of guessing; the orchestrator
// converts it to a fallback sub-score.
type DataInsufficientError struct {
	What string
	Need int
	Have int
}

func (e *DataInsufficientError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d, have %d", e.What, e.Need, e.Have)
}

// InvalidAssumptionsError reports a DCF whose terminal growth meets or
// exceeds the discount rate. The valuation cannot be produced and the error
// propagates to the caller rather than being approximated away.
type InvalidAssumptionsError struct {
	TerminalGrowth float64
	DiscountRate   float64
}

func (e *InvalidAssumptionsError) Error() string {
	return fmt.Sprintf("invalid DCF assumptions: terminal growth %.4f >= discount rate %.4f",
		e.TerminalGrowth, e.DiscountRate)
}

// ErrReverseDCFNoConvergence is returned when the implied-growth solver
// exhausts its iteration budget without bracketing the market price.
var ErrReverseDCFNoConvergence = errors.New("reverse DCF did not converge")

// IsDataInsufficient reports whether err is a DataInsufficientError.
func IsDataInsufficient(err error) bool {
	var di *DataInsufficientError
	return errors.As(err, &di)
}

// IsInvalidAssumptions reports whether err is an InvalidAssumptionsError.
func IsInvalidAssumptions(err error) bool {
	var ia *InvalidAssumptionsError
	return errors.As(err, &ia)
}
