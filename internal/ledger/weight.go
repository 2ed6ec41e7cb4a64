package ledger

import (
	"fmt"
	"math"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// Reading is one raw input from the scale or a unit count.
type Reading struct {
	Raw      float64
	Unit     models.UnitKind
	Zeroed   bool // scale re-tared before this item, so Raw is absolute
	Baseline float64
}

// Decomposition is the accepted result of a reading.
type Decomposition struct {
	Net float64
	// NextBaseline is the reading the next cumulative item is measured
	// against, and the value recorded as scale_reading.
	NextBaseline float64
}

// Decompose turns a raw reading into a net quantity. In cumulative mode a
// reading below the baseline is rejected with ErrBelowBaseline; the caller
// re-enters the value or marks it as independently zeroed.
func Decompose(r Reading) (Decomposition, error) {
	if math.IsNaN(r.Raw) || math.IsInf(r.Raw, 0) || r.Raw <= 0 {
		return Decomposition{}, fmt.Errorf("%w: got %v", ErrInvalidReading, r.Raw)
	}

	switch {
	case r.Unit.IsCount():
		// counts stay off the weight track
		return Decomposition{Net: r.Raw, NextBaseline: r.Baseline}, nil
	case r.Zeroed:
		return Decomposition{Net: r.Raw, NextBaseline: r.Raw}, nil
	case r.Raw < r.Baseline:
		return Decomposition{}, fmt.Errorf("%w: reading %.1f, previous %.1f", ErrBelowBaseline, r.Raw, r.Baseline)
	default:
		return Decomposition{Net: r.Raw - r.Baseline, NextBaseline: r.Raw}, nil
	}
}
