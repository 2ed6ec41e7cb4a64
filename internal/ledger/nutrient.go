package ledger

import (
	"math"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// Nutrients scales a reference density to a net quantity. Count items use
// per-unit references; mass and volume items use per-100 references.
// Non-finite inputs count as zero.
func Nutrients(net float64, unit models.UnitKind, ref models.Nutrients) models.Nutrients {
	net = finite(net)
	ref = models.Nutrients{
		Calorie:    finite(ref.Calorie),
		Protein:    finite(ref.Protein),
		Fat:        finite(ref.Fat),
		Phosphorus: finite(ref.Phosphorus),
	}
	if unit.IsCount() {
		return ref.Scale(net)
	}
	return ref.Scale(net / 100)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
