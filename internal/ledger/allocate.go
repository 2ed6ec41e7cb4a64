package ledger

import (
	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// Intake is the food/water breakdown of a scope. A single leftover
// weighing cannot tell food from water, so waste is split in proportion
// to what was served.
type Intake struct {
	FoodInput  float64 `json:"food_input"`
	WaterInput float64 `json:"water_input"`
	TotalWaste float64 `json:"total_waste"` // signed, <= 0
	Food       float64 `json:"food"`
	Water      float64 `json:"water"`
}

// Allocate computes net food and water consumption for a set of entries.
// Results may be negative when waste exceeds recorded input; that points
// at an entry mistake upstream and is left as is.
func Allocate(entries []models.LogEntry) Intake {
	var in Intake
	for _, e := range entries {
		switch e.Category.Kind {
		case models.CategoryMedicine, models.CategorySupplement:
			continue
		case models.CategoryWater:
			if e.NetQuantity > 0 {
				in.WaterInput += e.NetQuantity
			} else {
				in.TotalWaste += e.NetQuantity
			}
		case models.CategoryFood, models.CategoryOther:
			if e.NetQuantity > 0 {
				in.FoodInput += e.NetQuantity
			} else {
				in.TotalWaste += e.NetQuantity
			}
		}
	}

	ratioWater, ratioFood := 0.0, 1.0
	if total := in.FoodInput + in.WaterInput; total > 0 {
		ratioWater = in.WaterInput / total
		ratioFood = in.FoodInput / total
	}
	in.Food = in.FoodInput + in.TotalWaste*ratioFood
	in.Water = in.WaterInput + in.TotalWaste*ratioWater
	return in
}
