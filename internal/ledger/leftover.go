package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// LeftoverDensity is the reference density of the most recent leftover,
// expressed per 100 units like catalog mass items.
type LeftoverDensity struct {
	Reference models.Nutrients `json:"reference"`
	Source    models.MealScope `json:"source"`
	WastedAt  time.Time        `json:"wasted_at"`
}

// ResolveLeftoverDensity derives a density for a "reuse leftover" entry
// from the meal that produced the pet's most recent leftover. It fails
// with ErrNoLeftoverSource when there is no leftover or its meal has no
// weighable food.
func (e *Engine) ResolveLeftoverDensity(ctx context.Context, pet string) (LeftoverDensity, error) {
	rows, err := e.readAll(ctx)
	if err != nil {
		return LeftoverDensity{}, err
	}
	return resolveLeftoverDensity(rows, e.pet(pet), e.defaultPet)
}

func resolveLeftoverDensity(rows []Row, pet, defaultPet string) (LeftoverDensity, error) {
	var latest *Row
	for i := range rows {
		r := &rows[i]
		if r.Entry.ItemID != models.ItemWaste || r.Entry.Pet(defaultPet) != pet {
			continue
		}
		if latest == nil || r.Entry.Timestamp.After(latest.Entry.Timestamp) ||
			(r.Entry.Timestamp.Equal(latest.Entry.Timestamp) && r.Position > latest.Position) {
			latest = r
		}
	}
	if latest == nil {
		return LeftoverDensity{}, fmt.Errorf("%w for pet %q", ErrNoLeftoverSource, pet)
	}

	source := models.ScopeOf(latest.Entry, defaultPet)
	var sum models.Nutrients
	var net float64
	for _, r := range rows {
		entry := r.Entry
		if models.ScopeOf(entry, defaultPet) != source ||
			entry.NetQuantity <= 0 || entry.IsTerminal() || entry.Category.IsIntakeExcluded() {
			continue
		}
		sum = sum.Add(entry.Nutrients)
		net += entry.NetQuantity
	}
	if net <= 0 {
		return LeftoverDensity{}, fmt.Errorf("%w: %s %s has no served food", ErrNoLeftoverSource, source.Date, source.Meal)
	}

	return LeftoverDensity{
		Reference: sum.Scale(100 / net),
		Source:    source,
		WastedAt:  latest.Entry.Timestamp,
	}, nil
}
