package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

type Outcome int

const (
	AllConsumed Outcome = iota
	HasLeftover
)

func (o Outcome) String() string {
	if o == HasLeftover {
		return "has_leftover"
	}
	return "all_consumed"
}

// FinishInput closes a meal. For HasLeftover the leftover is weighed in a
// container: Gross is container plus leftover, Tare the empty container.
type FinishInput struct {
	Scope      models.MealScope
	Outcome    Outcome
	Gross      float64
	Tare       float64
	BowlWeight float64
	// FinishedAt may fall on a later day than Scope.Date when a meal is
	// finished after midnight. Zero means now.
	FinishedAt time.Time
}

// WasteNet is the leftover weight, or 0 when everything was eaten.
func (in FinishInput) WasteNet() float64 {
	if in.Outcome != HasLeftover {
		return 0
	}
	return in.Gross - in.Tare
}

// FinishMeal writes the single terminal record of a meal. Any terminal
// records the finish flow wrote earlier for the same scope are deleted
// first, highest position first, so repeating a commit replaces rather
// than adds. A failed append after successful deletes leaves the meal
// without a terminal record until the commit is retried.
func (e *Engine) FinishMeal(ctx context.Context, in FinishInput) (models.LogEntry, error) {
	scope := e.scope(in.Scope)
	wasteNet := in.WasteNet()
	if in.Outcome == HasLeftover && !(wasteNet > 0) {
		return models.LogEntry{}, fmt.Errorf("%w: gross %.1f, tare %.1f", ErrInvalidWaste, in.Gross, in.Tare)
	}

	rows, err := e.readAll(ctx)
	if err != nil {
		return models.LogEntry{}, err
	}

	entry := e.terminalEntry(scope, in, wasteNet, WasteCalorie(entriesOf(e.scopeRows(rows, scope)), wasteNet))

	var stale []int
	for _, r := range rows {
		if r.Entry.IsReconcilable() && models.ScopeOf(r.Entry, e.defaultPet) == scope {
			stale = append(stale, r.Position)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(stale)))

	if len(stale) > 0 {
		if err := e.store.Delete(ctx, stale); err != nil {
			return models.LogEntry{}, fmt.Errorf("%w: deleting previous finish records: %w", ErrStoreWrite, err)
		}
	}
	if err := e.store.Append(ctx, []models.LogEntry{entry}); err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: appending finish record: %w", ErrStoreWrite, err)
	}

	e.logger.InfoContext(ctx, "meal finished",
		"date", scope.Date,
		"meal", scope.Meal,
		"pet", scope.Pet,
		"outcome", in.Outcome.String(),
		"waste_net", wasteNet,
		"replaced", len(stale),
	)
	return entry, nil
}

func (e *Engine) terminalEntry(scope models.MealScope, in FinishInput, wasteNet, wasteCal float64) models.LogEntry {
	at := in.FinishedAt
	if at.IsZero() {
		at = e.now()
	}
	entry := models.LogEntry{
		LogID:       e.newID(),
		Timestamp:   at,
		Date:        scope.Date,
		Time:        at.Format(models.TimeLayout),
		MealName:    scope.Meal,
		PetName:     scope.Pet,
		ItemID:      models.ItemFinish,
		ItemName:    models.FinishSentinel,
		Category:    models.ParseCategory(models.LabelFinished),
		BowlWeight:  in.BowlWeight,
		FinishLabel: models.FinishSentinel,
	}
	if in.Outcome == HasLeftover {
		entry.ItemID = models.ItemWaste
		entry.Category = models.ParseCategory(models.LabelLeftover)
		entry.NetQuantity = -wasteNet
		// only calories are deducted for leftovers
		entry.Nutrients.Calorie = -wasteCal
	}
	return entry
}

// WasteCalorie estimates the calories in wasteNet grams of leftover from
// the average calorie density of the food served in the scope. Water,
// medicine, supplements and terminal rows do not count.
func WasteCalorie(entries []models.LogEntry, wasteNet float64) float64 {
	var cal, net float64
	for _, e := range entries {
		if e.IsTerminal() || e.NetQuantity <= 0 || e.Category.IsWater() || e.Category.IsIntakeExcluded() {
			continue
		}
		cal += e.Nutrients.Calorie
		net += e.NetQuantity
	}
	if net <= 0 {
		return 0
	}
	return wasteNet * cal / net
}

// EstimateWaste previews the calorie deduction a HasLeftover finish with
// the given leftover weight would record.
func (e *Engine) EstimateWaste(ctx context.Context, scope models.MealScope, wasteNet float64) (float64, error) {
	rows, err := e.readAll(ctx)
	if err != nil {
		return 0, err
	}
	return WasteCalorie(entriesOf(e.scopeRows(rows, e.scope(scope))), wasteNet), nil
}
