package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// Cart collects drafts for one batched commit. It belongs to a single
// editing session and is not safe for concurrent use.
type Cart struct {
	items []models.LogEntry
}

func (c *Cart) Add(e models.LogEntry) {
	c.items = append(c.items, e)
}

func (c *Cart) Remove(i int) (models.LogEntry, error) {
	if i < 0 || i >= len(c.items) {
		return models.LogEntry{}, fmt.Errorf("%w: %d of %d", ErrCartIndex, i, len(c.items))
	}
	removed := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	return removed, nil
}

func (c *Cart) Reset() {
	c.items = nil
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Items() []models.LogEntry {
	return slices.Clone(c.items)
}

// LastReading is the scale_reading of the newest draft.
func (c *Cart) LastReading() (float64, bool) {
	if len(c.items) == 0 {
		return 0, false
	}
	return c.items[len(c.items)-1].ScaleReading, true
}

// CartTotals is the running total shown while editing. Quantity leaves out
// medicine and supplements.
type CartTotals struct {
	Quantity float64 `json:"quantity"`
	Calorie  float64 `json:"calorie"`
}

func (c *Cart) Totals() CartTotals {
	var t CartTotals
	for _, e := range c.items {
		if !e.Category.IsIntakeExcluded() {
			t.Quantity += e.NetQuantity
		}
		t.Calorie += e.Nutrients.Calorie
	}
	return t
}

// Baseline is the reading the next cumulative item is measured against:
// the newest draft, else the last item recorded for the meal, else the
// empty bowl. A nil cart has no drafts.
func (e *Engine) Baseline(ctx context.Context, s models.Session, cart *Cart) (float64, error) {
	if cart != nil {
		if reading, ok := cart.LastReading(); ok {
			return reading, nil
		}
	}
	rows, err := e.readAll(ctx)
	if err != nil {
		return 0, err
	}
	scope := e.scope(s.Scope())
	baseline := s.BowlWeight
	for _, r := range e.scopeRows(rows, scope) {
		if !r.Entry.IsTerminal() {
			baseline = r.Entry.ScaleReading
		}
	}
	return baseline, nil
}

type AddItemInput struct {
	Item   string // catalog id or name
	Raw    float64
	Zeroed bool
}

type AddResult struct {
	Entry    models.LogEntry  `json:"entry"`
	Baseline float64          `json:"baseline"`
	Density  *LeftoverDensity `json:"density,omitempty"`
	// Warning is set when a leftover density could not be resolved and
	// the entry was recorded with zero nutrients.
	Warning error `json:"-"`
}

// AddItem decomposes a reading, prices it against the catalog, and puts
// the draft in the cart, which must not be nil. Rejected readings leave
// the cart untouched.
func (e *Engine) AddItem(ctx context.Context, s models.Session, cart *Cart, in AddItemInput) (AddResult, error) {
	if cart == nil {
		return AddResult{}, ErrNoCart
	}
	item, err := e.lookupItem(ctx, in.Item)
	if err != nil {
		return AddResult{}, err
	}
	baseline, err := e.Baseline(ctx, s, cart)
	if err != nil {
		return AddResult{}, err
	}
	dec, err := Decompose(Reading{Raw: in.Raw, Unit: item.UnitKind, Zeroed: in.Zeroed, Baseline: baseline})
	if err != nil {
		return AddResult{}, err
	}

	res := AddResult{Baseline: baseline}
	ref := item.Reference
	if item.ID == models.ItemLeftover {
		density, err := e.ResolveLeftoverDensity(ctx, s.Pet)
		switch {
		case err == nil:
			ref = density.Reference
			res.Density = &density
		case errors.Is(err, ErrNoLeftoverSource):
			ref = models.Nutrients{}
			res.Warning = err
			e.logger.WarnContext(ctx, "leftover density unavailable, recording zero nutrients", "pet", e.pet(s.Pet), "error", err)
		default:
			return AddResult{}, err
		}
	}

	scope := e.scope(s.Scope())
	res.Entry = models.LogEntry{
		Date:         scope.Date,
		MealName:     scope.Meal,
		PetName:      scope.Pet,
		ItemID:       item.ID,
		ItemName:     item.Name,
		Category:     item.Category,
		ScaleReading: dec.NextBaseline,
		BowlWeight:   s.BowlWeight,
		NetQuantity:  dec.Net,
		Nutrients:    Nutrients(dec.Net, item.UnitKind, ref),
	}
	cart.Add(res.Entry)
	return res, nil
}

// Commit appends every draft in one batch, stamped with the session's
// date, time, meal and pet. The cart is emptied only on success.
func (e *Engine) Commit(ctx context.Context, s models.Session, cart *Cart) ([]models.LogEntry, error) {
	if cart == nil || cart.Len() == 0 {
		return nil, ErrEmptyCart
	}
	scope := e.scope(s.Scope())
	at := s.Timestamp()

	entries := cart.Items()
	for i := range entries {
		entries[i].LogID = e.newID()
		entries[i].Timestamp = at
		entries[i].Date = scope.Date
		entries[i].Time = at.Format(models.TimeLayout)
		entries[i].MealName = scope.Meal
		entries[i].PetName = scope.Pet
		entries[i].FinishLabel = ""
	}
	if err := e.store.Append(ctx, entries); err != nil {
		return nil, fmt.Errorf("%w: appending %d entries: %w", ErrStoreWrite, len(entries), err)
	}
	cart.Reset()

	e.logger.InfoContext(ctx, "cart committed", "date", scope.Date, "meal", scope.Meal, "pet", scope.Pet, "entries", len(entries))
	return entries, nil
}
