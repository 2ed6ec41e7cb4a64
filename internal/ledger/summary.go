package ledger

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// Totals is the nutrition summary of a scope. Nutrients are plain sums,
// so leftover rows reduce calories; food and water come from Allocate.
type Totals struct {
	models.Nutrients
	Food  float64 `json:"food"`
	Water float64 `json:"water"`
}

func Summarize(entries []models.LogEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.Nutrients = t.Nutrients.Add(e.Nutrients)
	}
	in := Allocate(entries)
	t.Food, t.Water = in.Food, in.Water
	return t
}

type MealReport struct {
	Scope      models.MealScope  `json:"scope"`
	Totals     Totals            `json:"totals"`
	Intake     Intake            `json:"intake"`
	Entries    []models.LogEntry `json:"entries"`
	BowlWeight float64           `json:"bowl_weight"`
	Finished   bool              `json:"finished"`
	FinishTime string            `json:"finish_time,omitempty"`
}

func (e *Engine) MealSummary(ctx context.Context, scope models.MealScope) (MealReport, error) {
	rows, err := e.readAll(ctx)
	if err != nil {
		return MealReport{}, err
	}
	scope = e.scope(scope)
	entries := entriesOf(e.scopeRows(rows, scope))

	report := MealReport{
		Scope:   scope,
		Totals:  Summarize(entries),
		Intake:  Allocate(entries),
		Entries: entries,
	}
	for _, entry := range entries {
		report.BowlWeight = entry.BowlWeight
		if entry.IsTerminal() {
			report.Finished = true
			report.FinishTime = clock(entry.Time)
		}
	}
	return report, nil
}

// Tally counts units of one medicine or supplement given in a day.
type Tally struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

type MealStatus struct {
	Meal       string `json:"meal"`
	Finished   bool   `json:"finished"`
	FinishTime string `json:"finish_time,omitempty"`
}

type DayReport struct {
	Date        string       `json:"date"`
	Pet         string       `json:"pet"`
	Totals      Totals       `json:"totals"`
	Supplements []Tally      `json:"supplements"`
	Medicines   []Tally      `json:"medicines"`
	Meals       []MealStatus `json:"meals"`
}

func (e *Engine) DaySummary(ctx context.Context, pet string, day time.Time) (DayReport, error) {
	rows, err := e.readAll(ctx)
	if err != nil {
		return DayReport{}, err
	}
	pet = e.pet(pet)
	date := day.Format(models.DateLayout)
	dayRows := Dedup(filterRows(rows, func(entry models.LogEntry) bool {
		return entry.Date == date && entry.Pet(e.defaultPet) == pet
	}), e.defaultPet)
	entries := entriesOf(dayRows)

	return DayReport{
		Date:        date,
		Pet:         pet,
		Totals:      Summarize(entries),
		Supplements: tally(entries, models.CategorySupplement),
		Medicines:   tally(entries, models.CategoryMedicine),
		Meals:       mealStatuses(entries),
	}, nil
}

func tally(entries []models.LogEntry, kind models.CategoryKind) []Tally {
	counts := make(map[string]float64)
	var order []string
	for _, e := range entries {
		if e.Category.Kind != kind {
			continue
		}
		if _, seen := counts[e.ItemName]; !seen {
			order = append(order, e.ItemName)
		}
		counts[e.ItemName] += e.NetQuantity
	}
	sort.Strings(order)
	out := make([]Tally, 0, len(order))
	for _, name := range order {
		out = append(out, Tally{Name: name, Count: counts[name]})
	}
	return out
}

// mealStatuses lists recorded meals in first-seen order.
func mealStatuses(entries []models.LogEntry) []MealStatus {
	var out []MealStatus
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.MealName]
		if !ok {
			i = len(out)
			index[e.MealName] = i
			out = append(out, MealStatus{Meal: e.MealName})
		}
		if e.IsTerminal() {
			out[i].Finished = true
			out[i].FinishTime = clock(e.Time)
		}
	}
	return out
}

type DayTotals struct {
	Date string `json:"date"`
	Totals
}

// Trend returns per-day totals for a pet over [from, to], inclusive, for
// days that have entries. Rows with unparsable dates are skipped.
func (e *Engine) Trend(ctx context.Context, pet string, from, to time.Time) ([]DayTotals, error) {
	rows, err := e.readAll(ctx)
	if err != nil {
		return nil, err
	}
	pet = e.pet(pet)
	lo, hi := from.Format(models.DateLayout), to.Format(models.DateLayout)

	byDay := make(map[string][]Row)
	for _, r := range rows {
		if r.Entry.Pet(e.defaultPet) != pet {
			continue
		}
		d, err := time.Parse(models.DateLayout, r.Entry.Date)
		if err != nil {
			continue
		}
		key := d.Format(models.DateLayout)
		if key < lo || key > hi {
			continue
		}
		byDay[key] = append(byDay[key], r)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	slices.Sort(days)

	out := make([]DayTotals, 0, len(days))
	for _, d := range days {
		out = append(out, DayTotals{Date: d, Totals: Summarize(entriesOf(Dedup(byDay[d], e.defaultPet)))})
	}
	return out, nil
}

// NextMealName suggests the first standard meal not yet recorded that day.
func (e *Engine) NextMealName(ctx context.Context, pet string, day time.Time) (string, error) {
	rows, err := e.readAll(ctx)
	if err != nil {
		return "", err
	}
	pet = e.pet(pet)
	date := day.Format(models.DateLayout)
	recorded := make(map[string]bool)
	for _, r := range rows {
		if r.Entry.Date == date && r.Entry.Pet(e.defaultPet) == pet {
			recorded[r.Entry.MealName] = true
		}
	}
	for _, m := range models.StandardMeals {
		if !recorded[m] {
			return m, nil
		}
	}
	return models.StandardMeals[0], nil
}

// clock trims a HH:MM:SS time to HH:MM.
func clock(t string) string {
	if len(t) >= 5 {
		return t[:5]
	}
	return t
}
