package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

var testDay = time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)

func testCatalog() MemCatalog {
	return MemCatalog{
		models.NewItemDefinition("F01", "Food A", "主食", "g", models.Nutrients{Calorie: 120, Protein: 20, Fat: 5, Phosphorus: 0.2}),
		models.NewItemDefinition("F02", "Food B", "副食", "g", models.Nutrients{Calorie: 80, Protein: 10, Fat: 2, Phosphorus: 0.1}),
		models.NewItemDefinition("W01", "Water", "水", "ml", models.Nutrients{}),
		models.NewItemDefinition("S01", "Fish Oil", "保養品", "顆", models.Nutrients{Calorie: 10, Fat: 1}),
		models.NewItemDefinition("M01", "Antibiotic", "藥品", "錠", models.Nutrients{}),
		models.NewItemDefinition(models.ItemLeftover, "Reuse Leftover", "剩食", "g", models.Nutrients{Calorie: 999}),
	}
}

// newTestEngine wires an engine with deterministic ids and clock.
func newTestEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	n := 0
	return NewEngine(store, testCatalog(),
		WithDefaultPet("Mochi"),
		WithClock(func() time.Time { return testDay.Add(20 * time.Hour) }),
		WithIDFunc(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func testSession(meal string, clock string) models.Session {
	return models.Session{Pet: "Mochi", Date: testDay, Time: clock, Meal: meal, BowlWeight: 30}
}

func entry(date, meal, itemID string, category string, net, cal float64) models.LogEntry {
	return models.LogEntry{
		Date:        date,
		MealName:    meal,
		ItemID:      itemID,
		ItemName:    itemID,
		Category:    models.ParseCategory(category),
		NetQuantity: net,
		Nutrients:   models.Nutrients{Calorie: cal},
	}
}

func terminal(date, meal, itemID string, net, cal float64) models.LogEntry {
	e := entry(date, meal, itemID, models.LabelLeftover, net, cal)
	e.FinishLabel = models.FinishSentinel
	return e
}

// faultyStore wraps a MemStore and fails selected writes.
type faultyStore struct {
	*MemStore
	readErr   error
	appendErr error
	deleteErr error
	deletes   [][]int
}

func (s *faultyStore) ReadAll(ctx context.Context) ([]Row, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.MemStore.ReadAll(ctx)
}

func (s *faultyStore) Append(ctx context.Context, entries []models.LogEntry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	return s.MemStore.Append(ctx, entries)
}

func (s *faultyStore) Delete(ctx context.Context, positions []int) error {
	s.deletes = append(s.deletes, positions)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemStore.Delete(ctx, positions)
}

func countTerminal(entries []models.LogEntry, scope models.MealScope) int {
	n := 0
	for _, e := range entries {
		if e.IsTerminal() && models.ScopeOf(e, "Mochi") == scope {
			n++
		}
	}
	return n
}
