package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

func TestDedup_KeepsLatestTerminalPerMeal(t *testing.T) {
	rows := []Row{
		{Position: 1, Entry: entry(testDate, "第一餐", "F01", "主食", 50, 60)},
		{Position: 2, Entry: terminal(testDate, "第一餐", models.ItemWaste, -20, -24)},
		{Position: 3, Entry: terminal(testDate, "第二餐", models.ItemFinish, 0, 0)},
		{Position: 4, Entry: terminal(testDate, "第一餐", models.ItemWaste, -5, -6)},
		{Position: 5, Entry: terminal("2024/05/02", "第一餐", models.ItemFinish, 0, 0)},
	}

	got := Dedup(rows, "Mochi")
	var positions []int
	for _, r := range got {
		positions = append(positions, r.Position)
	}
	assert.Equal(t, []int{1, 3, 4, 5}, positions)
}

func TestMealSummary_DedupOnRead(t *testing.T) {
	// history from before finish commits replaced older records
	store := NewMemStore(
		entry(testDate, "第一餐", "F01", "主食", 50, 60),
		entry(testDate, "第一餐", "W01", "水", 40, 0),
		terminal(testDate, "第一餐", models.ItemWaste, -20, -24),
		terminal(testDate, "第一餐", models.ItemWaste, -5, -6),
	)
	eng := newTestEngine(t, store)

	report, err := eng.MealSummary(context.Background(), models.MealScope{Date: testDate, Meal: "第一餐"})
	require.NoError(t, err)
	assert.Len(t, report.Entries, 3)
	assert.Equal(t, -5.0, report.Intake.TotalWaste)
	assert.InDelta(t, 47.2222, report.Totals.Food, 1e-4)
	assert.InDelta(t, 54, report.Totals.Calorie, 1e-9)
}

func TestDaySummary(t *testing.T) {
	oil := entry(testDate, "第一餐", "S01", "保養品", 1, 10)
	oil.ItemName = "Fish Oil"
	oil2 := entry(testDate, "第二餐", "S01", "保養品", 2, 20)
	oil2.ItemName = "Fish Oil"
	pill := entry(testDate, "第二餐", "M01", "藥品", 1, 0)
	pill.ItemName = "Antibiotic"
	finish := terminal(testDate, "第一餐", models.ItemFinish, 0, 0)
	finish.Time = "08:15:00"
	otherPet := entry(testDate, "第一餐", "F01", "主食", 500, 600)
	otherPet.PetName = "Kuro"

	store := NewMemStore(
		entry(testDate, "第一餐", "F01", "主食", 100, 120),
		oil, finish, oil2, pill,
		entry(testDate, "第二餐", "W01", "水", 60, 0),
		otherPet,
		entry("2024/05/02", "第一餐", "F01", "主食", 70, 84),
	)
	eng := newTestEngine(t, store)

	day, err := eng.DaySummary(context.Background(), "", testDay)
	require.NoError(t, err)
	assert.Equal(t, "Mochi", day.Pet)
	assert.InDelta(t, 150, day.Totals.Calorie, 1e-9)
	assert.Equal(t, 100.0, day.Totals.Food)
	assert.Equal(t, 60.0, day.Totals.Water)
	assert.Equal(t, []Tally{{Name: "Fish Oil", Count: 3}}, day.Supplements)
	assert.Equal(t, []Tally{{Name: "Antibiotic", Count: 1}}, day.Medicines)
	assert.Equal(t, []MealStatus{
		{Meal: "第一餐", Finished: true, FinishTime: "08:15"},
		{Meal: "第二餐"},
	}, day.Meals)

	next, err := eng.NextMealName(context.Background(), "Mochi", testDay)
	require.NoError(t, err)
	assert.Equal(t, "第三餐", next)
}

func TestTrend_PerDayWithinRange(t *testing.T) {
	store := NewMemStore(
		entry("2024/05/01", "第一餐", "F01", "主食", 10, 12),
		entry("2024/05/02", "第一餐", "F01", "主食", 100, 120),
		entry("2024/05/02", "第一餐", "W01", "水", 50, 0),
		terminal("2024/05/02", "第一餐", models.ItemWaste, -30, -36),
		terminal("2024/05/02", "第一餐", models.ItemWaste, -15, -18),
		entry(testDate, "第一餐", "F01", "主食", 40, 48),
		// same meal name on another day is a different meal
		terminal(testDate, "第一餐", models.ItemFinish, 0, 0),
		entry("garbage", "第一餐", "F01", "主食", 999, 999),
		entry("2024/05/09", "第一餐", "F01", "主食", 999, 999),
	)
	eng := newTestEngine(t, store)

	trend, err := eng.Trend(context.Background(), "Mochi", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), testDay)
	require.NoError(t, err)
	require.Len(t, trend, 2)

	assert.Equal(t, "2024/05/02", trend[0].Date)
	assert.InDelta(t, 102, trend[0].Calorie, 1e-9)
	assert.InDelta(t, 90, trend[0].Food, 1e-9)
	assert.InDelta(t, 45, trend[0].Water, 1e-9)

	assert.Equal(t, testDate, trend[1].Date)
	assert.Equal(t, 40.0, trend[1].Food)
}
