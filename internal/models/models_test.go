package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnitKind(t *testing.T) {
	assert.Equal(t, UnitMass, ParseUnitKind("g"))
	assert.Equal(t, UnitMass, ParseUnitKind(""))
	assert.Equal(t, UnitMass, ParseUnitKind("handful"))
	assert.Equal(t, UnitVolume, ParseUnitKind(" ML "))
	assert.Equal(t, UnitCount, ParseUnitKind("顆"))
	assert.Equal(t, UnitCount, ParseUnitKind("膠囊"))
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryWater, ParseCategory("飲用水").Kind)
	assert.Equal(t, CategoryWater, ParseCategory("Water").Kind)
	assert.Equal(t, CategoryMedicine, ParseCategory("藥品").Kind)
	assert.Equal(t, CategorySupplement, ParseCategory(" 保養品 ").Kind)
	assert.Equal(t, CategoryOther, ParseCategory("剩食").Kind)

	food := ParseCategory("主食")
	assert.Equal(t, CategoryFood, food.Kind)
	assert.Equal(t, "主食", food.Label)
	assert.False(t, food.IsIntakeExcluded())
	assert.True(t, ParseCategory("藥品").IsIntakeExcluded())
}

func TestRowCodec_PreservesColumnOrder(t *testing.T) {
	ts := time.Date(2024, 5, 3, 7, 30, 0, 0, time.UTC)
	entry := LogEntry{
		LogID:        "abc",
		Timestamp:    ts,
		Date:         "2024/05/03",
		Time:         "07:30:00",
		MealName:     "第一餐",
		PetName:      "Mochi",
		ItemID:       "F01",
		ItemName:     "Chicken",
		Category:     ParseCategory("主食"),
		ScaleReading: 80,
		BowlWeight:   30,
		NetQuantity:  50,
		Nutrients:    Nutrients{Calorie: 60, Protein: 10, Fat: 2.5, Phosphorus: 0.1},
	}

	row := EncodeRow(entry)
	require.Len(t, row, len(LedgerHeader))
	assert.Equal(t, "abc", row[0])
	assert.Equal(t, "2024/05/03 07:30:00", row[1])
	assert.Equal(t, "F01", row[5])
	assert.Equal(t, "50", row[9])
	assert.Equal(t, "", row[14])
	assert.Equal(t, "Chicken", row[15])
	assert.Equal(t, "Mochi", row[17])

	assert.Equal(t, entry, DecodeRow(row, time.UTC))
}

func TestDecodeRow_ShortRowAndGarbageNumbers(t *testing.T) {
	row := []string{"id", "not a time", "2024/05/03", "08:00:00", "第二餐", "W01", "水", "x", "", "40"}

	entry := DecodeRow(row, time.UTC)
	assert.True(t, entry.Timestamp.IsZero())
	assert.Equal(t, 0.0, entry.ScaleReading)
	assert.Equal(t, 40.0, entry.NetQuantity)
	assert.Equal(t, "", entry.PetName)
	assert.Equal(t, "default", entry.Pet("default"))
	assert.True(t, entry.Category.IsWater())
}

func TestSession_Timestamp(t *testing.T) {
	s := Session{Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Time: "18:45"}
	assert.Equal(t, time.Date(2024, 5, 3, 18, 45, 0, 0, time.UTC), s.Timestamp())
	assert.Equal(t, MealScope{Date: "2024/05/03"}, s.Scope())

	s.Time = "bogus"
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), s.Timestamp())
}

func TestLogEntry_IsReconcilable(t *testing.T) {
	cases := []struct {
		name  string
		entry LogEntry
		want  bool
	}{
		{"label column", LogEntry{ItemID: ItemWaste, ItemName: "Leftover", FinishLabel: FinishSentinel}, true},
		{"name column", LogEntry{ItemID: ItemFinish, ItemName: FinishSentinel, FinishLabel: "18:30"}, true},
		{"unmarked terminal", LogEntry{ItemID: ItemWaste, ItemName: "Leftover", FinishLabel: "18:30"}, false},
		{"food row", LogEntry{ItemID: "F01", ItemName: FinishSentinel, FinishLabel: FinishSentinel}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.entry.IsReconcilable())
		})
	}
}
