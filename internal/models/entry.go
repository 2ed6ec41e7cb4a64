package models

import (
	"time"
)

// Reserved item ids.
const (
	ItemWaste    = "WASTE"
	ItemFinish   = "FINISH"
	ItemLeftover = "LEFTOVER"
)

// FinishSentinel marks the finish_label column of terminal records.
const FinishSentinel = "完食紀錄"

const (
	DateLayout      = "2006/01/02"
	TimeLayout      = "15:04:05"
	TimestampLayout = DateLayout + " " + TimeLayout
)

// LogEntry is one row of the feeding ledger. Rows are never updated in
// place; a correction deletes and re-appends.
type LogEntry struct {
	LogID        string    `json:"log_id"`
	Timestamp    time.Time `json:"timestamp"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	MealName     string    `json:"meal_name"`
	PetName      string    `json:"pet_name,omitempty"`
	ItemID       string    `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Category     Category  `json:"category"`
	ScaleReading float64   `json:"scale_reading"`
	BowlWeight   float64   `json:"bowl_weight"`
	NetQuantity  float64   `json:"net_quantity"`
	Nutrients    Nutrients `json:"nutrients"`
	FinishLabel  string    `json:"finish_label,omitempty"`
}

// IsTerminalItem reports whether an item id closes a meal.
func IsTerminalItem(itemID string) bool {
	return itemID == ItemWaste || itemID == ItemFinish
}

func (e LogEntry) IsTerminal() bool {
	return IsTerminalItem(e.ItemID)
}

// IsReconcilable reports whether the row is a terminal record written by
// the finish flow and may be replaced by a later finish commit. Older
// sheets carry the sentinel in item_name and the finish clock in
// finish_label, so either column marks the row.
func (e LogEntry) IsReconcilable() bool {
	return e.IsTerminal() && (e.ItemName == FinishSentinel || e.FinishLabel == FinishSentinel)
}

// MealScope identifies a meal session: all rows sharing date, meal name
// and pet.
type MealScope struct {
	Date string `json:"date"`
	Meal string `json:"meal"`
	Pet  string `json:"pet,omitempty"`
}

// Pet returns the entry's pet, falling back to def for rows written before
// pets were tracked.
func (e LogEntry) Pet(def string) string {
	if e.PetName == "" {
		return def
	}
	return e.PetName
}

// ScopeOf returns the meal scope an entry belongs to.
func ScopeOf(e LogEntry, defaultPet string) MealScope {
	return MealScope{Date: e.Date, Meal: e.MealName, Pet: e.Pet(defaultPet)}
}

// Session is the editing context of one add/finish flow.
type Session struct {
	Pet        string    `json:"pet"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
	Meal       string    `json:"meal"`
	BowlWeight float64   `json:"bowl_weight"`
}

func (s Session) Scope() MealScope {
	return MealScope{Date: s.Date.Format(DateLayout), Meal: s.Meal, Pet: s.Pet}
}

// Timestamp combines the session date with its HH:MM[:SS] time. An
// unparsable time falls back to midnight.
func (s Session) Timestamp() time.Time {
	clock, err := ParseClock(s.Time)
	if err != nil {
		clock = 0
	}
	y, m, d := s.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.Date.Location()).Add(clock)
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	layout := TimeLayout
	if len(value) == len("15:04") {
		layout = "15:04"
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
}

// StandardMeals is the ordered list of meal names offered for a day.
var StandardMeals = []string{
	"第一餐", "第二餐", "第三餐", "第四餐", "第五餐",
	"第六餐", "第七餐", "第八餐", "第九餐", "第十餐", "點心1", "點心2",
}
