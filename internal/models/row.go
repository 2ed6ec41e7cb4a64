package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// LedgerHeader is the persisted column order shared with tabular ledger
// stores. The trailing Pet_Name column is optional.
var LedgerHeader = []string{
	"Log_ID", "Timestamp", "Date", "Time", "Meal_Name", "ItemID", "Category",
	"Scale_Reading", "Bowl_Weight", "Net_Quantity", "Cal_Sub", "Prot_Sub",
	"Fat_Sub", "Phos_Sub", "Reserved", "Item_Name", "Finish_Label", "Pet_Name",
}

const (
	colLogID = iota
	colTimestamp
	colDate
	colTime
	colMeal
	colItemID
	colCategory
	colScale
	colBowl
	colNet
	colCal
	colProt
	colFat
	colPhos
	colReserved
	colItemName
	colFinishLabel
	colPet
)

// EncodeRow lays an entry out in persisted column order.
func EncodeRow(e LogEntry) []string {
	row := make([]string, len(LedgerHeader))
	row[colLogID] = e.LogID
	if !e.Timestamp.IsZero() {
		row[colTimestamp] = e.Timestamp.Format(TimestampLayout)
	}
	row[colDate] = e.Date
	row[colTime] = e.Time
	row[colMeal] = e.MealName
	row[colItemID] = e.ItemID
	row[colCategory] = e.Category.Label
	row[colScale] = formatFloat(e.ScaleReading)
	row[colBowl] = formatFloat(e.BowlWeight)
	row[colNet] = formatFloat(e.NetQuantity)
	row[colCal] = formatFloat(e.Nutrients.Calorie)
	row[colProt] = formatFloat(e.Nutrients.Protein)
	row[colFat] = formatFloat(e.Nutrients.Fat)
	row[colPhos] = formatFloat(e.Nutrients.Phosphorus)
	row[colItemName] = e.ItemName
	row[colFinishLabel] = e.FinishLabel
	row[colPet] = e.PetName
	return row
}

// DecodeRow reads an entry from persisted column order. Short rows are
// padded, and numeric cells that do not parse read as zero.
func DecodeRow(row []string, loc *time.Location) LogEntry {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(TimestampLayout, cell(colTimestamp), loc)
	if err != nil {
		ts = time.Time{}
	}
	return LogEntry{
		LogID:        cell(colLogID),
		Timestamp:    ts,
		Date:         cell(colDate),
		Time:         cell(colTime),
		MealName:     cell(colMeal),
		ItemID:       cell(colItemID),
		Category:     ParseCategory(cell(colCategory)),
		ScaleReading: SafeFloat(cell(colScale)),
		BowlWeight:   SafeFloat(cell(colBowl)),
		NetQuantity:  SafeFloat(cell(colNet)),
		Nutrients: Nutrients{
			Calorie:    SafeFloat(cell(colCal)),
			Protein:    SafeFloat(cell(colProt)),
			Fat:        SafeFloat(cell(colFat)),
			Phosphorus: SafeFloat(cell(colPhos)),
		},
		ItemName:    cell(colItemName),
		FinishLabel: cell(colFinishLabel),
		PetName:     cell(colPet),
	}
}

// SafeFloat parses a numeric cell, returning 0 for blanks, garbage and
// non-finite values.
func SafeFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
