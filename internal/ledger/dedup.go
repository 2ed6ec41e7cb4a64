package ledger

import (
	"sort"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// Dedup drops all but the last terminal row of each meal scope. It guards
// aggregation against history written before finish commits replaced
// their predecessors. Rows come back in position order.
func Dedup(rows []Row, defaultPet string) []Row {
	last := make(map[models.MealScope]int)
	for _, r := range rows {
		if !r.Entry.IsTerminal() {
			continue
		}
		scope := models.ScopeOf(r.Entry, defaultPet)
		if pos, ok := last[scope]; !ok || r.Position > pos {
			last[scope] = r.Position
		}
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Entry.IsTerminal() && last[models.ScopeOf(r.Entry, defaultPet)] != r.Position {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func entriesOf(rows []Row) []models.LogEntry {
	out := make([]models.LogEntry, len(rows))
	for i, r := range rows {
		out[i] = r.Entry
	}
	return out
}

func filterRows(rows []Row, keep func(models.LogEntry) bool) []Row {
	var out []Row
	for _, r := range rows {
		if keep(r.Entry) {
			out = append(out, r)
		}
	}
	return out
}
