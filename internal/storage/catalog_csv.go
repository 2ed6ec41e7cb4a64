package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

// CatalogHeader is the column set of an item catalog sheet. Columns are
// matched by name, so their order does not matter.
var CatalogHeader = []string{
	"ItemID", "Item_Name", "Category", "Unit_Type",
	"Ref_Cal_100g", "Protein_Pct", "Fat_Pct", "Phos_Pct",
}

// ReadCatalogCSV parses an item catalog. ItemID and Item_Name columns are
// required; missing nutrient cells read as zero. Rows with neither id nor
// name are skipped.
func ReadCatalogCSV(r io.Reader) ([]models.ItemDefinition, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, bom))] = i
	}
	for _, required := range CatalogHeader[:2] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("catalog is missing column %s", required)
		}
	}

	var items []models.ItemDefinition
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		cell := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		id, name := cell("ItemID"), cell("Item_Name")
		if id == "" && name == "" {
			continue
		}
		if id == "" {
			id = name
		}

		items = append(items, models.NewItemDefinition(id, name, cell("Category"), cell("Unit_Type"), models.Nutrients{
			Calorie:    models.SafeFloat(cell("Ref_Cal_100g")),
			Protein:    models.SafeFloat(cell("Protein_Pct")),
			Fat:        models.SafeFloat(cell("Fat_Pct")),
			Phosphorus: models.SafeFloat(cell("Phos_Pct")),
		}))
	}
	return items, nil
}

// ReadCatalogFile opens path and parses it with ReadCatalogCSV.
func ReadCatalogFile(path string) ([]models.ItemDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return ReadCatalogCSV(f)
}
