package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

func TestCSVLedger_AppendReadDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.csv")
	l := NewCSVLedger(path, time.UTC)

	rows, err := l.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	first := sampleEntry("a", "第一餐", "F01", 50, 60)
	require.NoError(t, l.Append(ctx, []models.LogEntry{first, sampleEntry("b", "第一餐", "F02", 10, 8)}))
	require.NoError(t, l.Append(ctx, []models.LogEntry{sampleEntry("c", "第二餐", "F01", 20, 24)}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "Log_ID"), "header is written once")

	rows, err = l.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, first, rows[0].Entry)
	assert.Equal(t, 3, rows[2].Position)

	require.NoError(t, l.Delete(ctx, []int{3, 1}))
	rows, err = l.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].Entry.LogID)
	assert.Equal(t, 1, rows[0].Position)

	assert.Error(t, l.Delete(ctx, []int{2}))
}

func TestCSVLedger_ReadsLegacyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "\ufeff" + strings.Join(models.LedgerHeader[:17], ",") + "\n" +
		"x1,2024/05/03 07:30:00,2024/05/03,07:30:00,第一餐,F01,主食,80,30,50,60,n/a,,,,Food A,\n" +
		"x2,,2024/05/03,08:00:00,第一餐,WASTE,剩食,0,30,-5,-6,0,0,0,,完食紀錄,08:00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := NewCSVLedger(path, time.UTC).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2024, 5, 3, 7, 30, 0, 0, time.UTC), rows[0].Entry.Timestamp)
	assert.Equal(t, 0.0, rows[0].Entry.Nutrients.Protein)
	assert.Empty(t, rows[0].Entry.PetName)
	assert.Equal(t, "08:00", rows[1].Entry.FinishLabel)
	assert.True(t, rows[1].Entry.IsReconcilable())
	assert.True(t, rows[1].Entry.Timestamp.IsZero())
}

func TestReadCatalogCSV(t *testing.T) {
	in := "\ufeffItem_Name,ItemID,Category,Unit_Type,Ref_Cal_100g,Protein_Pct,Fat_Pct,Phos_Pct\n" +
		"Food A,F01,主食,g,120,20,5,0.2\n" +
		"Fish Oil,S01,保養品,顆,10,,1,\n" +
		",,,,,,,\n" +
		"Water,,水,ml,,,,\n"

	items, err := ReadCatalogCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "F01", items[0].ID)
	assert.Equal(t, models.Nutrients{Calorie: 120, Protein: 20, Fat: 5, Phosphorus: 0.2}, items[0].Reference)
	assert.Equal(t, models.UnitCount, items[1].UnitKind)
	assert.Equal(t, "Water", items[2].ID)
	assert.True(t, items[2].Category.IsWater())
	assert.Equal(t, models.UnitVolume, items[2].UnitKind)
}

func TestReadCatalogCSV_MissingColumn(t *testing.T) {
	_, err := ReadCatalogCSV(strings.NewReader("Name,Category\nx,y\n"))
	assert.ErrorContains(t, err, "ItemID")
}
