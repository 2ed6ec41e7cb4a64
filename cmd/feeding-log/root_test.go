package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "serve")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "feeding-log version")
}

func TestCatalogImportExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "feeding.db")

	catalog := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(catalog, []byte(
		"ItemID,Item_Name,Category,Unit_Type,Ref_Cal_100g,Protein_Pct,Fat_Pct,Phos_Pct\n"+
			"F01,Food A,主食,g,120,20,5,0.2\n"+
			"S01,Fish Oil,保養品,顆,10,0,1,0\n"), 0o644))

	out, err := run(t, "--db", db, "catalog", "import", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 items")

	out, err = run(t, "--db", db, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Fish Oil")

	ledgerCSV := filepath.Join(dir, "ledger.csv")
	require.NoError(t, os.WriteFile(ledgerCSV, []byte(
		"Log_ID,Timestamp,Date,Time,Meal_Name,ItemID,Category,Scale_Reading,Bowl_Weight,Net_Quantity,Cal_Sub,Prot_Sub,Fat_Sub,Phos_Sub,Reserved,Item_Name,Finish_Label\n"+
			",2024/05/03 07:30:00,2024/05/03,07:30:00,第一餐,F01,主食,80,30,50,60,10,2.5,0.1,,Food A,\n"+
			",2024/05/03 07:30:00,2024/05/03,07:30:00,第一餐,S01,保養品,80,30,1,10,0,1,0,,Fish Oil,\n"), 0o644))

	out, err = run(t, "--db", db, "import", ledgerCSV)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 entries")

	out, err = run(t, "--db", db, "summary", "day", "--date", "2024/05/03")
	require.NoError(t, err)
	assert.Contains(t, out, "70.0 kcal")
	assert.Contains(t, out, "Fish Oil x1")

	exported := filepath.Join(dir, "export.csv")
	out, err = run(t, "--db", db, "export", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 entries")

	_, err = run(t, "--db", db, "export", exported)
	assert.ErrorContains(t, err, "--force")

	raw, err := os.ReadFile(exported)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Log_ID,"))
}
