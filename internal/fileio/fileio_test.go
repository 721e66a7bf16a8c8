package fileio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadXLSXRoundTrip(t *testing.T) {
	headers := []string{"Part Code", "Part Desc", "Group Desc"}
	rows := [][]string{
		{"ABC123", "M12 Bolt 150mm", "Spares"},
		{"DEF456", "Washer", "Fasteners"},
	}

	b, err := WriteXLSX("Audit", headers, rows)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	tbl, err := ReadTable(bytes.NewReader(b), "audit.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "audit.xlsx", tbl.FileName)
	assert.Equal(t, "Audit", tbl.Sheet)
	assert.Equal(t, headers, tbl.Headers)
	assert.Equal(t, rows, tbl.Rows)
}

func TestReadCSV(t *testing.T) {
	src := "Part Code,Part Desc\nABC123,M12 Bolt\nDEF456,\"Washer, flat\"\n"
	tbl, err := ReadTable(strings.NewReader(src), "stock.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"Part Code", "Part Desc"}, tbl.Headers)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"DEF456", "Washer, flat"}, tbl.Rows[1])
}

func TestReadCSVRaggedRows(t *testing.T) {
	src := "A,B,C\n1,2\n1,2,3,4\n"
	tbl, err := ReadTable(strings.NewReader(src), "ragged.csv")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[0])
	assert.Equal(t, []string{"1", "2", "3", "4"}, tbl.Rows[1])
}

func TestReadTableUnsupportedExtension(t *testing.T) {
	_, err := ReadTable(strings.NewReader("x"), "notes.txt")
	assert.Error(t, err)
}

func TestReadTableUsesBaseName(t *testing.T) {
	src := "A\n1\n"
	tbl, err := ReadTable(strings.NewReader(src), "/uploads/tmp/stock.csv")
	require.NoError(t, err)
	assert.Equal(t, "stock.csv", tbl.FileName)
}

func TestTableFromRows(t *testing.T) {
	t.Run("blank headers get placeholder names", func(t *testing.T) {
		tbl := tableFromRows([][]string{
			{"Part Code", "", "  "},
			{"ABC123", "x", "y"},
		}, "Sheet1")
		assert.Equal(t, []string{"Part Code", "Column 2", "Column 3"}, tbl.Headers)
	})

	t.Run("trailing empty rows trimmed", func(t *testing.T) {
		tbl := tableFromRows([][]string{
			{"A"},
			{"1"},
			{""},
			{"  "},
		}, "Sheet1")
		assert.Len(t, tbl.Rows, 1)
	})

	t.Run("interior empty rows kept", func(t *testing.T) {
		tbl := tableFromRows([][]string{
			{"A"},
			{""},
			{"1"},
		}, "Sheet1")
		assert.Len(t, tbl.Rows, 2)
	})

	t.Run("no rows", func(t *testing.T) {
		tbl := tableFromRows(nil, "Sheet1")
		assert.False(t, tbl.Loaded())
	})
}
