package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"drawing-audit-service/internal/audit/model"
)

// ReadTable picks a parser by extension and returns the first sheet as
// headers + row arrays, trailing fully-empty rows trimmed.
func ReadTable(r io.Reader, filename string) (model.Table, error) {
	var (
		t   model.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		t, err = readXLSX(r)
	case ".xls":
		t, err = readXLS(r)
	case ".csv":
		t, err = readCSV(r)
	default:
		return model.Table{}, fmt.Errorf("unsupported file: %s", filename)
	}
	if err != nil {
		return model.Table{}, err
	}
	t.FileName = filepath.Base(filename)
	return t, nil
}

// tableFromRows takes raw rows, treats the first as headers and the rest as
// data, and trims trailing empty rows.
func tableFromRows(rows [][]string, sheet string) model.Table {
	if len(rows) == 0 {
		return model.Table{Sheet: sheet}
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		headers[i] = h
	}
	data := rows[1:]
	end := len(data)
	for end > 0 && emptyRow(data[end-1]) {
		end--
	}
	return model.Table{Sheet: sheet, Headers: headers, Rows: data[:end]}
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
