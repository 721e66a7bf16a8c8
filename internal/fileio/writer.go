package fileio

import (
	"bytes"

	excelize "github.com/xuri/excelize/v2"
)

// WriteXLSX builds a single-sheet workbook from headers + row arrays and
// returns the file bytes, ready for download.
func WriteXLSX(sheet string, headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// drop the default sheet if we created a differently named one
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	hdr := make([]interface{}, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
