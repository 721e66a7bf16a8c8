// Legacy .xls parser: we fix the table width ourselves and read every cell
// up to it, since Row.LastCol() under-reports on sparse sheets.
package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"

	"drawing-audit-service/internal/audit/model"
)

func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 512
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := 0; j < probeMax; j++ {
			if strings.TrimSpace(row.Col(j)) != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func readXLS(r io.Reader) (model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, err
	}

	var wb *xls.WorkBook
	var lastErr error
	for _, ch := range []string{"utf-8", "windows-1251"} {
		wb, err = xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return model.Table{}, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return model.Table{}, nil
	}

	maxCols := computeMaxCols(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = strings.TrimSpace(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	return tableFromRows(rows, wb.GetSheet(0).Name), nil
}
