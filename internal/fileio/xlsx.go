package fileio

import (
	"bytes"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"drawing-audit-service/internal/audit/model"
)

func readXLSX(r io.Reader) (model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.Table{}, err
	}
	return tableFromRows(rows, sheet), nil
}
