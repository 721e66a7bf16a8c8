package service

import (
	"time"

	"drawing-audit-service/internal/audit/model"
)

// ExportHeaders is the audit spreadsheet column order.
var ExportHeaders = []string{
	"Group Desc", "Part Code", "Part Desc", "Category", "Drawing Number",
	"Vault States", "Vault Filetypes", "Match Type", "Vault Matched Phrase",
}

// ExportFileName stamps the fixed prefix with an ISO date.
func ExportFileName(now time.Time) string {
	return "drawing-audit-" + now.UTC().Format("2006-01-02") + ".xlsx"
}

// ExportCells flattens the run's export rows into cell values.
func ExportCells(rows []model.ExportRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.GroupDesc,
			r.PartCode,
			r.PartDesc,
			string(r.Category),
			r.DrawingNumber,
			r.VaultStates,
			r.VaultFiletypes,
			string(r.MatchType),
			r.MatchedPhrase,
		})
	}
	return out
}
