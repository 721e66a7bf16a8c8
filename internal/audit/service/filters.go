package service

import (
	"time"

	"drawing-audit-service/internal/audit/model"
)

// DateFilterMode selects the movement-date window applied to stock rows.
type DateFilterMode string

const (
	DateFilterNone   DateFilterMode = "none"
	DateFilterSixM   DateFilterMode = "6m"
	DateFilterTwelve DateFilterMode = "12m"
	DateFilterCustom DateFilterMode = "custom"
)

// StockFilter is the view-level row predicate: group selection plus an
// inclusive movement-date range. It never mutates the loaded rows.
type StockFilter struct {
	// Selected maps Group Desc -> keep; a group absent from the map is kept.
	Selected map[string]bool
	Mode     DateFilterMode
	Start    *time.Time
	End      *time.Time
}

// Resolve fixes the date window for the relative modes against "now".
func (f *StockFilter) Resolve(now time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch f.Mode {
	case DateFilterSixM, DateFilterTwelve:
		months := 6
		if f.Mode == DateFilterTwelve {
			months = 12
		}
		start := today.AddDate(0, -months, 0)
		f.Start = &start
		f.End = &today
	case DateFilterCustom:
		// Start/End supplied by the caller.
	default:
		f.Start = nil
		f.End = nil
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"02/01/2006",
	"2006-01-02T15:04:05Z07:00",
	"2 Jan 2006",
}

// ParseLooseDate accepts the date shapes seen in movement-date columns.
func ParseLooseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// passesDate applies the active date window. When filtering, rows whose date
// is missing or unparseable do not pass; they are excluded, never an error.
func (f *StockFilter) passesDate(row []string, dateIdx int) bool {
	if f == nil || f.Mode == DateFilterNone || f.Mode == "" {
		return true
	}
	if dateIdx < 0 {
		return true // no date column -> don't filter
	}
	d, ok := ParseLooseDate(model.Cell(row, dateIdx))
	if !ok {
		return false
	}
	if f.Start != nil && d.Before(*f.Start) {
		return false
	}
	if f.End != nil && d.After(*f.End) {
		return false
	}
	return true
}

func (f *StockFilter) passesGroup(row []string, groupIdx int) bool {
	if f == nil || len(f.Selected) == 0 || groupIdx < 0 {
		return true
	}
	g := model.Cell(row, groupIdx)
	if g == "" {
		return false
	}
	keep, known := f.Selected[g]
	return !known || keep
}

// FilterStockRows returns the rows passing both the date and group filters.
func FilterStockRows(rows [][]string, groupIdx, dateIdx int, f *StockFilter) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if !f.passesDate(r, dateIdx) {
			continue
		}
		if !f.passesGroup(r, groupIdx) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GroupCounts tallies non-empty values of a column, for the group summary.
func GroupCounts(rows [][]string, idx int) map[string]int {
	counts := map[string]int{}
	if idx < 0 {
		return counts
	}
	for _, r := range rows {
		if v := model.Cell(r, idx); v != "" {
			counts[v]++
		}
	}
	return counts
}
