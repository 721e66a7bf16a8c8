package model

import "strings"

// Table is the output of the tabular reader: first-sheet headers plus row
// arrays, trailing fully-empty rows already trimmed.
type Table struct {
	FileName string     `json:"fileName"`
	Sheet    string     `json:"sheet"`
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
}

func (t Table) Loaded() bool { return t.FileName != "" && len(t.Headers) > 0 }

// Category is the six-way classification of a stock row.
type Category string

const (
	CategoryReleased   Category = "released"
	CategoryUnreleased Category = "unreleased"
	CategoryPDF        Category = "pdf"
	CategoryModelled   Category = "modelled"
	CategoryFolder     Category = "folder"
	CategoryMissing    Category = "missing"
)

// MatchType records which mechanism associated a stock row with vault rows.
type MatchType string

const (
	MatchExact          MatchType = "exact"
	MatchWildcard       MatchType = "wildcard"
	MatchWildcardLength MatchType = "wildcard-length"
	MatchWildcardGalv   MatchType = "wildcard-galv"
	MatchPDFName        MatchType = "pdf-name"
	MatchTitle          MatchType = "title"
	MatchNone           MatchType = "none"
)

// VaultEntry is one document/file record derived from a vault row. Multiple
// entries may share a Key (several files per part).
type VaultEntry struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Base     string `json:"base"`
	Ext      string `json:"ext"`
	Filetype string `json:"filetype"`
	State    string `json:"state"`
	Row      int    `json:"row"` // index into the source table

	PDFNameMatch  bool   `json:"pdfNameMatch,omitempty"`
	DrawingNumber string `json:"drawingNumber,omitempty"`
}

type Counts struct {
	Released        int `json:"released"`
	Unreleased      int `json:"unreleased"`
	PDF             int `json:"pdf"`
	Modelled        int `json:"modelled"`
	Folder          int `json:"folder"`
	Missing         int `json:"missing"`
	TotalConsidered int `json:"totalConsidered"`
}

func (c *Counts) Add(cat Category) {
	switch cat {
	case CategoryReleased:
		c.Released++
	case CategoryUnreleased:
		c.Unreleased++
	case CategoryPDF:
		c.PDF++
	case CategoryModelled:
		c.Modelled++
	case CategoryFolder:
		c.Folder++
	case CategoryMissing:
		c.Missing++
	}
}

// Thresholds gate fuzzy title matching.
type Thresholds struct {
	MinSharedTokens int     `json:"minSharedTokens"`
	MinJaccard      float64 `json:"minJaccard"`
}

// Conservative defaults for the Part Desc <-> Title rule.
var DefaultThresholds = Thresholds{MinSharedTokens: 3, MinJaccard: 0.40}

// Options are the per-run rule toggles.
type Options struct {
	UseDescTitleRule        bool       `json:"useDescTitleRule"`
	UseDescTitleTunableRule bool       `json:"useDescTitleTunableRule"`
	Tunable                 Thresholds `json:"tunable"`
}

// ReviewItem is one fuzzy match surfaced for human confirmation.
type ReviewItem struct {
	Rule          string   `json:"rule"`
	PartCode      string   `json:"partCode"`
	PartDesc      string   `json:"partDesc"`
	Title         string   `json:"title"`
	Shared        int      `json:"shared"`
	Score         float64  `json:"score"`
	Tokens        []string `json:"tokens"`
	DrawingNumber string   `json:"drawingNumber,omitempty"`
}

// Key identifies a review item stably across runs so decisions survive a
// rebuild of the queue.
func (it ReviewItem) Key() string {
	return NormalizeKey(it.PartCode) + "|" + NormalizeKey(it.Title) + "|" + it.Rule
}

// ExportRow is one line of the audit spreadsheet export.
type ExportRow struct {
	GroupDesc      string
	PartCode       string
	PartDesc       string
	Category       Category
	DrawingNumber  string
	VaultStates    string
	VaultFiletypes string
	MatchType      MatchType
	MatchedPhrase  string
}

// Result is the outcome of one audit run.
type Result struct {
	Counts           Counts       `json:"counts"`
	ReviewItems      []ReviewItem `json:"reviewItems"`
	TitleMatches     int          `json:"titleMatches"`
	TunableMatches   int          `json:"tunableMatches"`
	WildcardPatterns int          `json:"wildcardPatterns"`
	Export           []ExportRow  `json:"-"`
}

// NormalizeHeader collapses whitespace and lowercases, so column lookup is
// case/space-insensitive.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// FindColumn returns the index of the header matching the desired name, or -1.
func FindColumn(headers []string, desired string) int {
	want := NormalizeHeader(desired)
	for i, h := range headers {
		if NormalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

// NormalizeKey is the canonical form used for exact identifier linking.
func NormalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Cell returns the trimmed cell at idx, or "" when out of range.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
