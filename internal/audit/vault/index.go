// Package vault builds the per-run match index over the Vault export: a key
// lookup for exact matches, compiled wildcard templates, and a secondary
// index of PDF display names decoded into inferred part numbers.
package vault

import (
	"regexp"
	"sort"
	"strings"

	"drawing-audit-service/internal/audit/model"
)

// Columns are the resolved vault column indices the index reads from.
type Columns struct {
	Match    int
	Filetype int
	State    int
	Name     int
	Title    int
}

// ResolveColumns looks up the vault columns by header name. Match is the
// configured match column (default "Stock Number").
func ResolveColumns(headers []string, matchCol string) Columns {
	return Columns{
		Match:    model.FindColumn(headers, matchCol),
		Filetype: model.FindColumn(headers, "Filetype"),
		State:    model.FindColumn(headers, "State"),
		Name:     model.FindColumn(headers, "Name"),
		Title:    model.FindColumn(headers, "Title"),
	}
}

// Index is an owned snapshot rebuilt from scratch on every audit run.
type Index struct {
	byKey     map[string][]model.VaultEntry
	patterns  []Pattern
	pdfByKey  map[string][]model.VaultEntry
	idwDrawNo map[string]struct{}
}

func (ix *Index) PatternCount() int { return len(ix.patterns) }

// Patterns exposes the compiled wildcard templates for inspection endpoints.
func (ix *Index) Patterns() []Pattern { return ix.patterns }

// BuildIndex scans the vault rows once for keyed entries and wildcard
// templates, then twice more for the PDF-name index: .idw drawing numbers
// are collected first so a same-numbered PDF never shadows a drawing.
func BuildIndex(table model.Table, cols Columns) *Index {
	ix := &Index{
		byKey:     map[string][]model.VaultEntry{},
		pdfByKey:  map[string][]model.VaultEntry{},
		idwDrawNo: map[string]struct{}{},
	}
	if cols.Match < 0 {
		return ix
	}

	for i, r := range table.Rows {
		matchVal := model.Cell(r, cols.Match)
		key := model.NormalizeKey(matchVal)
		if key == "" {
			continue
		}
		nameColVal := model.Cell(r, cols.Name)
		typeVal := model.Cell(r, cols.Filetype)
		stateVal := model.Cell(r, cols.State)

		extSource := nameColVal
		if extSource == "" {
			extSource = matchVal
		}
		displayName := matchVal
		if displayName == "" {
			displayName = nameColVal
		}

		entry := model.VaultEntry{
			Key:      key,
			Name:     displayName,
			Base:     BaseName(displayName),
			Ext:      DetectExt(typeVal, extSource),
			Filetype: typeVal,
			State:    stateVal,
			Row:      i,
		}
		ix.byKey[key] = append(ix.byKey[key], entry)

		if HasWildcardToken(matchVal) {
			if expr, kind, count, ok := CompileWildcard(matchVal); ok {
				if re, err := regexp.Compile(expr); err == nil {
					ix.patterns = append(ix.patterns, Pattern{
						Regex:         re,
						Template:      matchVal,
						Expr:          expr,
						Kind:          kind,
						WildcardCount: count,
						LiteralLen:    len(matchVal),
						Entry:         entry,
					})
				}
			}
		}
	}

	if cols.Name >= 0 {
		for _, r := range table.Rows {
			nameColVal := model.Cell(r, cols.Name)
			if nameColVal == "" {
				continue
			}
			if DetectExt(model.Cell(r, cols.Filetype), nameColVal) != ".idw" {
				continue
			}
			if drawing := ExtractDrawingNumber(nameColVal); drawing != "" {
				ix.idwDrawNo[drawing] = struct{}{}
			}
		}

		for i, r := range table.Rows {
			nameColVal := model.Cell(r, cols.Name)
			if nameColVal == "" {
				continue
			}
			typeVal := model.Cell(r, cols.Filetype)
			if DetectExt(typeVal, nameColVal) != ".pdf" {
				continue
			}

			info := ParsePDFName(nameColVal)
			if info.PartNumber == "" {
				continue
			}
			if info.DrawingNumber != "" {
				if _, taken := ix.idwDrawNo[info.DrawingNumber]; taken {
					continue
				}
			}
			key := model.NormalizeKey(info.PartNumber)
			if key == "" {
				continue
			}

			matchVal := model.Cell(r, cols.Match)
			displayName := matchVal
			if displayName == "" {
				displayName = nameColVal
			}
			ix.pdfByKey[key] = append(ix.pdfByKey[key], model.VaultEntry{
				Key:           key,
				Name:          displayName,
				Base:          BaseName(displayName),
				Ext:           ".pdf",
				Filetype:      typeVal,
				State:         model.Cell(r, cols.State),
				Row:           i,
				PDFNameMatch:  true,
				DrawingNumber: info.DrawingNumber,
			})
		}
	}

	return ix
}

// Find resolves a stock code to vault entries. Exact lookup is
// authoritative; wildcard patterns are consulted only when it is empty,
// ranked fewer wildcards first then longer literal; the PDF-name index is
// the last fallback. An empty result means "missing".
func (ix *Index) Find(stockCodeRaw string) ([]model.VaultEntry, model.MatchType) {
	exactKey := model.NormalizeKey(stockCodeRaw)
	if exact := ix.byKey[exactKey]; len(exact) > 0 {
		return exact, model.MatchExact
	}

	code := strings.ToUpper(strings.TrimSpace(stockCodeRaw))
	if code == "" {
		return nil, model.MatchNone
	}

	var matched []Pattern
	for _, pat := range ix.patterns {
		if pat.Regex.MatchString(code) {
			matched = append(matched, pat)
		}
	}
	if len(matched) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].WildcardCount != matched[j].WildcardCount {
				return matched[i].WildcardCount < matched[j].WildcardCount
			}
			return matched[i].LiteralLen > matched[j].LiteralLen
		})

		best := matched[0]
		bestKey := best.Entry.Key
		seen := map[string]struct{}{}
		var out []model.VaultEntry
		for _, m := range matched {
			if m.Entry.Key != bestKey {
				continue
			}
			dedup := m.Entry.Key + "|" + m.Entry.Name
			if _, ok := seen[dedup]; ok {
				continue
			}
			seen[dedup] = struct{}{}
			out = append(out, m.Entry)
		}
		if len(out) > 0 {
			return out, wildcardMatchType(best.Kind)
		}
	}

	if pdf := ix.pdfByKey[exactKey]; len(pdf) > 0 {
		return pdf, model.MatchPDFName
	}
	return nil, model.MatchNone
}

func wildcardMatchType(kind WildcardKind) model.MatchType {
	switch kind {
	case KindLength:
		return model.MatchWildcardLength
	case KindGalv:
		return model.MatchWildcardGalv
	default:
		return model.MatchWildcard
	}
}
