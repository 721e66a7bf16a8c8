// Package fuzzy matches stock descriptions against vault titles: an
// inverted token index proposes candidates, hard disqualifiers (critical
// numbers, codes, materials, learned conflict/required rules) prune them,
// and a weighted Jaccard similarity picks the best survivor.
package fuzzy

import (
	"sort"

	"drawing-audit-service/internal/audit/model"
	"drawing-audit-service/internal/audit/rules"
	"drawing-audit-service/internal/audit/token"
	"drawing-audit-service/internal/audit/vault"
)

// TitleIndex maps normalized token -> set of title keys, plus the vault
// entries behind each distinct title. Rebuilt per audit run.
type TitleIndex struct {
	byToken   map[string]map[string]struct{}
	byTitle   map[string][]model.VaultEntry
	metaCache map[string]token.Meta
}

// Entries returns the vault entries sharing a matched title key.
func (ti *TitleIndex) Entries(titleKey string) []model.VaultEntry {
	return ti.byTitle[titleKey]
}

// TitleText returns the raw title behind a title key.
func (ti *TitleIndex) TitleText(titleKey string) string {
	if es := ti.byTitle[titleKey]; len(es) > 0 {
		return es[0].Name
	}
	return ""
}

// BuildTitleIndex indexes every distinct normalized vault title.
func BuildTitleIndex(table model.Table, cols vault.Columns) *TitleIndex {
	ti := &TitleIndex{
		byToken:   map[string]map[string]struct{}{},
		byTitle:   map[string][]model.VaultEntry{},
		metaCache: map[string]token.Meta{},
	}
	if cols.Title < 0 {
		return ti
	}

	for i, r := range table.Rows {
		titleRaw := model.Cell(r, cols.Title)
		titleKey := model.NormalizeKey(titleRaw)
		if titleKey == "" {
			continue
		}

		typeVal := model.Cell(r, cols.Filetype)
		ti.byTitle[titleKey] = append(ti.byTitle[titleKey], model.VaultEntry{
			Key:      titleKey,
			Name:     titleRaw,
			Base:     vault.BaseName(titleRaw),
			Ext:      vault.DetectExt(typeVal, titleRaw),
			Filetype: typeVal,
			State:    model.Cell(r, cols.State),
			Row:      i,
		})

		for _, tok := range token.Unique(token.Tokenize(titleRaw)) {
			set, ok := ti.byToken[tok]
			if !ok {
				set = map[string]struct{}{}
				ti.byToken[tok] = set
			}
			set[titleKey] = struct{}{}
		}
	}
	return ti
}

// Match is the best-scoring candidate for a description, or the zero value
// when nothing survives the thresholds.
type Match struct {
	TitleKey string
	Score    float64
	Shared   int
}

// FindBest scans candidate titles for the description and returns the best
// one under the weighted-Jaccard policy, or a zero Match. Pure given a
// fixed index and rule store.
func (ti *TitleIndex) FindBest(stockDesc string, th model.Thresholds, store *rules.Store) Match {
	stockMeta := token.BuildMeta(stockDesc)
	if len(stockMeta.Tokens) == 0 {
		return Match{}
	}

	candidates := map[string]int{}
	for _, tok := range stockMeta.Tokens {
		for titleKey := range ti.byToken[tok] {
			candidates[titleKey]++
		}
	}

	// Candidates are visited in sorted key order so that ties on score and
	// shared count always resolve to the same title.
	keys := make([]string, 0, len(candidates))
	for titleKey := range candidates {
		keys = append(keys, titleKey)
	}
	sort.Strings(keys)

	aSet := stockMeta.TokenSet()
	var best Match

	for _, titleKey := range keys {
		shared := candidates[titleKey]
		if shared < th.MinSharedTokens {
			continue
		}
		titleText := ti.TitleText(titleKey)
		if titleText == "" {
			continue
		}
		pairKey := rules.PairKey(stockDesc, titleText)
		if store.IsBlocked(pairKey) {
			continue
		}

		titleMeta, ok := ti.metaCache[titleKey]
		if !ok {
			titleMeta = token.BuildMeta(titleText)
			ti.metaCache[titleKey] = titleMeta
		}

		// Hard disqualifiers: when both sides carry critical features of a
		// class, those features must be identical.
		if len(stockMeta.Numbers) > 0 && len(titleMeta.Numbers) > 0 &&
			!token.CountsEqual(stockMeta.Numbers, titleMeta.Numbers) {
			continue
		}
		if len(stockMeta.Codes) > 0 && len(titleMeta.Codes) > 0 &&
			!token.SetsEqual(stockMeta.Codes, titleMeta.Codes) {
			continue
		}
		if len(stockMeta.Materials) > 0 && len(titleMeta.Materials) > 0 &&
			!token.SetsEqual(stockMeta.Materials, titleMeta.Materials) {
			continue
		}

		bSet := titleMeta.TokenSet()
		if store.HasConflict(aSet, bSet) {
			continue
		}
		if store.MissingRequired(aSet, bSet) {
			continue
		}

		score := weightedJaccard(aSet, bSet, stockMeta, titleMeta)
		sharedCount := 0
		for t := range aSet {
			if _, ok := bSet[t]; ok {
				sharedCount++
			}
		}

		score += store.ApprovalBonus(aSet, bSet)
		if score > 1 {
			score = 1
		}

		// A user override always wins.
		if store.IsApproved(pairKey) {
			score = 1
			if sharedCount < th.MinSharedTokens {
				sharedCount = th.MinSharedTokens
			}
		}

		if score > best.Score || (score == best.Score && sharedCount > best.Shared) {
			best = Match{TitleKey: titleKey, Score: score, Shared: sharedCount}
		}
	}

	if best.TitleKey == "" || best.Shared < th.MinSharedTokens || best.Score < th.MinJaccard {
		return Match{}
	}
	return best
}

// weightedJaccard: each token weighs by the max of its critical class on
// either side (number or code = 3, material = 2, plain = 1).
func weightedJaccard(aSet, bSet map[string]struct{}, aMeta, bMeta token.Meta) float64 {
	weightFor := func(tok string, m token.Meta) float64 {
		if _, ok := m.Numbers[tok]; ok {
			return 3
		}
		if _, ok := m.Codes[tok]; ok {
			return 3
		}
		if _, ok := m.Materials[tok]; ok {
			return 2
		}
		return 1
	}

	var inter, union float64
	seen := map[string]struct{}{}
	for tok := range aSet {
		seen[tok] = struct{}{}
	}
	for tok := range bSet {
		seen[tok] = struct{}{}
	}
	for tok := range seen {
		w := weightFor(tok, aMeta)
		if wb := weightFor(tok, bMeta); wb > w {
			w = wb
		}
		union += w
		_, inA := aSet[tok]
		_, inB := bSet[tok]
		if inA && inB {
			inter += w
		}
	}
	if union == 0 {
		return 0
	}
	return inter / union
}
