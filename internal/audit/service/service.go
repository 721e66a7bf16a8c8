// Package service drives one full audit pass: build the vault indexes,
// resolve matches per filtered stock row, classify, and aggregate counts
// plus review items.
package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"drawing-audit-service/internal/audit/fuzzy"
	"drawing-audit-service/internal/audit/model"
	"drawing-audit-service/internal/audit/rules"
	"drawing-audit-service/internal/audit/token"
	"drawing-audit-service/internal/audit/vault"
)

// Default match columns.
const (
	StockMatchColumn = "Part Code"
	VaultMatchColumn = "Stock Number"
)

// Rule names attached to review items.
const (
	RuleTitleMatch   = "Title match"
	RuleTunableMatch = "Tunable match"
)

// Precondition failures abort a run with no partial counts.
var (
	ErrNotLoaded          = errors.New("both stock and vault files must be loaded")
	ErrVaultUnexpected    = errors.New("vault export is missing required columns: Filetype and/or State")
	ErrMatchColumnMissing = errors.New("match column(s) missing")
)

// Input is everything one audit run consumes.
type Input struct {
	Stock   model.Table
	Vault   model.Table
	Filter  *StockFilter
	Options model.Options
	Rules   *rules.Store
}

type Runner struct {
	log zerolog.Logger
}

func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log}
}

// Run executes one synchronous audit pass. Indexes are rebuilt from scratch;
// nothing is shared with previous runs.
func (rn *Runner) Run(in Input) (model.Result, error) {
	if !in.Stock.Loaded() || !in.Vault.Loaded() {
		return model.Result{}, ErrNotLoaded
	}

	vcols := vault.ResolveColumns(in.Vault.Headers, VaultMatchColumn)
	if vcols.Filetype < 0 || vcols.State < 0 {
		return model.Result{}, ErrVaultUnexpected
	}

	stockMatchIdx := model.FindColumn(in.Stock.Headers, StockMatchColumn)
	if stockMatchIdx < 0 || vcols.Match < 0 {
		return model.Result{}, ErrMatchColumnMissing
	}

	stockGroupIdx := model.FindColumn(in.Stock.Headers, "Group Desc")
	stockDescIdx := model.FindColumn(in.Stock.Headers, "Part Desc")
	stockDateIdx := model.FindColumn(in.Stock.Headers, "Last Movement Date")

	ix := vault.BuildIndex(in.Vault, vcols)

	fuzzyEnabled := (in.Options.UseDescTitleRule || in.Options.UseDescTitleTunableRule) &&
		stockDescIdx >= 0 && vcols.Title >= 0
	var titles *fuzzy.TitleIndex
	if fuzzyEnabled {
		titles = fuzzy.BuildTitleIndex(in.Vault, vcols)
	}

	filtered := FilterStockRows(in.Stock.Rows, stockGroupIdx, stockDateIdx, in.Filter)

	res := model.Result{
		ReviewItems:      []model.ReviewItem{},
		WildcardPatterns: ix.PatternCount(),
	}

	for _, r := range filtered {
		codeRaw := model.Cell(r, stockMatchIdx)
		stockKey := model.NormalizeKey(codeRaw)
		if stockKey == "" {
			continue // does not count toward totalConsidered
		}

		matches, matchType := ix.Find(codeRaw)

		if len(matches) == 0 && fuzzyEnabled {
			desc := model.Cell(r, stockDescIdx)

			if in.Options.UseDescTitleRule {
				if best := titles.FindBest(desc, model.DefaultThresholds, in.Rules); best.TitleKey != "" {
					matches = titles.Entries(best.TitleKey)
					if len(matches) > 0 {
						matchType = model.MatchTitle
						res.TitleMatches++
						res.ReviewItems = append(res.ReviewItems,
							reviewItem(RuleTitleMatch, codeRaw, desc, titles.TitleText(best.TitleKey), best))
					}
				}
			}

			if len(matches) == 0 && in.Options.UseDescTitleTunableRule {
				th := in.Options.Tunable
				if th.MinSharedTokens <= 0 {
					th.MinSharedTokens = model.DefaultThresholds.MinSharedTokens
				}
				if th.MinJaccard <= 0 {
					th.MinJaccard = model.DefaultThresholds.MinJaccard
				}
				if best := titles.FindBest(desc, th, in.Rules); best.TitleKey != "" {
					matches = titles.Entries(best.TitleKey)
					if len(matches) > 0 {
						matchType = model.MatchTitle
						res.TunableMatches++
						res.ReviewItems = append(res.ReviewItems,
							reviewItem(RuleTunableMatch, codeRaw, desc, titles.TitleText(best.TitleKey), best))
					}
				}
			}
		}

		cat := Classify(matches, vault.BaseName(stockKey))
		res.Counts.Add(cat)
		res.Counts.TotalConsidered++

		res.Export = append(res.Export, exportRow(r, stockGroupIdx, stockDescIdx, codeRaw, cat, matches, matchType))
	}

	rn.log.Info().
		Int("considered", res.Counts.TotalConsidered).
		Int("missing", res.Counts.Missing).
		Int("titleMatches", res.TitleMatches).
		Int("tunableMatches", res.TunableMatches).
		Msg("audit run complete")

	return res, nil
}

func reviewItem(rule, partCode, desc, titleText string, best fuzzy.Match) model.ReviewItem {
	toks := token.Overlap(desc, titleText)
	sort.Strings(toks)
	item := model.ReviewItem{
		Rule:     rule,
		PartCode: partCode,
		PartDesc: desc,
		Title:    titleText,
		Shared:   best.Shared,
		Score:    best.Score,
		Tokens:   toks,
	}
	if dn := vault.ExtractDrawingNumber(titleText); dn != "" {
		item.DrawingNumber = dn
	}
	return item
}

func exportRow(r []string, groupIdx, descIdx int, codeRaw string, cat model.Category, matches []model.VaultEntry, matchType model.MatchType) model.ExportRow {
	row := model.ExportRow{
		GroupDesc: model.Cell(r, groupIdx),
		PartCode:  codeRaw,
		PartDesc:  model.Cell(r, descIdx),
		Category:  cat,
		MatchType: matchType,
	}
	var states, types []string
	for _, m := range matches {
		if m.State != "" {
			states = append(states, m.State)
		}
		if m.Filetype != "" {
			types = append(types, m.Filetype)
		}
		if row.DrawingNumber == "" {
			if m.DrawingNumber != "" {
				row.DrawingNumber = m.DrawingNumber
			} else if dn := vault.ExtractDrawingNumber(m.Name); dn != "" {
				row.DrawingNumber = dn
			}
		}
		if row.MatchedPhrase == "" {
			row.MatchedPhrase = m.Name
		}
	}
	row.VaultStates = strings.Join(token.Unique(states), "; ")
	row.VaultFiletypes = strings.Join(token.Unique(types), "; ")
	return row
}
