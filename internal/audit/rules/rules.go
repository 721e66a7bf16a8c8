// Package rules holds the user-curated constraints that tune fuzzy title
// matching: conflict pairs/groups that disqualify a pairing, required
// tokens/phrases that must appear on both sides or neither, approval counts
// that boost scores, and per-pair force-accept / force-block sets.
package rules

import (
	"sort"
	"strings"

	"drawing-audit-service/internal/audit/model"
)

type ConflictPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

type ConflictGroup struct {
	ATokens []string `json:"aTokens"`
	BTokens []string `json:"bTokens"`
	AText   string   `json:"aText"`
	BText   string   `json:"bText"`
}

type RequiredGroup struct {
	Tokens []string `json:"tokens"`
	Text   string   `json:"text"`
}

type RuleSet struct {
	ConflictPairs  []ConflictPair  `json:"conflictPairs"`
	ConflictGroups []ConflictGroup `json:"conflictGroups"`
	RequiredTokens []string        `json:"requiredTokens"`
	RequiredGroups []RequiredGroup `json:"requiredGroups"`
	ApprovedTokens map[string]int  `json:"approvedTokens"`
}

// Document is the importable/exportable rule file.
type Document struct {
	BlockedPairs  []string `json:"blockedPairs"`
	ApprovedPairs []string `json:"approvedPairs"`
	Rules         RuleSet  `json:"rules"`
}

// Store is the mutable session rule state. It is built empty and mutated
// only by review decisions, bulk import, or an explicit clear.
type Store struct {
	rules         RuleSet
	approvedPairs map[string]struct{}
	blockedPairs  map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		rules:         emptyRuleSet(),
		approvedPairs: map[string]struct{}{},
		blockedPairs:  map[string]struct{}{},
	}
}

func emptyRuleSet() RuleSet {
	return RuleSet{
		ConflictPairs:  []ConflictPair{},
		ConflictGroups: []ConflictGroup{},
		RequiredTokens: []string{},
		RequiredGroups: []RequiredGroup{},
		ApprovedTokens: map[string]int{},
	}
}

// PairKey identifies a specific (description, title) pairing.
func PairKey(desc, title string) string {
	return model.NormalizeKey(desc) + "||" + model.NormalizeKey(title)
}

func (s *Store) IsBlocked(pairKey string) bool {
	_, ok := s.blockedPairs[pairKey]
	return ok
}

func (s *Store) IsApproved(pairKey string) bool {
	_, ok := s.approvedPairs[pairKey]
	return ok
}

// HasConflict reports whether any configured conflict pair or group is
// satisfied symmetrically across the two token sets.
func (s *Store) HasConflict(aSet, bSet map[string]struct{}) bool {
	for _, c := range s.rules.ConflictPairs {
		a := strings.ToLower(c.A)
		b := strings.ToLower(c.B)
		if a == "" || b == "" {
			continue
		}
		if (has(aSet, a) && has(bSet, b)) || (has(aSet, b) && has(bSet, a)) {
			return true
		}
	}
	for _, g := range s.rules.ConflictGroups {
		if len(g.ATokens) == 0 || len(g.BTokens) == 0 {
			continue
		}
		aIn := containsAll(aSet, g.ATokens)
		bIn := containsAll(bSet, g.BTokens)
		aRev := containsAll(bSet, g.ATokens)
		bRev := containsAll(aSet, g.BTokens)
		if (aIn && bIn) || (aRev && bRev) {
			return true
		}
	}
	return false
}

// MissingRequired reports whether a required token or phrase appears on
// exactly one side.
func (s *Store) MissingRequired(aSet, bSet map[string]struct{}) bool {
	for _, t := range s.rules.RequiredTokens {
		tok := strings.ToLower(t)
		if has(aSet, tok) != has(bSet, tok) {
			return true
		}
	}
	for _, g := range s.rules.RequiredGroups {
		if len(g.Tokens) == 0 {
			continue
		}
		if containsAll(aSet, g.Tokens) != containsAll(bSet, g.Tokens) {
			return true
		}
	}
	return false
}

// ApprovalBonus sums learned approval counts over shared tokens, 0.01 per
// count, capped at 0.2.
func (s *Store) ApprovalBonus(aSet, bSet map[string]struct{}) float64 {
	total := 0
	for tok := range aSet {
		if !has(bSet, tok) {
			continue
		}
		total += s.rules.ApprovedTokens[tok]
	}
	bonus := float64(total) * 0.01
	if bonus > 0.2 {
		bonus = 0.2
	}
	return bonus
}

// Approve records a confirmed match: the pair is force-accepted from now on
// and each shared token earns an approval count.
func (s *Store) Approve(pairKey string, sharedTokens []string) {
	s.approvedPairs[pairKey] = struct{}{}
	for _, tok := range sharedTokens {
		s.rules.ApprovedTokens[strings.ToLower(tok)]++
	}
}

// Block permanently suppresses a specific pairing.
func (s *Store) Block(pairKey string) {
	s.blockedPairs[pairKey] = struct{}{}
}

func (s *Store) AddConflictGroup(g ConflictGroup) {
	s.rules.ConflictGroups = append(s.rules.ConflictGroups, g)
}

func (s *Store) AddRequiredGroup(g RequiredGroup) {
	s.rules.RequiredGroups = append(s.rules.RequiredGroups, g)
}

// Clear resets every rule collection and pair set.
func (s *Store) Clear() {
	s.rules = emptyRuleSet()
	s.approvedPairs = map[string]struct{}{}
	s.blockedPairs = map[string]struct{}{}
}

// Export snapshots the store as a rule document.
func (s *Store) Export() Document {
	doc := Document{
		BlockedPairs:  sortedKeys(s.blockedPairs),
		ApprovedPairs: sortedKeys(s.approvedPairs),
		Rules: RuleSet{
			ConflictPairs:  append([]ConflictPair{}, s.rules.ConflictPairs...),
			ConflictGroups: append([]ConflictGroup{}, s.rules.ConflictGroups...),
			RequiredTokens: append([]string{}, s.rules.RequiredTokens...),
			RequiredGroups: append([]RequiredGroup{}, s.rules.RequiredGroups...),
			ApprovedTokens: map[string]int{},
		},
	}
	for k, v := range s.rules.ApprovedTokens {
		doc.Rules.ApprovedTokens[k] = v
	}
	return doc
}

// Import replaces the relevant collections wholesale. Nil fields (absent or
// wrong-shaped in the source JSON) default to empty.
func (s *Store) Import(doc Document) {
	s.rules = emptyRuleSet()
	if doc.Rules.ConflictPairs != nil {
		s.rules.ConflictPairs = doc.Rules.ConflictPairs
	}
	if doc.Rules.ConflictGroups != nil {
		s.rules.ConflictGroups = doc.Rules.ConflictGroups
	}
	if doc.Rules.RequiredTokens != nil {
		s.rules.RequiredTokens = doc.Rules.RequiredTokens
	}
	if doc.Rules.RequiredGroups != nil {
		s.rules.RequiredGroups = doc.Rules.RequiredGroups
	}
	if doc.Rules.ApprovedTokens != nil {
		s.rules.ApprovedTokens = doc.Rules.ApprovedTokens
	}
	s.approvedPairs = map[string]struct{}{}
	for _, p := range doc.ApprovedPairs {
		s.approvedPairs[p] = struct{}{}
	}
	s.blockedPairs = map[string]struct{}{}
	for _, p := range doc.BlockedPairs {
		s.blockedPairs[p] = struct{}{}
	}
}

// Summary counts per collection, for status endpoints.
type Summary struct {
	ConflictPairs  int `json:"conflictPairs"`
	ConflictGroups int `json:"conflictGroups"`
	RequiredTokens int `json:"requiredTokens"`
	RequiredGroups int `json:"requiredGroups"`
	ApprovedTokens int `json:"approvedTokens"`
	ApprovedPairs  int `json:"approvedPairs"`
	BlockedPairs   int `json:"blockedPairs"`
}

func (s *Store) Summarize() Summary {
	return Summary{
		ConflictPairs:  len(s.rules.ConflictPairs),
		ConflictGroups: len(s.rules.ConflictGroups),
		RequiredTokens: len(s.rules.RequiredTokens),
		RequiredGroups: len(s.rules.RequiredGroups),
		ApprovedTokens: len(s.rules.ApprovedTokens),
		ApprovedPairs:  len(s.approvedPairs),
		BlockedPairs:   len(s.blockedPairs),
	}
}

func has(set map[string]struct{}, tok string) bool {
	_, ok := set[tok]
	return ok
}

func containsAll(set map[string]struct{}, tokens []string) bool {
	for _, t := range tokens {
		if !has(set, strings.ToLower(t)) {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
