// Tokenizer and critical-feature extraction for free-text descriptions and
// vault titles. Matching treats dimension numbers, short part codes and
// material words as hard signals, so they are pulled out separately from the
// general token set.
package token

import (
	"regexp"
	"strings"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
		"has", "have", "if", "in", "into", "is", "it", "its", "of", "on", "or",
		"s", "such", "t", "that", "the", "their", "then", "there", "these",
		"they", "this", "to", "was", "will", "with",
	} {
		stopwords[w] = struct{}{}
	}
}

// short tokens that survive the min-length cut
var allowShort = map[string]struct{}{"tc": {}, "gal": {}}

var criticalMaterials = map[string]struct{}{
	"tc": {}, "carbide": {}, "tungsten": {}, "gal": {}, "galv": {},
	"galvanised": {}, "galvanized": {}, "black": {},
}

var (
	reSplit    = regexp.MustCompile(`[^a-z0-9./]+`)
	reFraction = regexp.MustCompile(`^\d{1,3}/\d{1,3}$`)
	reDecimal  = regexp.MustCompile(`^\d{1,8}\.\d{1,4}$`)
	reShortID  = regexp.MustCompile(`^[a-z]{1,3}\d{1,6}$`)
	reNumUnit  = regexp.MustCompile(`^(\d{1,8}(?:\.\d{1,4})?)([a-z]{1,4})$`)
	reNumeric  = regexp.MustCompile(`^\d+(\.\d+)?$`)

	reLetterDigit = regexp.MustCompile(`([a-z])([0-9])`)
	reDigitLetter = regexp.MustCompile(`([0-9])([a-z])`)

	reCode = regexp.MustCompile(`^[a-z]{1,3}\d{1,4}$`)

	reQty   = regexp.MustCompile(`(\d{1,4}(?:\.\d{1,4})?)\s*(per|pallet|pack|pk|qty|quantity)\b`)
	reDim   = regexp.MustCompile(`(\d{1,4}(?:\.\d{1,4})?)\s*[x×]\s*(\d{1,4}(?:\.\d{1,4})?)(?:\s*[x×]\s*(\d{1,4}(?:\.\d{1,4})?))?`)
	reMM    = regexp.MustCompile(`(\d{1,4}(?:\.\d{1,4})?)\s*mm\b`)
	reHole  = regexp.MustCompile(`(\d{1,4}(?:\.\d{1,4})?)\s*mm?\s*(hole|dia|diam|diameter)\b`)
	reHole2 = regexp.MustCompile(`\b(hole|dia|diam|diameter)\s*(\d{1,4}(?:\.\d{1,4})?)\b`)
	reThick = regexp.MustCompile(`(\d{1,4}(?:\.\d{1,4})?)\s*mm?\s*(thick|thickness)\b`)
	reFrac  = regexp.MustCompile(`\d{1,3}/\d{1,3}`)
)

// splitMixed applies splitting rules in priority order: fractions, decimals
// and short letter+digit identifiers stay intact; a number with a short unit
// suffix splits in two; everything else splits at letter<->digit boundaries.
func splitMixed(tok string) []string {
	if reFraction.MatchString(tok) || reDecimal.MatchString(tok) || reShortID.MatchString(tok) {
		return []string{tok}
	}
	if m := reNumUnit.FindStringSubmatch(tok); m != nil {
		return []string{m[1], m[2]}
	}
	s := reLetterDigit.ReplaceAllString(tok, "$1|$2")
	s = reDigitLetter.ReplaceAllString(s, "$1|$2")
	var out []string
	for _, p := range strings.Split(s, "|") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Tokenize lowercases text and returns normalized tokens: length >= 3 unless
// numeric, a fraction, or on the short allow-list; stop words dropped.
func Tokenize(text string) []string {
	var out []string
	for _, chunk := range reSplit.Split(strings.ToLower(text), -1) {
		if chunk == "" {
			continue
		}
		for _, tok := range splitMixed(chunk) {
			if len(tok) < 3 {
				if !reNumeric.MatchString(tok) && !reFraction.MatchString(tok) {
					if _, ok := allowShort[tok]; !ok {
						continue
					}
				}
			}
			if _, stop := stopwords[tok]; stop {
				continue
			}
			out = append(out, tok)
		}
	}
	return out
}

// ExtractCriticalNumbers counts numeric literals found in dimension,
// millimetre, hole/diameter, thickness and fraction contexts, then removes
// any literal that also appeared in a quantity context. Quantities are not
// dimensions and must not gate matching.
func ExtractCriticalNumbers(text string) map[string]int {
	s := strings.ToLower(text)
	counts := map[string]int{}

	qty := map[string]struct{}{}
	for _, m := range reQty.FindAllStringSubmatch(s, -1) {
		qty[m[1]] = struct{}{}
	}

	for _, m := range reDim.FindAllStringSubmatch(s, -1) {
		counts[m[1]]++
		counts[m[2]]++
		if m[3] != "" {
			counts[m[3]]++
		}
	}
	for _, m := range reMM.FindAllStringSubmatch(s, -1) {
		counts[m[1]]++
	}
	for _, m := range reHole.FindAllStringSubmatch(s, -1) {
		counts[m[1]]++
	}
	for _, m := range reHole2.FindAllStringSubmatch(s, -1) {
		counts[m[2]]++
	}
	for _, m := range reFrac.FindAllString(s, -1) {
		counts[m]++
	}
	for _, m := range reThick.FindAllStringSubmatch(s, -1) {
		counts[m[1]]++
	}

	for q := range qty {
		delete(counts, q)
	}
	return counts
}

// ExtractCriticalCodes picks tokens shaped like short part identifiers
// (1-3 letters followed by up to 4 digits, e.g. m12).
func ExtractCriticalCodes(tokens []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range tokens {
		if reCode.MatchString(tok) {
			out[tok] = struct{}{}
		}
	}
	return out
}

// ExtractCriticalMaterials picks tokens from the fixed material vocabulary.
func ExtractCriticalMaterials(tokens []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range tokens {
		if _, ok := criticalMaterials[tok]; ok {
			out[tok] = struct{}{}
		}
	}
	return out
}

// Meta bundles the token set of a text with its critical sub-features.
// Critical numbers/codes/materials are folded back into Tokens so they also
// participate in ordinary overlap scoring.
type Meta struct {
	Tokens    []string
	Numbers   map[string]int
	Codes     map[string]struct{}
	Materials map[string]struct{}
}

func BuildMeta(text string) Meta {
	tokens := Unique(Tokenize(text))
	numbers := ExtractCriticalNumbers(text)
	codes := ExtractCriticalCodes(tokens)
	materials := ExtractCriticalMaterials(tokens)

	for n := range numbers {
		tokens = append(tokens, n)
	}
	for c := range codes {
		tokens = append(tokens, c)
	}
	for m := range materials {
		tokens = append(tokens, m)
	}

	return Meta{
		Tokens:    Unique(tokens),
		Numbers:   numbers,
		Codes:     codes,
		Materials: materials,
	}
}

func (m Meta) TokenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m.Tokens))
	for _, t := range m.Tokens {
		set[t] = struct{}{}
	}
	return set
}

// Unique preserves first-seen order.
func Unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Overlap returns the intersection of the token sets of two texts, in
// first-seen order of the first text.
func Overlap(aText, bText string) []string {
	a := Unique(Tokenize(aText))
	bSet := map[string]struct{}{}
	for _, t := range Tokenize(bText) {
		bSet[t] = struct{}{}
	}
	var out []string
	for _, t := range a {
		if _, ok := bSet[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func CountsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func SetsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
