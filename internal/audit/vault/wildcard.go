package vault

import (
	"regexp"
	"strings"

	"drawing-audit-service/internal/audit/model"
)

// WildcardKind tags what a template's placeholder family stands for.
type WildcardKind string

const (
	KindLength  WildcardKind = "length"
	KindGalv    WildcardKind = "galv"
	KindLetters WildcardKind = "letters"
)

// Pattern is a compiled wildcard template such as AB(LENGTH)C. Matching is
// anchored and performed against the upper-cased, trimmed stock code.
type Pattern struct {
	Regex         *regexp.Regexp
	Template      string
	Expr          string
	Kind          WildcardKind
	WildcardCount int
	LiteralLen    int
	Entry         model.VaultEntry
}

var reToken = regexp.MustCompile(`\([^)]*\)`)

// HasWildcardToken reports whether a vault identifier contains a bracketed
// placeholder.
func HasWildcardToken(code string) bool {
	return reToken.MatchString(code)
}

// CompileWildcard turns a bracketed template into an anchored regex.
// Token grammar: (LENGTH) matches 2-4 digits, (G) an optional literal G,
// anything else a bounded run of letters (shorter bound when the token ends
// the template). Literal segments are upper-cased and escaped.
func CompileWildcard(code string) (expr string, kind WildcardKind, wildcardCount int, ok bool) {
	raw := strings.TrimSpace(code)
	if raw == "" {
		return "", "", 0, false
	}

	locs := reToken.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return "", "", 0, false
	}

	var parts []string
	last := 0
	for _, loc := range locs {
		if before := raw[last:loc[0]]; before != "" {
			parts = append(parts, regexp.QuoteMeta(strings.ToUpper(before)))
		}
		tok := strings.ToUpper(strings.TrimSpace(raw[loc[0]+1 : loc[1]-1]))
		isLast := loc[1] == len(raw)
		switch tok {
		case "LENGTH":
			parts = append(parts, `\d{2,4}`)
			if kind == "" {
				kind = KindLength
			}
		case "G":
			parts = append(parts, `G?`)
			if kind == "" {
				kind = KindGalv
			}
		default:
			bound := "10"
			if isLast {
				bound = "5"
			}
			parts = append(parts, `[A-Z]{0,`+bound+`}`)
			if kind == "" {
				kind = KindLetters
			}
		}
		last = loc[1]
	}
	if tail := raw[last:]; tail != "" {
		parts = append(parts, regexp.QuoteMeta(strings.ToUpper(tail)))
	}

	return "^" + strings.Join(parts, "") + "$", kind, len(locs), true
}
